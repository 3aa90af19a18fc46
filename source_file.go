// FILE: lixenwraith/confman/source_file.go
package confman

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithOptional makes a missing file load as absent instead of failing.
func WithOptional() FileOption {
	return func(s *FileSource) { s.optional = true }
}

// WithRegistry selects the codecs used for parsing and serializing.
func WithRegistry(r *Registry) FileOption {
	return func(s *FileSource) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithDumpMode sets the permission bits of files written by Dump.
func WithDumpMode(mode fs.FileMode) FileOption {
	return func(s *FileSource) {
		s.mode = mode & permBits
		s.hasMode = true
	}
}

// FileSource loads one configuration file whose format is chosen by extension:
// .json, .toml, .ini/.cfg/.conf and .yaml/.yml (case-insensitive). A leading
// "~" in the path is expanded to the home directory.
type FileSource struct {
	path     string
	optional bool
	registry *Registry
	mode     fs.FileMode
	hasMode  bool
}

// NewFileSource creates a source for path.
func NewFileSource(path string, opts ...FileOption) *FileSource {
	s := &FileSource{
		path:     expandHome(path),
		registry: DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileSource) Name() string { return "file(" + s.path + ")" }

// Path returns the resolved file path.
func (s *FileSource) Path() string { return s.path }

// Optional reports whether a missing file is tolerated.
func (s *FileSource) Optional() bool { return s.optional }

// Load reads and parses the file. A missing optional file is absent.
func (s *FileSource) Load() (Value, bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if isNotExist(err) {
			if s.optional {
				return Value{}, false, nil
			}
			return Value{}, false, &Error{Kind: ErrSourceNotFound, Op: "load", Path: s.path,
				Err: fmt.Errorf("configuration file not found")}
		}
		return Value{}, false, &Error{Kind: ErrReadFailure, Op: "load", Path: s.path,
			Err: fmt.Errorf("failed to stat config file: %w", err)}
	}
	if info.IsDir() {
		return Value{}, false, &Error{Kind: ErrReadFailure, Op: "load", Path: s.path,
			Err: fmt.Errorf("path is a directory")}
	}

	format, err := FormatFromPath(s.path)
	if err != nil {
		return Value{}, false, s.annotate(err, "load", "")
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return Value{}, false, &Error{Kind: ErrReadFailure, Op: "load", Path: s.path, Format: format,
			Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	m, err := s.registry.Parse(format, content)
	if err != nil {
		return Value{}, false, s.annotate(err, "load", format)
	}
	return Map(m), true, nil
}

// Dump serializes data with the codec matching the extension and atomically
// replaces the file. Parent directories are created as needed.
func (s *FileSource) Dump(data *Mapping) error {
	format, err := FormatFromPath(s.path)
	if err != nil {
		return s.annotate(err, "dump", "")
	}

	content, err := s.registry.Serialize(format, data)
	if err != nil {
		return s.annotate(err, "dump", format)
	}

	return atomicWriteFile(s.path, content, atomicWriteOptions{mode: s.mode, hasMode: s.hasMode})
}

// annotate fills file context into codec errors.
func (s *FileSource) annotate(err error, op string, format Format) error {
	var cerr *Error
	if errors.As(err, &cerr) {
		annotated := *cerr
		annotated.Op = op
		annotated.Path = s.path
		if annotated.Format == "" {
			annotated.Format = format
		}
		return &annotated
	}
	return &Error{Kind: ErrConfiguration, Op: op, Path: s.path, Format: format, Err: err}
}
