// FILE: lixenwraith/confman/source_raw.go
package confman

import (
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

// RawOption configures a RawSource.
type RawOption func(*RawSource)

// WithBinary switches the source to binary mode (LoadBytes/DumpBytes).
func WithBinary() RawOption {
	return func(s *RawSource) { s.binary = true }
}

// WithRawOptional makes a missing file load as absent instead of failing.
func WithRawOptional() RawOption {
	return func(s *RawSource) { s.optional = true }
}

// WithFileMode sets the permission bits applied to the temporary and final file
// on every dump. Only permission bits are kept.
func WithFileMode(mode fs.FileMode) RawOption {
	return func(s *RawSource) {
		s.mode = mode & permBits
		s.hasMode = true
	}
}

// WithEncoding sets the text encoding used in text mode, for example
// charmap.ISO8859_1 or unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).
// The default is strict UTF-8: invalid sequences fail the load.
func WithEncoding(enc encoding.Encoding) RawOption {
	return func(s *RawSource) { s.encoding = enc }
}

// RawSource reads and writes one opaque file (a secret, a certificate, a
// template) without parsing it. It does not participate in merging.
type RawSource struct {
	path     string
	binary   bool
	optional bool
	mode     fs.FileMode
	hasMode  bool
	encoding encoding.Encoding
}

// NewRawSource creates a text-mode source for path unless WithBinary is given.
// A leading "~" in the path is expanded to the home directory.
func NewRawSource(path string, opts ...RawOption) *RawSource {
	s := &RawSource{path: expandHome(path)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RawSource) Name() string { return "raw(" + s.path + ")" }

// Path returns the resolved file path.
func (s *RawSource) Path() string { return s.path }

// Binary reports whether the source is in binary mode.
func (s *RawSource) Binary() bool { return s.binary }

// LoadText reads the file as text. ok is false when an optional file is missing.
func (s *RawSource) LoadText() (text string, ok bool, err error) {
	if s.binary {
		return "", false, fmt.Errorf("%w: LoadText on binary source '%s'", ErrModeMismatch, s.path)
	}

	data, ok, err := s.read()
	if err != nil || !ok {
		return "", ok, err
	}

	if s.encoding != nil {
		decoded, err := s.encoding.NewDecoder().Bytes(data)
		if err != nil {
			return "", false, &Error{Kind: ErrMalformedContent, Op: "load", Path: s.path,
				Err: fmt.Errorf("failed to decode text: %w", err)}
		}
		return string(decoded), true, nil
	}

	if !utf8.Valid(data) {
		return "", false, &Error{Kind: ErrMalformedContent, Op: "load", Path: s.path,
			Err: fmt.Errorf("content is not valid UTF-8")}
	}
	return string(data), true, nil
}

// LoadBytes reads the file as binary. ok is false when an optional file is missing.
func (s *RawSource) LoadBytes() (data []byte, ok bool, err error) {
	if !s.binary {
		return nil, false, fmt.Errorf("%w: LoadBytes on text source '%s'", ErrModeMismatch, s.path)
	}
	return s.read()
}

// DumpText atomically replaces the file with text.
func (s *RawSource) DumpText(text string) error {
	if s.binary {
		return fmt.Errorf("%w: DumpText on binary source '%s'", ErrModeMismatch, s.path)
	}

	data := []byte(text)
	if s.encoding != nil {
		encoded, err := s.encoding.NewEncoder().Bytes(data)
		if err != nil {
			return &Error{Kind: ErrSerialize, Op: "dump", Path: s.path,
				Err: fmt.Errorf("failed to encode text: %w", err)}
		}
		data = encoded
	}
	return s.write(data)
}

// DumpBytes atomically replaces the file with data.
func (s *RawSource) DumpBytes(data []byte) error {
	if !s.binary {
		return fmt.Errorf("%w: DumpBytes on text source '%s'", ErrModeMismatch, s.path)
	}
	return s.write(data)
}

func (s *RawSource) read() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		return data, true, nil
	}
	if isNotExist(err) {
		if s.optional {
			return nil, false, nil
		}
		return nil, false, &Error{Kind: ErrSourceNotFound, Op: "load", Path: s.path,
			Err: fmt.Errorf("raw file not found")}
	}
	return nil, false, &Error{Kind: ErrReadFailure, Op: "load", Path: s.path,
		Err: fmt.Errorf("failed to read raw file: %w", err)}
}

func (s *RawSource) write(data []byte) error {
	return atomicWriteFile(s.path, data, atomicWriteOptions{mode: s.mode, hasMode: s.hasMode})
}
