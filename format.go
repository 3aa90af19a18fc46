// FILE: lixenwraith/confman/format.go
package confman

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Format names a serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
	FormatYAML Format = "yaml"
)

// Parser turns file content into a configuration mapping.
type Parser interface {
	Parse(content []byte) (*Mapping, error)
}

// Serializer turns a configuration mapping into file content.
type Serializer interface {
	Serialize(m *Mapping) ([]byte, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(content []byte) (*Mapping, error)

func (f ParserFunc) Parse(content []byte) (*Mapping, error) { return f(content) }

// SerializerFunc adapts a function to Serializer.
type SerializerFunc func(m *Mapping) ([]byte, error)

func (f SerializerFunc) Serialize(m *Mapping) ([]byte, error) { return f(m) }

// FormatFromPath determines the format from the file extension, case-insensitively.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".ini", ".cfg", ".conf":
		return FormatINI, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", &Error{
		Kind: ErrUnsupportedFormat,
		Path: path,
		Err:  fmt.Errorf("extension '%s'", ext),
	}
}

// Registry holds the parsers and serializers available per format. Read and
// write capability are registered separately, so a format may be readable but
// not writable. Lookups of an absent capability fail with ErrCapabilityUnavailable.
type Registry struct {
	mu          sync.RWMutex
	parsers     map[Format]Parser
	serializers map[Format]Serializer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:     make(map[Format]Parser),
		serializers: make(map[Format]Serializer),
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry with all built-in codecs.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewStandardRegistry()
	})
	return defaultRegistry
}

// NewStandardRegistry returns a new registry with JSON, TOML, INI and YAML
// registered for both reading and writing.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	r.Register(FormatJSON, jsonCodec{})
	r.Register(FormatTOML, tomlCodec{})
	r.Register(FormatINI, iniCodec{})
	r.Register(FormatYAML, yamlCodec{})
	return r
}

// Register installs codec as parser and, if it implements Serializer, as serializer.
func (r *Registry) Register(format Format, codec Parser) {
	r.RegisterParser(format, codec)
	if s, ok := codec.(Serializer); ok {
		r.RegisterSerializer(format, s)
	}
}

func (r *Registry) RegisterParser(format Format, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[format] = p
}

func (r *Registry) RegisterSerializer(format Format, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[format] = s
}

// Unregister removes both capabilities for format.
func (r *Registry) Unregister(format Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.parsers, format)
	delete(r.serializers, format)
}

// UnregisterSerializer removes only the write capability for format.
func (r *Registry) UnregisterSerializer(format Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.serializers, format)
}

// Parser returns the parser registered for format.
func (r *Registry) Parser(format Format) (Parser, error) {
	r.mu.RLock()
	p, ok := r.parsers[format]
	r.mu.RUnlock()
	if !ok {
		return nil, &Error{Kind: ErrCapabilityUnavailable, Op: "parse", Format: format,
			Err: fmt.Errorf("no %s reader registered", format)}
	}
	return p, nil
}

// Serializer returns the serializer registered for format.
func (r *Registry) Serializer(format Format) (Serializer, error) {
	r.mu.RLock()
	s, ok := r.serializers[format]
	r.mu.RUnlock()
	if !ok {
		return nil, &Error{Kind: ErrCapabilityUnavailable, Op: "serialize", Format: format,
			Err: fmt.Errorf("no %s writer registered", format)}
	}
	return s, nil
}

// Parse decodes content with the parser for format. Empty or whitespace-only
// content yields an empty mapping for every format.
func (r *Registry) Parse(format Format, content []byte) (*Mapping, error) {
	p, err := r.Parser(format)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return NewMapping(), nil
	}
	m, err := p.Parse(content)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = NewMapping()
	}
	return m, nil
}

// Serialize encodes m with the serializer for format.
func (r *Registry) Serialize(format Format, m *Mapping) ([]byte, error) {
	s, err := r.Serializer(format)
	if err != nil {
		return nil, err
	}
	if err := checkDepth(m); err != nil {
		return nil, &Error{Kind: ErrMaxDepth, Op: "serialize", Format: format}
	}
	return s.Serialize(m)
}

// malformed wraps a codec parse failure.
func malformed(format Format, err error) error {
	return &Error{Kind: ErrMalformedContent, Op: "parse", Format: format, Err: err}
}

// notMapping reports a parsed document whose top level is not a mapping.
func notMapping(format Format, got string) error {
	return &Error{Kind: ErrNonMappingTopLevel, Op: "parse", Format: format,
		Err: fmt.Errorf("top-level %s structure must be a mapping, got %s", strings.ToUpper(string(format)), got)}
}

// serializeFailed wraps a codec encode failure.
func serializeFailed(format Format, key string, err error) error {
	return &Error{Kind: ErrSerialize, Op: "serialize", Format: format, Key: key, Err: err}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
