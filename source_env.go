// FILE: lixenwraith/confman/source_env.go
package confman

import (
	"os"
	"slices"
	"strings"
)

// EnvSeparator splits nested keys in environment variable names.
const EnvSeparator = "__"

// EnvOption configures an EnvSource.
type EnvOption func(*EnvSource)

// WithEnviron replaces os.Environ as the variable list, mainly for tests.
func WithEnviron(environ func() []string) EnvOption {
	return func(s *EnvSource) {
		if environ != nil {
			s.environ = environ
		}
	}
}

// EnvSource maps prefixed environment variables to nested keys:
//
//	MYAPP_DB__HOST=localhost  ->  {"db": {"host": "localhost"}}
//	MYAPP_DB__PORT=5432       ->  {"db": {"port": 5432}}
//
// The prefix match is case-sensitive; the remaining name is split on "__",
// empty segments are dropped and every segment is lower-cased. Values go
// through Coerce.
type EnvSource struct {
	prefix  string
	environ func() []string
}

// NewEnvSource creates a source for variables starting with prefix.
// An empty prefix is rejected with ErrEmptyPrefix.
func NewEnvSource(prefix string, opts ...EnvOption) (*EnvSource, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}
	s := &EnvSource{prefix: prefix, environ: os.Environ}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *EnvSource) Name() string { return "env(" + s.prefix + ")" }

// Prefix returns the variable name prefix.
func (s *EnvSource) Prefix() string { return s.prefix }

// Load folds every matching variable into one mapping. Variables are applied in
// name order; where a path crosses a value set by an earlier variable, the later
// variable wins. Returns absent when nothing matches.
func (s *EnvSource) Load() (Value, bool, error) {
	entries := slices.Sorted(slices.Values(s.environ()))

	result := NewMapping()
	for _, entry := range entries {
		name, value, found := strings.Cut(entry, "=")
		if !found || !strings.HasPrefix(name, s.prefix) {
			continue
		}

		rawKey := name[len(s.prefix):]
		if rawKey == "" {
			continue
		}

		var segments []string
		for _, part := range strings.Split(rawKey, EnvSeparator) {
			if part != "" {
				segments = append(segments, strings.ToLower(part))
			}
		}
		if len(segments) == 0 {
			continue
		}

		fragment := NewMapping()
		setNestedValue(fragment, segments, Coerce(value))
		result = Merge(result, fragment)
	}

	if result.Len() == 0 {
		return Value{}, false, nil
	}
	return Map(result), true, nil
}

// EnvName returns the variable name that maps to the dotted path, the inverse
// of Load's mapping (for example "db.host" -> "MYAPP_DB__HOST").
func (s *EnvSource) EnvName(path string) string {
	return s.prefix + strings.ToUpper(strings.ReplaceAll(path, ".", EnvSeparator))
}
