// FILE: lixenwraith/confman/builder.go
package confman

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// layer produces one source at build time. ok=false contributes nothing.
type layer func(b *Builder) (src Source, ok bool, err error)

// Builder provides a fluent interface for assembling a Manager. Sources are
// merged in this order regardless of call order:
//
//	defaults < maps, files and custom sources (in call order) < environment < arguments
//
// The first construction error is kept and returned by Build.
type Builder struct {
	defaults  []layer
	layers    []layer
	envPrefix string
	environ   func() []string
	args      []string
	hasArgs   bool
	schema    any
	validator Validator
	logger    *slog.Logger
	registry  *Registry
	err       error
}

// NewBuilder creates a new configuration builder.
func NewBuilder() *Builder {
	return &Builder{
		environ:  os.Environ,
		registry: DefaultRegistry(),
	}
}

// WithDefaults adds default values from a struct (see NewStructSource).
func (b *Builder) WithDefaults(defaults any) *Builder {
	if defaults == nil {
		return b
	}
	src, err := NewStructSource(defaults)
	if err != nil {
		b.setErr(fmt.Errorf("failed to register defaults: %w", err))
		return b
	}
	b.defaults = append(b.defaults, fixed(src))
	return b
}

// WithMap adds a map layer.
func (b *Builder) WithMap(data map[string]any) *Builder {
	src, err := NewMapSourceFrom(data)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.layers = append(b.layers, fixed(src))
	return b
}

// WithFile adds a file that must exist.
func (b *Builder) WithFile(path string) *Builder {
	b.layers = append(b.layers, fileLayer(path, false))
	return b
}

// WithOptionalFile adds a file that is skipped when missing.
func (b *Builder) WithOptionalFile(path string) *Builder {
	b.layers = append(b.layers, fileLayer(path, true))
	return b
}

// WithSource adds a custom source.
func (b *Builder) WithSource(src Source) *Builder {
	if src == nil {
		b.setErr(fmt.Errorf("nil source"))
		return b
	}
	b.layers = append(b.layers, fixed(src))
	return b
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix disables
// the environment layer.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

// WithEnviron replaces os.Environ for the environment layer and discovery.
func (b *Builder) WithEnviron(environ func() []string) *Builder {
	if environ != nil {
		b.environ = environ
	}
	return b
}

// WithArgs sets the command-line arguments, typically os.Args[1:].
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = slices.Clone(args)
	b.hasArgs = true
	return b
}

// WithSchema sets the schema checked after merging.
func (b *Builder) WithSchema(schema any) *Builder {
	b.schema = schema
	return b
}

// WithValidator replaces the JSON Schema validator.
func (b *Builder) WithValidator(v Validator) *Builder {
	b.validator = v
	return b
}

// WithLogger sets the logger passed to the Manager.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRegistry selects the codecs for every file the builder creates.
func (b *Builder) WithRegistry(r *Registry) *Builder {
	if r != nil {
		b.registry = r
	}
	return b
}

// Manager assembles the sources without loading them.
func (b *Builder) Manager() (*Manager, error) {
	if b.err != nil {
		return nil, b.err
	}

	var sources []Source
	for _, l := range slices.Concat(b.defaults, b.layers) {
		src, ok, err := l(b)
		if err != nil {
			return nil, err
		}
		if ok {
			sources = append(sources, src)
		}
	}

	if b.envPrefix != "" {
		env, err := NewEnvSource(b.envPrefix, WithEnviron(b.environ))
		if err != nil {
			return nil, err
		}
		sources = append(sources, env)
	}

	if b.hasArgs {
		sources = append(sources, NewArgsSource(b.args))
	}

	// Layers that resolved to nothing (an undiscovered file) still yield an empty config
	if len(sources) == 0 && len(b.layers) > 0 {
		sources = append(sources, NewMapSource(NewMapping()).Named("empty"))
	}

	opts := []ManagerOption{WithSchema(b.schema), WithValidator(b.validator), WithLogger(b.logger)}
	return NewManager(sources, opts...)
}

// Build creates the Manager and loads it once.
func (b *Builder) Build() (*Config, error) {
	m, err := b.Manager()
	if err != nil {
		return nil, err
	}
	return m.Load()
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds and decodes the whole configuration into target.
func (b *Builder) BuildAndScan(target any) (*Config, error) {
	cfg, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := cfg.Scan("", target); err != nil {
		return nil, fmt.Errorf("failed to scan final config into target: %w", err)
	}
	return cfg, nil
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

func fileLayer(path string, optional bool) layer {
	return func(b *Builder) (Source, bool, error) {
		opts := []FileOption{WithRegistry(b.registry)}
		if optional {
			opts = append(opts, WithOptional())
		}
		return NewFileSource(path, opts...), true, nil
	}
}

func fixed(src Source) layer {
	return func(*Builder) (Source, bool, error) { return src, true, nil }
}

// getenv looks a variable up in the builder's environment.
func (b *Builder) getenv(name string) string {
	for _, entry := range b.environ() {
		if k, v, ok := strings.Cut(entry, "="); ok && k == name {
			return v
		}
	}
	return ""
}
