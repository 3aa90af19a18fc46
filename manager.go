// FILE: lixenwraith/confman/manager.go
package confman

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSchema sets the schema handed to the validator after merging.
func WithSchema(schema any) ManagerOption {
	return func(m *Manager) { m.schema = schema }
}

// WithValidator replaces the default JSONSchemaValidator.
func WithValidator(v Validator) ManagerOption {
	return func(m *Manager) {
		if v != nil {
			m.validator = v
		}
	}
}

// WithLogger sets the logger for load cycles. The default discards everything.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager merges an ordered list of sources into a validated Config. Later
// sources override earlier ones. A Manager is read-only after construction and
// Load may be called from several goroutines.
type Manager struct {
	sources   []Source
	schema    any
	validator Validator
	logger    *slog.Logger
}

// NewManager creates a manager over sources in priority order (lowest first).
// An empty list fails with ErrNoSources.
func NewManager(sources []Source, opts ...ManagerOption) (*Manager, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	for i, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("source %d is nil", i)
		}
	}

	m := &Manager{
		sources:   slices.Clone(sources),
		validator: JSONSchemaValidator{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Sources returns the sources in merge order.
func (m *Manager) Sources() []Source {
	return slices.Clone(m.sources)
}

// Load reads every source afresh, merges the results and validates them. The
// first failing source aborts the cycle; no partial Config is returned.
func (m *Manager) Load() (*Config, error) {
	merged := NewMapping()

	for _, src := range m.sources {
		name := src.Name()

		v, ok, err := src.Load()
		if err != nil {
			m.logger.Warn("configuration source failed", slog.String("source", name), slog.Any("error", err))
			return nil, withSource(err, name)
		}
		if !ok {
			m.logger.Debug("configuration source absent", slog.String("source", name))
			continue
		}

		fragment, isMapping := v.AsMapping()
		if !isMapping {
			err := &Error{Kind: ErrNonMappingTopLevel, Op: "load", Source: name,
				Err: fmt.Errorf("source returned %s", v.Kind())}
			m.logger.Warn("configuration source is not a mapping", slog.String("source", name), slog.Any("error", err))
			return nil, err
		}
		if err := checkDepth(fragment); err != nil {
			m.logger.Warn("configuration source too deep", slog.String("source", name), slog.Any("error", err))
			return nil, withSource(err, name)
		}

		merged = Merge(merged, fragment)
		m.logger.Debug("configuration source loaded", slog.String("source", name), slog.Int("keys", fragment.Len()))
	}

	if err := m.validate(merged); err != nil {
		m.logger.Warn("configuration validation failed", slog.Any("error", err))
		return nil, err
	}

	m.logger.Debug("configuration loaded", slog.Int("sources", len(m.sources)), slog.Int("keys", merged.Len()))
	return newConfig(merged), nil
}

func (m *Manager) validate(tree *Mapping) error {
	err := m.validator.Validate(tree, m.schema)
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return &ValidationError{Message: err.Error(), Err: err}
}

// withSource names the source on structured errors that carry neither a source
// nor a file path yet.
func withSource(err error, name string) error {
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Source == "" && cerr.Path == "" {
		annotated := *cerr
		annotated.Source = name
		return &annotated
	}
	if errors.Is(err, ErrConfiguration) || cerr != nil {
		return err
	}
	return &Error{Kind: ErrReadFailure, Op: "load", Source: name, Err: err}
}
