// FILE: lixenwraith/confman/errors.go
package confman

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is the umbrella for every loading, parsing, writing and
// validation failure. Each kind below matches it with errors.Is.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrSourceNotFound        = fmt.Errorf("%w: source not found", ErrConfiguration)
	ErrUnsupportedFormat     = fmt.Errorf("%w: unsupported format", ErrConfiguration)
	ErrMalformedContent      = fmt.Errorf("%w: malformed content", ErrConfiguration)
	ErrCapabilityUnavailable = fmt.Errorf("%w: capability unavailable", ErrConfiguration)
	ErrNonScalarValue        = fmt.Errorf("%w: non-scalar value for flat format", ErrConfiguration)
	ErrNonMappingTopLevel    = fmt.Errorf("%w: top level is not a mapping", ErrConfiguration)
	ErrReadFailure           = fmt.Errorf("%w: read failed", ErrConfiguration)
	ErrWriteFailure          = fmt.Errorf("%w: write failed", ErrConfiguration)
	ErrValidation            = fmt.Errorf("%w: validation failed", ErrConfiguration)
	ErrMaxDepth              = fmt.Errorf("%w: nesting too deep", ErrConfiguration)
)

// Write failure sub-kinds.
var (
	ErrSerialize     = fmt.Errorf("%w: serialization", ErrWriteFailure)
	ErrAtomicReplace = fmt.Errorf("%w: atomic replace", ErrWriteFailure)
	ErrPermission    = fmt.Errorf("%w: permission change", ErrWriteFailure)
)

// Usage errors. These report programming mistakes and are not configuration errors.
var (
	ErrNoSources    = errors.New("at least one configuration source must be provided")
	ErrEmptyPrefix  = errors.New("environment prefix must not be empty")
	ErrModeMismatch = errors.New("content type does not match raw source mode")
)

// Error describes a failed operation with enough context to diagnose it.
type Error struct {
	Kind   error  // one of the Err* kinds above
	Op     string // load, dump, parse, serialize, validate
	Path   string // file path, if any
	Format Format // file format, if known
	Key    string // dotted key inside the tree, if any
	Source string // source name, if any
	Err    error  // underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("confman: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(kindMessage(e.Kind))
	if e.Source != "" {
		fmt.Fprintf(&b, " (source %s)", e.Source)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " in '%s'", e.Path)
	}
	if e.Format != "" {
		fmt.Fprintf(&b, " [%s]", e.Format)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " at key '%s'", e.Key)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// kindMessage strips the umbrella prefix so messages read "source not found"
// rather than "configuration error: source not found".
func kindMessage(kind error) string {
	if kind == nil {
		return ErrConfiguration.Error()
	}
	msg := kind.Error()
	msg = strings.TrimPrefix(msg, ErrConfiguration.Error()+": ")
	return msg
}

// ValidationError reports a schema violation at a dotted field path.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	field := e.Field
	if field == "" {
		field = "<root>"
	}
	return fmt.Sprintf("confman: configuration validation error at '%s': %s", field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrConfiguration
}

func (e *ValidationError) Unwrap() error { return e.Err }
