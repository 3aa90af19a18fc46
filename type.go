// FILE: lixenwraith/confman/type.go
package confman

import (
	"fmt"
	"math"
	"strconv"
)

// GetString retrieves a string value using the path.
// Scalars of other kinds are formatted; null reads as an empty string.
func (c *Config) GetString(path string) (string, error) {
	val, found := navigateToPath(c.tree, path)
	if !found {
		return "", fmt.Errorf("path not found: %s", path)
	}

	switch val.Kind() {
	case KindString:
		return val.s, nil
	case KindNull:
		return "", nil // Treat null as empty string for convenience
	case KindInt:
		return strconv.FormatInt(val.i, 10), nil
	case KindFloat:
		return strconv.FormatFloat(val.f, 'f', -1, 64), nil
	case KindBool:
		return strconv.FormatBool(val.b), nil
	default:
		return "", fmt.Errorf("cannot convert %s to string for path %s", val.Kind(), path)
	}
}

// GetInt64 retrieves an int64 value using the path.
// Attempts conversion from floats (truncated), parsable strings, and booleans.
func (c *Config) GetInt64(path string) (int64, error) {
	val, found := navigateToPath(c.tree, path)
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}

	switch val.Kind() {
	case KindInt:
		return val.i, nil
	case KindFloat:
		if math.IsNaN(val.f) || val.f >= math.MaxInt64 || val.f < math.MinInt64 {
			return 0, fmt.Errorf("cannot convert float %v to int64 for path %s: out of range", val.f, path)
		}
		// Truncate float to int
		return int64(val.f), nil
	case KindString:
		s := val.s
		i, err := strconv.ParseInt(s, 0, 64) // Base 0 for auto-detection (e.g., "0xFF")
		if err == nil {
			return i, nil
		}
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f), nil // Truncate
		}
		// Return the original integer parsing error if float also fails
		return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", s, path, err)
	case KindBool:
		if val.b {
			return 1, nil
		}
		return 0, nil
	case KindNull:
		return 0, fmt.Errorf("value for path %s is null, cannot convert to int64", path)
	}

	return 0, fmt.Errorf("cannot convert %s to int64 for path %s", val.Kind(), path)
}

// GetBool retrieves a boolean value using the path.
// Numbers convert as 0=false, non-zero=true; strings follow Coerce's spellings.
func (c *Config) GetBool(path string) (bool, error) {
	val, found := navigateToPath(c.tree, path)
	if !found {
		return false, fmt.Errorf("path not found: %s", path)
	}

	switch val.Kind() {
	case KindBool:
		return val.b, nil
	case KindString:
		if b, ok := Coerce(val.s).AsBool(); ok {
			return b, nil
		}
		b, err := strconv.ParseBool(val.s)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", val.s, path, err)
		}
		return b, nil
	// Numeric interpretation: 0 is false, non-zero is true
	case KindInt:
		return val.i != 0, nil
	case KindFloat:
		return val.f != 0, nil
	case KindNull:
		return false, fmt.Errorf("value for path %s is null, cannot convert to bool", path)
	}

	return false, fmt.Errorf("cannot convert %s to bool for path %s", val.Kind(), path)
}

// GetFloat64 retrieves a float64 value using the path.
// Attempts conversion from integers, parsable strings, and booleans.
func (c *Config) GetFloat64(path string) (float64, error) {
	val, found := navigateToPath(c.tree, path)
	if !found {
		return 0.0, fmt.Errorf("path not found: %s", path)
	}

	switch val.Kind() {
	case KindFloat:
		return val.f, nil
	case KindInt:
		return float64(val.i), nil
	case KindString:
		f, err := strconv.ParseFloat(val.s, 64)
		if err != nil {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", val.s, path, err)
		}
		return f, nil
	case KindBool:
		if val.b {
			return 1.0, nil
		}
		return 0.0, nil
	case KindNull:
		return 0.0, fmt.Errorf("value for path %s is null, cannot convert to float64", path)
	}

	return 0.0, fmt.Errorf("cannot convert %s to float64 for path %s", val.Kind(), path)
}

// GetStringSlice retrieves a sequence of scalars as strings. A single string
// is split on commas.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	val, found := navigateToPath(c.tree, path)
	if !found {
		return nil, fmt.Errorf("path not found: %s", path)
	}

	switch val.Kind() {
	case KindSequence:
		out := make([]string, 0, len(val.seq))
		for i, e := range val.seq {
			if !e.IsScalar() {
				return nil, fmt.Errorf("element %d of %s is %s, not a scalar", i, path, e.Kind())
			}
			if s, ok := e.AsString(); ok {
				out = append(out, s)
				continue
			}
			out = append(out, e.String())
		}
		return out, nil
	case KindString:
		if val.s == "" {
			return []string{}, nil
		}
		return splitList(val.s), nil
	}

	return nil, fmt.Errorf("cannot convert %s to []string for path %s", val.Kind(), path)
}
