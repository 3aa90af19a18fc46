// FILE: lixenwraith/confman/coerce.go
package confman

import (
	"strconv"
	"strings"
)

// Coerce turns untyped text from environment variables, INI files and command-line
// arguments into a typed scalar. Rules apply in order and the first match wins:
//
//  1. "true", "yes", "on" (any case, surrounding space ignored) are true;
//     "false", "no", "off" are false
//  2. a base-10 integer with an optional sign becomes an integer
//  3. a floating-point literal becomes a float
//  4. anything else is returned unchanged as a string
//
// Numbers may group digits with single underscores between digits, so
// "1_000" is the integer 1000 while "_1" and "1__0" stay strings.
func Coerce(raw string) Value {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "on":
		return Bool(true)
	case "false", "no", "off":
		return Bool(false)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return String(raw)
	}

	number, ok := stripDigitSeparators(trimmed)
	if !ok {
		return String(raw)
	}

	if i, err := strconv.ParseInt(number, 10, 64); err == nil {
		return Int(i)
	}

	// Hex floats are a Go-ism; keep them as text
	if !strings.ContainsAny(number, "xX") {
		if f, err := strconv.ParseFloat(number, 64); err == nil {
			return Float(f)
		}
	}

	return String(raw)
}

// stripDigitSeparators removes underscores that sit between two decimal
// digits. It fails if any other underscore is present.
func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
