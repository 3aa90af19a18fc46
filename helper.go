// FILE: lixenwraith/confman/helper.go
package confman

import (
	"os"
	"path/filepath"
	"strings"
)

// flattenMapping converts a nested mapping to a flat map[string]any with dot-notation paths.
// Sequences and scalars are leaves.
func flattenMapping(nested *Mapping, prefix string) map[string]any {
	flat := make(map[string]any)

	nested.Range(func(key string, value Value) bool {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		if sub, isMap := value.AsMapping(); isMap && sub.Len() > 0 {
			for subPath, subValue := range flattenMapping(sub, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value.Interface()
		}
		return true
	})

	return flat
}

// setNestedValue sets a value in a nested mapping following segments.
// It creates intermediate mappings if they don't exist.
// If a segment exists but is not a mapping, it is overwritten by a new mapping.
func setNestedValue(nested *Mapping, segments []string, value Value) {
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, exists := current.Get(segment)
		if nextMap, isMap := next.AsMapping(); exists && isMap {
			current = nextMap
			continue
		}
		newMap := NewMapping()
		current.Set(segment, Map(newMap))
		current = newMap
	}

	current.Set(segments[len(segments)-1], value)
}

// navigateToPath walks a dot-separated path through nested mappings.
func navigateToPath(nested *Mapping, path string) (Value, bool) {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return Map(nested), true
	}
	return lookupSegments(nested, strings.Split(path, "."))
}

func lookupSegments(nested *Mapping, segments []string) (Value, bool) {
	current := Map(nested)
	for _, segment := range segments {
		m, ok := current.AsMapping()
		if !ok {
			return Value{}, false
		}
		current, ok = m.Get(segment)
		if !ok {
			return Value{}, false
		}
	}
	return current, true
}

// isValidKeySegment checks if a single path segment is a valid bare key part.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	// Bare keys are sequences of ASCII letters, ASCII digits, underscores, and dashes (A-Za-z0-9_-).
	if strings.ContainsRune(s, '.') {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}

// expandHome resolves a leading "~" to the current user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// splitList splits a comma-separated list, trimming spaces around items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
