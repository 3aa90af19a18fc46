// FILE: lixenwraith/confman/config.go
package confman

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Config is the immutable result of one load cycle. Nested mappings are
// addressed with dot-separated paths ("server.port") or explicit key lists.
// Composite values handed out by accessors are copies, so a Config can be
// shared between goroutines without locking.
type Config struct {
	tree *Mapping
}

// newConfig takes a private copy of tree.
func newConfig(tree *Mapping) *Config {
	return &Config{tree: tree.Clone()}
}

// NewConfig wraps a copy of tree without running any source or validation.
func NewConfig(tree *Mapping) *Config {
	if tree == nil {
		tree = NewMapping()
	}
	return newConfig(tree)
}

// Get retrieves the value at a dot-separated path. An empty path returns the
// whole tree.
func (c *Config) Get(path string) (Value, bool) {
	v, ok := navigateToPath(c.tree, path)
	if !ok {
		return Value{}, false
	}
	return v.Clone(), true
}

// Lookup retrieves a value by explicit keys, which may themselves contain dots.
func (c *Config) Lookup(keys ...string) (Value, bool) {
	v, ok := lookupSegments(c.tree, keys)
	if !ok {
		return Value{}, false
	}
	return v.Clone(), true
}

// Section wraps the nested mapping at path as a Config.
func (c *Config) Section(path string) (*Config, bool) {
	v, ok := navigateToPath(c.tree, path)
	if !ok {
		return nil, false
	}
	m, isMap := v.AsMapping()
	if !isMap {
		return nil, false
	}
	// Subtrees are never mutated, so sharing is safe
	return &Config{tree: m}, true
}

// Has reports whether path exists.
func (c *Config) Has(path string) bool {
	_, ok := navigateToPath(c.tree, path)
	return ok
}

// Keys returns the top-level keys in merge order.
func (c *Config) Keys() []string { return c.tree.Keys() }

// Len returns the number of top-level keys.
func (c *Config) Len() int { return c.tree.Len() }

// Tree returns a deep copy of the configuration tree.
func (c *Config) Tree() *Mapping { return c.tree.Clone() }

// ToMap returns the configuration as plain Go values.
func (c *Config) ToMap() map[string]any { return c.tree.ToMap() }

// Flatten returns every leaf keyed by its dot-separated path. Sequences and
// empty mappings are leaves.
func (c *Config) Flatten() map[string]any { return flattenMapping(c.tree, "") }

// Paths returns the flattened paths in sorted order.
func (c *Config) Paths() []string {
	return slices.Sorted(maps.Keys(c.Flatten()))
}

// Require checks that every path exists and is not null. All missing paths are
// reported, each as a *ValidationError.
func (c *Config) Require(paths ...string) error {
	var errs []error
	for _, path := range paths {
		v, ok := navigateToPath(c.tree, path)
		switch {
		case !ok:
			errs = append(errs, &ValidationError{Field: path, Message: "required value is missing"})
		case v.IsNull():
			errs = append(errs, &ValidationError{Field: path, Message: "required value is null"})
		}
	}
	return errors.Join(errs...)
}

// Encode serializes the configuration with the default registry.
func (c *Config) Encode(format Format) ([]byte, error) {
	return c.EncodeWith(DefaultRegistry(), format)
}

// EncodeWith serializes the configuration with the codecs of r.
func (c *Config) EncodeWith(r *Registry, format Format) ([]byte, error) {
	return r.Serialize(format, c.tree)
}

// Debug returns every leaf one per line in path order.
func (c *Config) Debug() string {
	flat := c.Flatten()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	fmt.Fprintf(&b, "Top-level keys: %d\n", c.tree.Len())
	b.WriteString("Values:\n")

	for _, path := range slices.Sorted(maps.Keys(flat)) {
		fmt.Fprintf(&b, "  %s: %v\n", path, flat[path])
	}

	return b.String()
}

// previewKeys bounds the number of keys shown by String.
const previewKeys = 5

// String shows at most five top-level keys.
func (c *Config) String() string {
	keys := c.tree.Keys()
	shown := keys
	if len(keys) > previewKeys {
		shown = keys[:previewKeys]
	}
	suffix := ""
	if len(keys) > previewKeys {
		suffix = ", ..."
	}
	return fmt.Sprintf("Config(keys=[%s%s])", strings.Join(shown, ", "), suffix)
}
