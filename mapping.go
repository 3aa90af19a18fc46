// FILE: lixenwraith/confman/mapping.go
package confman

import (
	"slices"
	"strings"
)

// MaxDepth bounds the nesting of configuration trees accepted by parsers,
// merge inputs and serializers.
const MaxDepth = 100

// Mapping is an insertion-ordered map from string keys to Values.
// The zero value is not usable; create mappings with NewMapping.
type Mapping struct {
	keys   []string
	values map[string]Value
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (m *Mapping) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key if present.
func (m *Mapping) Delete(key string) {
	if _, exists := m.values[key]; !exists {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Mapping) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	out := &Mapping{
		keys:   make([]string, 0, m.Len()),
		values: make(map[string]Value, m.Len()),
	}
	m.Range(func(k string, v Value) bool {
		out.keys = append(out.keys, k)
		out.values[k] = v.Clone()
		return true
	})
	return out
}

// Equal reports whether both mappings hold equal values under the same keys.
// Key order is not compared.
func (m *Mapping) Equal(o *Mapping) bool {
	if m.Len() != o.Len() {
		return false
	}
	equal := true
	m.Range(func(k string, v Value) bool {
		ov, ok := o.Get(k)
		equal = ok && v.Equal(ov)
		return equal
	})
	return equal
}

// ToMap converts m into a map[string]any of plain Go values.
func (m *Mapping) ToMap() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v Value) bool {
		out[k] = v.Interface()
		return true
	})
	return out
}

func (m *Mapping) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	m.Range(func(k string, v Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v.String())
		return true
	})
	b.WriteByte('}')
	return b.String()
}

// MappingFrom converts a Go map into a Mapping with sorted keys.
func MappingFrom(data map[string]any) (*Mapping, error) {
	v, err := FromAny(data)
	if err != nil {
		return nil, err
	}
	m, _ := v.AsMapping()
	return m, nil
}

// checkDepth walks m and fails when nesting exceeds MaxDepth. Trees containing a
// cycle always exceed the bound, so a nil result also proves m is acyclic.
func checkDepth(m *Mapping) error {
	return checkValueDepth(Map(m), 0)
}

func checkValueDepth(v Value, depth int) error {
	if depth > MaxDepth {
		return ErrMaxDepth
	}
	switch v.kind {
	case KindMapping:
		var err error
		v.m.Range(func(_ string, e Value) bool {
			err = checkValueDepth(e, depth+1)
			return err == nil
		})
		return err
	case KindSequence:
		for _, e := range v.seq {
			if err := checkValueDepth(e, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
