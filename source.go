// FILE: lixenwraith/confman/source.go
package confman

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Source provides one configuration fragment. Load reports ok=false when the
// source has nothing to contribute (for example an optional file that does not
// exist). A Source is immutable once constructed and Load only reads.
//
// Load may return any Value kind; the Manager rejects anything but a mapping.
type Source interface {
	Name() string
	Load() (v Value, ok bool, err error)
}

// MapSource serves a copy of a caller-supplied mapping.
type MapSource struct {
	name string
	data *Mapping
}

// NewMapSource copies data; later changes to data do not affect the source.
func NewMapSource(data *Mapping) *MapSource {
	return &MapSource{name: "map", data: data.Clone()}
}

// NewMapSourceFrom converts a Go map into a MapSource. Keys are ordered alphabetically.
func NewMapSourceFrom(data map[string]any) (*MapSource, error) {
	m, err := MappingFrom(data)
	if err != nil {
		return nil, fmt.Errorf("invalid map source: %w", err)
	}
	return &MapSource{name: "map", data: m}, nil
}

// Named returns a copy of the source reporting name in errors and logs.
func (s *MapSource) Named(name string) *MapSource {
	return &MapSource{name: name, data: s.data}
}

func (s *MapSource) Name() string { return s.name }

// Load always succeeds with a fresh copy of the mapping.
func (s *MapSource) Load() (Value, bool, error) {
	return Map(s.data.Clone()), true, nil
}

// StructSource serves default values taken from a struct. Field names come from
// `toml` tags (or the field name), nested structs become nested mappings, and
// fields are kept in declaration order.
type StructSource struct {
	name string
	data *Mapping
}

// NewStructSource converts structWithDefaults (a struct or non-nil struct pointer).
// Fields tagged `toml:"-"`, unexported fields and nil struct pointers are skipped.
func NewStructSource(structWithDefaults any) (*StructSource, error) {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("struct source requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("struct source requires a struct or struct pointer, got %T", structWithDefaults)
	}

	var errs []string
	data := NewMapping()
	collectFields(v, data, "", &errs, 0)

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to convert %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}

	return &StructSource{name: "struct(" + v.Type().String() + ")", data: data}, nil
}

func (s *StructSource) Name() string { return s.name }

func (s *StructSource) Load() (Value, bool, error) {
	return Map(s.data.Clone()), true, nil
}

var (
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	timeType     = reflect.TypeOf(time.Time{})
)

// isLeafStruct reports struct types that are values in their own right
// (time.Time, url.URL, net.IPNet) rather than configuration sections.
func isLeafStruct(t reflect.Type) bool {
	return t == timeType || t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

// collectFields is the recursive helper behind NewStructSource.
func collectFields(v reflect.Value, into *Mapping, fieldPath string, errs *[]string, depth int) {
	if depth > MaxDepth {
		*errs = append(*errs, fmt.Sprintf("%s: nesting exceeds %d levels", fieldPath, MaxDepth))
		return
	}

	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		// Get tag value or use field name
		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
			// Other options like 'omitempty' do not apply to defaults
		}

		// Handle nested structs recursively, including pointers to structs
		fieldType := fieldValue.Type()
		isStruct := fieldValue.Kind() == reflect.Struct && !isLeafStruct(fieldType)
		isPtrToStruct := fieldValue.Kind() == reflect.Ptr && fieldType.Elem().Kind() == reflect.Struct &&
			!isLeafStruct(fieldType.Elem())

		if isStruct || isPtrToStruct {
			nestedValue := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					// Nil pointers carry no defaults
					continue
				}
				nestedValue = fieldValue.Elem()
			}

			section := NewMapping()
			collectFields(nestedValue, section, fieldPath+field.Name+".", errs, depth+1)
			into.Set(key, Map(section))
			continue
		}

		value, err := FromAny(fieldValue.Interface())
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("field %s%s: %v", fieldPath, field.Name, err))
			continue
		}
		into.Set(key, value)
	}
}
