// FILE: lixenwraith/confman/codec_toml.go
package confman

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// tomlCodec reads and writes TOML with BurntSushi/toml. Key order on read
// follows the document; the encoder writes keys sorted with tables last.
type tomlCodec struct{}

func (tomlCodec) Parse(content []byte) (*Mapping, error) {
	raw := make(map[string]any)
	md, err := toml.Decode(string(content), &raw)
	if err != nil {
		return nil, malformed(FormatTOML, err)
	}

	order := make(map[string]int)
	for i, key := range md.Keys() {
		joined := strings.Join(key, "\x00")
		if _, seen := order[joined]; !seen {
			order[joined] = i
		}
	}

	m, err := tomlTable(raw, nil, order, 0)
	if err != nil {
		return nil, malformed(FormatTOML, err)
	}
	return m, nil
}

func tomlTable(raw map[string]any, path []string, order map[string]int, depth int) (*Mapping, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("nesting exceeds %d levels", MaxDepth)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	position := func(k string) int {
		if i, ok := order[strings.Join(append(slices.Clone(path), k), "\x00")]; ok {
			return i
		}
		return math.MaxInt
	}
	slices.SortStableFunc(keys, func(a, b string) int {
		pa, pb := position(a), position(b)
		if pa != pb {
			if pa < pb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	m := NewMapping()
	for _, k := range keys {
		v, err := tomlValue(raw[k], append(slices.Clone(path), k), order, depth+1)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func tomlValue(x any, path []string, order map[string]int, depth int) (Value, error) {
	switch t := x.(type) {
	case map[string]any:
		m, err := tomlTable(t, path, order, depth)
		if err != nil {
			return Value{}, err
		}
		return Map(m), nil
	case []map[string]any:
		seq := make([]Value, 0, len(t))
		for _, item := range t {
			m, err := tomlTable(item, path, order, depth+1)
			if err != nil {
				return Value{}, err
			}
			seq = append(seq, Map(m))
		}
		return Sequence(seq...), nil
	case []any:
		seq := make([]Value, 0, len(t))
		for _, item := range t {
			v, err := tomlValue(item, path, order, depth+1)
			if err != nil {
				return Value{}, err
			}
			seq = append(seq, v)
		}
		return Sequence(seq...), nil
	case string:
		return String(t), nil
	case int64:
		return Int(t), nil
	case float64:
		return Float(t), nil
	case bool:
		return Bool(t), nil
	case time.Time:
		return String(formatTOMLTime(t)), nil
	}
	return Value{}, fmt.Errorf("unsupported TOML value %T at '%s'", x, strings.Join(path, "."))
}

// formatTOMLTime renders TOML date-times as text. Local date, time and
// date-time values keep their local shape; offset date-times use RFC 3339.
func formatTOMLTime(t time.Time) string {
	switch t.Location().String() {
	case "date-local":
		return t.Format("2006-01-02")
	case "time-local":
		return t.Format("15:04:05.999999999")
	case "datetime-local":
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}

func (tomlCodec) Serialize(m *Mapping) ([]byte, error) {
	native, err := tomlNativeTable(m, "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(native); err != nil {
		return nil, serializeFailed(FormatTOML, "", err)
	}
	return buf.Bytes(), nil
}

func tomlNativeTable(m *Mapping, prefix string) (map[string]any, error) {
	out := make(map[string]any, m.Len())
	var err error
	m.Range(func(k string, v Value) bool {
		var native any
		native, err = tomlNative(v, joinKey(prefix, k))
		if err != nil {
			return false
		}
		out[k] = native
		return true
	})
	return out, err
}

// tomlNative converts v for the encoder. TOML has no null.
func tomlNative(v Value, key string) (any, error) {
	switch v.Kind() {
	case KindNull:
		return nil, serializeFailed(FormatTOML, key, fmt.Errorf("TOML cannot represent null"))
	case KindMapping:
		sub, _ := v.AsMapping()
		return tomlNativeTable(sub, key)
	case KindSequence:
		seq, _ := v.AsSequence()
		out := make([]any, len(seq))
		for i, e := range seq {
			native, err := tomlNative(e, fmt.Sprintf("%s[%d]", key, i))
			if err != nil {
				return nil, err
			}
			out[i] = native
		}
		return out, nil
	default:
		return v.Interface(), nil
	}
}
