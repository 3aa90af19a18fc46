// FILE: lixenwraith/confman/codec_json.go
package confman

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"unicode/utf8"
)

// jsonCodec reads JSON preserving key order and number kinds, and writes
// pretty-printed JSON with sorted keys.
type jsonCodec struct{}

const jsonIndent = "  "

func (jsonCodec) Parse(content []byte) (*Mapping, error) {
	// encoding/json would quietly substitute U+FFFD
	if !utf8.Valid(content) {
		return nil, malformed(FormatJSON, fmt.Errorf("content is not valid UTF-8"))
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber() // Preserve integer vs float distinction

	v, err := decodeJSONValue(decoder, 0)
	if err != nil {
		return nil, malformed(FormatJSON, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, malformed(FormatJSON, fmt.Errorf("unexpected data after top-level value"))
	}

	m, ok := v.AsMapping()
	if !ok {
		return nil, notMapping(FormatJSON, v.Kind().String())
	}
	return m, nil
}

func decodeJSONValue(decoder *json.Decoder, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, fmt.Errorf("nesting exceeds %d levels", MaxDepth)
	}

	tok, err := decoder.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return Int(i), nil
		}
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %s: %w", t, err)
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '{':
			m := NewMapping()
			for decoder.More() {
				keyTok, err := decoder.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
				}
				v, err := decodeJSONValue(decoder, depth+1)
				if err != nil {
					return Value{}, fmt.Errorf("%s: %w", key, err)
				}
				m.Set(key, v)
			}
			if _, err := decoder.Token(); err != nil { // closing '}'
				return Value{}, err
			}
			return Map(m), nil
		case '[':
			seq := []Value{}
			for decoder.More() {
				v, err := decodeJSONValue(decoder, depth+1)
				if err != nil {
					return Value{}, fmt.Errorf("[%d]: %w", len(seq), err)
				}
				seq = append(seq, v)
			}
			if _, err := decoder.Token(); err != nil { // closing ']'
				return Value{}, err
			}
			return Sequence(seq...), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func (jsonCodec) Serialize(m *Mapping) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, Map(m), "", 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, v Value, key string, level int) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case KindFloat:
		f, _ := v.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return serializeFailed(FormatJSON, key, fmt.Errorf("JSON cannot represent %v", f))
		}
		buf.WriteString(formatFloat(f))
	case KindString:
		s, _ := v.AsString()
		writeJSONString(buf, s)
	case KindSequence:
		seq, _ := v.AsSequence()
		if len(seq) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, e := range seq {
			writeIndent(buf, level+1)
			if err := writeJSONValue(buf, e, fmt.Sprintf("%s[%d]", key, i), level+1); err != nil {
				return err
			}
			if i < len(seq)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, level)
		buf.WriteByte(']')
	case KindMapping:
		mm, _ := v.AsMapping()
		if mm.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		keys := mm.Keys()
		slices.Sort(keys)
		buf.WriteString("{\n")
		for i, k := range keys {
			e, _ := mm.Get(k)
			writeIndent(buf, level+1)
			writeJSONString(buf, k)
			buf.WriteString(": ")
			if err := writeJSONValue(buf, e, joinKey(key, k), level+1); err != nil {
				return err
			}
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeIndent(buf, level)
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
}

func writeIndent(buf *bytes.Buffer, level int) {
	for range level {
		buf.WriteString(jsonIndent)
	}
}
