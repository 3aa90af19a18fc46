// FILE: lixenwraith/confman/codec_ini.go
package confman

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// iniCodec reads and writes the flat two-level INI model: section name to
// mapping of option to scalar. Values are read literally (no %(name)s
// interpolation, quotes kept) and typed with Coerce. Option names are
// case-insensitive. Options of the DEFAULT section are inherited by every
// section. Options outside a section, repeated sections and repeated options
// are malformed.
type iniCodec struct{}

func iniOptions() ini.LoadOptions {
	return ini.LoadOptions{
		InsensitiveKeys:            true,
		IgnoreInlineComment:        true,
		IgnoreContinuation:         true,
		PreserveSurroundedQuote:    true,
		AllowPythonMultilineValues: true,
	}
}

func (iniCodec) Parse(content []byte) (*Mapping, error) {
	// Keep every repeated section and option visible so they can be refused
	opts := iniOptions()
	opts.AllowNonUniqueSections = true
	opts.AllowShadows = true
	opts.AllowDuplicateShadowValues = true

	file, err := ini.LoadSources(opts, content)
	if err != nil {
		return nil, malformed(FormatINI, err)
	}

	sections := file.Sections()
	// The first section is the implicit one holding lines before any header
	if keys := sections[0].KeyStrings(); len(keys) > 0 {
		return nil, malformed(FormatINI, fmt.Errorf("option '%s' appears before any section header", keys[0]))
	}

	defaults := NewMapping()
	for _, section := range sections[1:] {
		if section.Name() != ini.DefaultSection {
			continue
		}
		for _, name := range section.KeyStrings() {
			if defaults.Has(name) {
				return nil, malformed(FormatINI, fmt.Errorf("option '%s' in section '%s' already exists", name, ini.DefaultSection))
			}
		}
		if err := iniOptionsInto(defaults, section); err != nil {
			return nil, err
		}
	}

	m := NewMapping()
	for _, section := range sections[1:] {
		name := section.Name()
		if name == ini.DefaultSection {
			continue
		}
		if m.Has(name) {
			return nil, malformed(FormatINI, fmt.Errorf("section '%s' already exists", name))
		}
		options := defaults.Clone()
		if err := iniOptionsInto(options, section); err != nil {
			return nil, err
		}
		m.Set(name, Map(options))
	}
	return m, nil
}

// iniOptionsInto copies a section's options over dst, refusing any option the
// section itself repeats.
func iniOptionsInto(dst *Mapping, section *ini.Section) error {
	for _, key := range section.Keys() {
		// Shadow listings skip empty values, so compare against the first value too
		if vals := key.ValueWithShadows(); len(vals) > 1 || (len(vals) == 1 && vals[0] != key.Value()) {
			return malformed(FormatINI, fmt.Errorf("option '%s' in section '%s' already exists", key.Name(), section.Name()))
		}
		// Value, not String: String expands %(name)s references
		dst.Set(key.Name(), Coerce(key.Value()))
	}
	return nil
}

func (iniCodec) Serialize(m *Mapping) ([]byte, error) {
	file := ini.Empty(iniOptions())

	var err error
	m.Range(func(sectionName string, sectionValue Value) bool {
		options, ok := sectionValue.AsMapping()
		if !ok {
			err = &Error{Kind: ErrNonMappingTopLevel, Op: "serialize", Format: FormatINI, Key: sectionName,
				Err: fmt.Errorf("INI root must map section names to mappings, found %s", sectionValue.Kind())}
			return false
		}

		var section *ini.Section
		section, err = file.NewSection(sectionName)
		if err != nil {
			err = serializeFailed(FormatINI, sectionName, err)
			return false
		}

		options.Range(func(option string, v Value) bool {
			keyPath := sectionName + "." + option
			var text string
			text, err = iniScalar(v, keyPath)
			if err != nil {
				return false
			}
			if _, err = section.NewKey(option, text); err != nil {
				err = serializeFailed(FormatINI, keyPath, err)
				return false
			}
			return true
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, serializeFailed(FormatINI, "", err)
	}
	return buf.Bytes(), nil
}

// iniScalar renders an option value. Only strings, integers, floats and
// booleans fit the flat model; anything else is rejected, never stringified.
func iniScalar(v Value, keyPath string) (string, error) {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()
		if err := iniLiteral(s); err != nil {
			return "", serializeFailed(FormatINI, keyPath, err)
		}
		return s, nil
	case KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), nil
	case KindFloat:
		f, _ := v.AsFloat()
		return formatFloat(f), nil
	case KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	}
	return "", &Error{
		Kind:   ErrNonScalarValue,
		Op:     "serialize",
		Format: FormatINI,
		Key:    keyPath,
		Err: fmt.Errorf("cannot dump %s value at '%s' to INI; INI is limited to flat key/value pairs, use JSON, TOML or YAML for nested structures",
			v.Kind(), keyPath),
	}
}

// iniLiteral reports why s cannot be written as a single unquoted option
// line that reads back unchanged.
func iniLiteral(s string) error {
	switch {
	case strings.ContainsAny(s, "\r\n"):
		return errors.New("line breaks cannot be written to an INI option")
	case strings.TrimSpace(s) != s:
		return errors.New("leading or trailing whitespace would be lost")
	case strings.Contains(s, "`"), strings.HasPrefix(s, `"""`):
		return errors.New("backticks and leading triple quotes are read as quoting")
	}
	return nil
}
