// FILE: lixenwraith/confman/codec_yaml.go
package confman

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// yamlCodec reads a single YAML document through yaml.Node so mapping order
// survives, and only plain data is constructed: application tags are refused.
// Writes use block style with keys in tree order.
type yamlCodec struct{}

func (yamlCodec) Parse(content []byte) (*Mapping, error) {
	var doc yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewMapping(), nil
		}
		return nil, malformed(FormatYAML, err)
	}

	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = fmt.Errorf("expected a single document, found another at line %d", extra.Line)
		}
		return nil, malformed(FormatYAML, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return NewMapping(), nil
		}
		root = root.Content[0]
	}

	r := &yamlReader{}
	v, err := r.value(root, 0)
	if err != nil {
		return nil, malformed(FormatYAML, err)
	}

	switch v.Kind() {
	case KindNull:
		return NewMapping(), nil
	case KindMapping:
		m, _ := v.AsMapping()
		return m, nil
	}
	return nil, notMapping(FormatYAML, v.Kind().String())
}

// maxYAMLNodes caps how many nodes alias expansion may produce.
const maxYAMLNodes = 1 << 20

type yamlReader struct {
	nodes int
}

func (r *yamlReader) value(node *yaml.Node, depth int) (Value, error) {
	if depth > MaxDepth {
		return Value{}, fmt.Errorf("nesting exceeds %d levels", MaxDepth)
	}
	r.nodes++
	if r.nodes > maxYAMLNodes {
		return Value{}, fmt.Errorf("document expands to more than %d nodes", maxYAMLNodes)
	}

	if node.Kind != yaml.AliasNode {
		if err := checkYAMLTag(node); err != nil {
			return Value{}, err
		}
	}

	switch node.Kind {
	case yaml.AliasNode:
		return r.value(node.Alias, depth+1)

	case yaml.MappingNode:
		m := NewMapping()
		if err := r.mappingInto(m, node, depth); err != nil {
			return Value{}, err
		}
		return Map(m), nil

	case yaml.SequenceNode:
		seq := make([]Value, 0, len(node.Content))
		for i, item := range node.Content {
			v, err := r.value(item, depth+1)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			seq = append(seq, v)
		}
		return Sequence(seq...), nil

	case yaml.ScalarNode:
		return yamlScalar(node)
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
}

// mappingInto fills m from a mapping node. Merge keys (<<) contribute
// only keys the mapping does not define itself.
func (r *yamlReader) mappingInto(m *Mapping, node *yaml.Node, depth int) error {
	var merges []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			merges = append(merges, valueNode)
			continue
		}
		if keyNode.Kind == yaml.AliasNode {
			keyNode = keyNode.Alias
		}
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		if err := checkYAMLTag(keyNode); err != nil {
			return err
		}
		v, err := r.value(valueNode, depth+1)
		if err != nil {
			return fmt.Errorf("%s: %w", keyNode.Value, err)
		}
		m.Set(keyNode.Value, v)
	}

	for _, merge := range merges {
		sources := []*yaml.Node{merge}
		if merge.Kind == yaml.SequenceNode {
			sources = merge.Content
		}
		for _, src := range sources {
			v, err := r.value(src, depth+1)
			if err != nil {
				return err
			}
			sm, ok := v.AsMapping()
			if !ok {
				return fmt.Errorf("line %d: merge value must be a mapping", merge.Line)
			}
			sm.Range(func(k string, e Value) bool {
				if !m.Has(k) {
					m.Set(k, e)
				}
				return true
			})
		}
	}
	return nil
}

func yamlScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			// Out of int64 range; keep the magnitude as a float
			var f float64
			if ferr := node.Decode(&f); ferr != nil {
				return Value{}, err
			}
			return Float(f), nil
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	}
	// !!str, !!timestamp and !!binary keep their text
	return String(node.Value), nil
}

// yamlCoreTags lists the tags that describe plain data.
var yamlCoreTags = map[string]bool{
	"!!null":      true,
	"!!bool":      true,
	"!!int":       true,
	"!!float":     true,
	"!!str":       true,
	"!!timestamp": true,
	"!!binary":    true,
	"!!merge":     true,
	"!!map":       true,
	"!!seq":       true,
}

func checkYAMLTag(node *yaml.Node) error {
	if tag := node.ShortTag(); !yamlCoreTags[tag] {
		return fmt.Errorf("line %d: tag %s is not plain data", node.Line, tag)
	}
	return nil
}

func (yamlCodec) Serialize(m *Mapping) ([]byte, error) {
	node, err := yamlNode(Map(m), "")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(node); err != nil {
		return nil, serializeFailed(FormatYAML, "", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, serializeFailed(FormatYAML, "", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(v Value, key string) (*yaml.Node, error) {
	switch v.Kind() {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case KindBool:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}, nil
	case KindInt:
		i, _ := v.AsInt()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(i, 10)}, nil
	case KindFloat:
		f, _ := v.AsFloat()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(f)}, nil
	case KindString:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}, nil
	case KindSequence:
		seq, _ := v.AsSequence()
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, e := range seq {
			child, err := yamlNode(e, fmt.Sprintf("%s[%d]", key, i))
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case KindMapping:
		mm, _ := v.AsMapping()
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		mm.Range(func(k string, e Value) bool {
			var child *yaml.Node
			child, err = yamlNode(e, joinKey(key, k))
			if err != nil {
				return false
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child)
			return true
		})
		return node, err
	}
	return nil, serializeFailed(FormatYAML, key, fmt.Errorf("unknown value kind %s", v.Kind()))
}

func yamlFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	return formatFloat(f)
}
