// FILE: lixenwraith/confman/gen_test.go
package confman

import (
	"strings"

	"pgregory.net/rapid"
)

// treeGen describes which value kinds a generated tree may contain.
type treeGen struct {
	null        bool // allow null leaves
	mapsInLists bool // allow mappings inside sequences
	maxDepth    int
}

func genKey() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z][a-z0-9_]{0,6}`)
}

// textPieces are joined into generated strings. They cover characters that
// codecs quote, escape or treat as syntax.
var textPieces = []string{
	"a", "Zz", "7", "x_y", "-", ".", " ", "  ", "\n",
	`"`, "'", ";", "#", "=", ":", "[", "]", "{", "}", ",", `\`, "%", "`",
	"é", "ß", "日本", "🙂",
	"true", "null", "1", "0.5",
}

func genText() *rapid.Generator[string] {
	piece := rapid.SampledFrom(textPieces)
	joined := rapid.Custom(func(t *rapid.T) string {
		return strings.Join(rapid.SliceOfN(piece, 0, 6).Draw(t, "pieces"), "")
	})
	quoted := rapid.Custom(func(t *rapid.T) string {
		q := rapid.SampledFrom([]string{`"`, "'"}).Draw(t, "quote")
		return q + joined.Draw(t, "inner") + q
	})
	return rapid.OneOf(joined, quoted)
}

func (g treeGen) scalar(t *rapid.T) Value {
	kinds := 4
	if g.null {
		kinds = 5
	}
	switch rapid.IntRange(0, kinds-1).Draw(t, "scalarKind") {
	case 0:
		return String(genText().Draw(t, "string"))
	case 1:
		return Int(rapid.Int64().Draw(t, "int"))
	case 2:
		return Float(rapid.Float64Range(-1e12, 1e12).Draw(t, "float"))
	case 3:
		return Bool(rapid.Bool().Draw(t, "bool"))
	default:
		return Null()
	}
}

func (g treeGen) value(t *rapid.T, depth int, inList bool) Value {
	if depth >= g.maxDepth {
		return g.scalar(t)
	}
	switch rapid.IntRange(0, 5).Draw(t, "kind") {
	case 0:
		n := rapid.IntRange(0, 3).Draw(t, "len")
		seq := make([]Value, n)
		for i := range seq {
			seq[i] = g.value(t, depth+1, true)
		}
		return Sequence(seq...)
	case 1:
		if inList && !g.mapsInLists {
			return g.scalar(t)
		}
		return Map(g.mapping(t, depth+1))
	default:
		return g.scalar(t)
	}
}

func (g treeGen) mapping(t *rapid.T, depth int) *Mapping {
	m := NewMapping()
	n := rapid.IntRange(0, 4).Draw(t, "size")
	for range n {
		m.Set(genKey().Draw(t, "key"), g.value(t, depth, false))
	}
	return m
}

// Mapping returns a generator of mapping trees.
func (g treeGen) Mapping() *rapid.Generator[*Mapping] {
	return rapid.Custom(func(t *rapid.T) *Mapping {
		return g.mapping(t, 0)
	})
}

// iniTree generates the flat model INI can hold: sections of scalar options
// whose text is writable on one line and coerces back to the same value.
func iniTree() *rapid.Generator[*Mapping] {
	word := rapid.Map(genText(), func(s string) string {
		return strings.TrimSpace(strings.NewReplacer("\n", "", "`", "").Replace(s))
	}).Filter(func(s string) bool {
		if iniLiteral(s) != nil {
			return false
		}
		_, ok := Coerce(s).AsString()
		return ok
	})
	return rapid.Custom(func(t *rapid.T) *Mapping {
		m := NewMapping()
		for range rapid.IntRange(0, 3).Draw(t, "sections") {
			section := NewMapping()
			for range rapid.IntRange(0, 4).Draw(t, "options") {
				var v Value
				switch rapid.IntRange(0, 3).Draw(t, "kind") {
				case 0:
					v = String(word.Draw(t, "word"))
				case 1:
					v = Int(rapid.Int64().Draw(t, "int"))
				case 2:
					v = Float(rapid.Float64Range(-1e6, 1e6).Draw(t, "float"))
				default:
					v = Bool(rapid.Bool().Draw(t, "bool"))
				}
				section.Set(genKey().Draw(t, "option"), v)
			}
			m.Set("s_"+genKey().Draw(t, "section"), Map(section))
		}
		return m
	})
}
