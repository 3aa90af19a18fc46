// FILE: lixenwraith/confman/value_test.go
package confman

import (
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Run("ZeroIsNull", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsNull())
		assert.Equal(t, KindNull, v.Kind())
		assert.Equal(t, "null", v.String())
	})

	t.Run("Accessors", func(t *testing.T) {
		s, ok := String("x").AsString()
		assert.True(t, ok)
		assert.Equal(t, "x", s)

		_, ok = String("1").AsInt()
		assert.False(t, ok)

		i, ok := Int(42).AsInt()
		assert.True(t, ok)
		assert.Equal(t, int64(42), i)

		f, ok := Float(1.5).AsFloat()
		assert.True(t, ok)
		assert.Equal(t, 1.5, f)

		b, ok := Bool(true).AsBool()
		assert.True(t, ok)
		assert.True(t, b)

		seq, ok := Sequence(Int(1), Int(2)).AsSequence()
		assert.True(t, ok)
		assert.Len(t, seq, 2)
	})

	t.Run("EqualIgnoresMappingOrder", func(t *testing.T) {
		a := NewMapping()
		a.Set("x", Int(1))
		a.Set("y", Int(2))
		b := NewMapping()
		b.Set("y", Int(2))
		b.Set("x", Int(1))
		assert.True(t, Map(a).Equal(Map(b)))

		b.Set("x", Float(1))
		assert.False(t, Map(a).Equal(Map(b)), "int and float never compare equal")
	})

	t.Run("NaNEqualsNaN", func(t *testing.T) {
		assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
	})

	t.Run("CloneIsDeep", func(t *testing.T) {
		inner := NewMapping()
		inner.Set("k", String("v"))
		orig := Sequence(Map(inner))

		clone := orig.Clone()
		inner.Set("k", String("changed"))

		seq, _ := clone.AsSequence()
		m, _ := seq[0].AsMapping()
		got, _ := m.Get("k")
		assert.Equal(t, String("v"), got)
	})

	t.Run("Interface", func(t *testing.T) {
		m := NewMapping()
		m.Set("list", Sequence(Int(1), Float(2.5), Null()))
		assert.Equal(t, map[string]any{"list": []any{int64(1), 2.5, nil}}, m.ToMap())
	})
}

func TestFromAny(t *testing.T) {
	t.Run("Natives", func(t *testing.T) {
		v, err := FromAny(map[string]any{
			"b":    true,
			"a":    int32(7),
			"u":    uint8(3),
			"f":    float32(0.5),
			"list": []string{"x", "y"},
			"none": nil,
		})
		require.NoError(t, err)

		m, ok := v.AsMapping()
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "f", "list", "none", "u"}, m.Keys(), "map keys are sorted")

		a, _ := m.Get("a")
		assert.Equal(t, Int(7), a)
		u, _ := m.Get("u")
		assert.Equal(t, Int(3), u)
		f, _ := m.Get("f")
		assert.Equal(t, Float(0.5), f)
		list, _ := m.Get("list")
		assert.Equal(t, Sequence(String("x"), String("y")), list)
		none, _ := m.Get("none")
		assert.True(t, none.IsNull())
	})

	t.Run("TextTypes", func(t *testing.T) {
		v, err := FromAny(30 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, String("30s"), v)

		v, err = FromAny(net.ParseIP("10.0.0.1"))
		require.NoError(t, err)
		assert.Equal(t, String("10.0.0.1"), v)

		var ip *net.IPNet
		v, err = FromAny(ip)
		require.NoError(t, err)
		assert.True(t, v.IsNull())
	})

	t.Run("Rejects", func(t *testing.T) {
		_, err := FromAny(uint64(math.MaxUint64))
		assert.Error(t, err)

		_, err = FromAny(make(chan int))
		assert.Error(t, err)

		_, err = FromAny(map[float64]any{1.5: 1})
		assert.Error(t, err)
	})
}

func TestMapping(t *testing.T) {
	t.Run("InsertionOrder", func(t *testing.T) {
		m := NewMapping()
		m.Set("z", Int(1))
		m.Set("a", Int(2))
		m.Set("z", Int(3))
		assert.Equal(t, []string{"z", "a"}, m.Keys(), "re-setting keeps position")

		m.Delete("z")
		assert.Equal(t, []string{"a"}, m.Keys())
		assert.False(t, m.Has("z"))
	})

	t.Run("NilMappingIsEmpty", func(t *testing.T) {
		var m *Mapping
		assert.Equal(t, 0, m.Len())
		_, ok := m.Get("x")
		assert.False(t, ok)
	})

	t.Run("DepthLimit", func(t *testing.T) {
		root := NewMapping()
		current := root
		for range MaxDepth + 1 {
			next := NewMapping()
			current.Set("n", Map(next))
			current = next
		}
		assert.ErrorIs(t, checkDepth(root), ErrMaxDepth)
	})

	t.Run("CycleDetected", func(t *testing.T) {
		m := NewMapping()
		m.Set("self", Map(m))
		assert.ErrorIs(t, checkDepth(m), ErrMaxDepth)
	})
}
