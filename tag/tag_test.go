package tag

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePayload(t *testing.T, tg Tag) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tg.Write(NewWriter(&buf, Strict)))
	return buf.Bytes()
}

func decodePayload(t *testing.T, id ID, data []byte, policy Policy) (Tag, error) {
	t.Helper()
	return Default.Read(id, NewReader(bytes.NewReader(data), WithPolicy(policy)))
}

func mustList(t *testing.T, elems ...Tag) *ListTag {
	t.Helper()
	l, err := NewList(elems...)
	require.NoError(t, err)
	return l
}

func mustSet(t *testing.T, elems ...Tag) *SetTag {
	t.Helper()
	s, err := NewSet(elems...)
	require.NoError(t, err)
	return s
}

func TestRoundTrip(t *testing.T) {
	nested := NewCompound().
		Put("inner", StringTag("deep")).
		Put("flag", BooleanTag(true))

	tests := []struct {
		name string
		tag  Tag
	}{
		{"empty", EmptyTag{}},
		{"byte zero", ByteTag(0)},
		{"byte min", ByteTag(math.MinInt8)},
		{"byte max", ByteTag(math.MaxInt8)},
		{"short min", ShortTag(math.MinInt16)},
		{"short max", ShortTag(math.MaxInt16)},
		{"int negative", IntTag(-42)},
		{"int min", IntTag(math.MinInt32)},
		{"int max", IntTag(math.MaxInt32)},
		{"long min", LongTag(math.MinInt64)},
		{"long max", LongTag(math.MaxInt64)},
		{"float", FloatTag(-1.5)},
		{"float nan", FloatTag(float32(math.NaN()))},
		{"double", DoubleTag(math.MaxFloat64)},
		{"double inf", DoubleTag(math.Inf(-1))},
		{"boolean true", BooleanTag(true)},
		{"boolean false", BooleanTag(false)},
		{"char", CharTag('§')},
		{"char max", CharTag(math.MaxUint16)},
		{"string empty", StringTag("")},
		{"string unicode", StringTag("José §a 日本")},
		{"string max", StringTag(strings.Repeat("x", math.MaxUint16))},
		{"uuid", UuidTag(uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))},
		{"uuid nil", UuidTag(uuid.Nil)},
		{"list", mustList(t, IntTag(1), IntTag(2), IntTag(3))},
		{"list of compounds", mustList(t, nested, NewCompound().Put("x", IntTag(1)))},
		{"set", mustSet(t, StringTag("a"), StringTag("b"))},
		{"compound", NewCompound().Put("a", LongTag(1)).Put("nested", nested)},
		{"compound empty", NewCompound()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := encodePayload(t, tc.tag)
			got, err := decodePayload(t, tc.tag.ID(), data, Strict)
			require.NoError(t, err)
			assert.True(t, tc.tag.Equal(got), "want %s, got %s", tc.tag, got)
			assert.Equal(t, Hash(tc.tag), Hash(got))
		})
	}
}

func TestPrimitiveWireLayout(t *testing.T) {
	assert.Equal(t, []byte{0x80}, encodePayload(t, ByteTag(math.MinInt8)))
	assert.Equal(t, []byte{0x01, 0x02}, encodePayload(t, ShortTag(0x0102)))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x10}, encodePayload(t, IntTag(16)))
	assert.Equal(t, []byte{0x00, 0x02, 'h', 'i'}, encodePayload(t, StringTag("hi")))
	assert.Equal(t, []byte{0x00, 0xa7}, encodePayload(t, CharTag('§')))

	list := encodePayload(t, mustList(t, ByteTag(7), ByteTag(8)))
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x07, 0x08}, list)

	compound := encodePayload(t, NewCompound().Put("k", ByteTag(1)))
	assert.Equal(t, []byte{0x00, 0x01, 0x00, 0x01, 'k', 0x01, 0xff, 0xff}, compound)
}

func TestCompoundOrderAndOverwrite(t *testing.T) {
	c := NewCompound()
	c.Put("a", IntTag(1))
	c.Put("b", IntTag(2))
	c.Put("a", IntTag(3))

	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, int32(3), c.GetInt("a"))

	got, err := decodePayload(t, CompoundID, encodePayload(t, c), Strict)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.(*CompoundTag).Keys())
	assert.Equal(t, int32(3), got.(*CompoundTag).GetInt("a"))
}

func TestCompoundEqualIgnoresOrder(t *testing.T) {
	a := NewCompound().Put("x", IntTag(1)).Put("y", StringTag("z"))
	b := NewCompound().Put("y", StringTag("z")).Put("x", IntTag(1))
	assert.True(t, a.Equal(b))
	assert.Equal(t, Hash(a), Hash(b))

	b.Put("x", IntTag(2))
	assert.False(t, a.Equal(b))
}

func TestCompoundRemoveAndClone(t *testing.T) {
	c := NewCompound().Put("a", IntTag(1)).Put("b", IntTag(2)).Put("c", IntTag(3))
	clone := c.Clone()

	assert.True(t, c.Remove("b"))
	assert.False(t, c.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, c.Keys())
	assert.Equal(t, []string{"a", "b", "c"}, clone.Keys())
}

func TestCompoundGetters(t *testing.T) {
	id := uuid.New()
	c := NewCompound()
	require.NoError(t, c.Set("byte", int8(-3)))
	require.NoError(t, c.Set("short", int16(300)))
	require.NoError(t, c.Set("int", int32(70000)))
	require.NoError(t, c.Set("long", int64(1)<<40))
	require.NoError(t, c.Set("float", float32(1.25)))
	require.NoError(t, c.Set("double", 2.5))
	require.NoError(t, c.Set("bool", true))
	require.NoError(t, c.Set("char", uint16('&')))
	require.NoError(t, c.Set("string", "hello"))
	require.NoError(t, c.Set("uuid", id))
	require.NoError(t, c.Set("list", []string{"a", "b"}))
	require.NoError(t, c.Set("nested", map[string]any{"k": "v"}))
	require.NoError(t, c.Set("enum", "GREEN"))

	assert.Equal(t, int8(-3), c.GetByte("byte"))
	assert.Equal(t, int16(300), c.GetShort("short"))
	assert.Equal(t, int32(70000), c.GetInt("int"))
	assert.Equal(t, int64(1)<<40, c.GetLong("long"))
	assert.Equal(t, float32(1.25), c.GetFloat("float"))
	assert.Equal(t, 2.5, c.GetDouble("double"))
	assert.True(t, c.GetBoolean("bool"))
	assert.Equal(t, uint16('&'), c.GetChar("char"))
	assert.Equal(t, "hello", c.GetString("string"))
	got, ok := c.GetUUID("uuid")
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, 2, c.GetList("list").Len())
	assert.Equal(t, "v", c.GetCompound("nested").GetString("k"))
	ordinal, ok := c.GetEnum("enum", []string{"RED", "GREEN"})
	assert.True(t, ok)
	assert.Equal(t, 1, ordinal)

	// Missing keys and mismatched types fall back to defaults.
	assert.Equal(t, int32(0), c.GetInt("missing"))
	assert.Equal(t, int32(0), c.GetInt("string"))
	assert.Equal(t, uint16(' '), c.GetChar("missing"))
	assert.Equal(t, "", c.GetString("missing"))
	_, ok = c.GetUUID("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, c.GetList("missing").Len())
	assert.Equal(t, 0, c.GetSet("missing").Len())
	assert.Equal(t, 0, c.GetCompound("missing").Len())
	_, ok = c.GetEnum("enum", []string{"RED"})
	assert.False(t, ok)

	assert.Error(t, c.Set("bad", struct{}{}))
}

func TestCompoundString(t *testing.T) {
	c := NewCompound().Put("name", StringTag("José")).Put("age", IntTag(16))
	assert.Equal(t, `{name: "José", age: 16}`, c.String())
}

func TestEmptyCollection(t *testing.T) {
	t.Run("writes nothing", func(t *testing.T) {
		assert.Empty(t, encodePayload(t, &ListTag{}))
		assert.Empty(t, encodePayload(t, &SetTag{}))
	})

	t.Run("known empty consumes nothing", func(t *testing.T) {
		data := encodePayload(t, IntTag(9))
		r := NewReader(bytes.NewReader(data), WithPolicy(Strict))

		l, err := ReadListTag(r, true)
		require.NoError(t, err)
		assert.Equal(t, 0, l.Len())
		s, err := ReadSetTag(r, true)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Len())

		// The stream is untouched.
		v, err := r.ReadInt32()
		require.NoError(t, err)
		assert.Equal(t, int32(9), v)
	})

	t.Run("unknown emptiness is not supported", func(t *testing.T) {
		r := NewReader(bytes.NewReader(nil), WithPolicy(Lenient))
		_, err := ReadListTag(r, false)
		assert.ErrorIs(t, err, io.EOF)
		_, err = ReadSetTag(r, false)
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("compound skips empty collections", func(t *testing.T) {
		c := NewCompound().
			Put("empty", &ListTag{}).
			Put("items", mustList(t, IntTag(1))).
			Put("tags", &SetTag{})

		got, err := decodePayload(t, CompoundID, encodePayload(t, c), Strict)
		require.NoError(t, err)
		decoded := got.(*CompoundTag)
		assert.Equal(t, []string{"items"}, decoded.Keys())
		assert.Equal(t, 0, decoded.GetList("empty").Len())
		assert.Equal(t, 0, decoded.GetSet("tags").Len())
	})

	t.Run("nested empty collection is rejected", func(t *testing.T) {
		l := mustList(t, &ListTag{})
		err := l.Write(NewWriter(io.Discard, Strict))
		assert.ErrorIs(t, err, ErrEmptyCollection)
	})
}

func TestListRejectsMixedTypes(t *testing.T) {
	l := mustList(t, IntTag(1))
	assert.ErrorIs(t, l.Add(StringTag("x")), ErrMixedTypes)
	assert.Equal(t, 1, l.Len())

	_, err := NewList(IntTag(1), LongTag(2))
	assert.ErrorIs(t, err, ErrMixedTypes)

	s := mustSet(t, IntTag(1))
	_, err = s.Add(ByteTag(1))
	assert.ErrorIs(t, err, ErrMixedTypes)
}

func TestNilTags(t *testing.T) {
	c := NewCompound().Put("a", IntTag(1)).Put("b", IntTag(2))
	c.Put("a", nil).Put("missing", nil)
	assert.Equal(t, []string{"b"}, c.Keys())

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c))

	l := mustList(t, IntTag(1))
	assert.ErrorIs(t, l.Add(nil), ErrNilTag)
	assert.ErrorIs(t, l.Set(0, nil), ErrNilTag)
	assert.Equal(t, 1, l.Len())

	_, err := NewList(IntTag(1), nil)
	assert.ErrorIs(t, err, ErrNilTag)

	set := mustSet(t, StringTag("x"))
	added, err := set.Add(nil)
	assert.False(t, added)
	assert.ErrorIs(t, err, ErrNilTag)
}

func TestSetDeduplicates(t *testing.T) {
	s := mustSet(t,
		NewCompound().Put("a", IntTag(1)),
		NewCompound().Put("a", IntTag(1)),
		NewCompound().Put("a", IntTag(2)),
	)
	assert.Equal(t, 2, s.Len())

	added, err := s.Add(NewCompound().Put("a", IntTag(2)))
	require.NoError(t, err)
	assert.False(t, added)

	assert.True(t, s.Contains(NewCompound().Put("a", IntTag(1))))
	assert.True(t, s.Remove(NewCompound().Put("a", IntTag(1))))
	assert.False(t, s.Contains(NewCompound().Put("a", IntTag(1))))
	assert.True(t, s.Contains(NewCompound().Put("a", IntTag(2))))

	a := mustSet(t, StringTag("x"), StringTag("y"))
	b := mustSet(t, StringTag("y"), StringTag("x"))
	assert.True(t, a.Equal(b))
	assert.Equal(t, Hash(a), Hash(b))
}

func TestListOrderMatters(t *testing.T) {
	a := mustList(t, IntTag(1), IntTag(2))
	b := mustList(t, IntTag(2), IntTag(1))
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, Hash(a), Hash(b))
}

func TestUnknownTagID(t *testing.T) {
	_, err := decodePayload(t, 999, nil, Lenient)
	var unknown *UnknownTagError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, ID(999), unknown.ID)
	assert.ErrorIs(t, err, ErrUnknownTag)

	// Inside a compound the failure is fatal too, whatever the policy.
	data := []byte{0x03, 0xe7, 0x00, 0x01, 'k'}
	got, err := decodePayload(t, CompoundID, data, Lenient)
	assert.ErrorIs(t, err, ErrUnknownTag)
	assert.Nil(t, got)
}

func TestTruncatedPrimitives(t *testing.T) {
	tests := []struct {
		name string
		tag  Tag
		zero Tag
		cut  int
	}{
		{"byte", ByteTag(7), ByteTag(0), 0},
		{"short", ShortTag(300), ShortTag(0), 1},
		{"int", IntTag(70000), IntTag(0), 2},
		{"long", LongTag(1 << 40), LongTag(0), 5},
		{"float", FloatTag(1.5), FloatTag(0), 3},
		{"double", DoubleTag(2.5), DoubleTag(0), 7},
		{"boolean", BooleanTag(true), BooleanTag(false), 0},
		{"char", CharTag('x'), CharTag(0), 1},
		{"string", StringTag("José"), StringTag(""), 4},
		{"uuid", UuidTag(uuid.New()), UuidTag(uuid.Nil), 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := encodePayload(t, tc.tag)[:tc.cut]

			got, err := decodePayload(t, tc.tag.ID(), data, Lenient)
			require.NoError(t, err)
			assert.True(t, tc.zero.Equal(got), "want %s, got %s", tc.zero, got)

			_, err = decodePayload(t, tc.tag.ID(), data, Strict)
			assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)
		})
	}
}

func TestTruncatedCompoundFailsWhole(t *testing.T) {
	c := NewCompound().Put("name", StringTag("José")).Put("age", IntTag(16))
	data := encodePayload(t, c)

	// Cut inside the age payload: the leaf degrades, but the terminator is
	// missing so no compound is returned.
	cut := data[:len(data)-4]
	for _, policy := range []Policy{Lenient, Strict} {
		got, err := decodePayload(t, CompoundID, cut, policy)
		assert.Error(t, err, policy.String())
		assert.Nil(t, got)
	}
}

func TestLenientLongString(t *testing.T) {
	long := StringTag(strings.Repeat("x", math.MaxUint16+1))

	var buf bytes.Buffer
	require.NoError(t, long.Write(NewWriter(&buf, Lenient)))
	assert.Equal(t, []byte{0, 0}, buf.Bytes())

	err := long.Write(NewWriter(io.Discard, Strict))
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestOfAndValue(t *testing.T) {
	v := map[string]any{
		"name":  "José",
		"age":   int32(16),
		"tags":  []any{"a", "b"},
		"admin": false,
	}
	tg, err := Of(v)
	require.NoError(t, err)
	c := tg.(*CompoundTag)
	assert.Equal(t, []string{"admin", "age", "name", "tags"}, c.Keys())
	assert.Equal(t, v, Value(c))

	_, err = Of([]any{int32(1), "x"})
	assert.ErrorIs(t, err, ErrMixedTypes)
}
