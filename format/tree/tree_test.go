package tree

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color int

func (color) EnumValues() []string { return []string{"RED", "GREEN"} }

type owner struct {
	Name string
	Age  int32
}

type record struct {
	Title  string
	Color  color
	Mark   serial.Char
	Ratio  float32
	Scores map[int]string
	Owner  *owner
	Tags   []string
	Nested [][]int16
}

func TestEncodeShape(t *testing.T) {
	ser := serial.MustOf[record]()
	node, err := Encode(ser, record{
		Title:  "box",
		Color:  1,
		Mark:   '§',
		Ratio:  0.1,
		Scores: map[int]string{2: "b", 1: "a"},
		Tags:   []string{},
		Nested: [][]int16{{1}, {}},
	})
	require.NoError(t, err)

	obj := node.(*Object)
	assert.Equal(t, []string{"title", "color", "mark", "ratio", "scores", "owner", "tags", "nested"}, obj.Keys())

	get := func(key string) any {
		v, ok := obj.Get(key)
		require.True(t, ok, key)
		return v
	}
	assert.Equal(t, "GREEN", get("color"))
	assert.Equal(t, "§", get("mark"))
	assert.Equal(t, 0.1, get("ratio"))
	assert.Equal(t, []string{"1", "2"}, get("scores").(*Object).Keys())
	assert.Nil(t, get("owner"))
	assert.Equal(t, []any{}, get("tags"))
	assert.Equal(t, []any{[]any{int64(1)}, []any{}}, get("nested"))
}

func TestRoundTrip(t *testing.T) {
	ser := serial.MustOf[record]()
	in := record{
		Title:  "José",
		Color:  0,
		Mark:   'x',
		Ratio:  2.5,
		Scores: map[int]string{-3: "neg", 7: "pos"},
		Owner:  &owner{Name: "Ana", Age: 40},
		Tags:   []string{"a", "b"},
		Nested: [][]int16{{1, 2}, {3}},
	}
	node, err := Encode(ser, in)
	require.NoError(t, err)
	got, err := Decode(ser, node)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestDecodeByName(t *testing.T) {
	ser := serial.MustOf[owner]()

	node := &Object{Members: []Member{
		{Key: "extra", Value: "ignored"},
		{Key: "age", Value: int64(12)},
		{Key: "name", Value: "Bia"},
	}}
	got, err := Decode(ser, node)
	require.NoError(t, err)
	assert.Equal(t, owner{Name: "Bia", Age: 12}, got)

	_, err = Decode(ser, &Object{Members: []Member{{Key: "name", Value: "Bia"}}})
	var missing *serial.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"age"}, missing.Fields)
}

func TestDecodeCoercion(t *testing.T) {
	got, err := Decode(serial.IntSerializer, "42")
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)

	got, err = Decode(serial.LongSerializer, json.Number("9007199254740993"))
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), got)

	got, err = Decode(serial.ShortSerializer, float64(12))
	require.NoError(t, err)
	assert.Equal(t, int16(12), got)

	_, err = Decode(serial.ByteSerializer, int64(300))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Decode(serial.IntSerializer, 1.5)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Decode(serial.CharSerializer, "ab")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Decode(serial.MustOf[owner](), []any{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestDecodeEnum(t *testing.T) {
	ser := serial.MustOf[color]()

	got, err := Decode(ser, "GREEN")
	require.NoError(t, err)
	assert.Equal(t, color(1), got)

	got, err = Decode(ser, int64(0))
	require.NoError(t, err)
	assert.Equal(t, color(0), got)

	_, err = Decode(ser, "BLUE")
	assert.ErrorIs(t, err, serial.ErrUnknownEnum)
}

func TestObjectSetReplacesInPlace(t *testing.T) {
	o := NewObject()
	o.Set("a", int64(1))
	o.Set("b", int64(2))
	o.Set("a", int64(3))
	assert.Equal(t, []string{"a", "b"}, o.Keys())
	v, _ := o.Get("a")
	assert.Equal(t, int64(3), v)

	// Objects built from literal members index lazily.
	lit := &Object{Members: []Member{{Key: "k", Value: "v"}}}
	v, ok := lit.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestFromNative(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	node, err := FromNative(map[string]any{
		"z":     uint8(3),
		"a":     []int{1, 2},
		"m":     map[int]bool{10: true},
		"f":     float32(0.1),
		"when":  at,
		"bytes": []byte("hi"),
	})
	require.NoError(t, err)

	obj := node.(*Object)
	assert.Equal(t, []string{"a", "bytes", "f", "m", "when", "z"}, obj.Keys())
	a, _ := obj.Get("a")
	assert.Equal(t, []any{int64(1), int64(2)}, a)
	m, _ := obj.Get("m")
	assert.Equal(t, []string{"10"}, m.(*Object).Keys())
	f, _ := obj.Get("f")
	assert.Equal(t, 0.1, f)
	when, _ := obj.Get("when")
	assert.Equal(t, "2024-05-01T12:00:00Z", when)
	b, _ := obj.Get("bytes")
	assert.Equal(t, "aGk=", b)

	_, err = FromNative(make(chan int))
	assert.Error(t, err)

	back := ToNative(obj)
	assert.Equal(t, map[string]any{"10": true}, back.(map[string]any)["m"])
}

// lines renders a list of strings one per line.
type lines struct{}

func (lines) Parse(data []byte) (any, error) {
	var out []any
	start := 0
	for i, c := range data {
		if c == '\n' {
			out = append(out, string(data[start:i]))
			start = i + 1
		}
	}
	return out, nil
}

func (lines) Render(node any) ([]byte, error) {
	var out []byte
	for _, item := range node.([]any) {
		out = append(out, item.(string)...)
		out = append(out, '\n')
	}
	return out, nil
}

func TestFormat(t *testing.T) {
	f := NewFormat("lines", lines{})
	ser := serial.MustOf[[]string]()

	text, err := f.EncodeToString(ser, []string{"one", "two"})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", text)

	got, err := f.DecodeFromString(ser, text)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
	assert.Equal(t, "lines", f.Name())
}
