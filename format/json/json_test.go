package json

import (
	"testing"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int32
}

type kind int

func (kind) EnumValues() []string { return []string{"PLAYER", "ADMIN"} }

type account struct {
	Owner   person
	Kind    kind
	Balance float64
	Roles   []string
	Limits  map[string]int64
	Parent  *person
	Initial serial.Char
}

func TestEncodeCompact(t *testing.T) {
	data, err := format.Encode(New(false), person{Name: "José", Age: 16})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"José","age":16}`, string(data))
}

func TestEncodePretty(t *testing.T) {
	data, err := format.Encode(New(true), person{Name: "José", Age: 16})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"José\",\n  \"age\": 16\n}", string(data))
}

func TestRoundTrip(t *testing.T) {
	in := account{
		Owner:   person{Name: "Ana", Age: 30},
		Kind:    1,
		Balance: 10.25,
		Roles:   []string{"build", "chat"},
		Limits:  map[string]int64{"daily": 5, "weekly": 20},
		Initial: 'A',
	}
	f := New(true)
	data, err := format.Encode(f, in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind": "ADMIN"`)
	assert.Contains(t, string(data), `"parent": null`)

	got, err := format.Decode[account](f, data)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestDecodeLenientSyntax(t *testing.T) {
	input := `{
		// unknown members are skipped
		"extra": [1, 2, {"deep": true}],
		"age": 16, /* reordered */
		"name": "José",
	}`
	got, err := format.Decode[person](New(false), []byte(input))
	require.NoError(t, err)
	assert.Equal(t, person{Name: "José", Age: 16}, got)
}

func TestDecodeErrors(t *testing.T) {
	f := New(false)

	_, err := format.Decode[person](f, []byte(`{"name":"José"}`))
	var missing *serial.MissingFieldError
	require.ErrorAs(t, err, &missing)

	_, err = format.Decode[person](f, []byte(`{"name":"José","age":"old"}`))
	assert.ErrorIs(t, err, tree.ErrTypeMismatch)

	_, err = format.Decode[person](f, []byte(`{"name":"José","age":16} {}`))
	assert.Error(t, err)
}

func TestParseKeepsOrder(t *testing.T) {
	node, err := New(false).Parse([]byte(`{"z":1,"a":{"y":2.5,"b":null},"m":[true,"s"]}`))
	require.NoError(t, err)

	obj := node.(*tree.Object)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
	a, _ := obj.Get("a")
	assert.Equal(t, []string{"y", "b"}, a.(*tree.Object).Keys())
	z, _ := obj.Get("z")
	assert.Equal(t, int64(1), z)

	out, err := New(false).Render(node)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":2.5,"b":null},"m":[true,"s"]}`, string(out))
}

func TestRegistered(t *testing.T) {
	f, err := format.New(Name, format.Options{Pretty: false})
	require.NoError(t, err)

	data, err := format.Encode(format.WithStrategy(f, strategy.Color), person{Name: "§6gold"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"&6gold","age":0}`, string(data))
}
