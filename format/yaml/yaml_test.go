package yaml

import (
	"testing"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int32
}

type server struct {
	Host    string
	Port    int32
	Admins  []person
	Flags   map[string]bool
	Version string
	Ratio   float32
}

func TestEncodeBlock(t *testing.T) {
	data, err := format.Encode(New(true), person{Name: "José", Age: 16})
	require.NoError(t, err)
	assert.Equal(t, "name: José\nage: 16\n", string(data))
}

func TestEncodeFlow(t *testing.T) {
	data, err := format.Encode(New(false), person{Name: "José", Age: 16})
	require.NoError(t, err)
	assert.Equal(t, "{name: José, age: 16}\n", string(data))
}

func TestRoundTrip(t *testing.T) {
	in := server{
		Host:    "localhost",
		Port:    25565,
		Admins:  []person{{Name: "Ana", Age: 30}, {Name: "Bia", Age: 22}},
		Flags:   map[string]bool{"pvp": true, "whitelist": false},
		Version: "1.20",
		Ratio:   0.75,
	}
	for _, pretty := range []bool{true, false} {
		f := New(pretty)
		data, err := format.Encode(f, in)
		require.NoError(t, err)

		got, err := format.Decode[server](f, data)
		require.NoError(t, err, string(data))
		assert.Equal(t, in, got)
	}
}

func TestNumericLookingStringsAreQuoted(t *testing.T) {
	data, err := format.Encode(New(true), server{Version: "1.20", Host: "true", Admins: []person{}, Flags: map[string]bool{}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `version: "1.20"`)
	assert.Contains(t, string(data), `host: "true"`)
}

func TestParseAnchorsAndOrder(t *testing.T) {
	input := `
base: &base
  name: Ana
  age: 30
copy: *base
zeta: [1, 2.5, null, yes]
`
	node, err := New(true).Parse([]byte(input))
	require.NoError(t, err)

	obj := node.(*tree.Object)
	assert.Equal(t, []string{"base", "copy", "zeta"}, obj.Keys())
	copied, _ := obj.Get("copy")
	assert.Equal(t, []string{"name", "age"}, copied.(*tree.Object).Keys())
	zeta, _ := obj.Get("zeta")
	assert.Equal(t, []any{int64(1), 2.5, nil, "yes"}, zeta)
}

func TestParseEmpty(t *testing.T) {
	node, err := New(true).Parse(nil)
	require.NoError(t, err)
	assert.Nil(t, node)

	_, err = New(true).Parse([]byte("a: [1, 2"))
	assert.Error(t, err)
}
