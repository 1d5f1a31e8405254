package tag

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/WalkNetwork/serializer-framework/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagIORoundTrip(t *testing.T) {
	root := NewCompound().
		Put("name", StringTag("José")).
		Put("age", IntTag(16)).
		Put("scores", mustList(t, DoubleTag(1.5), DoubleTag(2.5)))

	for _, name := range compression.Names() {
		t.Run(name, func(t *testing.T) {
			codec, err := compression.Lookup(name)
			require.NoError(t, err)
			tio := &IO{Codec: codec, Registry: Default, Policy: Strict}

			var buf bytes.Buffer
			require.NoError(t, tio.Write(&buf, root))

			got, err := tio.Read(&buf)
			require.NoError(t, err)
			assert.True(t, root.Equal(got), "got %s", got)
		})
	}
}

func TestTagIOPrefixesID(t *testing.T) {
	tio := &IO{Codec: compression.None, Policy: Strict}

	var buf bytes.Buffer
	require.NoError(t, tio.Write(&buf, ShortTag(5)))
	assert.Equal(t, []byte{0x00, 0x02, 0x00, 0x05}, buf.Bytes())
}

func TestTagIOEmptyRootCollection(t *testing.T) {
	tio := NewIO()

	for _, empty := range []Tag{&ListTag{}, &SetTag{}} {
		var buf bytes.Buffer
		require.NoError(t, tio.Write(&buf, empty))

		got, err := tio.Read(&buf)
		require.NoError(t, err)
		assert.Equal(t, empty.ID(), got.ID())
		assert.True(t, empty.Equal(got))
	}
}

func TestTagIOFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "player.dat")
	root := NewCompound().Put("level", LongTag(99))

	tio := NewIO()
	require.NoError(t, tio.WriteFile(path, root))

	got, err := tio.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, root.Equal(got))

	_, err = tio.ReadFile(filepath.Join(t.TempDir(), "missing.dat"))
	assert.Error(t, err)
}

func TestTagIOFailedWriteKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.dat")
	tio := &IO{Codec: compression.None, Policy: Strict}
	good := NewCompound().Put("ok", IntTag(1))
	require.NoError(t, tio.WriteFile(path, good))

	bad := NewCompound().Put("a", IntTag(2)).Put("bad", mustList(t, &ListTag{}))
	assert.ErrorIs(t, tio.WriteFile(path, bad), ErrEmptyCollection)

	got, err := tio.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, good.Equal(got), "got %s", got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadCompound(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewCompound().Put("k", StringTag("v"))))
	c, err := ReadCompound(&buf)
	require.NoError(t, err)
	assert.Equal(t, "v", c.GetString("k"))

	buf.Reset()
	require.NoError(t, Write(&buf, IntTag(1)))
	_, err = ReadCompound(&buf)
	assert.Error(t, err)
}
