package file

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/WalkNetwork/serializer-framework/compression"
	jsonformat "github.com/WalkNetwork/serializer-framework/format/json"
	yamlformat "github.com/WalkNetwork/serializer-framework/format/yaml"
	"github.com/WalkNetwork/serializer-framework/storage"
	"github.com/WalkNetwork/serializer-framework/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	Name string
	Port int32
}

var defaults = server{Name: "lobby", Port: 25565}

func newDisk(t *testing.T) *storage.Disk {
	return storage.NewDisk(t.TempDir())
}

func record[T any](sf *SerialFile[T], kinds ...Kind) *[]Kind {
	var seen []Kind
	for _, k := range kinds {
		sf.OnObserve(k, func(*SerialFile[T]) { seen = append(seen, k) })
	}
	return &seen
}

var allKinds = []Kind{PreLoad, Load, PreReload, Reload, PreSave, Save, PreSaveModel, SaveModel, Create}

func TestLoadCreatesFromModel(t *testing.T) {
	disk := newDisk(t)
	sf, err := New(disk, "servers/lobby.json", jsonformat.New(false), defaults)
	require.NoError(t, err)
	seen := record(sf, allKinds...)

	require.NoError(t, sf.Load())
	assert.Equal(t, []Kind{PreLoad, Create, PreSaveModel, SaveModel, PreReload, Reload, Load}, *seen)
	assert.Equal(t, defaults, sf.Data)

	content, err := sf.Content()
	require.NoError(t, err)
	assert.Equal(t, `{"name":"lobby","port":25565}`, string(content))

	// A second load finds the file and only reloads it.
	*seen = nil
	require.NoError(t, sf.Load())
	assert.Equal(t, []Kind{PreLoad, PreReload, Reload, Load}, *seen)
}

func TestLoadExisting(t *testing.T) {
	disk := newDisk(t)
	require.NoError(t, disk.Write("hub.yml", []byte("name: hub\nport: 1\n")))

	sf, err := Open(disk, "hub.yml", yamlformat.New(true), defaults)
	require.NoError(t, err)
	assert.Equal(t, server{Name: "hub", Port: 1}, sf.Data)
	assert.Equal(t, defaults, sf.Model)
}

func TestSaveAndReload(t *testing.T) {
	disk := newDisk(t)
	sf, err := Open(disk, "lobby.json", jsonformat.New(true), defaults)
	require.NoError(t, err)

	sf.Data.Port = 19132
	require.NoError(t, sf.Save())

	other, err := Open(disk, "lobby.json", jsonformat.New(true), server{})
	require.NoError(t, err)
	assert.Equal(t, server{Name: "lobby", Port: 19132}, other.Data)

	// SaveModel restores the model on disk but leaves Data alone.
	require.NoError(t, sf.SaveModel())
	assert.Equal(t, int32(19132), sf.Data.Port)
	require.NoError(t, other.Reload())
	assert.Equal(t, defaults, other.Data)
}

func TestReloadFailureKeepsData(t *testing.T) {
	disk := newDisk(t)
	sf, err := Open(disk, "lobby.json", jsonformat.New(false), defaults)
	require.NoError(t, err)
	seen := record(sf, Reload)

	require.NoError(t, disk.Write("lobby.json", []byte(`{"name": 7`)))
	assert.Error(t, sf.Reload())
	assert.Equal(t, defaults, sf.Data)
	assert.Empty(t, *seen)

	require.NoError(t, sf.Clear())
	content, err := sf.Content()
	require.NoError(t, err)
	assert.Empty(t, content)
	assert.Error(t, sf.Reload())
}

func TestMoveTo(t *testing.T) {
	disk := newDisk(t)
	sf, err := Open(disk, "old/lobby.json", jsonformat.New(false), defaults)
	require.NoError(t, err)
	sf.Data.Name = "moved"
	require.NoError(t, sf.Save())

	require.NoError(t, sf.MoveTo("new/lobby.json", true))
	assert.Equal(t, "new/lobby.json", sf.Key)
	assert.Equal(t, "moved", sf.Data.Name)

	keys, err := disk.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"new/lobby.json", "old/lobby.json"}, keys)

	assert.ErrorIs(t, sf.MoveTo("../outside.json", false), storage.ErrInvalidKey)
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := New(newDisk(t), "", jsonformat.New(false), defaults)
	assert.ErrorIs(t, err, storage.ErrInvalidKey)

	_, err = New(newDisk(t), "c.json", jsonformat.New(false), make(chan int))
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "pre_save_model", PreSaveModel.String())
	assert.Equal(t, "create", Create.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestFolder(t *testing.T) {
	p, err := storage.OpenPebble(filepath.Join(t.TempDir(), "db"), storage.PebbleOptions{DisableWAL: true})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	for _, backend := range []storage.Backend{newDisk(t), p} {
		t.Run(backend.Name(), func(t *testing.T) {
			require.NoError(t, backend.Write("arenas/desert.json", []byte(`{"name":"desert","port":1}`)))
			require.NoError(t, backend.Write("arenas/forest.json", []byte(`{"name":"forest","port":2}`)))
			require.NoError(t, backend.Write("arenas/notes.txt", []byte("ignored")))
			require.NoError(t, backend.Write("arenas/old/ice.json", []byte(`{}`)))
			require.NoError(t, backend.Write("lobby.json", []byte(`{}`)))

			folder, err := NewFolder(backend, "/arenas/", "*.json", jsonformat.New(false), defaults)
			require.NoError(t, err)

			names, err := folder.Search()
			require.NoError(t, err)
			assert.Equal(t, []string{"desert.json", "forest.json"}, names)

			require.NoError(t, folder.ImplementAll())
			require.NoError(t, folder.ImplementAll())
			assert.Equal(t, 2, folder.Len())

			require.NoError(t, folder.LoadAll())
			desert, ok := folder.Get("desert.json")
			require.True(t, ok)
			assert.Equal(t, server{Name: "desert", Port: 1}, desert.Data)

			created, err := folder.ImplementModel("nether.json")
			require.NoError(t, err)
			assert.Equal(t, "arenas/nether.json", created.Key)
			assert.Equal(t, defaults, created.Data)
			assert.Equal(t, 3, folder.Len())

			_, err = folder.Implement("readme.txt", defaults)
			assert.Error(t, err)

			for _, sf := range folder.Files() {
				sf.Data.Port++
			}
			require.NoError(t, folder.SaveAll())
			require.NoError(t, folder.ReloadAll())
			assert.Equal(t, int32(2), desert.Data.Port)

			// One broken file does not stop the rest.
			require.NoError(t, backend.Write("arenas/forest.json", []byte("{")))
			desert.Data.Port = 99
			err = folder.ReloadAll()
			assert.Error(t, err)
			assert.Equal(t, int32(2), desert.Data.Port)

			require.NoError(t, folder.SaveAllModel())
			require.NoError(t, folder.ReloadAll())
			assert.Equal(t, defaults, desert.Data)
		})
	}
}

func TestFolderInvalidPattern(t *testing.T) {
	_, err := NewFolder(newDisk(t), "x", "[", jsonformat.New(false), defaults)
	assert.Error(t, err)
}

func TestTaggedFile(t *testing.T) {
	disk := newDisk(t)

	tf, err := OpenTagged(disk, "players/ana.dat")
	require.NoError(t, err)
	assert.Zero(t, tf.Len())

	tf.Put("name", tag.StringTag("Ana")).Put("level", tag.IntTag(30))
	require.NoError(t, tf.Save())

	again, err := OpenTagged(disk, "players/ana.dat")
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.GetString("name"))
	assert.Equal(t, int32(30), again.GetInt("level"))

	again.Put("level", tag.IntTag(31))
	require.NoError(t, tf.Load())
	assert.Equal(t, int32(30), tf.GetInt("level"))

	require.NoError(t, again.ClearFile())
	cleared, err := OpenTagged(disk, "players/ana.dat")
	require.NoError(t, err)
	assert.Zero(t, cleared.Len())
	assert.Equal(t, int32(31), again.GetInt("level"))
}

func TestTaggedFileRejectsOtherRoots(t *testing.T) {
	disk := newDisk(t)
	var buf bytes.Buffer
	require.NoError(t, (&tag.IO{Codec: compression.Default()}).Write(&buf, tag.IntTag(5)))
	require.NoError(t, disk.Write("int.dat", buf.Bytes()))

	_, err := OpenTagged(disk, "int.dat")
	assert.ErrorContains(t, err, "not a compound")
}
