package file

import (
	"testing"
	"time"

	jsonformat "github.com/WalkNetwork/serializer-framework/format/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func assertSilent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHubFilter(t *testing.T) {
	hub := NewHub()
	arenas, cancel, err := hub.Subscribe("arenas/*.json")
	require.NoError(t, err)
	defer cancel()
	all, cancelAll, err := hub.Subscribe("")
	require.NoError(t, err)
	defer cancelAll()

	hub.Publish(Event{Key: "arenas/desert.json", Kind: Save})
	assert.Equal(t, Event{Key: "arenas/desert.json", Kind: Save}, receive(t, arenas))
	assert.Equal(t, Event{Key: "arenas/desert.json", Kind: Save}, receive(t, all))

	hub.Publish(Event{Key: "lobby.json", Kind: Reload})
	assert.Equal(t, "lobby.json", receive(t, all).Key)
	assertSilent(t, arenas)

	_, _, err = hub.Subscribe("[")
	assert.Error(t, err)
}

func TestHubCancel(t *testing.T) {
	hub := NewHub()
	ch, cancel, err := hub.Subscribe("")
	require.NoError(t, err)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	hub.Publish(Event{Key: "x"})
}

func TestHubDropsWhenFull(t *testing.T) {
	hub := NewHub()
	ch, cancel, err := hub.Subscribe("")
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < defaultEventBufferSize*2; i++ {
		hub.Publish(Event{Key: "k", Kind: Save})
	}
	assert.Len(t, ch, defaultEventBufferSize)
}

func TestFolderPublishesToHub(t *testing.T) {
	disk := newDisk(t)
	folder, err := NewFolder(disk, "arenas", "*.json", jsonformat.New(false), defaults)
	require.NoError(t, err)
	folder.Hub = NewHub()

	events, cancel, err := folder.Hub.Subscribe("arenas/**")
	require.NoError(t, err)
	defer cancel()

	_, err = folder.ImplementModel("ice.json")
	require.NoError(t, err)

	want := []Kind{PreLoad, Create, PreSaveModel, SaveModel, PreReload, Reload, Load}
	var kinds []Kind
	for range want {
		ev := receive(t, events)
		assert.Equal(t, "arenas/ice.json", ev.Key)
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, want, kinds)

	require.NoError(t, folder.SaveAll())
	assert.Equal(t, PreSave, receive(t, events).Kind)
	assert.Equal(t, Save, receive(t, events).Kind)
}
