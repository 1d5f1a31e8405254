package tag

import (
	"bytes"
	"math"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointTag is a registered leaf used to exercise custom variants.
type pointTag struct {
	X, Y int32
	id   ID
}

func (p pointTag) ID() ID { return p.id }

func (p pointTag) Write(w *Writer) error {
	if err := w.WriteInt32(p.X); err != nil {
		return err
	}
	return w.WriteInt32(p.Y)
}

func (p pointTag) Equal(other Tag) bool {
	o, ok := other.(pointTag)
	return ok && o == p
}

func (p pointTag) String() string {
	return "(" + strconv.Itoa(int(p.X)) + ", " + strconv.Itoa(int(p.Y)) + ")"
}

func readPoint(id ID) ReadFunc {
	return func(r *Reader) (Tag, error) {
		x, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		y, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return pointTag{X: x, Y: y, id: id}, nil
	}
}

func TestRegistryBuiltins(t *testing.T) {
	reg := NewRegistry()
	ids := reg.IDs()
	require.Len(t, ids, 14)
	for i, id := range ids {
		assert.Equal(t, ID(i), id)
		created, err := reg.Create(id)
		require.NoError(t, err)
		assert.Equal(t, id, created.ID())
	}

	rt, ok := reg.Lookup(CompoundID)
	require.True(t, ok)
	assert.Equal(t, "compound(12)", rt.String())
}

func TestRegistryFirstWins(t *testing.T) {
	reg := NewRegistry()

	rt, ok := reg.RegisterAt(ItemID, "item", nil, readPoint(ItemID))
	require.True(t, ok)
	assert.Equal(t, ItemID, rt.ID)

	again, ok := reg.RegisterAt(ItemID, "other", nil, nil)
	assert.False(t, ok)
	assert.Equal(t, "item", again.Name)

	_, ok = reg.RegisterAt(StringID, "text", nil, nil)
	assert.False(t, ok)
	current, _ := reg.Lookup(StringID)
	assert.Equal(t, "string", current.Name)

	_, ok = reg.RegisterAt(EndID, "end", nil, nil)
	assert.False(t, ok)
}

func TestRegistryAssignsIDsAfterReserved(t *testing.T) {
	reg := NewRegistry()

	first, err := reg.Register("point", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, LastReservedID+1, first.ID)

	second, err := reg.Register("vector", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	// Pinned ids above the cursor are skipped.
	_, ok := reg.RegisterAt(second.ID+1, "pinned", nil, nil)
	require.True(t, ok)
	third, err := reg.Register("next", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, second.ID+2, third.ID)
}

func TestRegistryContinuesAbovePinnedID(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.RegisterAt(100, "pinned", nil, nil)
	require.True(t, ok)
	next, err := reg.Register("next", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ID(101), next.ID)

	// Pinning below the cursor leaves it alone.
	_, ok = reg.RegisterAt(50, "low", nil, nil)
	require.True(t, ok)
	after, err := reg.Register("after", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ID(102), after.ID)
}

func TestRegistryExhausted(t *testing.T) {
	level := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	defer zerolog.SetGlobalLevel(level)

	reg := NewRegistry()
	for i := int(LastReservedID) + 1; i <= math.MaxInt16; i++ {
		_, err := reg.Register("filler", nil, nil)
		require.NoError(t, err)
	}
	_, err := reg.Register("overflow", nil, nil)
	assert.ErrorIs(t, err, ErrIDsExhausted)
}

func TestRegistryUnknownID(t *testing.T) {
	reg := NewRegistry()

	created, err := reg.Create(LocationID)
	assert.Nil(t, created)
	var unknown *UnknownTagError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, LocationID, unknown.ID)

	_, err = reg.Create(500)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestRegistryCustomVariantInCompound(t *testing.T) {
	reg := NewRegistry()
	var id ID
	rt, err := reg.Register("point", func() Tag { return pointTag{id: id} }, func(r *Reader) (Tag, error) {
		return readPoint(id)(r)
	})
	require.NoError(t, err)
	id = rt.ID

	root := NewCompound().
		Put("spawn", pointTag{X: 10, Y: -4, id: id}).
		Put("path", mustList(t, pointTag{X: 1, Y: 2, id: id}, pointTag{X: 3, Y: 4, id: id}))

	var buf bytes.Buffer
	tio := &IO{Registry: reg, Policy: Strict}
	require.NoError(t, tio.Write(&buf, root))

	got, err := tio.Read(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, root.Equal(got), "got %s", got)

	// The default registry does not know the variant.
	_, err = (&IO{Policy: Strict}).Read(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, ErrUnknownTag)
}
