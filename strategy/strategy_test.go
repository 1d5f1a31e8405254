package strategy

import (
	"bytes"
	"testing"

	"github.com/WalkNetwork/serializer-framework/compression"
	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Text string
	Bold bool
}

type page struct {
	Title string
	Lines []line
}

type book struct {
	Name  string
	Pages []page
	Tags  []string
	Index map[string]string
	Note  *string
}

func sample() book {
	note := "§cnote"
	return book{
		Name: "§6Guide",
		Pages: []page{
			{Title: "§aintro", Lines: []line{{Text: "§lhello", Bold: true}, {Text: "plain"}}},
			{Title: "end", Lines: []line{{Text: "§kbye"}}},
		},
		Tags:  []string{"§1one", "two"},
		Index: map[string]string{"§2key": "§3value"},
		Note:  &note,
	}
}

func plain() *tag.Format {
	return &tag.Format{Codec: compression.None}
}

func TestColorPropagatesThroughNesting(t *testing.T) {
	ser := serial.MustOf[book]()
	wrapped := NewBinaryFormatter(plain(), Color)

	data, err := wrapped.EncodeToBytes(ser, sample())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "§")

	// Reading without the strategy shows what was stored.
	raw, err := plain().DecodeFromBytes(ser, data)
	require.NoError(t, err)
	stored := raw.(book)
	assert.Equal(t, "&6Guide", stored.Name)
	assert.Equal(t, "&aintro", stored.Pages[0].Title)
	assert.Equal(t, "&lhello", stored.Pages[0].Lines[0].Text)
	assert.Equal(t, "&kbye", stored.Pages[1].Lines[0].Text)
	assert.Equal(t, []string{"&1one", "two"}, stored.Tags)
	assert.Equal(t, map[string]string{"&2key": "&3value"}, stored.Index)
	assert.Equal(t, "&cnote", *stored.Note)

	// Reading with it restores the original.
	got, err := wrapped.DecodeFromBytes(ser, data)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestColorDecodesPlaceholders(t *testing.T) {
	ser := serial.MustOf[page]()
	in := page{Title: "&etitle", Lines: []line{{Text: "&9deep"}}}

	data, err := plain().EncodeToBytes(ser, in)
	require.NoError(t, err)

	got, err := NewBinaryFormatter(plain(), Color).DecodeFromBytes(ser, data)
	require.NoError(t, err)
	assert.Equal(t, page{Title: "§etitle", Lines: []line{{Text: "§9deep"}}}, got)
}

func TestColorRoundTripIdentity(t *testing.T) {
	ser := serial.MustOf[book]()
	wrapped := NewBinaryFormatter(plain(), Color)

	in := book{
		Name:  "José",
		Pages: []page{{Title: "日本", Lines: []line{{Text: "no reserved chars", Bold: true}}}},
		Tags:  []string{"", "x"},
		Index: map[string]string{},
	}
	data, err := wrapped.EncodeToBytes(ser, in)
	require.NoError(t, err)
	got, err := wrapped.DecodeFromBytes(ser, data)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestColorRootString(t *testing.T) {
	wrapped := NewBinaryFormatter(plain(), Color)
	data, err := wrapped.EncodeToBytes(serial.StringSerializer, "§a")
	require.NoError(t, err)

	raw, err := plain().DecodeFromBytes(serial.StringSerializer, data)
	require.NoError(t, err)
	assert.Equal(t, "&a", raw)
}

func TestCustomColorRunes(t *testing.T) {
	c := ColorStrategy{Reserved: '$', Placeholder: '#'}
	assert.Equal(t, "#x#", c.EncodeString(nil, -1, "$x$"))
	assert.Equal(t, "$x$", c.DecodeString(nil, -1, "#x#"))
}

func TestReverseBoolean(t *testing.T) {
	ser := serial.MustOf[page]()
	in := page{Title: "t", Lines: []line{{Text: "a", Bold: true}, {Text: "b"}}}
	wrapped := NewBinaryFormatter(plain(), ReverseBoolean)

	data, err := wrapped.EncodeToBytes(ser, in)
	require.NoError(t, err)

	raw, err := plain().DecodeFromBytes(ser, data)
	require.NoError(t, err)
	assert.False(t, raw.(page).Lines[0].Bold)
	assert.True(t, raw.(page).Lines[1].Bold)

	got, err := wrapped.DecodeFromBytes(ser, data)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

type position struct {
	parent string
	index  int
}

// recorder notes where each string was seen.
type recorder struct {
	Identity
	seen *[]position
}

func (r recorder) EncodeString(d *serial.Descriptor, index int, v string) string {
	name := ""
	if d != nil {
		name = d.Name
	}
	*r.seen = append(*r.seen, position{name, index})
	return v
}

func TestEncoderReportsPositions(t *testing.T) {
	var seen []position
	ser := serial.MustOf[page]()
	wrapped := NewBinaryFormatter(plain(), recorder{seen: &seen})

	_, err := wrapped.EncodeToBytes(ser, page{Title: "t", Lines: []line{{Text: "a"}}})
	require.NoError(t, err)

	pageName := ser.Descriptor().Name
	lineName := serial.MustOf[line]().Descriptor().Name
	assert.Equal(t, []position{{pageName, 0}, {lineName, 0}}, seen)

	seen = nil
	_, err = wrapped.EncodeToBytes(serial.List(serial.StringSerializer), []string{"x", "y"})
	require.NoError(t, err)
	listName := serial.ListDescriptor(serial.StringSerializer.Descriptor()).Name
	assert.Equal(t, []position{{listName, 0}, {listName, 1}}, seen)
}

type shiftIndex struct {
	Identity
}

func (shiftIndex) DecodeIndex(_ *serial.Descriptor, index int) int {
	if index < 0 {
		return index
	}
	return index + 10
}

func TestDecodeIndex(t *testing.T) {
	desc := serial.MustOf[line]().Descriptor()
	d := NewDecoder(shiftIndex{}, tag.NewDecoder(tag.NewReader(bytes.NewReader(nil)), 0))

	cd, err := d.BeginStructure(desc)
	require.NoError(t, err)
	assert.True(t, cd.DecodeSequentially())

	for _, want := range []int{10, 11, serial.DecodeDone} {
		got, err := cd.DecodeElementIndex(desc)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

type panicking struct {
	Identity
}

func (panicking) EncodeString(*serial.Descriptor, int, string) string {
	panic("transform failed")
}

func TestTransformPanicsPropagate(t *testing.T) {
	wrapped := NewBinaryFormatter(plain(), panicking{})
	assert.PanicsWithValue(t, "transform failed", func() {
		_, _ = wrapped.EncodeToBytes(serial.MustOf[line](), line{Text: "x"})
	})
}

func TestDecodeErrorsAreNotTransformed(t *testing.T) {
	wrapped := NewBinaryFormatter(plain(), Color)
	_, err := wrapped.DecodeFromBytes(serial.MustOf[line](), []byte{0x00})
	assert.Error(t, err)
}

func TestZeroFormatterIsIdentity(t *testing.T) {
	f := &BinaryFormatter{Model: plain()}
	ser := serial.MustOf[line]()

	data, err := f.EncodeToBytes(ser, line{Text: "§x"})
	require.NoError(t, err)
	got, err := f.DecodeFromBytes(ser, data)
	require.NoError(t, err)
	assert.Equal(t, line{Text: "§x"}, got)
	assert.Equal(t, "tag", f.Name())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{ColorName, IdentityName, ReverseBooleanName}, Names())

	s, err := Lookup(ColorName)
	require.NoError(t, err)
	assert.Equal(t, Color, s)

	s, err = Lookup("")
	require.NoError(t, err)
	assert.Equal(t, Identity{}, s)

	_, err = Lookup("rot13")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
