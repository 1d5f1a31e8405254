// Package tag implements the binary tag format: a self-describing tree of
// typed values (bytes, numbers, strings, lists, sets, compounds, uuids) where
// every value is preceded by a 16 bit type id resolved through a Registry.
//
// The package also binds the serial protocol to the same binary primitives
// (Encoder, Decoder, Format), producing positional records without type ids.
package tag

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// ID is the wire discriminant of a tag variant.
type ID int16

// Built-in ids. They are part of the wire format and never change.
const (
	EmptyID ID = iota
	ByteID
	ShortID
	IntID
	LongID
	FloatID
	DoubleID
	BooleanID
	CharID
	StringID
	ListID
	SetID
	CompoundID
	UuidID
)

// Ids 14 to 20 are held for domain leaf variants and never handed out by
// Register.
const (
	NbtCompoundID ID = iota + 14
	ItemID
	LocationID
	SlotID
	ClassID
	InventoryID
	BlockID

	LastReservedID = BlockID
)

// EndID terminates a compound payload. It can never be registered.
const EndID ID = -1

var (
	ErrUnknownTag      = errors.New("unknown tag id")
	ErrMixedTypes      = errors.New("tag collection elements must share one type")
	ErrEmptyCollection = errors.New("empty collection cannot be nested in a list or set")
	ErrNilTag          = errors.New("nil tag")
	ErrStringTooLong   = errors.New("string exceeds 65535 bytes")
	ErrIDsExhausted    = errors.New("no tag ids left")
)

// UnknownTagError reports an id with no registered variant.
type UnknownTagError struct {
	ID ID
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("tag: no tag type registered with id %d", e.ID)
}

func (e *UnknownTagError) Unwrap() error {
	return ErrUnknownTag
}

// Tag is a node of the tag tree. Write emits the payload only; the enclosing
// container or TagIO writes the id.
type Tag interface {
	ID() ID
	Write(w *Writer) error
	Equal(other Tag) bool
	String() string
}

// EmptyTag carries no payload.
type EmptyTag struct{}

type (
	ByteTag    int8
	ShortTag   int16
	IntTag     int32
	LongTag    int64
	FloatTag   float32
	DoubleTag  float64
	BooleanTag bool
	// CharTag is one UTF-16 code unit.
	CharTag   uint16
	StringTag string
	UuidTag   uuid.UUID
)

func (EmptyTag) ID() ID   { return EmptyID }
func (ByteTag) ID() ID    { return ByteID }
func (ShortTag) ID() ID   { return ShortID }
func (IntTag) ID() ID     { return IntID }
func (LongTag) ID() ID    { return LongID }
func (FloatTag) ID() ID   { return FloatID }
func (DoubleTag) ID() ID  { return DoubleID }
func (BooleanTag) ID() ID { return BooleanID }
func (CharTag) ID() ID    { return CharID }
func (StringTag) ID() ID  { return StringID }
func (UuidTag) ID() ID    { return UuidID }

func (EmptyTag) Write(*Writer) error     { return nil }
func (t ByteTag) Write(w *Writer) error  { return w.WriteInt8(int8(t)) }
func (t ShortTag) Write(w *Writer) error { return w.WriteInt16(int16(t)) }
func (t IntTag) Write(w *Writer) error   { return w.WriteInt32(int32(t)) }
func (t LongTag) Write(w *Writer) error  { return w.WriteInt64(int64(t)) }
func (t FloatTag) Write(w *Writer) error { return w.WriteFloat32(float32(t)) }
func (t DoubleTag) Write(w *Writer) error {
	return w.WriteFloat64(float64(t))
}
func (t BooleanTag) Write(w *Writer) error { return w.WriteBool(bool(t)) }
func (t CharTag) Write(w *Writer) error    { return w.WriteChar(uint16(t)) }

// Write emits the string. Under the lenient policy a string too long for the
// length prefix is written as "".
func (t StringTag) Write(w *Writer) error {
	err := w.WriteUTF(string(t))
	if errors.Is(err, ErrStringTooLong) && w.Policy() == Lenient {
		return w.WriteUTF("")
	}
	return err
}

func (t UuidTag) Write(w *Writer) error {
	return w.WriteUTF(uuid.UUID(t).String())
}

func (EmptyTag) Equal(other Tag) bool {
	_, ok := other.(EmptyTag)
	return ok
}

func (t ByteTag) Equal(other Tag) bool {
	o, ok := other.(ByteTag)
	return ok && o == t
}

func (t ShortTag) Equal(other Tag) bool {
	o, ok := other.(ShortTag)
	return ok && o == t
}

func (t IntTag) Equal(other Tag) bool {
	o, ok := other.(IntTag)
	return ok && o == t
}

func (t LongTag) Equal(other Tag) bool {
	o, ok := other.(LongTag)
	return ok && o == t
}

// Equal compares bit patterns, so NaN equals itself.
func (t FloatTag) Equal(other Tag) bool {
	o, ok := other.(FloatTag)
	return ok && math.Float32bits(float32(o)) == math.Float32bits(float32(t))
}

// Equal compares bit patterns, so NaN equals itself.
func (t DoubleTag) Equal(other Tag) bool {
	o, ok := other.(DoubleTag)
	return ok && math.Float64bits(float64(o)) == math.Float64bits(float64(t))
}

func (t BooleanTag) Equal(other Tag) bool {
	o, ok := other.(BooleanTag)
	return ok && o == t
}

func (t CharTag) Equal(other Tag) bool {
	o, ok := other.(CharTag)
	return ok && o == t
}

func (t StringTag) Equal(other Tag) bool {
	o, ok := other.(StringTag)
	return ok && o == t
}

func (t UuidTag) Equal(other Tag) bool {
	o, ok := other.(UuidTag)
	return ok && o == t
}

func (EmptyTag) String() string     { return "" }
func (t ByteTag) String() string    { return strconv.FormatInt(int64(t), 10) + "b" }
func (t ShortTag) String() string   { return strconv.FormatInt(int64(t), 10) + "s" }
func (t IntTag) String() string     { return strconv.FormatInt(int64(t), 10) }
func (t LongTag) String() string    { return strconv.FormatInt(int64(t), 10) + "L" }
func (t FloatTag) String() string   { return strconv.FormatFloat(float64(t), 'g', -1, 32) + "f" }
func (t DoubleTag) String() string  { return strconv.FormatFloat(float64(t), 'g', -1, 64) + "d" }
func (t BooleanTag) String() string { return strconv.FormatBool(bool(t)) }
func (t CharTag) String() string    { return strconv.QuoteRune(rune(t)) }
func (t StringTag) String() string  { return strconv.Quote(string(t)) }
func (t UuidTag) String() string    { return uuid.UUID(t).String() }

func readEmpty(*Reader) (Tag, error) { return EmptyTag{}, nil }

func readByte(r *Reader) (Tag, error) {
	v, err := r.ReadInt8()
	return ByteTag(v), r.leaf(err)
}

func readShort(r *Reader) (Tag, error) {
	v, err := r.ReadInt16()
	return ShortTag(v), r.leaf(err)
}

func readInt(r *Reader) (Tag, error) {
	v, err := r.ReadInt32()
	return IntTag(v), r.leaf(err)
}

func readLong(r *Reader) (Tag, error) {
	v, err := r.ReadInt64()
	return LongTag(v), r.leaf(err)
}

func readFloat(r *Reader) (Tag, error) {
	v, err := r.ReadFloat32()
	return FloatTag(v), r.leaf(err)
}

func readDouble(r *Reader) (Tag, error) {
	v, err := r.ReadFloat64()
	return DoubleTag(v), r.leaf(err)
}

func readBoolean(r *Reader) (Tag, error) {
	v, err := r.ReadBool()
	return BooleanTag(v), r.leaf(err)
}

func readChar(r *Reader) (Tag, error) {
	v, err := r.ReadChar()
	return CharTag(v), r.leaf(err)
}

func readString(r *Reader) (Tag, error) {
	v, err := r.ReadUTF()
	return StringTag(v), r.leaf(err)
}

// readUUID degrades to the nil uuid under the lenient policy, both for
// stream failures and for text that does not parse.
func readUUID(r *Reader) (Tag, error) {
	s, err := r.ReadUTF()
	if err != nil {
		return UuidTag(uuid.Nil), r.leaf(err)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return UuidTag(uuid.Nil), r.leaf(fmt.Errorf("tag: invalid uuid %q: %w", s, err))
	}
	return UuidTag(id), nil
}
