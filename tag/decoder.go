package tag

import (
	"fmt"

	"github.com/WalkNetwork/serializer-framework/serial"
)

// Decoder reads values written by Encoder. It keeps only an element cursor:
// the descriptor given on decode must have the same shape as the one used on
// encode, field names are never consulted.
//
// Unlike Tag reads, every stream error is returned, whatever the reader's
// policy.
type Decoder struct {
	r            *Reader
	size         int
	elementIndex int
}

var (
	_ serial.Decoder          = (*Decoder)(nil)
	_ serial.CompositeDecoder = (*Decoder)(nil)
)

// NewDecoder returns a Decoder over r expecting size elements when used as a
// CompositeDecoder.
func NewDecoder(r *Reader, size int) *Decoder {
	return &Decoder{r: r, size: size}
}

func (d *Decoder) DecodeBool() (bool, error)      { return d.r.ReadBool() }
func (d *Decoder) DecodeByte() (int8, error)      { return d.r.ReadInt8() }
func (d *Decoder) DecodeShort() (int16, error)    { return d.r.ReadInt16() }
func (d *Decoder) DecodeInt() (int32, error)      { return d.r.ReadInt32() }
func (d *Decoder) DecodeLong() (int64, error)     { return d.r.ReadInt64() }
func (d *Decoder) DecodeFloat() (float32, error)  { return d.r.ReadFloat32() }
func (d *Decoder) DecodeDouble() (float64, error) { return d.r.ReadFloat64() }
func (d *Decoder) DecodeString() (string, error)  { return d.r.ReadUTF() }

func (d *Decoder) DecodeChar() (serial.Char, error) {
	v, err := d.r.ReadChar()
	return serial.Char(v), err
}

func (d *Decoder) DecodeEnum(desc *serial.Descriptor) (int, error) {
	v, err := d.r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if v < 0 || int(v) >= len(desc.EnumValues) {
		return 0, fmt.Errorf("tag: ordinal %d out of range for %s: %w", v, desc.Name, serial.ErrUnknownEnum)
	}
	return int(v), nil
}

func (d *Decoder) DecodeNotNullMark() (bool, error) { return d.r.ReadBool() }
func (d *Decoder) DecodeNull() error                { return nil }

func (d *Decoder) BeginStructure(desc *serial.Descriptor) (serial.CompositeDecoder, error) {
	return NewDecoder(d.r, desc.ElementsCount()), nil
}

func (d *Decoder) DecodeSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return s.Deserialize(d)
}

func (d *Decoder) DecodeNullableSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return serial.DecodeNullable(d, s)
}

func (d *Decoder) DecodeElementIndex(*serial.Descriptor) (int, error) {
	if d.elementIndex >= d.size {
		return serial.DecodeDone, nil
	}
	i := d.elementIndex
	d.elementIndex++
	return i, nil
}

// DecodeCollectionSize reads the int32 count and uses it as the element
// bound of this decoder.
func (d *Decoder) DecodeCollectionSize(*serial.Descriptor) (int, error) {
	n, err := d.r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("tag: negative collection size %d", n)
	}
	d.size = int(n)
	return d.size, nil
}

func (d *Decoder) DecodeSequentially() bool { return true }

func (d *Decoder) DecodeBoolElement(*serial.Descriptor, int) (bool, error) {
	return d.DecodeBool()
}

func (d *Decoder) DecodeByteElement(*serial.Descriptor, int) (int8, error) {
	return d.DecodeByte()
}

func (d *Decoder) DecodeShortElement(*serial.Descriptor, int) (int16, error) {
	return d.DecodeShort()
}

func (d *Decoder) DecodeIntElement(*serial.Descriptor, int) (int32, error) {
	return d.DecodeInt()
}

func (d *Decoder) DecodeLongElement(*serial.Descriptor, int) (int64, error) {
	return d.DecodeLong()
}

func (d *Decoder) DecodeFloatElement(*serial.Descriptor, int) (float32, error) {
	return d.DecodeFloat()
}

func (d *Decoder) DecodeDoubleElement(*serial.Descriptor, int) (float64, error) {
	return d.DecodeDouble()
}

func (d *Decoder) DecodeCharElement(*serial.Descriptor, int) (serial.Char, error) {
	return d.DecodeChar()
}

func (d *Decoder) DecodeStringElement(*serial.Descriptor, int) (string, error) {
	return d.DecodeString()
}

func (d *Decoder) DecodeSerializableElement(_ *serial.Descriptor, _ int, s serial.DeserializationStrategy) (any, error) {
	return d.DecodeSerializableValue(s)
}

func (d *Decoder) DecodeNullableSerializableElement(_ *serial.Descriptor, _ int, s serial.DeserializationStrategy) (any, error) {
	return d.DecodeNullableSerializableValue(s)
}

func (d *Decoder) EndStructure(*serial.Descriptor) error { return nil }
