package tag

import (
	"fmt"

	"github.com/WalkNetwork/serializer-framework/serial"
)

// Encoder writes values positionally onto a Writer: no ids, no field names.
// Fields are written in descriptor order, collections as an int32 count
// followed by their elements, nullable values behind a bool marker and enums
// as int32 ordinals.
//
// Encoder is its own CompositeEncoder; nested structures share the stream.
type Encoder struct {
	w *Writer
}

var (
	_ serial.Encoder          = (*Encoder)(nil)
	_ serial.CompositeEncoder = (*Encoder)(nil)
)

func NewEncoder(w *Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) EncodeBool(v bool) error      { return e.w.WriteBool(v) }
func (e *Encoder) EncodeByte(v int8) error      { return e.w.WriteInt8(v) }
func (e *Encoder) EncodeShort(v int16) error    { return e.w.WriteInt16(v) }
func (e *Encoder) EncodeInt(v int32) error      { return e.w.WriteInt32(v) }
func (e *Encoder) EncodeLong(v int64) error     { return e.w.WriteInt64(v) }
func (e *Encoder) EncodeFloat(v float32) error  { return e.w.WriteFloat32(v) }
func (e *Encoder) EncodeDouble(v float64) error { return e.w.WriteFloat64(v) }
func (e *Encoder) EncodeChar(v serial.Char) error {
	return e.w.WriteChar(uint16(v))
}

// EncodeString fails for strings longer than 65535 bytes regardless of the
// writer's policy.
func (e *Encoder) EncodeString(v string) error {
	return e.w.WriteUTF(v)
}

func (e *Encoder) EncodeEnum(d *serial.Descriptor, ordinal int) error {
	if ordinal < 0 || ordinal >= len(d.EnumValues) {
		return fmt.Errorf("tag: ordinal %d out of range for %s: %w", ordinal, d.Name, serial.ErrUnknownEnum)
	}
	return e.w.WriteInt32(int32(ordinal))
}

func (e *Encoder) EncodeNotNullMark() error { return e.w.WriteBool(true) }
func (e *Encoder) EncodeNull() error        { return e.w.WriteBool(false) }

func (e *Encoder) BeginStructure(*serial.Descriptor) (serial.CompositeEncoder, error) {
	return e, nil
}

func (e *Encoder) BeginCollection(_ *serial.Descriptor, size int) (serial.CompositeEncoder, error) {
	if err := e.w.WriteInt32(int32(size)); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Encoder) EncodeSerializableValue(s serial.SerializationStrategy, v any) error {
	return s.Serialize(e, v)
}

func (e *Encoder) EncodeNullableSerializableValue(s serial.SerializationStrategy, v any) error {
	return serial.EncodeNullable(e, s, v)
}

func (e *Encoder) EncodeBoolElement(_ *serial.Descriptor, _ int, v bool) error {
	return e.EncodeBool(v)
}

func (e *Encoder) EncodeByteElement(_ *serial.Descriptor, _ int, v int8) error {
	return e.EncodeByte(v)
}

func (e *Encoder) EncodeShortElement(_ *serial.Descriptor, _ int, v int16) error {
	return e.EncodeShort(v)
}

func (e *Encoder) EncodeIntElement(_ *serial.Descriptor, _ int, v int32) error {
	return e.EncodeInt(v)
}

func (e *Encoder) EncodeLongElement(_ *serial.Descriptor, _ int, v int64) error {
	return e.EncodeLong(v)
}

func (e *Encoder) EncodeFloatElement(_ *serial.Descriptor, _ int, v float32) error {
	return e.EncodeFloat(v)
}

func (e *Encoder) EncodeDoubleElement(_ *serial.Descriptor, _ int, v float64) error {
	return e.EncodeDouble(v)
}

func (e *Encoder) EncodeCharElement(_ *serial.Descriptor, _ int, v serial.Char) error {
	return e.EncodeChar(v)
}

func (e *Encoder) EncodeStringElement(_ *serial.Descriptor, _ int, v string) error {
	return e.EncodeString(v)
}

func (e *Encoder) EncodeSerializableElement(_ *serial.Descriptor, _ int, s serial.SerializationStrategy, v any) error {
	return e.EncodeSerializableValue(s, v)
}

func (e *Encoder) EncodeNullableSerializableElement(_ *serial.Descriptor, _ int, s serial.SerializationStrategy, v any) error {
	return e.EncodeNullableSerializableValue(s, v)
}

func (e *Encoder) EndStructure(*serial.Descriptor) error { return nil }
