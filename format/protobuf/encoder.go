package protobuf

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/WalkNetwork/serializer-framework/serial"
)

// Encoder appends the value as field num of the message in out.
type Encoder struct {
	out *[]byte
	num protowire.Number
	// root structures write their fields into out directly.
	root   bool
	inList bool
}

func (e *Encoder) varint(v uint64) error {
	*e.out = protowire.AppendTag(*e.out, e.num, protowire.VarintType)
	*e.out = protowire.AppendVarint(*e.out, v)
	return nil
}

func (e *Encoder) EncodeBool(v bool) error        { return e.varint(protowire.EncodeBool(v)) }
func (e *Encoder) EncodeByte(v int8) error        { return e.varint(uint64(int64(v))) }
func (e *Encoder) EncodeShort(v int16) error      { return e.varint(uint64(int64(v))) }
func (e *Encoder) EncodeInt(v int32) error        { return e.varint(uint64(int64(v))) }
func (e *Encoder) EncodeLong(v int64) error       { return e.varint(uint64(v)) }
func (e *Encoder) EncodeChar(v serial.Char) error { return e.varint(uint64(v)) }

func (e *Encoder) EncodeFloat(v float32) error {
	*e.out = protowire.AppendTag(*e.out, e.num, protowire.Fixed32Type)
	*e.out = protowire.AppendFixed32(*e.out, math.Float32bits(v))
	return nil
}

func (e *Encoder) EncodeDouble(v float64) error {
	*e.out = protowire.AppendTag(*e.out, e.num, protowire.Fixed64Type)
	*e.out = protowire.AppendFixed64(*e.out, math.Float64bits(v))
	return nil
}

func (e *Encoder) EncodeString(v string) error {
	*e.out = protowire.AppendTag(*e.out, e.num, protowire.BytesType)
	*e.out = protowire.AppendString(*e.out, v)
	return nil
}

func (e *Encoder) EncodeEnum(d *serial.Descriptor, ordinal int) error {
	if ordinal < 0 || ordinal >= len(d.EnumValues) {
		return fmt.Errorf("protobuf: %d is not a valid %s: %w", ordinal, d.Name, serial.ErrUnknownEnum)
	}
	return e.varint(uint64(ordinal))
}

func (e *Encoder) EncodeNotNullMark() error { return nil }

func (e *Encoder) EncodeNull() error {
	if e.inList {
		return ErrNullElement
	}
	return nil
}

func (e *Encoder) EncodeSerializableValue(s serial.SerializationStrategy, v any) error {
	return s.Serialize(e, v)
}

func (e *Encoder) EncodeNullableSerializableValue(s serial.SerializationStrategy, v any) error {
	return serial.EncodeNullable(e, s, v)
}

func (e *Encoder) BeginStructure(d *serial.Descriptor) (serial.CompositeEncoder, error) {
	return e.begin(d)
}

func (e *Encoder) BeginCollection(d *serial.Descriptor, _ int) (serial.CompositeEncoder, error) {
	return e.begin(d)
}

// nested returns a buffer for a length-delimited child and the function
// that appends it to e once complete.
func (e *Encoder) nested() (*[]byte, func()) {
	child := []byte{}
	return &child, func() {
		*e.out = protowire.AppendTag(*e.out, e.num, protowire.BytesType)
		*e.out = protowire.AppendBytes(*e.out, child)
	}
}

func (e *Encoder) begin(d *serial.Descriptor) (serial.CompositeEncoder, error) {
	switch d.Kind {
	case serial.KindList, serial.KindMap:
		target, num, end := e.out, e.num, func() {}
		if e.inList {
			target, end = e.nested()
			num = 1
		}
		if d.Kind == serial.KindList {
			return &compositeEncoder{
				at: func(int) *Encoder {
					return &Encoder{out: target, num: num, inList: true}
				},
				end: end,
			}, nil
		}
		var entry []byte
		return &compositeEncoder{
			at: func(index int) *Encoder {
				if index%2 == 0 {
					entry = entry[:0]
					return &Encoder{out: &entry, num: 1}
				}
				return &Encoder{out: &entry, num: 2}
			},
			after: func(index int) {
				if index%2 == 1 {
					*target = protowire.AppendTag(*target, num, protowire.BytesType)
					*target = protowire.AppendBytes(*target, entry)
				}
			},
			end: end,
		}, nil
	}

	if e.root {
		out := e.out
		return &compositeEncoder{
			at: func(index int) *Encoder {
				return &Encoder{out: out, num: protowire.Number(index + 1)}
			},
		}, nil
	}
	child, end := e.nested()
	return &compositeEncoder{
		at: func(index int) *Encoder {
			return &Encoder{out: child, num: protowire.Number(index + 1)}
		},
		end: end,
	}, nil
}

// compositeEncoder writes element index through at(index) and then calls
// after(index).
type compositeEncoder struct {
	at    func(index int) *Encoder
	after func(index int)
	end   func()
}

func (c *compositeEncoder) done(index int, err error) error {
	if err == nil && c.after != nil {
		c.after(index)
	}
	return err
}

func (c *compositeEncoder) EncodeBoolElement(_ *serial.Descriptor, index int, v bool) error {
	return c.done(index, c.at(index).EncodeBool(v))
}

func (c *compositeEncoder) EncodeByteElement(_ *serial.Descriptor, index int, v int8) error {
	return c.done(index, c.at(index).EncodeByte(v))
}

func (c *compositeEncoder) EncodeShortElement(_ *serial.Descriptor, index int, v int16) error {
	return c.done(index, c.at(index).EncodeShort(v))
}

func (c *compositeEncoder) EncodeIntElement(_ *serial.Descriptor, index int, v int32) error {
	return c.done(index, c.at(index).EncodeInt(v))
}

func (c *compositeEncoder) EncodeLongElement(_ *serial.Descriptor, index int, v int64) error {
	return c.done(index, c.at(index).EncodeLong(v))
}

func (c *compositeEncoder) EncodeFloatElement(_ *serial.Descriptor, index int, v float32) error {
	return c.done(index, c.at(index).EncodeFloat(v))
}

func (c *compositeEncoder) EncodeDoubleElement(_ *serial.Descriptor, index int, v float64) error {
	return c.done(index, c.at(index).EncodeDouble(v))
}

func (c *compositeEncoder) EncodeCharElement(_ *serial.Descriptor, index int, v serial.Char) error {
	return c.done(index, c.at(index).EncodeChar(v))
}

func (c *compositeEncoder) EncodeStringElement(_ *serial.Descriptor, index int, v string) error {
	return c.done(index, c.at(index).EncodeString(v))
}

func (c *compositeEncoder) EncodeSerializableElement(_ *serial.Descriptor, index int, s serial.SerializationStrategy, v any) error {
	return c.done(index, s.Serialize(c.at(index), v))
}

func (c *compositeEncoder) EncodeNullableSerializableElement(_ *serial.Descriptor, index int, s serial.SerializationStrategy, v any) error {
	return c.done(index, serial.EncodeNullable(c.at(index), s, v))
}

func (c *compositeEncoder) EndStructure(*serial.Descriptor) error {
	if c.end != nil {
		c.end()
	}
	return nil
}
