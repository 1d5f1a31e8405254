package tree

import (
	"fmt"
	"unicode/utf16"

	"github.com/WalkNetwork/serializer-framework/serial"
)

// Encode writes v through s into a tree node.
func Encode(s serial.SerializationStrategy, v any) (any, error) {
	var root any
	e := &Encoder{put: func(n any) { root = n }}
	if err := s.Serialize(e, v); err != nil {
		return nil, err
	}
	return root, nil
}

// Encoder is the serial.Encoder that builds tree nodes. Each value is handed
// to put once it is known.
type Encoder struct {
	put func(node any)
}

func (e *Encoder) EncodeBool(v bool) error      { e.put(v); return nil }
func (e *Encoder) EncodeByte(v int8) error      { e.put(int64(v)); return nil }
func (e *Encoder) EncodeShort(v int16) error    { e.put(int64(v)); return nil }
func (e *Encoder) EncodeInt(v int32) error      { e.put(int64(v)); return nil }
func (e *Encoder) EncodeLong(v int64) error     { e.put(v); return nil }
func (e *Encoder) EncodeFloat(v float32) error  { e.put(widen(v)); return nil }
func (e *Encoder) EncodeDouble(v float64) error { e.put(v); return nil }
func (e *Encoder) EncodeString(v string) error  { e.put(v); return nil }
func (e *Encoder) EncodeNotNullMark() error     { return nil }
func (e *Encoder) EncodeNull() error            { e.put(nil); return nil }

// EncodeChar writes a one-character string, or the code unit as an integer
// when it is a lone surrogate with no UTF-8 form.
func (e *Encoder) EncodeChar(v serial.Char) error {
	if utf16.IsSurrogate(rune(v)) {
		e.put(int64(v))
		return nil
	}
	e.put(string(rune(v)))
	return nil
}

func (e *Encoder) EncodeEnum(d *serial.Descriptor, ordinal int) error {
	if ordinal < 0 || ordinal >= len(d.EnumValues) {
		return fmt.Errorf("tree: %d is not a valid %s: %w", ordinal, d.Name, serial.ErrUnknownEnum)
	}
	e.put(d.EnumValues[ordinal])
	return nil
}

func (e *Encoder) BeginStructure(d *serial.Descriptor) (serial.CompositeEncoder, error) {
	return e.begin(d, 0)
}

func (e *Encoder) BeginCollection(d *serial.Descriptor, size int) (serial.CompositeEncoder, error) {
	return e.begin(d, size)
}

func (e *Encoder) begin(d *serial.Descriptor, size int) (serial.CompositeEncoder, error) {
	switch d.Kind {
	case serial.KindList:
		items := make([]any, 0, size)
		return &compositeEncoder{
			at: func(_ *serial.Descriptor, index int) (*Encoder, error) {
				for len(items) <= index {
					items = append(items, nil)
				}
				return &Encoder{put: func(n any) { items[index] = n }}, nil
			},
			end: func() { e.put(items) },
		}, nil
	case serial.KindMap:
		obj := &Object{Members: make([]Member, 0, size)}
		e.put(obj)
		return &compositeEncoder{at: mapSlot(obj)}, nil
	default:
		obj := &Object{Members: make([]Member, 0, d.ElementsCount())}
		e.put(obj)
		return &compositeEncoder{
			at: func(d *serial.Descriptor, index int) (*Encoder, error) {
				name := d.ElementName(index)
				if name == "" {
					return nil, fmt.Errorf("tree: %s has no element %d", d.Name, index)
				}
				return &Encoder{put: func(n any) { obj.Set(name, n) }}, nil
			},
		}, nil
	}
}

// mapSlot places keys, received at even indices, and values, at odd ones.
func mapSlot(obj *Object) func(*serial.Descriptor, int) (*Encoder, error) {
	var (
		key    string
		keyErr error
	)
	return func(_ *serial.Descriptor, index int) (*Encoder, error) {
		if index%2 == 0 {
			return &Encoder{put: func(n any) { key, keyErr = keyString(n) }}, nil
		}
		if keyErr != nil {
			return nil, keyErr
		}
		k := key
		return &Encoder{put: func(n any) { obj.Set(k, n) }}, nil
	}
}

func (e *Encoder) EncodeSerializableValue(s serial.SerializationStrategy, v any) error {
	return s.Serialize(e, v)
}

func (e *Encoder) EncodeNullableSerializableValue(s serial.SerializationStrategy, v any) error {
	return serial.EncodeNullable(e, s, v)
}

// compositeEncoder writes each element through the Encoder returned by at.
type compositeEncoder struct {
	at  func(d *serial.Descriptor, index int) (*Encoder, error)
	end func()
}

func (c *compositeEncoder) EncodeBoolElement(d *serial.Descriptor, index int, v bool) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeBool(v)
}

func (c *compositeEncoder) EncodeByteElement(d *serial.Descriptor, index int, v int8) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeByte(v)
}

func (c *compositeEncoder) EncodeShortElement(d *serial.Descriptor, index int, v int16) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeShort(v)
}

func (c *compositeEncoder) EncodeIntElement(d *serial.Descriptor, index int, v int32) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeInt(v)
}

func (c *compositeEncoder) EncodeLongElement(d *serial.Descriptor, index int, v int64) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeLong(v)
}

func (c *compositeEncoder) EncodeFloatElement(d *serial.Descriptor, index int, v float32) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeFloat(v)
}

func (c *compositeEncoder) EncodeDoubleElement(d *serial.Descriptor, index int, v float64) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeDouble(v)
}

func (c *compositeEncoder) EncodeCharElement(d *serial.Descriptor, index int, v serial.Char) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeChar(v)
}

func (c *compositeEncoder) EncodeStringElement(d *serial.Descriptor, index int, v string) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return e.EncodeString(v)
}

func (c *compositeEncoder) EncodeSerializableElement(d *serial.Descriptor, index int, s serial.SerializationStrategy, v any) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return s.Serialize(e, v)
}

func (c *compositeEncoder) EncodeNullableSerializableElement(d *serial.Descriptor, index int, s serial.SerializationStrategy, v any) error {
	e, err := c.at(d, index)
	if err != nil {
		return err
	}
	return serial.EncodeNullable(e, s, v)
}

func (c *compositeEncoder) EndStructure(*serial.Descriptor) error {
	if c.end != nil {
		c.end()
	}
	return nil
}
