package strategy

import "github.com/WalkNetwork/serializer-framework/serial"

// SerialEncoder wraps a SerializationStrategy so that the value it writes goes
// through an Encoder decorated with the strategy.
type SerialEncoder struct {
	strategy EncoderStrategy
	model    serial.SerializationStrategy
	parent   *serial.Descriptor
	index    int
}

var _ serial.SerializationStrategy = (*SerialEncoder)(nil)

// NewSerialEncoder decorates model for use at the root of an encode.
func NewSerialEncoder(strategy EncoderStrategy, model serial.SerializationStrategy) *SerialEncoder {
	return &SerialEncoder{strategy: strategy, model: model, index: -1}
}

func (s *SerialEncoder) Descriptor() *serial.Descriptor { return s.model.Descriptor() }

func (s *SerialEncoder) Serialize(e serial.Encoder, v any) error {
	return s.model.Serialize(&Encoder{strategy: s.strategy, model: e, parent: s.parent, index: s.index}, v)
}

// Encoder decorates a serial.Encoder. Leaf values are transformed with the
// position of the value in its parent; structures and collections are
// decorated with CompositeEncoder.
type Encoder struct {
	strategy EncoderStrategy
	model    serial.Encoder
	parent   *serial.Descriptor
	index    int
}

var _ serial.Encoder = (*Encoder)(nil)

// NewEncoder decorates model for use at the root of an encode.
func NewEncoder(strategy EncoderStrategy, model serial.Encoder) *Encoder {
	return &Encoder{strategy: strategy, model: model, index: -1}
}

func (e *Encoder) EncodeBool(v bool) error {
	return e.model.EncodeBool(e.strategy.EncodeBool(e.parent, e.index, v))
}

func (e *Encoder) EncodeByte(v int8) error {
	return e.model.EncodeByte(e.strategy.EncodeByte(e.parent, e.index, v))
}

func (e *Encoder) EncodeShort(v int16) error {
	return e.model.EncodeShort(e.strategy.EncodeShort(e.parent, e.index, v))
}

func (e *Encoder) EncodeInt(v int32) error {
	return e.model.EncodeInt(e.strategy.EncodeInt(e.parent, e.index, v))
}

func (e *Encoder) EncodeLong(v int64) error {
	return e.model.EncodeLong(e.strategy.EncodeLong(e.parent, e.index, v))
}

func (e *Encoder) EncodeFloat(v float32) error {
	return e.model.EncodeFloat(e.strategy.EncodeFloat(e.parent, e.index, v))
}

func (e *Encoder) EncodeDouble(v float64) error {
	return e.model.EncodeDouble(e.strategy.EncodeDouble(e.parent, e.index, v))
}

func (e *Encoder) EncodeChar(v serial.Char) error {
	return e.model.EncodeChar(e.strategy.EncodeChar(e.parent, e.index, v))
}

func (e *Encoder) EncodeString(v string) error {
	return e.model.EncodeString(e.strategy.EncodeString(e.parent, e.index, v))
}

func (e *Encoder) EncodeEnum(d *serial.Descriptor, ordinal int) error {
	return e.model.EncodeEnum(d, ordinal)
}

func (e *Encoder) EncodeNotNullMark() error { return e.model.EncodeNotNullMark() }
func (e *Encoder) EncodeNull() error        { return e.model.EncodeNull() }

func (e *Encoder) BeginStructure(d *serial.Descriptor) (serial.CompositeEncoder, error) {
	ce, err := e.model.BeginStructure(d)
	if err != nil {
		return nil, err
	}
	return &CompositeEncoder{strategy: e.strategy, model: ce}, nil
}

func (e *Encoder) BeginCollection(d *serial.Descriptor, size int) (serial.CompositeEncoder, error) {
	ce, err := e.model.BeginCollection(d, size)
	if err != nil {
		return nil, err
	}
	return &CompositeEncoder{strategy: e.strategy, model: ce}, nil
}

func (e *Encoder) EncodeSerializableValue(s serial.SerializationStrategy, v any) error {
	return e.model.EncodeSerializableValue(e.wrap(s), v)
}

func (e *Encoder) EncodeNullableSerializableValue(s serial.SerializationStrategy, v any) error {
	return e.model.EncodeNullableSerializableValue(e.wrap(s), v)
}

func (e *Encoder) wrap(s serial.SerializationStrategy) serial.SerializationStrategy {
	return &SerialEncoder{strategy: e.strategy, model: s, parent: e.parent, index: e.index}
}

// CompositeEncoder decorates a serial.CompositeEncoder: primitive elements are
// transformed, nested serializable elements are re-wrapped with their
// position.
type CompositeEncoder struct {
	strategy EncoderStrategy
	model    serial.CompositeEncoder
}

var _ serial.CompositeEncoder = (*CompositeEncoder)(nil)

func (c *CompositeEncoder) EncodeBoolElement(d *serial.Descriptor, index int, v bool) error {
	return c.model.EncodeBoolElement(d, index, c.strategy.EncodeBool(d, index, v))
}

func (c *CompositeEncoder) EncodeByteElement(d *serial.Descriptor, index int, v int8) error {
	return c.model.EncodeByteElement(d, index, c.strategy.EncodeByte(d, index, v))
}

func (c *CompositeEncoder) EncodeShortElement(d *serial.Descriptor, index int, v int16) error {
	return c.model.EncodeShortElement(d, index, c.strategy.EncodeShort(d, index, v))
}

func (c *CompositeEncoder) EncodeIntElement(d *serial.Descriptor, index int, v int32) error {
	return c.model.EncodeIntElement(d, index, c.strategy.EncodeInt(d, index, v))
}

func (c *CompositeEncoder) EncodeLongElement(d *serial.Descriptor, index int, v int64) error {
	return c.model.EncodeLongElement(d, index, c.strategy.EncodeLong(d, index, v))
}

func (c *CompositeEncoder) EncodeFloatElement(d *serial.Descriptor, index int, v float32) error {
	return c.model.EncodeFloatElement(d, index, c.strategy.EncodeFloat(d, index, v))
}

func (c *CompositeEncoder) EncodeDoubleElement(d *serial.Descriptor, index int, v float64) error {
	return c.model.EncodeDoubleElement(d, index, c.strategy.EncodeDouble(d, index, v))
}

func (c *CompositeEncoder) EncodeCharElement(d *serial.Descriptor, index int, v serial.Char) error {
	return c.model.EncodeCharElement(d, index, c.strategy.EncodeChar(d, index, v))
}

func (c *CompositeEncoder) EncodeStringElement(d *serial.Descriptor, index int, v string) error {
	return c.model.EncodeStringElement(d, index, c.strategy.EncodeString(d, index, v))
}

func (c *CompositeEncoder) EncodeSerializableElement(d *serial.Descriptor, index int, s serial.SerializationStrategy, v any) error {
	return c.model.EncodeSerializableElement(d, index, &SerialEncoder{strategy: c.strategy, model: s, parent: d, index: index}, v)
}

func (c *CompositeEncoder) EncodeNullableSerializableElement(d *serial.Descriptor, index int, s serial.SerializationStrategy, v any) error {
	return c.model.EncodeNullableSerializableElement(d, index, &SerialEncoder{strategy: c.strategy, model: s, parent: d, index: index}, v)
}

func (c *CompositeEncoder) EndStructure(d *serial.Descriptor) error {
	return c.model.EndStructure(d)
}
