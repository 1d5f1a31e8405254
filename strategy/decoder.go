package strategy

import "github.com/WalkNetwork/serializer-framework/serial"

// SerialDecoder wraps a DeserializationStrategy so that the value it reads
// comes through a Decoder decorated with the strategy.
type SerialDecoder struct {
	strategy DecoderStrategy
	model    serial.DeserializationStrategy
	parent   *serial.Descriptor
	index    int
}

var _ serial.DeserializationStrategy = (*SerialDecoder)(nil)

// NewSerialDecoder decorates model for use at the root of a decode.
func NewSerialDecoder(strategy DecoderStrategy, model serial.DeserializationStrategy) *SerialDecoder {
	return &SerialDecoder{strategy: strategy, model: model, index: -1}
}

func (s *SerialDecoder) Descriptor() *serial.Descriptor { return s.model.Descriptor() }

func (s *SerialDecoder) Deserialize(d serial.Decoder) (any, error) {
	return s.model.Deserialize(&Decoder{strategy: s.strategy, model: d, parent: s.parent, index: s.index})
}

// Decoder decorates a serial.Decoder.
type Decoder struct {
	strategy DecoderStrategy
	model    serial.Decoder
	parent   *serial.Descriptor
	index    int
}

var _ serial.Decoder = (*Decoder)(nil)

// NewDecoder decorates model for use at the root of a decode.
func NewDecoder(strategy DecoderStrategy, model serial.Decoder) *Decoder {
	return &Decoder{strategy: strategy, model: model, index: -1}
}

func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.model.DecodeBool()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeBool(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeByte() (int8, error) {
	v, err := d.model.DecodeByte()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeByte(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeShort() (int16, error) {
	v, err := d.model.DecodeShort()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeShort(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeInt() (int32, error) {
	v, err := d.model.DecodeInt()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeInt(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeLong() (int64, error) {
	v, err := d.model.DecodeLong()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeLong(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeFloat() (float32, error) {
	v, err := d.model.DecodeFloat()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeFloat(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeDouble() (float64, error) {
	v, err := d.model.DecodeDouble()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeDouble(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeChar() (serial.Char, error) {
	v, err := d.model.DecodeChar()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeChar(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeString() (string, error) {
	v, err := d.model.DecodeString()
	if err != nil {
		return v, err
	}
	return d.strategy.DecodeString(d.parent, d.index, v), nil
}

func (d *Decoder) DecodeEnum(desc *serial.Descriptor) (int, error) {
	return d.model.DecodeEnum(desc)
}

func (d *Decoder) DecodeNotNullMark() (bool, error) { return d.model.DecodeNotNullMark() }
func (d *Decoder) DecodeNull() error                { return d.model.DecodeNull() }

func (d *Decoder) BeginStructure(desc *serial.Descriptor) (serial.CompositeDecoder, error) {
	cd, err := d.model.BeginStructure(desc)
	if err != nil {
		return nil, err
	}
	return &CompositeDecoder{strategy: d.strategy, model: cd}, nil
}

func (d *Decoder) DecodeSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return d.model.DecodeSerializableValue(d.wrap(s))
}

func (d *Decoder) DecodeNullableSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return d.model.DecodeNullableSerializableValue(d.wrap(s))
}

func (d *Decoder) wrap(s serial.DeserializationStrategy) serial.DeserializationStrategy {
	return &SerialDecoder{strategy: d.strategy, model: s, parent: d.parent, index: d.index}
}

// CompositeDecoder decorates a serial.CompositeDecoder. Element indexes are
// passed through DecodeIndex.
type CompositeDecoder struct {
	strategy DecoderStrategy
	model    serial.CompositeDecoder
}

var _ serial.CompositeDecoder = (*CompositeDecoder)(nil)

func (c *CompositeDecoder) DecodeElementIndex(d *serial.Descriptor) (int, error) {
	index, err := c.model.DecodeElementIndex(d)
	if err != nil {
		return index, err
	}
	return c.strategy.DecodeIndex(d, index), nil
}

func (c *CompositeDecoder) DecodeCollectionSize(d *serial.Descriptor) (int, error) {
	return c.model.DecodeCollectionSize(d)
}

func (c *CompositeDecoder) DecodeSequentially() bool { return c.model.DecodeSequentially() }

func (c *CompositeDecoder) DecodeBoolElement(d *serial.Descriptor, index int) (bool, error) {
	v, err := c.model.DecodeBoolElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeBool(d, index, v), nil
}

func (c *CompositeDecoder) DecodeByteElement(d *serial.Descriptor, index int) (int8, error) {
	v, err := c.model.DecodeByteElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeByte(d, index, v), nil
}

func (c *CompositeDecoder) DecodeShortElement(d *serial.Descriptor, index int) (int16, error) {
	v, err := c.model.DecodeShortElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeShort(d, index, v), nil
}

func (c *CompositeDecoder) DecodeIntElement(d *serial.Descriptor, index int) (int32, error) {
	v, err := c.model.DecodeIntElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeInt(d, index, v), nil
}

func (c *CompositeDecoder) DecodeLongElement(d *serial.Descriptor, index int) (int64, error) {
	v, err := c.model.DecodeLongElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeLong(d, index, v), nil
}

func (c *CompositeDecoder) DecodeFloatElement(d *serial.Descriptor, index int) (float32, error) {
	v, err := c.model.DecodeFloatElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeFloat(d, index, v), nil
}

func (c *CompositeDecoder) DecodeDoubleElement(d *serial.Descriptor, index int) (float64, error) {
	v, err := c.model.DecodeDoubleElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeDouble(d, index, v), nil
}

func (c *CompositeDecoder) DecodeCharElement(d *serial.Descriptor, index int) (serial.Char, error) {
	v, err := c.model.DecodeCharElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeChar(d, index, v), nil
}

func (c *CompositeDecoder) DecodeStringElement(d *serial.Descriptor, index int) (string, error) {
	v, err := c.model.DecodeStringElement(d, index)
	if err != nil {
		return v, err
	}
	return c.strategy.DecodeString(d, index, v), nil
}

func (c *CompositeDecoder) DecodeSerializableElement(d *serial.Descriptor, index int, s serial.DeserializationStrategy) (any, error) {
	return c.model.DecodeSerializableElement(d, index, &SerialDecoder{strategy: c.strategy, model: s, parent: d, index: index})
}

func (c *CompositeDecoder) DecodeNullableSerializableElement(d *serial.Descriptor, index int, s serial.DeserializationStrategy) (any, error) {
	return c.model.DecodeNullableSerializableElement(d, index, &SerialDecoder{strategy: c.strategy, model: s, parent: d, index: index})
}

func (c *CompositeDecoder) EndStructure(d *serial.Descriptor) error {
	return c.model.EndStructure(d)
}
