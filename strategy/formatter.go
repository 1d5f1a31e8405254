package strategy

import "github.com/WalkNetwork/serializer-framework/serial"

// Formatter holds the encoder and decoder strategies applied by the format
// facades. The zero value applies Identity.
type Formatter struct {
	Encoder EncoderStrategy
	Decoder DecoderStrategy
}

// NewFormatter applies s in both directions.
func NewFormatter(s Strategy) Formatter {
	return Formatter{Encoder: s, Decoder: s}
}

// Serializer decorates s with the encoder strategy.
func (f Formatter) Serializer(s serial.SerializationStrategy) serial.SerializationStrategy {
	if f.Encoder == nil {
		return NewSerialEncoder(Identity{}, s)
	}
	return NewSerialEncoder(f.Encoder, s)
}

// Deserializer decorates s with the decoder strategy.
func (f Formatter) Deserializer(s serial.DeserializationStrategy) serial.DeserializationStrategy {
	if f.Decoder == nil {
		return NewSerialDecoder(Identity{}, s)
	}
	return NewSerialDecoder(f.Decoder, s)
}

// StringFormatter is a serial.StringFormat whose values pass through the
// strategies on their way in and out of Model.
type StringFormatter struct {
	Formatter
	Model serial.StringFormat
}

var _ serial.StringFormat = (*StringFormatter)(nil)

// NewStringFormatter wraps model with s in both directions.
func NewStringFormatter(model serial.StringFormat, s Strategy) *StringFormatter {
	return &StringFormatter{Formatter: NewFormatter(s), Model: model}
}

func (f *StringFormatter) Name() string { return f.Model.Name() }

func (f *StringFormatter) EncodeToString(s serial.SerializationStrategy, v any) (string, error) {
	return f.Model.EncodeToString(f.Serializer(s), v)
}

func (f *StringFormatter) DecodeFromString(s serial.DeserializationStrategy, data string) (any, error) {
	return f.Model.DecodeFromString(f.Deserializer(s), data)
}

// BinaryFormatter is StringFormatter for binary formats.
type BinaryFormatter struct {
	Formatter
	Model serial.BinaryFormat
}

var _ serial.BinaryFormat = (*BinaryFormatter)(nil)

// NewBinaryFormatter wraps model with s in both directions.
func NewBinaryFormatter(model serial.BinaryFormat, s Strategy) *BinaryFormatter {
	return &BinaryFormatter{Formatter: NewFormatter(s), Model: model}
}

func (f *BinaryFormatter) Name() string { return f.Model.Name() }

func (f *BinaryFormatter) EncodeToBytes(s serial.SerializationStrategy, v any) ([]byte, error) {
	return f.Model.EncodeToBytes(f.Serializer(s), v)
}

func (f *BinaryFormatter) DecodeFromBytes(s serial.DeserializationStrategy, data []byte) (any, error) {
	return f.Model.DecodeFromBytes(f.Deserializer(s), data)
}
