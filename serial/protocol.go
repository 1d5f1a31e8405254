// Package serial defines the structured-encoding protocol shared by every
// format in this module.
//
// A value is described by a Descriptor and visited by a SerializationStrategy
// that drives an Encoder: primitives are written with typed leaf calls,
// structures and collections are opened with BeginStructure/BeginCollection
// and written element by element through a CompositeEncoder. Decoding mirrors
// this with Decoder and CompositeDecoder.
//
// Formats (binary tag, JSON, YAML, Protobuf, ...) provide bindings of these
// interfaces; the strategy package decorates any binding.
package serial

const (
	// DecodeDone is returned by DecodeElementIndex once every element has been
	// visited.
	DecodeDone = -1
	// UnknownName is returned by name lookups that do not resolve to an
	// element.
	UnknownName = -3
)

// Char is a single UTF-16 code unit. Fields of this type are described with
// KindChar instead of KindInt.
type Char uint16

// Encoder writes one value.
type Encoder interface {
	EncodeBool(v bool) error
	EncodeByte(v int8) error
	EncodeShort(v int16) error
	EncodeInt(v int32) error
	EncodeLong(v int64) error
	EncodeFloat(v float32) error
	EncodeDouble(v float64) error
	EncodeChar(v Char) error
	EncodeString(v string) error
	EncodeEnum(d *Descriptor, ordinal int) error

	// EncodeNotNullMark announces that a nullable value follows.
	EncodeNotNullMark() error
	EncodeNull() error

	BeginStructure(d *Descriptor) (CompositeEncoder, error)
	BeginCollection(d *Descriptor, size int) (CompositeEncoder, error)

	EncodeSerializableValue(s SerializationStrategy, v any) error
	EncodeNullableSerializableValue(s SerializationStrategy, v any) error
}

// CompositeEncoder writes the elements of a structure or collection.
type CompositeEncoder interface {
	EncodeBoolElement(d *Descriptor, index int, v bool) error
	EncodeByteElement(d *Descriptor, index int, v int8) error
	EncodeShortElement(d *Descriptor, index int, v int16) error
	EncodeIntElement(d *Descriptor, index int, v int32) error
	EncodeLongElement(d *Descriptor, index int, v int64) error
	EncodeFloatElement(d *Descriptor, index int, v float32) error
	EncodeDoubleElement(d *Descriptor, index int, v float64) error
	EncodeCharElement(d *Descriptor, index int, v Char) error
	EncodeStringElement(d *Descriptor, index int, v string) error

	EncodeSerializableElement(d *Descriptor, index int, s SerializationStrategy, v any) error
	EncodeNullableSerializableElement(d *Descriptor, index int, s SerializationStrategy, v any) error

	EndStructure(d *Descriptor) error
}

// Decoder reads one value.
type Decoder interface {
	DecodeBool() (bool, error)
	DecodeByte() (int8, error)
	DecodeShort() (int16, error)
	DecodeInt() (int32, error)
	DecodeLong() (int64, error)
	DecodeFloat() (float32, error)
	DecodeDouble() (float64, error)
	DecodeChar() (Char, error)
	DecodeString() (string, error)
	DecodeEnum(d *Descriptor) (int, error)

	// DecodeNotNullMark reports whether a nullable value follows.
	DecodeNotNullMark() (bool, error)
	DecodeNull() error

	BeginStructure(d *Descriptor) (CompositeDecoder, error)

	DecodeSerializableValue(s DeserializationStrategy) (any, error)
	DecodeNullableSerializableValue(s DeserializationStrategy) (any, error)
}

// CompositeDecoder reads the elements of a structure or collection.
type CompositeDecoder interface {
	// DecodeElementIndex returns the index of the next element to decode,
	// DecodeDone at the end or UnknownName for input that matches no element.
	DecodeElementIndex(d *Descriptor) (int, error)
	// DecodeCollectionSize returns the collection size when it is known
	// upfront, -1 otherwise.
	DecodeCollectionSize(d *Descriptor) (int, error)
	// DecodeSequentially reports that elements are stored in declaration
	// order and may be read without DecodeElementIndex.
	DecodeSequentially() bool

	DecodeBoolElement(d *Descriptor, index int) (bool, error)
	DecodeByteElement(d *Descriptor, index int) (int8, error)
	DecodeShortElement(d *Descriptor, index int) (int16, error)
	DecodeIntElement(d *Descriptor, index int) (int32, error)
	DecodeLongElement(d *Descriptor, index int) (int64, error)
	DecodeFloatElement(d *Descriptor, index int) (float32, error)
	DecodeDoubleElement(d *Descriptor, index int) (float64, error)
	DecodeCharElement(d *Descriptor, index int) (Char, error)
	DecodeStringElement(d *Descriptor, index int) (string, error)

	DecodeSerializableElement(d *Descriptor, index int, s DeserializationStrategy) (any, error)
	DecodeNullableSerializableElement(d *Descriptor, index int, s DeserializationStrategy) (any, error)

	EndStructure(d *Descriptor) error
}

// SerializationStrategy writes values of one shape.
type SerializationStrategy interface {
	Descriptor() *Descriptor
	Serialize(e Encoder, v any) error
}

// DeserializationStrategy reads values of one shape.
type DeserializationStrategy interface {
	Descriptor() *Descriptor
	Deserialize(d Decoder) (any, error)
}

// Serializer is both halves.
type Serializer interface {
	SerializationStrategy
	DeserializationStrategy
}

// BinaryFormat encodes values to and from bytes.
type BinaryFormat interface {
	Name() string
	EncodeToBytes(s SerializationStrategy, v any) ([]byte, error)
	DecodeFromBytes(s DeserializationStrategy, data []byte) (any, error)
}

// StringFormat encodes values to and from text.
type StringFormat interface {
	Name() string
	EncodeToString(s SerializationStrategy, v any) (string, error)
	DecodeFromString(s DeserializationStrategy, data string) (any, error)
}
