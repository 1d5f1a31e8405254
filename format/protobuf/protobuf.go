// Package protobuf registers the "protobuf" format, which writes values in
// the protocol buffers wire format without a .proto schema.
//
// Structure element i is field i+1. Integers, booleans, chars and enums are
// varints, floats fixed32, doubles fixed64, strings and nested structures
// length-delimited. Lists are repeated fields and map entries are nested
// messages with the key in field 1 and the value in field 2. A list nested
// directly in a list (or a map in a list) is wrapped in a message holding it
// as field 1. Null values are left out. A root value that is not a
// structure is written as field 1 of the top-level message.
package protobuf

import (
	"errors"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/serial"
)

const Name = "protobuf"

// ErrNullElement is returned for null list items, which have no wire form.
var ErrNullElement = errors.New("protobuf: lists cannot hold null")

func init() {
	format.Register(Name, func(format.Options) (serial.BinaryFormat, error) {
		return New(), nil
	})
}

// Format is the protobuf wire format binding.
type Format struct{}

var _ serial.BinaryFormat = Format{}

func New() Format { return Format{} }

func (Format) Name() string { return Name }

func (Format) EncodeToBytes(s serial.SerializationStrategy, v any) ([]byte, error) {
	var out []byte
	if err := s.Serialize(&Encoder{out: &out, num: 1, root: true}, v); err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func (Format) DecodeFromBytes(s serial.DeserializationStrategy, data []byte) (any, error) {
	msg, err := parseMessage(data)
	if err != nil {
		return nil, err
	}
	return s.Deserialize(&Decoder{values: msg.fields[1], root: &msg})
}
