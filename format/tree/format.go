package tree

import (
	"fmt"

	"github.com/WalkNetwork/serializer-framework/serial"
)

// Engine moves trees to and from a document syntax.
type Engine interface {
	Parse(data []byte) (any, error)
	Render(node any) ([]byte, error)
}

// Format binds an Engine to the serial protocol. It is both a
// serial.BinaryFormat and a serial.StringFormat.
type Format struct {
	name   string
	engine Engine
}

func NewFormat(name string, engine Engine) *Format {
	return &Format{name: name, engine: engine}
}

func (f *Format) Name() string { return f.name }

// Parse returns the tree held by data.
func (f *Format) Parse(data []byte) (any, error) {
	node, err := f.engine.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return node, nil
}

// Render writes node in the format's syntax.
func (f *Format) Render(node any) ([]byte, error) {
	data, err := f.engine.Render(node)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.name, err)
	}
	return data, nil
}

func (f *Format) EncodeToBytes(s serial.SerializationStrategy, v any) ([]byte, error) {
	node, err := Encode(s, v)
	if err != nil {
		return nil, err
	}
	return f.Render(node)
}

func (f *Format) DecodeFromBytes(s serial.DeserializationStrategy, data []byte) (any, error) {
	node, err := f.Parse(data)
	if err != nil {
		return nil, err
	}
	return Decode(s, node)
}

func (f *Format) EncodeToString(s serial.SerializationStrategy, v any) (string, error) {
	data, err := f.EncodeToBytes(s, v)
	return string(data), err
}

func (f *Format) DecodeFromString(s serial.DeserializationStrategy, data string) (any, error) {
	return f.DecodeFromBytes(s, []byte(data))
}
