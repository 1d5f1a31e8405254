// Package cbor registers the "cbor" format. Output uses Core Deterministic
// Encoding (RFC 8949 §4.2): map keys are sorted and integers take their
// smallest form, so equal values always produce identical bytes.
package cbor

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/WalkNetwork/serializer-framework/serial"
)

const Name = "cbor"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cbor: encoder initialization failed: " + err.Error())
	}

	// Values decoded into any get string-keyed maps, which is all the
	// tree model can hold.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("cbor: decoder initialization failed: " + err.Error())
	}

	format.Register(Name, func(format.Options) (serial.BinaryFormat, error) {
		return New(), nil
	})
}

func New() *tree.Format {
	return tree.NewFormat(Name, engine{})
}

type engine struct{}

func (engine) Render(node any) ([]byte, error) {
	return encMode.Marshal(tree.ToNative(node))
}

func (engine) Parse(data []byte) (any, error) {
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return tree.FromNative(v)
}
