// Package msgpack registers the "msgpack" format. Maps are written in
// member order with the smallest integer encodings.
package msgpack

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/WalkNetwork/serializer-framework/serial"
)

const Name = "msgpack"

func init() {
	format.Register(Name, func(format.Options) (serial.BinaryFormat, error) {
		return New(), nil
	})
}

func New() *tree.Format {
	return tree.NewFormat(Name, engine{})
}

type engine struct{}

func (engine) Render(node any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encode(enc, node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(enc *msgpack.Encoder, node any) error {
	switch x := node.(type) {
	case nil:
		return enc.EncodeNil()
	case bool:
		return enc.EncodeBool(x)
	case int64:
		return enc.EncodeInt(x)
	case float64:
		return enc.EncodeFloat64(x)
	case string:
		return enc.EncodeString(x)
	case []any:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for i, e := range x {
			if err := encode(enc, e); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case *tree.Object:
		if err := enc.EncodeMapLen(x.Len()); err != nil {
			return err
		}
		for _, m := range x.Members {
			if err := enc.EncodeString(m.Key); err != nil {
				return err
			}
			if err := encode(enc, m.Value); err != nil {
				return fmt.Errorf("%s: %w", m.Key, err)
			}
		}
		return nil
	}
	n, err := tree.FromNative(node)
	if err != nil {
		return err
	}
	return encode(enc, n)
}

func (engine) Parse(data []byte) (any, error) {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	node, err := decode(dec)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, fmt.Errorf("%d unexpected bytes after top-level value", r.Len())
	}
	return node, nil
}

func decode(dec *msgpack.Decoder) (any, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		obj := tree.NewObject()
		for i := 0; i < n; i++ {
			k, err := dec.DecodeInterfaceLoose()
			if err != nil {
				return nil, err
			}
			key, err := mapKey(k)
			if err != nil {
				return nil, err
			}
			v, err := decode(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			obj.Set(key, v)
		}
		return obj, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := decode(dec)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return items, nil
	}

	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return nil, err
	}
	return tree.FromNative(v)
}

func mapKey(k any) (string, error) {
	switch x := k.(type) {
	case string:
		return x, nil
	case int64, uint64, float64, bool:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("unsupported map key %T", k)
}
