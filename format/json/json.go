// Package json registers the "json" format. Comments and trailing commas
// are accepted on input; object members keep their order.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/WalkNetwork/serializer-framework/serial"
)

const Name = "json"

func init() {
	format.Register(Name, func(opts format.Options) (serial.BinaryFormat, error) {
		return New(opts.Pretty), nil
	})
}

// New returns the JSON format, indented with two spaces when pretty.
func New(pretty bool) *tree.Format {
	return tree.NewFormat(Name, engine{pretty: pretty})
}

type engine struct {
	pretty bool
}

func (e engine) Render(node any) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(&buf, node); err != nil {
		return nil, err
	}
	if !e.pretty {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := gojson.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func render(buf *bytes.Buffer, node any) error {
	switch x := node.(type) {
	case *tree.Object:
		buf.WriteByte('{')
		for i, m := range x.Members {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := scalar(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := render(buf, m.Value); err != nil {
				return fmt.Errorf("%s: %w", m.Key, err)
			}
		}
		buf.WriteByte('}')
		return nil
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := render(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}
	return scalar(buf, node)
}

func scalar(buf *bytes.Buffer, v any) error {
	data, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func (engine) Parse(data []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	node, err := parse(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return node, nil
}

func parse(dec *gojson.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			obj := tree.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string, found %v", keyTok)
				}
				v, err := parse(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			items := []any{}
			for dec.More() {
				v, err := parse(dec)
				if err != nil {
					return nil, fmt.Errorf("[%d]: %w", len(items), err)
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		}
		return nil, fmt.Errorf("unexpected %v", t)
	case gojson.Number:
		return tree.FromNative(t)
	}
	return tok, nil
}
