package tree

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/WalkNetwork/serializer-framework/serial"
)

// ErrTypeMismatch is returned when a node does not hold the requested kind.
var ErrTypeMismatch = errors.New("tree: type mismatch")

// Decode reads a value of s from node.
func Decode(s serial.DeserializationStrategy, node any) (any, error) {
	return s.Deserialize(&Decoder{node: node})
}

// Decoder is the serial.Decoder over one tree node.
type Decoder struct {
	node any
}

func NewDecoder(node any) *Decoder {
	return &Decoder{node: node}
}

func mismatch(want string, node any) error {
	return fmt.Errorf("%w: expected %s, found %s", ErrTypeMismatch, want, describe(node))
}

func describe(node any) string {
	switch node.(type) {
	case nil:
		return "null"
	case *Object:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", node)
}

func (d *Decoder) DecodeBool() (bool, error) {
	switch x := d.node.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, mismatch("boolean", x)
		}
		return b, nil
	}
	return false, mismatch("boolean", d.node)
}

func (d *Decoder) DecodeByte() (int8, error) {
	v, err := d.integer(math.MinInt8, math.MaxInt8)
	return int8(v), err
}

func (d *Decoder) DecodeShort() (int16, error) {
	v, err := d.integer(math.MinInt16, math.MaxInt16)
	return int16(v), err
}

func (d *Decoder) DecodeInt() (int32, error) {
	v, err := d.integer(math.MinInt32, math.MaxInt32)
	return int32(v), err
}

func (d *Decoder) DecodeLong() (int64, error) {
	return d.integer(math.MinInt64, math.MaxInt64)
}

func (d *Decoder) DecodeFloat() (float32, error) {
	v, err := toFloat(d.node)
	return float32(v), err
}

func (d *Decoder) DecodeDouble() (float64, error) {
	return toFloat(d.node)
}

func (d *Decoder) DecodeChar() (serial.Char, error) {
	if s, ok := d.node.(string); ok {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) || r > math.MaxUint16 {
			return 0, fmt.Errorf("%w: expected a single character, found %q", ErrTypeMismatch, s)
		}
		return serial.Char(r), nil
	}
	v, err := d.integer(0, math.MaxUint16)
	return serial.Char(v), err
}

func (d *Decoder) DecodeString() (string, error) {
	switch x := d.node.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	}
	return "", mismatch("string", d.node)
}

// DecodeEnum accepts the constant name or its ordinal.
func (d *Decoder) DecodeEnum(desc *serial.Descriptor) (int, error) {
	var ordinal int
	if name, ok := d.node.(string); ok {
		ordinal = desc.EnumIndex(name)
	} else {
		v, err := d.integer(math.MinInt32, math.MaxInt32)
		if err != nil {
			return 0, err
		}
		ordinal = int(v)
	}
	if ordinal < 0 || ordinal >= len(desc.EnumValues) {
		return 0, fmt.Errorf("tree: %v is not a valid %s: %w", d.node, desc.Name, serial.ErrUnknownEnum)
	}
	return ordinal, nil
}

func (d *Decoder) DecodeNotNullMark() (bool, error) { return d.node != nil, nil }
func (d *Decoder) DecodeNull() error                { return nil }

func (d *Decoder) BeginStructure(desc *serial.Descriptor) (serial.CompositeDecoder, error) {
	switch desc.Kind {
	case serial.KindList:
		items, ok := d.node.([]any)
		if !ok {
			return nil, mismatch("array", d.node)
		}
		return newCompositeDecoder(len(items), len(items), func(index int) any { return items[index] }), nil
	case serial.KindMap:
		obj, ok := d.node.(*Object)
		if !ok {
			return nil, mismatch("object", d.node)
		}
		return newCompositeDecoder(obj.Len(), 2*obj.Len(), func(index int) any {
			m := obj.Members[index/2]
			if index%2 == 0 {
				return m.Key
			}
			return m.Value
		}), nil
	default:
		obj, ok := d.node.(*Object)
		if !ok {
			return nil, mismatch("object", d.node)
		}
		return newObjectDecoder(obj), nil
	}
}

func (d *Decoder) DecodeSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return s.Deserialize(d)
}

func (d *Decoder) DecodeNullableSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return serial.DecodeNullable(d, s)
}

func (d *Decoder) integer(lo, hi int64) (int64, error) {
	v, err := toInt(d.node)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %d is out of range [%d, %d]", ErrTypeMismatch, v, lo, hi)
	}
	return v, nil
}

func toInt(node any) (int64, error) {
	switch x := node.(type) {
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, mismatch("integer", x)
		}
		return int64(x), nil
	case string:
		v, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: expected integer, found %q", ErrTypeMismatch, x)
		}
		return v, nil
	case number:
		return x.Int64()
	case nil, bool, *Object, []any:
		return 0, mismatch("integer", node)
	}
	rv := reflect.ValueOf(node)
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint() && rv.Uint() <= math.MaxInt64:
		return int64(rv.Uint()), nil
	case rv.CanFloat():
		return toInt(rv.Float())
	}
	return 0, mismatch("integer", node)
}

func toFloat(node any) (float64, error) {
	switch x := node.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		v, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: expected number, found %q", ErrTypeMismatch, x)
		}
		return v, nil
	case number:
		return x.Float64()
	case nil, bool, *Object, []any:
		return 0, mismatch("number", node)
	}
	rv := reflect.ValueOf(node)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, mismatch("number", node)
}

// elementDecoder resolves the node of element index.
type elementDecoder func(desc *serial.Descriptor, index int) (*Decoder, error)

func (at elementDecoder) DecodeBoolElement(desc *serial.Descriptor, index int) (bool, error) {
	d, err := at(desc, index)
	if err != nil {
		return false, err
	}
	return d.DecodeBool()
}

func (at elementDecoder) DecodeByteElement(desc *serial.Descriptor, index int) (int8, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeByte()
}

func (at elementDecoder) DecodeShortElement(desc *serial.Descriptor, index int) (int16, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeShort()
}

func (at elementDecoder) DecodeIntElement(desc *serial.Descriptor, index int) (int32, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeInt()
}

func (at elementDecoder) DecodeLongElement(desc *serial.Descriptor, index int) (int64, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeLong()
}

func (at elementDecoder) DecodeFloatElement(desc *serial.Descriptor, index int) (float32, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeFloat()
}

func (at elementDecoder) DecodeDoubleElement(desc *serial.Descriptor, index int) (float64, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeDouble()
}

func (at elementDecoder) DecodeCharElement(desc *serial.Descriptor, index int) (serial.Char, error) {
	d, err := at(desc, index)
	if err != nil {
		return 0, err
	}
	return d.DecodeChar()
}

func (at elementDecoder) DecodeStringElement(desc *serial.Descriptor, index int) (string, error) {
	d, err := at(desc, index)
	if err != nil {
		return "", err
	}
	return d.DecodeString()
}

func (at elementDecoder) DecodeSerializableElement(desc *serial.Descriptor, index int, s serial.DeserializationStrategy) (any, error) {
	d, err := at(desc, index)
	if err != nil {
		return nil, err
	}
	return s.Deserialize(d)
}

func (at elementDecoder) DecodeNullableSerializableElement(desc *serial.Descriptor, index int, s serial.DeserializationStrategy) (any, error) {
	d, err := at(desc, index)
	if err != nil {
		return nil, err
	}
	return serial.DecodeNullable(d, s)
}

func (elementDecoder) EndStructure(*serial.Descriptor) error { return nil }

// compositeDecoder reads lists and maps in order. Map entries occupy two
// indices each: the key and then the value.
type compositeDecoder struct {
	elementDecoder
	size  int
	limit int
	next  int
}

func newCompositeDecoder(size, limit int, at func(index int) any) *compositeDecoder {
	c := &compositeDecoder{size: size, limit: limit}
	c.elementDecoder = func(_ *serial.Descriptor, index int) (*Decoder, error) {
		if index < 0 || index >= c.limit {
			return nil, fmt.Errorf("tree: element %d is out of range", index)
		}
		return &Decoder{node: at(index)}, nil
	}
	return c
}

func (c *compositeDecoder) DecodeElementIndex(*serial.Descriptor) (int, error) {
	if c.next >= c.limit {
		return serial.DecodeDone, nil
	}
	c.next++
	return c.next - 1, nil
}

func (c *compositeDecoder) DecodeCollectionSize(*serial.Descriptor) (int, error) { return c.size, nil }
func (c *compositeDecoder) DecodeSequentially() bool                             { return true }

// objectDecoder visits the members of an object in input order and resolves
// them by name.
type objectDecoder struct {
	elementDecoder
	obj *Object
	pos int
}

func newObjectDecoder(obj *Object) *objectDecoder {
	o := &objectDecoder{obj: obj, pos: -1}
	o.elementDecoder = func(desc *serial.Descriptor, index int) (*Decoder, error) {
		if o.pos >= 0 && o.pos < obj.Len() {
			return &Decoder{node: obj.Members[o.pos].Value}, nil
		}
		node, ok := obj.Get(desc.ElementName(index))
		if !ok {
			return nil, fmt.Errorf("tree: %s has no member %q", desc.Name, desc.ElementName(index))
		}
		return &Decoder{node: node}, nil
	}
	return o
}

func (o *objectDecoder) DecodeElementIndex(desc *serial.Descriptor) (int, error) {
	o.pos++
	if o.pos >= o.obj.Len() {
		return serial.DecodeDone, nil
	}
	return desc.ElementIndex(o.obj.Members[o.pos].Key), nil
}

func (o *objectDecoder) DecodeCollectionSize(*serial.Descriptor) (int, error) { return -1, nil }
func (o *objectDecoder) DecodeSequentially() bool                             { return false }
