package protobuf

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/WalkNetwork/serializer-framework/serial"
)

type field struct {
	typ  protowire.Type
	v    uint64
	data []byte
}

type message struct {
	fields map[protowire.Number][]field
}

func parseMessage(b []byte) (message, error) {
	m := message{fields: make(map[protowire.Number][]field)}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, fmt.Errorf("protobuf: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := field{typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.v = uint64(v)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.data, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n >= 0 {
				b = b[n:]
				continue
			}
		}
		if n < 0 {
			return m, fmt.Errorf("protobuf: field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
		m.fields[num] = append(m.fields[num], f)
	}
	return m, nil
}

// Decoder reads one value from the occurrences of its field. Scalars use the
// last occurrence.
type Decoder struct {
	values []field
	root   *message
	// wrapped collections sit inside a message as field 1.
	wrapped bool
}

func (d *Decoder) last(typ protowire.Type) (field, error) {
	if len(d.values) == 0 {
		return field{}, fmt.Errorf("protobuf: missing value")
	}
	f := d.values[len(d.values)-1]
	if f.typ != typ {
		return field{}, fmt.Errorf("protobuf: expected wire type %d, found %d", typ, f.typ)
	}
	return f, nil
}

func (d *Decoder) integer(lo, hi int64) (int64, error) {
	f, err := d.last(protowire.VarintType)
	if err != nil {
		return 0, err
	}
	v := int64(f.v)
	if v < lo || v > hi {
		return 0, fmt.Errorf("protobuf: %d is out of range [%d, %d]", v, lo, hi)
	}
	return v, nil
}

func (d *Decoder) DecodeBool() (bool, error) {
	f, err := d.last(protowire.VarintType)
	return protowire.DecodeBool(f.v), err
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

func (d *Decoder) DecodeChar() (serial.Char, error) {
	v, err := d.integer(0, math.MaxUint16)
	return serial.Char(v), err
}

func (d *Decoder) DecodeFloat() (float32, error) {
	f, err := d.last(protowire.Fixed32Type)
	return math.Float32frombits(uint32(f.v)), err
}

func (d *Decoder) DecodeDouble() (float64, error) {
	f, err := d.last(protowire.Fixed64Type)
	return math.Float64frombits(f.v), err
}

func (d *Decoder) DecodeString() (string, error) {
	f, err := d.last(protowire.BytesType)
	return string(f.data), err
}

func (d *Decoder) DecodeEnum(desc *serial.Descriptor) (int, error) {
	v, err := d.integer(math.MinInt32, math.MaxInt32)
	if err != nil {
		return 0, err
	}
	if v < 0 || int(v) >= len(desc.EnumValues) {
		return 0, fmt.Errorf("protobuf: %d is not a valid %s: %w", v, desc.Name, serial.ErrUnknownEnum)
	}
	return int(v), nil
}

func (d *Decoder) DecodeNotNullMark() (bool, error) {
	if d.root != nil {
		return len(d.root.fields) > 0, nil
	}
	return len(d.values) > 0, nil
}

func (d *Decoder) DecodeNull() error { return nil }

func (d *Decoder) DecodeSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return s.Deserialize(d)
}

func (d *Decoder) DecodeNullableSerializableValue(s serial.DeserializationStrategy) (any, error) {
	return serial.DecodeNullable(d, s)
}

func (d *Decoder) message() (message, error) {
	if len(d.values) == 0 {
		return message{fields: map[protowire.Number][]field{}}, nil
	}
	f, err := d.last(protowire.BytesType)
	if err != nil {
		return message{}, err
	}
	return parseMessage(f.data)
}

func (d *Decoder) BeginStructure(desc *serial.Descriptor) (serial.CompositeDecoder, error) {
	switch desc.Kind {
	case serial.KindList, serial.KindMap:
		values := d.values
		if d.wrapped {
			m, err := d.message()
			if err != nil {
				return nil, err
			}
			values = m.fields[1]
		}
		if desc.Kind == serial.KindList {
			return newRepeatedDecoder(len(values), len(values), func(index int) *Decoder {
				return &Decoder{values: values[index : index+1], wrapped: true}
			}), nil
		}

		entries := make([]message, len(values))
		for i, v := range values {
			if v.typ != protowire.BytesType {
				return nil, fmt.Errorf("protobuf: map entry %d is not a message", i)
			}
			m, err := parseMessage(v.data)
			if err != nil {
				return nil, err
			}
			entries[i] = m
		}
		return newRepeatedDecoder(len(entries), 2*len(entries), func(index int) *Decoder {
			return &Decoder{values: entries[index/2].fields[protowire.Number(index%2+1)]}
		}), nil
	}

	if d.root != nil {
		return newMessageDecoder(*d.root), nil
	}
	m, err := d.message()
	if err != nil {
		return nil, err
	}
	return newMessageDecoder(m), nil
}

// elementDecoder resolves the Decoder of element index.
type elementDecoder func(index int) (*Decoder, error)

func (at elementDecoder) DecodeBoolElement(_ *serial.Descriptor, index int) (bool, error) {
	d, err := at(index)
	if err != nil {
		return false, err
	}
	return d.DecodeBool()
}

func (at elementDecoder) DecodeByteElement(_ *serial.Descriptor, index int) (int8, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeByte()
}

func (at elementDecoder) DecodeShortElement(_ *serial.Descriptor, index int) (int16, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeShort()
}

func (at elementDecoder) DecodeIntElement(_ *serial.Descriptor, index int) (int32, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeInt()
}

func (at elementDecoder) DecodeLongElement(_ *serial.Descriptor, index int) (int64, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeLong()
}

func (at elementDecoder) DecodeFloatElement(_ *serial.Descriptor, index int) (float32, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeFloat()
}

func (at elementDecoder) DecodeDoubleElement(_ *serial.Descriptor, index int) (float64, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeDouble()
}

func (at elementDecoder) DecodeCharElement(_ *serial.Descriptor, index int) (serial.Char, error) {
	d, err := at(index)
	if err != nil {
		return 0, err
	}
	return d.DecodeChar()
}

func (at elementDecoder) DecodeStringElement(_ *serial.Descriptor, index int) (string, error) {
	d, err := at(index)
	if err != nil {
		return "", err
	}
	return d.DecodeString()
}

func (at elementDecoder) DecodeSerializableElement(_ *serial.Descriptor, index int, s serial.DeserializationStrategy) (any, error) {
	d, err := at(index)
	if err != nil {
		return nil, err
	}
	return s.Deserialize(d)
}

func (at elementDecoder) DecodeNullableSerializableElement(_ *serial.Descriptor, index int, s serial.DeserializationStrategy) (any, error) {
	d, err := at(index)
	if err != nil {
		return nil, err
	}
	return serial.DecodeNullable(d, s)
}

func (elementDecoder) EndStructure(*serial.Descriptor) error { return nil }

// messageDecoder yields the elements present in a message. Absent
// collections read as empty; absent scalars and structures are skipped so
// that the structure reports them missing unless they are optional.
type messageDecoder struct {
	elementDecoder
	msg  message
	next int
}

func newMessageDecoder(m message) *messageDecoder {
	md := &messageDecoder{msg: m}
	md.elementDecoder = func(index int) (*Decoder, error) {
		if index < 0 {
			return nil, fmt.Errorf("protobuf: invalid element %d", index)
		}
		return &Decoder{values: m.fields[protowire.Number(index+1)]}, nil
	}
	return md
}

func (m *messageDecoder) DecodeElementIndex(desc *serial.Descriptor) (int, error) {
	for m.next < desc.ElementsCount() {
		index := m.next
		m.next++
		if len(m.msg.fields[protowire.Number(index+1)]) > 0 {
			return index, nil
		}
		el := desc.ElementDescriptor(index)
		if el != nil && !el.Nullable && (el.Kind == serial.KindList || el.Kind == serial.KindMap) {
			return index, nil
		}
	}
	return serial.DecodeDone, nil
}

func (m *messageDecoder) DecodeCollectionSize(*serial.Descriptor) (int, error) { return -1, nil }
func (m *messageDecoder) DecodeSequentially() bool                             { return false }

// repeatedDecoder reads list items, or map entries as key/value index pairs.
type repeatedDecoder struct {
	elementDecoder
	size  int
	limit int
	next  int
}

func newRepeatedDecoder(size, limit int, at func(index int) *Decoder) *repeatedDecoder {
	return &repeatedDecoder{
		size:  size,
		limit: limit,
		elementDecoder: func(index int) (*Decoder, error) {
			if index < 0 || index >= limit {
				return nil, fmt.Errorf("protobuf: element %d is out of range", index)
			}
			return at(index), nil
		},
	}
}

func (r *repeatedDecoder) DecodeElementIndex(*serial.Descriptor) (int, error) {
	if r.next >= r.limit {
		return serial.DecodeDone, nil
	}
	r.next++
	return r.next - 1, nil
}

func (r *repeatedDecoder) DecodeCollectionSize(*serial.Descriptor) (int, error) { return r.size, nil }
func (r *repeatedDecoder) DecodeSequentially() bool                             { return true }
