package serial

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
)

type primitiveSerializer struct {
	desc *Descriptor
}

// Serializers for the primitive kinds. Decoding yields bool, int8, int16,
// int32, int64, float32, float64, Char and string respectively; encoding
// accepts any Go value of a compatible reflect kind.
var (
	BoolSerializer   Serializer = primitiveSerializer{Primitive("bool", KindBool)}
	ByteSerializer   Serializer = primitiveSerializer{Primitive("int8", KindByte)}
	ShortSerializer  Serializer = primitiveSerializer{Primitive("int16", KindShort)}
	IntSerializer    Serializer = primitiveSerializer{Primitive("int32", KindInt)}
	LongSerializer   Serializer = primitiveSerializer{Primitive("int64", KindLong)}
	FloatSerializer  Serializer = primitiveSerializer{Primitive("float32", KindFloat)}
	DoubleSerializer Serializer = primitiveSerializer{Primitive("float64", KindDouble)}
	CharSerializer   Serializer = primitiveSerializer{Primitive("char", KindChar)}
	StringSerializer Serializer = primitiveSerializer{Primitive("string", KindString)}
)

func (p primitiveSerializer) Descriptor() *Descriptor { return p.desc }

func (p primitiveSerializer) Serialize(e Encoder, v any) error {
	rv, err := primitiveValue(v, p.desc.Kind)
	if err != nil {
		return err
	}
	switch p.desc.Kind {
	case KindBool:
		return e.EncodeBool(rv.Bool())
	case KindByte:
		return e.EncodeByte(int8(intOf(rv)))
	case KindShort:
		return e.EncodeShort(int16(intOf(rv)))
	case KindInt:
		return e.EncodeInt(int32(intOf(rv)))
	case KindLong:
		return e.EncodeLong(intOf(rv))
	case KindFloat:
		return e.EncodeFloat(float32(rv.Float()))
	case KindDouble:
		return e.EncodeDouble(rv.Float())
	case KindChar:
		return e.EncodeChar(Char(intOf(rv)))
	default:
		return e.EncodeString(rv.String())
	}
}

func (p primitiveSerializer) Deserialize(d Decoder) (any, error) {
	switch p.desc.Kind {
	case KindBool:
		return d.DecodeBool()
	case KindByte:
		return d.DecodeByte()
	case KindShort:
		return d.DecodeShort()
	case KindInt:
		return d.DecodeInt()
	case KindLong:
		return d.DecodeLong()
	case KindFloat:
		return d.DecodeFloat()
	case KindDouble:
		return d.DecodeDouble()
	case KindChar:
		return d.DecodeChar()
	default:
		return d.DecodeString()
	}
}

// primitiveValue checks that v can be written as kind.
func primitiveValue(v any, kind Kind) (reflect.Value, error) {
	rv := reflect.ValueOf(Deref(v))
	ok := false
	if rv.IsValid() {
		switch kind {
		case KindBool:
			ok = rv.Kind() == reflect.Bool
		case KindFloat, KindDouble:
			ok = rv.CanFloat()
		case KindString:
			ok = rv.Kind() == reflect.String
		default:
			ok = rv.CanInt() || rv.CanUint()
		}
	}
	if !ok {
		return rv, fmt.Errorf("serial: cannot encode %T as %s", v, kind)
	}
	return rv, nil
}

func intOf(rv reflect.Value) int64 {
	if rv.CanUint() {
		return int64(rv.Uint())
	}
	return rv.Int()
}

type listSerializer struct {
	desc *Descriptor
	elem Serializer
	// typ is the slice or array type produced on decode; nil yields []any.
	typ reflect.Type
}

// List serializes slices and arrays element by element. Decoding yields
// []any.
func List(elem Serializer) Serializer {
	return &listSerializer{desc: ListDescriptor(elem.Descriptor()), elem: elem}
}

func (l *listSerializer) Descriptor() *Descriptor { return l.desc }

func (l *listSerializer) Serialize(e Encoder, v any) error {
	rv := reflect.ValueOf(Deref(v))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("serial: cannot encode %T as %s", v, l.desc.Name)
	}
	ce, err := e.BeginCollection(l.desc, rv.Len())
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := ce.EncodeSerializableElement(l.desc, i, l.elem, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return ce.EndStructure(l.desc)
}

func (l *listSerializer) Deserialize(d Decoder) (any, error) {
	cd, err := d.BeginStructure(l.desc)
	if err != nil {
		return nil, err
	}

	var items []any
	read := func(index int) error {
		x, err := cd.DecodeSerializableElement(l.desc, index, l.elem)
		if err != nil {
			return err
		}
		items = append(items, x)
		return nil
	}
	if err := readCollection(cd, l.desc, read); err != nil {
		return nil, err
	}
	if err := cd.EndStructure(l.desc); err != nil {
		return nil, err
	}

	if l.typ == nil {
		if items == nil {
			items = []any{}
		}
		return items, nil
	}
	return l.build(items)
}

func (l *listSerializer) build(items []any) (any, error) {
	var out reflect.Value
	if l.typ.Kind() == reflect.Array {
		out = reflect.New(l.typ).Elem()
		if len(items) > l.typ.Len() {
			return nil, fmt.Errorf("serial: %d elements do not fit %s", len(items), l.typ)
		}
	} else {
		out = reflect.MakeSlice(l.typ, len(items), len(items))
	}
	for i, x := range items {
		if err := assign(out.Index(i), x); err != nil {
			return nil, err
		}
	}
	return out.Interface(), nil
}

// readCollection visits every element of a decoded collection, either by
// count or by index.
func readCollection(cd CompositeDecoder, desc *Descriptor, read func(index int) error) error {
	if cd.DecodeSequentially() {
		size, err := cd.DecodeCollectionSize(desc)
		if err != nil {
			return err
		}
		for i := 0; i < size; i++ {
			if err := read(i); err != nil {
				return err
			}
		}
		return nil
	}
	for {
		index, err := cd.DecodeElementIndex(desc)
		if err != nil {
			return err
		}
		if index == DecodeDone {
			return nil
		}
		if index < 0 {
			continue
		}
		if err := read(index); err != nil {
			return err
		}
	}
}

type mapSerializer struct {
	desc  *Descriptor
	key   Serializer
	value Serializer
	typ   reflect.Type
}

// Map serializes Go maps as alternating key and value elements, keys in
// ascending order. Decoding yields map[any]any.
func Map(key, value Serializer) Serializer {
	return &mapSerializer{desc: MapDescriptor(key.Descriptor(), value.Descriptor()), key: key, value: value}
}

func (m *mapSerializer) Descriptor() *Descriptor { return m.desc }

func (m *mapSerializer) Serialize(e Encoder, v any) error {
	rv := reflect.ValueOf(Deref(v))
	if rv.Kind() != reflect.Map {
		return fmt.Errorf("serial: cannot encode %T as %s", v, m.desc.Name)
	}
	keys := rv.MapKeys()
	sortKeys(keys)

	ce, err := e.BeginCollection(m.desc, len(keys))
	if err != nil {
		return err
	}
	for i, k := range keys {
		if err := ce.EncodeSerializableElement(m.desc, 2*i, m.key, k.Interface()); err != nil {
			return err
		}
		if err := ce.EncodeSerializableElement(m.desc, 2*i+1, m.value, rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return ce.EndStructure(m.desc)
}

func (m *mapSerializer) Deserialize(d Decoder) (any, error) {
	cd, err := d.BeginStructure(m.desc)
	if err != nil {
		return nil, err
	}

	typ := m.typ
	if typ == nil {
		typ = reflect.TypeOf(map[any]any{})
	}
	out := reflect.MakeMap(typ)

	readEntry := func(keyIndex, valueIndex int) error {
		k, err := cd.DecodeSerializableElement(m.desc, keyIndex, m.key)
		if err != nil {
			return err
		}
		v, err := cd.DecodeSerializableElement(m.desc, valueIndex, m.value)
		if err != nil {
			return err
		}
		kv := reflect.New(typ.Key()).Elem()
		if err := assign(kv, k); err != nil {
			return err
		}
		vv := reflect.New(typ.Elem()).Elem()
		if err := assign(vv, v); err != nil {
			return err
		}
		out.SetMapIndex(kv, vv)
		return nil
	}

	if cd.DecodeSequentially() {
		size, err := cd.DecodeCollectionSize(m.desc)
		if err != nil {
			return nil, err
		}
		for i := 0; i < size; i++ {
			if err := readEntry(2*i, 2*i+1); err != nil {
				return nil, err
			}
		}
	} else {
		for {
			index, err := cd.DecodeElementIndex(m.desc)
			if err != nil {
				return nil, err
			}
			if index == DecodeDone {
				break
			}
			valueIndex, err := cd.DecodeElementIndex(m.desc)
			if err != nil {
				return nil, err
			}
			if valueIndex != index+1 {
				return nil, fmt.Errorf("serial: value must follow key in map, but key at %d was followed by %d", index, valueIndex)
			}
			if err := readEntry(index, valueIndex); err != nil {
				return nil, err
			}
		}
	}

	if err := cd.EndStructure(m.desc); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func sortKeys(keys []reflect.Value) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch {
		case a.CanInt():
			return a.Int() < b.Int()
		case a.CanUint():
			return a.Uint() < b.Uint()
		case a.CanFloat():
			return a.Float() < b.Float()
		case a.Kind() == reflect.String:
			return a.String() < b.String()
		case a.Kind() == reflect.Bool:
			return !a.Bool() && b.Bool()
		}
		return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
	})
}

type nullableSerializer struct {
	desc  *Descriptor
	inner Serializer
}

// Nullable allows nil in place of values of s.
func Nullable(s Serializer) Serializer {
	if n, ok := s.(*nullableSerializer); ok {
		return n
	}
	return &nullableSerializer{desc: s.Descriptor().AsNullable(), inner: s}
}

func (n *nullableSerializer) Descriptor() *Descriptor { return n.desc }

func (n *nullableSerializer) Serialize(e Encoder, v any) error {
	return e.EncodeNullableSerializableValue(n.inner, v)
}

func (n *nullableSerializer) Deserialize(d Decoder) (any, error) {
	return d.DecodeNullableSerializableValue(n.inner)
}

type uuidSerializer struct{}

// UUIDSerializer writes a uuid.UUID as its canonical string.
var UUIDSerializer Serializer = uuidSerializer{}

var uuidDescriptor = Primitive("uuid.UUID", KindString)

func (uuidSerializer) Descriptor() *Descriptor { return uuidDescriptor }

func (uuidSerializer) Serialize(e Encoder, v any) error {
	id, ok := Deref(v).(uuid.UUID)
	if !ok {
		return fmt.Errorf("serial: cannot encode %T as uuid", v)
	}
	return e.EncodeString(id.String())
}

func (uuidSerializer) Deserialize(d Decoder) (any, error) {
	s, err := d.DecodeString()
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("serial: invalid uuid %q: %w", s, err)
	}
	return id, nil
}

type durationSerializer struct{}

// DurationSerializer writes a time.Duration in its String form, e.g. "1h30m".
var DurationSerializer Serializer = durationSerializer{}

var durationDescriptor = Primitive("time.Duration", KindString)

func (durationSerializer) Descriptor() *Descriptor { return durationDescriptor }

func (durationSerializer) Serialize(e Encoder, v any) error {
	d, ok := Deref(v).(time.Duration)
	if !ok {
		return fmt.Errorf("serial: cannot encode %T as duration", v)
	}
	return e.EncodeString(d.String())
}

func (durationSerializer) Deserialize(d Decoder) (any, error) {
	s, err := d.DecodeString()
	if err != nil {
		return nil, err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("serial: invalid duration %q: %w", s, err)
	}
	return dur, nil
}

type timeSerializer struct{}

// TimeSerializer writes a time.Time as RFC 3339 with nanoseconds.
var TimeSerializer Serializer = timeSerializer{}

var timeDescriptor = Primitive("time.Time", KindString)

func (timeSerializer) Descriptor() *Descriptor { return timeDescriptor }

func (timeSerializer) Serialize(e Encoder, v any) error {
	t, ok := Deref(v).(time.Time)
	if !ok {
		return fmt.Errorf("serial: cannot encode %T as time", v)
	}
	return e.EncodeString(t.Format(time.RFC3339Nano))
}

func (timeSerializer) Deserialize(d Decoder) (any, error) {
	s, err := d.DecodeString()
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("serial: invalid time %q: %w", s, err)
	}
	return t, nil
}
