package serial

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// Enumerated is implemented by integer types that serialize as enums. The
// value's integer is its ordinal into EnumValues.
type Enumerated interface {
	EnumValues() []string
}

const serializerCacheSize = 1024

var (
	contextual      = xsync.NewMapOf[reflect.Type, Serializer]()
	serializerCache *lru.Cache[reflect.Type, Serializer]

	charType       = reflect.TypeOf(Char(0))
	enumeratedType = reflect.TypeOf((*Enumerated)(nil)).Elem()
)

func init() {
	var err error
	serializerCache, err = lru.New[reflect.Type, Serializer](serializerCacheSize)
	if err != nil {
		panic(err)
	}

	RegisterContextual(reflect.TypeOf(uuid.UUID{}), UUIDSerializer)
	RegisterContextual(reflect.TypeOf(time.Duration(0)), DurationSerializer)
	RegisterContextual(reflect.TypeOf(time.Time{}), TimeSerializer)
}

// RegisterContextual makes s the serializer for every occurrence of t,
// taking precedence over the derived one. Registration should happen during
// initialization.
func RegisterContextual(t reflect.Type, s Serializer) {
	contextual.Store(t, s)
	serializerCache.Remove(t)
}

// Of returns the serializer derived for T. Decoding through it yields values
// of type T.
func Of[T any]() (Serializer, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	s, err := For(t)
	if err != nil {
		return nil, err
	}
	return typed(s, t), nil
}

// MustOf is Of for types known to be serializable. It panics otherwise.
func MustOf[T any]() Serializer {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// For derives a serializer for t.
//
// Structs are encoded field by field in declaration order. Exported fields are
// named after the Go field with a lower-case first letter unless a
// `serial:"name"` tag says otherwise; `serial:"-"` skips the field and
// `serial:",optional"` lets it be absent on decode. Pointer fields are
// nullable and optional. Types implementing Enumerated are enums.
func For(t reflect.Type) (Serializer, error) {
	if s, ok := serializerCache.Get(t); ok {
		return s, nil
	}
	s, err := derive(t, map[reflect.Type]*structSerializer{})
	if err != nil {
		return nil, err
	}
	serializerCache.Add(t, s)
	return s, nil
}

func derive(t reflect.Type, building map[reflect.Type]*structSerializer) (Serializer, error) {
	if s, ok := contextual.Load(t); ok {
		return s, nil
	}
	if s, ok := serializerCache.Get(t); ok {
		return s, nil
	}
	if t == charType {
		return CharSerializer, nil
	}
	if t.Implements(enumeratedType) && isInteger(t) {
		values := reflect.Zero(t).Interface().(Enumerated).EnumValues()
		return &enumSerializer{desc: EnumDescriptor(t.String(), values...), typ: t}, nil
	}
	if p := primitiveFor(t); p != nil {
		return typed(p, t), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := derive(t.Elem(), building)
		if err != nil {
			return nil, err
		}
		return Nullable(elem), nil
	case reflect.Slice, reflect.Array:
		elem, err := derive(t.Elem(), building)
		if err != nil {
			return nil, err
		}
		return &listSerializer{desc: ListDescriptor(elem.Descriptor()), elem: elem, typ: t}, nil
	case reflect.Map:
		key, err := derive(t.Key(), building)
		if err != nil {
			return nil, err
		}
		value, err := derive(t.Elem(), building)
		if err != nil {
			return nil, err
		}
		return &mapSerializer{desc: MapDescriptor(key.Descriptor(), value.Descriptor()), key: key, value: value, typ: t}, nil
	case reflect.Struct:
		return deriveStruct(t, building)
	}
	return nil, &UnsupportedTypeError{Type: t}
}

func primitiveFor(t reflect.Type) Serializer {
	switch t.Kind() {
	case reflect.Bool:
		return BoolSerializer
	case reflect.Int8:
		return ByteSerializer
	case reflect.Int16, reflect.Uint8:
		return ShortSerializer
	case reflect.Int32, reflect.Uint16:
		return IntSerializer
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return LongSerializer
	case reflect.Float32:
		return FloatSerializer
	case reflect.Float64:
		return DoubleSerializer
	case reflect.String:
		return StringSerializer
	}
	return nil
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

type structField struct {
	name  string
	index int
	typ   reflect.Type
	ser   Serializer
	kind  Kind
	// prim fields are written with the typed element calls.
	prim     bool
	nullable bool
	optional bool
}

type structSerializer struct {
	typ    reflect.Type
	desc   *Descriptor
	fields []structField
}

func deriveStruct(t reflect.Type, building map[reflect.Type]*structSerializer) (Serializer, error) {
	if s, ok := building[t]; ok {
		return s, nil
	}
	s := &structSerializer{typ: t, desc: &Descriptor{Name: t.String(), Kind: KindStruct}}
	building[t] = s

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts := parseTag(f.Tag.Get("serial"))
		if name == "-" && opts == "" {
			continue
		}
		if f.Anonymous {
			return nil, fmt.Errorf("serial: embedded field %s in %s is not supported: %w", f.Name, t, ErrUnsupportedType)
		}
		if name == "" {
			name = strings.ToLower(f.Name[:1]) + f.Name[1:]
		}

		field := structField{
			name:     name,
			index:    i,
			typ:      f.Type,
			optional: opts == "optional",
		}
		target := f.Type
		if target.Kind() == reflect.Pointer {
			field.nullable = true
			field.optional = true
			target = target.Elem()
		}
		ser, err := derive(target, building)
		if err != nil {
			return nil, fmt.Errorf("serial: field %s of %s: %w", f.Name, t, err)
		}
		if n, ok := ser.(*nullableSerializer); ok {
			ser = n.inner
		}
		field.ser = ser
		field.kind = ser.Descriptor().Kind
		_, custom := contextual.Load(target)
		field.prim = !custom && field.kind.IsPrimitive() && primitiveFor(target) != nil

		elemDesc := ser.Descriptor()
		if field.nullable {
			elemDesc = elemDesc.AsNullable()
		}
		s.desc.Elements = append(s.desc.Elements, Element{
			Name:       name,
			Descriptor: elemDesc,
			Optional:   field.optional,
		})
		s.fields = append(s.fields, field)
	}
	return s, nil
}

func parseTag(tag string) (name, opts string) {
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts
}

func (s *structSerializer) Descriptor() *Descriptor { return s.desc }

func (s *structSerializer) Serialize(e Encoder, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return fmt.Errorf("serial: cannot encode nil %s", s.typ)
		}
		rv = rv.Elem()
	}
	if rv.Type() != s.typ {
		return fmt.Errorf("serial: cannot encode %T as %s", v, s.typ)
	}

	ce, err := e.BeginStructure(s.desc)
	if err != nil {
		return err
	}
	for i := range s.fields {
		if err := s.encodeField(ce, i, rv.Field(s.fields[i].index)); err != nil {
			return err
		}
	}
	return ce.EndStructure(s.desc)
}

func (s *structSerializer) encodeField(ce CompositeEncoder, i int, fv reflect.Value) error {
	f := &s.fields[i]
	if f.nullable {
		var x any
		if !fv.IsNil() {
			x = fv.Elem().Interface()
		}
		return ce.EncodeNullableSerializableElement(s.desc, i, f.ser, x)
	}
	if !f.prim {
		return ce.EncodeSerializableElement(s.desc, i, f.ser, fv.Interface())
	}
	switch f.kind {
	case KindBool:
		return ce.EncodeBoolElement(s.desc, i, fv.Bool())
	case KindByte:
		return ce.EncodeByteElement(s.desc, i, int8(intOf(fv)))
	case KindShort:
		return ce.EncodeShortElement(s.desc, i, int16(intOf(fv)))
	case KindInt:
		return ce.EncodeIntElement(s.desc, i, int32(intOf(fv)))
	case KindLong:
		return ce.EncodeLongElement(s.desc, i, intOf(fv))
	case KindFloat:
		return ce.EncodeFloatElement(s.desc, i, float32(fv.Float()))
	case KindDouble:
		return ce.EncodeDoubleElement(s.desc, i, fv.Float())
	case KindChar:
		return ce.EncodeCharElement(s.desc, i, Char(intOf(fv)))
	default:
		return ce.EncodeStringElement(s.desc, i, fv.String())
	}
}

func (s *structSerializer) Deserialize(d Decoder) (any, error) {
	cd, err := d.BeginStructure(s.desc)
	if err != nil {
		return nil, err
	}

	out := reflect.New(s.typ).Elem()
	seen := make([]bool, len(s.fields))
	if cd.DecodeSequentially() {
		for i := range s.fields {
			if err := s.decodeField(cd, i, out.Field(s.fields[i].index)); err != nil {
				return nil, err
			}
			seen[i] = true
		}
	} else {
		for {
			i, err := cd.DecodeElementIndex(s.desc)
			if err != nil {
				return nil, err
			}
			if i == DecodeDone {
				break
			}
			if i == UnknownName {
				continue
			}
			if i < 0 || i >= len(s.fields) {
				return nil, fmt.Errorf("serial: unexpected element index %d for %s", i, s.desc.Name)
			}
			if err := s.decodeField(cd, i, out.Field(s.fields[i].index)); err != nil {
				return nil, err
			}
			seen[i] = true
		}
	}
	if err := cd.EndStructure(s.desc); err != nil {
		return nil, err
	}

	var missing []string
	for i, f := range s.fields {
		if !seen[i] && !f.optional {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Descriptor: s.desc.Name, Fields: missing}
	}
	return out.Interface(), nil
}

func (s *structSerializer) decodeField(cd CompositeDecoder, i int, fv reflect.Value) error {
	f := &s.fields[i]
	if f.nullable {
		x, err := cd.DecodeNullableSerializableElement(s.desc, i, f.ser)
		if err != nil {
			return err
		}
		if x == nil {
			fv.SetZero()
			return nil
		}
		p := reflect.New(f.typ.Elem())
		if err := assign(p.Elem(), x); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}
	if !f.prim {
		x, err := cd.DecodeSerializableElement(s.desc, i, f.ser)
		if err != nil {
			return err
		}
		return assign(fv, x)
	}

	var (
		x   any
		err error
	)
	switch f.kind {
	case KindBool:
		x, err = cd.DecodeBoolElement(s.desc, i)
	case KindByte:
		x, err = cd.DecodeByteElement(s.desc, i)
	case KindShort:
		x, err = cd.DecodeShortElement(s.desc, i)
	case KindInt:
		x, err = cd.DecodeIntElement(s.desc, i)
	case KindLong:
		x, err = cd.DecodeLongElement(s.desc, i)
	case KindFloat:
		x, err = cd.DecodeFloatElement(s.desc, i)
	case KindDouble:
		x, err = cd.DecodeDoubleElement(s.desc, i)
	case KindChar:
		x, err = cd.DecodeCharElement(s.desc, i)
	default:
		x, err = cd.DecodeStringElement(s.desc, i)
	}
	if err != nil {
		return err
	}
	return assign(fv, x)
}

type enumSerializer struct {
	desc *Descriptor
	typ  reflect.Type
}

func (s *enumSerializer) Descriptor() *Descriptor { return s.desc }

func (s *enumSerializer) Serialize(e Encoder, v any) error {
	rv := reflect.ValueOf(Deref(v))
	if !rv.IsValid() || rv.Type() != s.typ {
		return fmt.Errorf("serial: cannot encode %T as %s", v, s.typ)
	}
	ordinal := int(intOf(rv))
	if ordinal < 0 || ordinal >= len(s.desc.EnumValues) {
		return fmt.Errorf("serial: %d is not a valid %s: %w", ordinal, s.typ, ErrUnknownEnum)
	}
	return e.EncodeEnum(s.desc, ordinal)
}

func (s *enumSerializer) Deserialize(d Decoder) (any, error) {
	ordinal, err := d.DecodeEnum(s.desc)
	if err != nil {
		return nil, err
	}
	if ordinal < 0 || ordinal >= len(s.desc.EnumValues) {
		return nil, fmt.Errorf("serial: %d is not a valid %s: %w", ordinal, s.typ, ErrUnknownEnum)
	}
	return reflect.ValueOf(ordinal).Convert(s.typ).Interface(), nil
}

// typedSerializer converts decoded values to a concrete Go type.
type typedSerializer struct {
	Serializer
	typ reflect.Type
}

func typed(s Serializer, t reflect.Type) Serializer {
	if ts, ok := s.(*typedSerializer); ok {
		s = ts.Serializer
	}
	return &typedSerializer{Serializer: s, typ: t}
}

func (t *typedSerializer) Deserialize(d Decoder) (any, error) {
	x, err := t.Serializer.Deserialize(d)
	if err != nil || x == nil {
		return x, err
	}
	out := reflect.New(t.typ).Elem()
	if err := assign(out, x); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// Unwrap returns the serializer that produces untyped values.
func (t *typedSerializer) Unwrap() Serializer {
	return t.Serializer
}

// assign stores x into dst, converting between compatible representations.
func assign(dst reflect.Value, x any) error {
	if x == nil {
		dst.SetZero()
		return nil
	}
	xv := reflect.ValueOf(x)
	dt := dst.Type()
	switch {
	case xv.Type() == dt:
		dst.Set(xv)
		return nil
	case dt.Kind() == reflect.Interface && xv.Type().Implements(dt):
		dst.Set(xv)
		return nil
	case dt.Kind() == reflect.Pointer:
		p := reflect.New(dt.Elem())
		if err := assign(p.Elem(), x); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case compatible(xv.Kind(), dt.Kind()) && xv.Type().ConvertibleTo(dt):
		dst.Set(xv.Convert(dt))
		return nil
	}
	return fmt.Errorf("serial: cannot assign %T to %s", x, dt)
}

func compatible(from, to reflect.Kind) bool {
	class := func(k reflect.Kind) int {
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return 1
		case reflect.Float32, reflect.Float64:
			return 2
		}
		return int(k) + 100
	}
	return class(from) == class(to)
}
