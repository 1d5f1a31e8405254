package serial

import "reflect"

// EncodeNullable is the usual EncodeNullableSerializableValue body for
// bindings that write nulls as a marker: EncodeNull for nil, otherwise
// EncodeNotNullMark followed by the value.
func EncodeNullable(e Encoder, s SerializationStrategy, v any) error {
	if IsNil(v) {
		return e.EncodeNull()
	}
	if err := e.EncodeNotNullMark(); err != nil {
		return err
	}
	return e.EncodeSerializableValue(s, Deref(v))
}

// DecodeNullable is the DecodeNullableSerializableValue counterpart of
// EncodeNullable.
func DecodeNullable(d Decoder, s DeserializationStrategy) (any, error) {
	present, err := d.DecodeNotNullMark()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, d.DecodeNull()
	}
	return d.DecodeSerializableValue(s)
}

// IsNil reports whether v is nil or a nil pointer, map, slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Deref follows pointers until a non-pointer value is reached.
func Deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
