package serial

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("unsupported type")
	ErrMissingField    = errors.New("missing field")
	ErrUnknownEnum     = errors.New("unknown enum constant")
	ErrNotSupported    = errors.New("operation not supported by format")
)

// UnsupportedTypeError is returned when no serializer can be derived for a
// Go type.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("serial: no serializer for type %s", e.Type)
}

func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// MissingFieldError lists required elements absent from the input.
type MissingFieldError struct {
	Descriptor string
	Fields     []string
}

func (e *MissingFieldError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("serial: field %q is required for %s but it was missing", e.Fields[0], e.Descriptor)
	}
	return fmt.Sprintf("serial: fields [%s] are required for %s but they were missing",
		strings.Join(e.Fields, ", "), e.Descriptor)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}
