package serial

import (
	"fmt"
	"strings"
)

// Kind classifies a Descriptor. Primitive kinds are leaves; Struct, List and
// Map describe composite values visited element by element.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindChar
	KindString
	KindEnum
	KindStruct
	KindList
	KindMap
)

var kindNames = map[Kind]string{
	KindBool:   "BOOLEAN",
	KindByte:   "BYTE",
	KindShort:  "SHORT",
	KindInt:    "INT",
	KindLong:   "LONG",
	KindFloat:  "FLOAT",
	KindDouble: "DOUBLE",
	KindChar:   "CHAR",
	KindString: "STRING",
	KindEnum:   "ENUM",
	KindStruct: "CLASS",
	KindList:   "LIST",
	KindMap:    "MAP",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsPrimitive reports whether values of this kind are written with a single
// typed leaf call.
func (k Kind) IsPrimitive() bool {
	return k >= KindBool && k <= KindString
}

// Element is one named, positioned child of a Descriptor.
type Element struct {
	Name       string
	Descriptor *Descriptor
	// Optional elements may be absent from name-based encodings; decoders
	// leave the destination untouched when they are.
	Optional bool
}

// Descriptor describes the shape of a serializable value: its kind, its
// elements for structures, and the element/key/value descriptors for
// collections.
type Descriptor struct {
	Name     string
	Kind     Kind
	Nullable bool
	Elements []Element
	// EnumValues holds the constant names of an enum, indexed by ordinal.
	EnumValues []string
}

// Primitive returns a descriptor for a primitive kind.
func Primitive(name string, kind Kind) *Descriptor {
	return &Descriptor{Name: name, Kind: kind}
}

// ListDescriptor describes a homogeneous list of elem.
func ListDescriptor(elem *Descriptor) *Descriptor {
	return &Descriptor{
		Name:     "List<" + elem.Name + ">",
		Kind:     KindList,
		Elements: []Element{{Name: "0", Descriptor: elem}},
	}
}

// MapDescriptor describes a map; elements alternate key, value.
func MapDescriptor(key, value *Descriptor) *Descriptor {
	return &Descriptor{
		Name: "Map<" + key.Name + "," + value.Name + ">",
		Kind: KindMap,
		Elements: []Element{
			{Name: "0", Descriptor: key},
			{Name: "1", Descriptor: value},
		},
	}
}

// EnumDescriptor describes an enum with the given constant names.
func EnumDescriptor(name string, values ...string) *Descriptor {
	return &Descriptor{Name: name, Kind: KindEnum, EnumValues: values}
}

// AsNullable returns a copy of d marked nullable. A nullable descriptor is
// returned unchanged.
func (d *Descriptor) AsNullable() *Descriptor {
	if d.Nullable {
		return d
	}
	cp := *d
	cp.Nullable = true
	if !strings.HasSuffix(cp.Name, "?") {
		cp.Name += "?"
	}
	return &cp
}

// ElementsCount is the number of declared elements. Lists report one and
// maps two, regardless of their runtime size.
func (d *Descriptor) ElementsCount() int {
	return len(d.Elements)
}

// ElementName returns the name of element index.
func (d *Descriptor) ElementName(index int) string {
	if e, ok := d.element(index); ok {
		return e.Name
	}
	return ""
}

// ElementDescriptor returns the descriptor of element index. For lists every
// index maps to the element descriptor; for maps even indices are keys and odd
// indices are values.
func (d *Descriptor) ElementDescriptor(index int) *Descriptor {
	if e, ok := d.element(index); ok {
		return e.Descriptor
	}
	return nil
}

// IsElementOptional reports whether element index may be absent.
func (d *Descriptor) IsElementOptional(index int) bool {
	e, ok := d.element(index)
	return ok && e.Optional
}

// ElementIndex returns the position of the element called name, or
// UnknownName.
func (d *Descriptor) ElementIndex(name string) int {
	for i, e := range d.Elements {
		if e.Name == name {
			return i
		}
	}
	return UnknownName
}

// EnumIndex returns the ordinal of the enum constant called name, or
// UnknownName.
func (d *Descriptor) EnumIndex(name string) int {
	for i, v := range d.EnumValues {
		if v == name {
			return i
		}
	}
	return UnknownName
}

func (d *Descriptor) element(index int) (Element, bool) {
	if index < 0 || len(d.Elements) == 0 {
		return Element{}, false
	}
	switch d.Kind {
	case KindList:
		return d.Elements[0], true
	case KindMap:
		return d.Elements[index%2], true
	}
	if index >= len(d.Elements) {
		return Element{}, false
	}
	return d.Elements[index], true
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.Kind != KindStruct {
		return d.Name + "(" + d.Kind.String() + ")"
	}
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, e := range d.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Name)
		b.WriteString(": ")
		if e.Descriptor != nil {
			b.WriteString(e.Descriptor.Name)
		}
	}
	b.WriteByte(')')
	return b.String()
}
