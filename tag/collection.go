package tag

import (
	"fmt"
	"strings"
)

// ListTag is an ordered, homogeneous collection. Its element id is taken from
// the first element.
//
// An empty list has no payload at all, so a reader must know out of band that
// it is empty (see ReadListTag).
type ListTag struct {
	elems []Tag
}

// NewList returns a list holding elems.
func NewList(elems ...Tag) (*ListTag, error) {
	l := &ListTag{}
	for _, t := range elems {
		if err := l.Add(t); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *ListTag) ID() ID { return ListID }

// Type returns the element id, EmptyID for an empty list.
func (l *ListTag) Type() ID {
	if len(l.elems) == 0 {
		return EmptyID
	}
	return l.elems[0].ID()
}

// Add appends t. Elements must all share the id of the first one.
func (l *ListTag) Add(t Tag) error {
	if t == nil {
		return fmt.Errorf("tag: cannot add to list: %w", ErrNilTag)
	}
	if len(l.elems) > 0 && t.ID() != l.Type() {
		return fmt.Errorf("tag: cannot add id %d to list of %d: %w", t.ID(), l.Type(), ErrMixedTypes)
	}
	l.elems = append(l.elems, t)
	return nil
}

// Set replaces the element at i.
func (l *ListTag) Set(i int, t Tag) error {
	if t == nil {
		return fmt.Errorf("tag: cannot set in list: %w", ErrNilTag)
	}
	if len(l.elems) > 1 && t.ID() != l.Type() {
		return fmt.Errorf("tag: cannot set id %d in list of %d: %w", t.ID(), l.Type(), ErrMixedTypes)
	}
	l.elems[i] = t
	return nil
}

// RemoveAt deletes the element at i.
func (l *ListTag) RemoveAt(i int) {
	l.elems = append(l.elems[:i], l.elems[i+1:]...)
}

func (l *ListTag) Get(i int) Tag { return l.elems[i] }
func (l *ListTag) Len() int      { return len(l.elems) }

// Elems returns a copy of the elements.
func (l *ListTag) Elems() []Tag {
	return append([]Tag(nil), l.elems...)
}

func (l *ListTag) Write(w *Writer) error {
	return writeElems(w, l.elems)
}

func (l *ListTag) Equal(other Tag) bool {
	o, ok := other.(*ListTag)
	if !ok || len(o.elems) != len(l.elems) {
		return false
	}
	for i := range l.elems {
		if !l.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

func (l *ListTag) String() string {
	return joinElems(l.elems)
}

// SetTag is an insertion-ordered, homogeneous collection without duplicates.
// Elements are compared structurally; they must not be mutated once added.
type SetTag struct {
	elems []Tag
	index map[uint64][]int
}

// NewSet returns a set holding elems, dropping duplicates.
func NewSet(elems ...Tag) (*SetTag, error) {
	s := &SetTag{}
	for _, t := range elems {
		if _, err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *SetTag) ID() ID { return SetID }

// Type returns the element id, EmptyID for an empty set.
func (s *SetTag) Type() ID {
	if len(s.elems) == 0 {
		return EmptyID
	}
	return s.elems[0].ID()
}

// Add inserts t and reports whether it was not already present.
func (s *SetTag) Add(t Tag) (bool, error) {
	if t == nil {
		return false, fmt.Errorf("tag: cannot add to set: %w", ErrNilTag)
	}
	if len(s.elems) > 0 && t.ID() != s.Type() {
		return false, fmt.Errorf("tag: cannot add id %d to set of %d: %w", t.ID(), s.Type(), ErrMixedTypes)
	}
	h := Hash(t)
	if s.find(h, t) >= 0 {
		return false, nil
	}
	if s.index == nil {
		s.index = make(map[uint64][]int)
	}
	s.index[h] = append(s.index[h], len(s.elems))
	s.elems = append(s.elems, t)
	return true, nil
}

// Contains reports whether an element equal to t is present.
func (s *SetTag) Contains(t Tag) bool {
	return s.find(Hash(t), t) >= 0
}

// Remove deletes the element equal to t and reports whether there was one.
func (s *SetTag) Remove(t Tag) bool {
	i := s.find(Hash(t), t)
	if i < 0 {
		return false
	}
	s.elems = append(s.elems[:i], s.elems[i+1:]...)
	s.index = make(map[uint64][]int, len(s.elems))
	for j, e := range s.elems {
		h := Hash(e)
		s.index[h] = append(s.index[h], j)
	}
	return true
}

func (s *SetTag) find(h uint64, t Tag) int {
	for _, i := range s.index[h] {
		if s.elems[i].Equal(t) {
			return i
		}
	}
	return -1
}

func (s *SetTag) Len() int { return len(s.elems) }

// Elems returns the elements in insertion order.
func (s *SetTag) Elems() []Tag {
	return append([]Tag(nil), s.elems...)
}

func (s *SetTag) Write(w *Writer) error {
	return writeElems(w, s.elems)
}

// Equal ignores insertion order.
func (s *SetTag) Equal(other Tag) bool {
	o, ok := other.(*SetTag)
	if !ok || len(o.elems) != len(s.elems) {
		return false
	}
	for _, e := range s.elems {
		if !o.Contains(e) {
			return false
		}
	}
	return true
}

func (s *SetTag) String() string {
	return joinElems(s.elems)
}

func writeElems(w *Writer, elems []Tag) error {
	if len(elems) == 0 {
		return nil
	}
	for _, e := range elems {
		if isEmptyCollection(e) {
			return ErrEmptyCollection
		}
	}
	if err := w.WriteID(elems[0].ID()); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(len(elems))); err != nil {
		return err
	}
	for _, e := range elems {
		if err := e.Write(w); err != nil {
			return err
		}
	}
	return nil
}

func isEmptyCollection(t Tag) bool {
	switch c := t.(type) {
	case *ListTag:
		return c.Len() == 0
	case *SetTag:
		return c.Len() == 0
	}
	return false
}

func joinElems(elems []Tag) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// readElems reads the id, count and payloads of a non-empty collection.
func readElems(r *Reader, add func(Tag) error) error {
	id, err := r.ReadID()
	if err != nil {
		return err
	}
	count, err := r.ReadInt32()
	if err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("tag: negative collection size %d", count)
	}
	for i := int32(0); i < count; i++ {
		t, err := r.Registry().Read(id, r)
		if err != nil {
			return err
		}
		if err := add(t); err != nil {
			return err
		}
	}
	return nil
}

// ReadListTag reads a list payload. Because empty lists are written as
// nothing, the caller states whether the list is known to be empty; in that
// case no bytes are consumed.
func ReadListTag(r *Reader, empty bool) (*ListTag, error) {
	l := &ListTag{}
	if empty {
		return l, nil
	}
	if err := readElems(r, l.Add); err != nil {
		return nil, err
	}
	return l, nil
}

// ReadSetTag is ReadListTag for sets. Duplicate elements in the input are
// dropped.
func ReadSetTag(r *Reader, empty bool) (*SetTag, error) {
	s := &SetTag{}
	if empty {
		return s, nil
	}
	err := readElems(r, func(t Tag) error {
		_, err := s.Add(t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func readList(r *Reader) (Tag, error) {
	l, err := ReadListTag(r, false)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func readSet(r *Reader) (Tag, error) {
	s, err := ReadSetTag(r, false)
	if err != nil {
		return nil, err
	}
	return s, nil
}
