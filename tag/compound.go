package tag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CompoundTag maps string keys to tags, preserving insertion order. Putting
// an existing key replaces its value without moving it.
type CompoundTag struct {
	keys   []string
	values map[string]Tag
}

// NewCompound returns an empty compound.
func NewCompound() *CompoundTag {
	return &CompoundTag{values: make(map[string]Tag)}
}

func (c *CompoundTag) ID() ID { return CompoundID }

// Put stores t under key and returns c. A nil t removes key.
func (c *CompoundTag) Put(key string, t Tag) *CompoundTag {
	if t == nil {
		c.Remove(key)
		return c
	}
	if c.values == nil {
		c.values = make(map[string]Tag)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = t
	return c
}

// Set converts v with Of and stores it under key.
func (c *CompoundTag) Set(key string, v any) error {
	t, err := Of(v)
	if err != nil {
		return fmt.Errorf("tag: key %q: %w", key, err)
	}
	c.Put(key, t)
	return nil
}

func (c *CompoundTag) Get(key string) (Tag, bool) {
	t, ok := c.values[key]
	return t, ok
}

func (c *CompoundTag) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Remove deletes key and reports whether it was present.
func (c *CompoundTag) Remove(key string) bool {
	if _, ok := c.values[key]; !ok {
		return false
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (c *CompoundTag) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c *CompoundTag) Len() int { return len(c.keys) }

// Range calls fn for each entry in insertion order until fn returns false.
func (c *CompoundTag) Range(fn func(key string, t Tag) bool) {
	for _, k := range c.keys {
		if !fn(k, c.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy; values are shared.
func (c *CompoundTag) Clone() *CompoundTag {
	out := &CompoundTag{
		keys:   append([]string(nil), c.keys...),
		values: make(map[string]Tag, len(c.values)),
	}
	for k, v := range c.values {
		out.values[k] = v
	}
	return out
}

// Write emits (id, key, payload) for every entry followed by EndID. Entries
// holding an empty list or set are skipped: their payload is empty and could
// not be told apart from the next entry on read.
func (c *CompoundTag) Write(w *Writer) error {
	for _, k := range c.keys {
		v := c.values[k]
		if isEmptyCollection(v) {
			continue
		}
		if err := w.WriteID(v.ID()); err != nil {
			return err
		}
		if err := w.WriteUTF(k); err != nil {
			return fmt.Errorf("tag: key %.32q: %w", k, err)
		}
		if err := v.Write(w); err != nil {
			return err
		}
	}
	return w.WriteID(EndID)
}

// Equal compares entries regardless of order.
func (c *CompoundTag) Equal(other Tag) bool {
	o, ok := other.(*CompoundTag)
	if !ok || o.Len() != c.Len() {
		return false
	}
	for k, v := range c.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (c *CompoundTag) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(c.values[k].String())
	}
	b.WriteByte('}')
	return b.String()
}

// readCompound returns a compound only once its terminator has been read.
func readCompound(r *Reader) (Tag, error) {
	c := NewCompound()
	for {
		id, err := r.ReadID()
		if err != nil {
			return nil, err
		}
		if id == EndID {
			return c, nil
		}
		key, err := r.ReadUTF()
		if err != nil {
			return nil, err
		}
		t, err := r.Registry().Read(id, r)
		if err != nil {
			return nil, fmt.Errorf("tag: key %q: %w", key, err)
		}
		c.Put(key, t)
	}
}

// Lookup returns the value under key if it has type T.
func Lookup[T Tag](c *CompoundTag, key string) (T, bool) {
	t, ok := c.values[key].(T)
	return t, ok
}

// Typed getters. A missing key or a value of another type yields the zero
// value (a space for GetChar, an empty collection for the container getters).

func (c *CompoundTag) GetByte(key string) int8 {
	v, _ := Lookup[ByteTag](c, key)
	return int8(v)
}

func (c *CompoundTag) GetShort(key string) int16 {
	v, _ := Lookup[ShortTag](c, key)
	return int16(v)
}

func (c *CompoundTag) GetInt(key string) int32 {
	v, _ := Lookup[IntTag](c, key)
	return int32(v)
}

func (c *CompoundTag) GetLong(key string) int64 {
	v, _ := Lookup[LongTag](c, key)
	return int64(v)
}

func (c *CompoundTag) GetFloat(key string) float32 {
	v, _ := Lookup[FloatTag](c, key)
	return float32(v)
}

func (c *CompoundTag) GetDouble(key string) float64 {
	v, _ := Lookup[DoubleTag](c, key)
	return float64(v)
}

func (c *CompoundTag) GetBoolean(key string) bool {
	v, _ := Lookup[BooleanTag](c, key)
	return bool(v)
}

func (c *CompoundTag) GetChar(key string) uint16 {
	if v, ok := Lookup[CharTag](c, key); ok {
		return uint16(v)
	}
	return ' '
}

func (c *CompoundTag) GetString(key string) string {
	v, _ := Lookup[StringTag](c, key)
	return string(v)
}

// GetUUID has no meaningful default, so it reports presence.
func (c *CompoundTag) GetUUID(key string) (uuid.UUID, bool) {
	v, ok := Lookup[UuidTag](c, key)
	return uuid.UUID(v), ok
}

func (c *CompoundTag) GetList(key string) *ListTag {
	if v, ok := Lookup[*ListTag](c, key); ok {
		return v
	}
	return &ListTag{}
}

func (c *CompoundTag) GetSet(key string) *SetTag {
	if v, ok := Lookup[*SetTag](c, key); ok {
		return v
	}
	return &SetTag{}
}

func (c *CompoundTag) GetCompound(key string) *CompoundTag {
	if v, ok := Lookup[*CompoundTag](c, key); ok {
		return v
	}
	return NewCompound()
}

// GetEnum resolves a string entry against the constant names of an enum and
// returns its ordinal.
func (c *CompoundTag) GetEnum(key string, values []string) (int, bool) {
	v, ok := Lookup[StringTag](c, key)
	if !ok {
		return 0, false
	}
	for i, name := range values {
		if name == string(v) {
			return i, true
		}
	}
	return 0, false
}

// Of converts a Go value to its tag: integers and floats by size, bool,
// strings, uuid.UUID, slices (as lists) and string-keyed maps (as compounds).
// Tags are returned unchanged.
func Of(v any) (Tag, error) {
	switch x := v.(type) {
	case Tag:
		return x, nil
	case nil:
		return EmptyTag{}, nil
	case int8:
		return ByteTag(x), nil
	case uint8:
		return ShortTag(x), nil
	case int16:
		return ShortTag(x), nil
	case uint16:
		return CharTag(x), nil
	case int32:
		return IntTag(x), nil
	case int:
		return LongTag(x), nil
	case int64:
		return LongTag(x), nil
	case uint32:
		return LongTag(x), nil
	case float32:
		return FloatTag(x), nil
	case float64:
		return DoubleTag(x), nil
	case bool:
		return BooleanTag(x), nil
	case string:
		return StringTag(x), nil
	case uuid.UUID:
		return UuidTag(x), nil
	case []any:
		l := &ListTag{}
		for i, e := range x {
			t, err := Of(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			if err := l.Add(t); err != nil {
				return nil, err
			}
		}
		return l, nil
	case []string:
		l := &ListTag{}
		for _, e := range x {
			l.elems = append(l.elems, StringTag(e))
		}
		return l, nil
	case map[string]any:
		c := NewCompound()
		for _, k := range sortedKeys(x) {
			if err := c.Set(k, x[k]); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
	return nil, fmt.Errorf("tag: no tag for %T", v)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value converts a tag back into a plain Go value, the inverse of Of for
// the built-in variants: compounds become map[string]any, lists and sets
// []any, uuids their string form.
func Value(t Tag) any {
	switch x := t.(type) {
	case EmptyTag:
		return nil
	case ByteTag:
		return int8(x)
	case ShortTag:
		return int16(x)
	case IntTag:
		return int32(x)
	case LongTag:
		return int64(x)
	case FloatTag:
		return float32(x)
	case DoubleTag:
		return float64(x)
	case BooleanTag:
		return bool(x)
	case CharTag:
		return string(rune(x))
	case StringTag:
		return string(x)
	case UuidTag:
		return uuid.UUID(x).String()
	case *ListTag:
		return values(x.elems)
	case *SetTag:
		return values(x.elems)
	case *CompoundTag:
		m := make(map[string]any, x.Len())
		x.Range(func(k string, v Tag) bool {
			m[k] = Value(v)
			return true
		})
		return m
	}
	return t.String()
}

func values(elems []Tag) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = Value(e)
	}
	return out
}
