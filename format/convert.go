package format

import (
	"bytes"
	"fmt"
	"math"

	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/strategy"
	"github.com/WalkNetwork/serializer-framework/tag"
)

// Convert re-encodes data from one format into another without a
// serializer. Document formats go through their value tree; the tag format
// reads and writes tag streams, as tag.IO does.
func Convert(from, to serial.BinaryFormat, data []byte) ([]byte, error) {
	node, err := ParseTree(from, data)
	if err != nil {
		return nil, err
	}
	return RenderTree(to, node)
}

// ParseTree reads data in format f into a value tree.
func ParseTree(f serial.BinaryFormat, data []byte) (any, error) {
	switch x := model(f).(type) {
	case Document:
		return x.Parse(data)
	case *tag.Format:
		t, err := (&tag.IO{Codec: x.Codec, Policy: tag.Strict}).Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return TagToTree(t), nil
	}
	return nil, fmt.Errorf("format: %s has no value tree: %w", f.Name(), serial.ErrNotSupported)
}

// RenderTree writes a value tree in format f.
func RenderTree(f serial.BinaryFormat, node any) ([]byte, error) {
	switch x := model(f).(type) {
	case Document:
		return x.Render(node)
	case *tag.Format:
		t, err := TreeToTag(node)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := (&tag.IO{Codec: x.Codec, Policy: tag.Strict}).Write(&buf, t); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("format: %s has no value tree: %w", f.Name(), serial.ErrNotSupported)
}

// model strips strategy decoration, which only applies to serializer
// driven values.
func model(f serial.BinaryFormat) serial.BinaryFormat {
	if bf, ok := f.(*strategy.BinaryFormatter); ok {
		return model(bf.Model)
	}
	return f
}

// TagToTree converts a tag into a value tree. Compounds keep their key
// order; chars and uuids become strings. Variants unknown to this package
// are rendered with their String form.
func TagToTree(t tag.Tag) any {
	switch x := t.(type) {
	case tag.EmptyTag:
		return nil
	case tag.ByteTag:
		return int64(x)
	case tag.ShortTag:
		return int64(x)
	case tag.IntTag:
		return int64(x)
	case tag.LongTag:
		return int64(x)
	case tag.FloatTag, tag.DoubleTag, tag.BooleanTag, tag.CharTag, tag.StringTag, tag.UuidTag:
		node, _ := tree.FromNative(tag.Value(x))
		return node
	case *tag.ListTag:
		return treeElems(x.Elems())
	case *tag.SetTag:
		return treeElems(x.Elems())
	case *tag.CompoundTag:
		obj := &tree.Object{Members: make([]tree.Member, 0, x.Len())}
		x.Range(func(key string, v tag.Tag) bool {
			obj.Members = append(obj.Members, tree.Member{Key: key, Value: TagToTree(v)})
			return true
		})
		return obj
	}
	return t.String()
}

func treeElems(elems []tag.Tag) []any {
	out := make([]any, len(elems))
	for i, e := range elems {
		out[i] = TagToTree(e)
	}
	return out
}

// TreeToTag converts a value tree into tags. Integers become IntTag when
// they fit in 32 bits and LongTag otherwise; lists mixing integer widths, or
// integers and floats, are widened to a common type.
func TreeToTag(node any) (tag.Tag, error) {
	switch x := node.(type) {
	case nil:
		return tag.EmptyTag{}, nil
	case bool:
		return tag.BooleanTag(x), nil
	case int64:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			return tag.IntTag(x), nil
		}
		return tag.LongTag(x), nil
	case float64:
		return tag.DoubleTag(x), nil
	case string:
		return tag.StringTag(x), nil
	case []any:
		elems := make([]tag.Tag, len(x))
		for i, e := range x {
			t, err := TreeToTag(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = t
		}
		l, err := tag.NewList(widenElems(elems)...)
		if err != nil {
			return nil, err
		}
		return l, nil
	case *tree.Object:
		c := tag.NewCompound()
		for _, m := range x.Members {
			t, err := TreeToTag(m.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Key, err)
			}
			c.Put(m.Key, t)
		}
		return c, nil
	}
	n, err := tree.FromNative(node)
	if err != nil {
		return nil, err
	}
	return TreeToTag(n)
}

func widenElems(elems []tag.Tag) []tag.Tag {
	var ints, longs, doubles int
	for _, e := range elems {
		switch e.ID() {
		case tag.IntID:
			ints++
		case tag.LongID:
			longs++
		case tag.DoubleID:
			doubles++
		}
	}
	numeric := ints + longs + doubles
	if numeric != len(elems) || numeric == ints || numeric == longs || numeric == doubles {
		return elems
	}
	out := make([]tag.Tag, len(elems))
	for i, e := range elems {
		switch v := e.(type) {
		case tag.IntTag:
			if doubles > 0 {
				out[i] = tag.DoubleTag(v)
			} else {
				out[i] = tag.LongTag(v)
			}
		case tag.LongTag:
			if doubles > 0 {
				out[i] = tag.DoubleTag(v)
			} else {
				out[i] = v
			}
		default:
			out[i] = e
		}
	}
	return out
}
