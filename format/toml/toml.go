// Package toml registers the "toml" format. Documents must be tables; nulls
// have no TOML form, so null members are left out and null array items are
// rejected.
package toml

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/format/tree"
	"github.com/WalkNetwork/serializer-framework/serial"
)

const Name = "toml"

var (
	ErrNotTable  = errors.New("toml document must be a table")
	ErrNullArray = errors.New("toml arrays cannot hold null")
)

func init() {
	format.Register(Name, func(opts format.Options) (serial.BinaryFormat, error) {
		return New(opts.Pretty), nil
	})
}

// New returns the TOML format; pretty indents nested tables.
func New(pretty bool) *tree.Format {
	return tree.NewFormat(Name, engine{pretty: pretty})
}

type engine struct {
	pretty bool
}

func (e engine) Render(node any) ([]byte, error) {
	obj, ok := node.(*tree.Object)
	if !ok {
		return nil, ErrNotTable
	}
	table, err := native(obj)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if e.pretty {
		enc.Indent = "  "
	} else {
		enc.Indent = ""
	}
	if err := enc.Encode(table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func native(node any) (any, error) {
	switch x := node.(type) {
	case *tree.Object:
		m := make(map[string]any, x.Len())
		for _, member := range x.Members {
			if member.Value == nil {
				continue
			}
			v, err := native(member.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", member.Key, err)
			}
			m[member.Key] = v
		}
		return m, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			if e == nil {
				return nil, fmt.Errorf("[%d]: %w", i, ErrNullArray)
			}
			v, err := native(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}
	return node, nil
}

func (engine) Parse(data []byte) (any, error) {
	var table map[string]any
	md, err := toml.Decode(string(data), &table)
	if err != nil {
		return nil, err
	}
	node, err := tree.FromNative(table)
	if err != nil {
		return nil, err
	}

	// Restore definition order from the decoded key paths.
	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		parent := strings.Join(key[:len(key)-1], ".")
		full := strings.Join(key, ".")
		if seen[full] {
			continue
		}
		seen[full] = true
		order[parent] = append(order[parent], key[len(key)-1])
	}
	reorder(node, "", order)
	return node, nil
}

func reorder(node any, path string, order map[string][]string) {
	switch x := node.(type) {
	case *tree.Object:
		members := make([]tree.Member, 0, x.Len())
		placed := make(map[string]bool, x.Len())
		for _, key := range order[path] {
			if v, ok := x.Get(key); ok && !placed[key] {
				members = append(members, tree.Member{Key: key, Value: v})
				placed[key] = true
			}
		}
		for _, m := range x.Members {
			if !placed[m.Key] {
				members = append(members, m)
			}
		}
		sorted := &tree.Object{Members: members}
		*x = *sorted
		for _, m := range x.Members {
			reorder(m.Value, join(path, m.Key), order)
		}
	case []any:
		for _, e := range x {
			reorder(e, path, order)
		}
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
