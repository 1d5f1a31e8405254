// Package tree binds the serial protocol to a generic value tree so that
// document engines (JSON, YAML, MessagePack, CBOR, TOML) only have to move
// trees to and from bytes.
//
// A tree node is one of nil, bool, int64, float64, string, []any or *Object.
// Structures are encoded by element name, so decoding tolerates reordered
// and unknown members.
package tree

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is an insertion-ordered string-keyed node.
type Object struct {
	Members []Member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

// Set stores v under key, replacing an existing member in place.
func (o *Object) Set(key string, v any) {
	if o.index == nil {
		o.reindex()
	}
	if i, ok := o.index[key]; ok {
		o.Members[i].Value = v
		return
	}
	o.index[key] = len(o.Members)
	o.Members = append(o.Members, Member{Key: key, Value: v})
}

func (o *Object) Get(key string) (any, bool) {
	if o.index == nil {
		o.reindex()
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.Members[i].Value, true
}

func (o *Object) Len() int { return len(o.Members) }

// Keys returns member keys in order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Members))
	for i, m := range o.Members {
		keys[i] = m.Key
	}
	return keys
}

// Members may be built directly; the index is rebuilt lazily.
func (o *Object) reindex() {
	o.index = make(map[string]int, len(o.Members))
	for i, m := range o.Members {
		o.index[m.Key] = i
	}
}

// FromNative converts values produced by document engines into tree nodes.
// Maps become objects with keys in ascending order, integers become int64 and
// floats float64. Timestamps become RFC 3339 strings and byte slices base64
// strings.
func FromNative(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, float64, string:
		return x, nil
	case *Object:
		out := &Object{Members: make([]Member, 0, len(x.Members))}
		for _, m := range x.Members {
			n, err := FromNative(m.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Key, err)
			}
			out.Members = append(out.Members, Member{Key: m.Key, Value: n})
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := FromNative(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &Object{Members: make([]Member, 0, len(keys))}
		for _, k := range keys {
			n, err := FromNative(x[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out.Members = append(out.Members, Member{Key: k, Value: n})
		}
		return out, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(x), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return float64(u), nil
		}
		return int64(u), nil
	case reflect.Float32:
		return widen(float32(rv.Float())), nil
	case reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			n, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := keyString(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			n, err := FromNative(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			keys = append(keys, k)
			values[k] = n
		}
		sort.Strings(keys)
		out := &Object{Members: make([]Member, 0, len(keys))}
		for _, k := range keys {
			out.Members = append(out.Members, Member{Key: k, Value: values[k]})
		}
		return out, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return FromNative(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("tree: unsupported value %T", v)
}

// ToNative converts a tree into plain Go values: objects become
// map[string]any and member order is lost.
func ToNative(node any) any {
	switch x := node.(type) {
	case *Object:
		m := make(map[string]any, len(x.Members))
		for _, member := range x.Members {
			m[member.Key] = ToNative(member.Value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToNative(e)
		}
		return out
	}
	return node
}

// number matches json.Number and similar decimal wrappers.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// widen converts a float32 to the float64 with the same shortest decimal
// representation.
func widen(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

// keyString renders a scalar map key.
func keyString(k any) (string, error) {
	switch x := k.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case nil:
		return "", fmt.Errorf("tree: null map key")
	}
	n, err := FromNative(k)
	if err != nil {
		return "", err
	}
	switch n.(type) {
	case *Object, []any:
		return "", fmt.Errorf("tree: map key must be a scalar, found %T", k)
	}
	return keyString(n)
}
