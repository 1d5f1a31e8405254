// Package strategy decorates any serial binding so that every primitive value
// passing through it is rewritten by a pluggable transform.
//
// The decorators re-wrap at every recursion boundary (structures,
// collections, nested serializable elements) so a transform reaches fields at
// any depth. Transforms run in the caller's goroutine and their panics are not
// recovered.
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
)

// EncoderStrategy rewrites primitive values before they are encoded. d and
// index locate the value inside its enclosing structure or collection; at the
// root of an encode d is nil and index is -1.
type EncoderStrategy interface {
	EncodeString(d *serial.Descriptor, index int, v string) string
	EncodeBool(d *serial.Descriptor, index int, v bool) bool
	EncodeByte(d *serial.Descriptor, index int, v int8) int8
	EncodeShort(d *serial.Descriptor, index int, v int16) int16
	EncodeInt(d *serial.Descriptor, index int, v int32) int32
	EncodeLong(d *serial.Descriptor, index int, v int64) int64
	EncodeFloat(d *serial.Descriptor, index int, v float32) float32
	EncodeDouble(d *serial.Descriptor, index int, v float64) float64
	EncodeChar(d *serial.Descriptor, index int, v serial.Char) serial.Char
}

// DecoderStrategy rewrites primitive values after they are decoded.
// DecodeIndex may remap the element indexes returned by name-based formats.
type DecoderStrategy interface {
	DecodeString(d *serial.Descriptor, index int, v string) string
	DecodeBool(d *serial.Descriptor, index int, v bool) bool
	DecodeByte(d *serial.Descriptor, index int, v int8) int8
	DecodeShort(d *serial.Descriptor, index int, v int16) int16
	DecodeInt(d *serial.Descriptor, index int, v int32) int32
	DecodeLong(d *serial.Descriptor, index int, v int64) int64
	DecodeFloat(d *serial.Descriptor, index int, v float32) float32
	DecodeDouble(d *serial.Descriptor, index int, v float64) float64
	DecodeChar(d *serial.Descriptor, index int, v serial.Char) serial.Char
	DecodeIndex(d *serial.Descriptor, index int) int
}

// Strategy transforms in both directions.
type Strategy interface {
	EncoderStrategy
	DecoderStrategy
}

// Identity leaves every value unchanged. Embed it to override only some
// kinds.
type Identity struct{}

func (Identity) EncodeString(_ *serial.Descriptor, _ int, v string) string         { return v }
func (Identity) EncodeBool(_ *serial.Descriptor, _ int, v bool) bool               { return v }
func (Identity) EncodeByte(_ *serial.Descriptor, _ int, v int8) int8               { return v }
func (Identity) EncodeShort(_ *serial.Descriptor, _ int, v int16) int16            { return v }
func (Identity) EncodeInt(_ *serial.Descriptor, _ int, v int32) int32              { return v }
func (Identity) EncodeLong(_ *serial.Descriptor, _ int, v int64) int64             { return v }
func (Identity) EncodeFloat(_ *serial.Descriptor, _ int, v float32) float32        { return v }
func (Identity) EncodeDouble(_ *serial.Descriptor, _ int, v float64) float64       { return v }
func (Identity) EncodeChar(_ *serial.Descriptor, _ int, v serial.Char) serial.Char { return v }

func (Identity) DecodeString(_ *serial.Descriptor, _ int, v string) string         { return v }
func (Identity) DecodeBool(_ *serial.Descriptor, _ int, v bool) bool               { return v }
func (Identity) DecodeByte(_ *serial.Descriptor, _ int, v int8) int8               { return v }
func (Identity) DecodeShort(_ *serial.Descriptor, _ int, v int16) int16            { return v }
func (Identity) DecodeInt(_ *serial.Descriptor, _ int, v int32) int32              { return v }
func (Identity) DecodeLong(_ *serial.Descriptor, _ int, v int64) int64             { return v }
func (Identity) DecodeFloat(_ *serial.Descriptor, _ int, v float32) float32        { return v }
func (Identity) DecodeDouble(_ *serial.Descriptor, _ int, v float64) float64       { return v }
func (Identity) DecodeChar(_ *serial.Descriptor, _ int, v serial.Char) serial.Char { return v }
func (Identity) DecodeIndex(_ *serial.Descriptor, index int) int                   { return index }

// ColorStrategy replaces Reserved with Placeholder in every string on encode
// and Placeholder with Reserved on decode. Strings that already contain
// Placeholder do not survive a round trip unchanged.
type ColorStrategy struct {
	Identity
	Reserved    rune
	Placeholder rune
}

// Color swaps the section sign used by formatting codes with '&'.
var Color = ColorStrategy{Reserved: '§', Placeholder: '&'}

func (c ColorStrategy) EncodeString(_ *serial.Descriptor, _ int, v string) string {
	return strings.ReplaceAll(v, string(c.Reserved), string(c.Placeholder))
}

func (c ColorStrategy) DecodeString(_ *serial.Descriptor, _ int, v string) string {
	return strings.ReplaceAll(v, string(c.Placeholder), string(c.Reserved))
}

type reverseBoolean struct {
	Identity
}

// ReverseBoolean negates every boolean in both directions.
var ReverseBoolean Strategy = reverseBoolean{}

func (reverseBoolean) EncodeBool(_ *serial.Descriptor, _ int, v bool) bool { return !v }
func (reverseBoolean) DecodeBool(_ *serial.Descriptor, _ int, v bool) bool { return !v }

// Names of the built-in strategies.
const (
	IdentityName       = "identity"
	ColorName          = "color"
	ReverseBooleanName = "reverse-boolean"
)

// ErrUnknownStrategy is returned by Lookup for unregistered names
var ErrUnknownStrategy = errors.New("unknown strategy")

var strategies = xsync.NewMapOf[string, Strategy]()

func init() {
	Register(IdentityName, Identity{})
	Register(ColorName, Color)
	Register(ReverseBooleanName, ReverseBoolean)
}

// Register makes s available by name, replacing any earlier registration.
func Register(name string, s Strategy) {
	strategies.Store(name, s)
	log.Debug().Str("strategy", name).Msg("Registered strategy")
}

// Lookup returns the strategy registered under name. The empty name resolves
// to Identity.
func Lookup(name string) (Strategy, error) {
	if name == "" {
		return Identity{}, nil
	}
	if s, ok := strategies.Load(name); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Names lists registered strategies in lexical order
func Names() []string {
	names := make([]string, 0, strategies.Size())
	strategies.Range(func(name string, _ Strategy) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
