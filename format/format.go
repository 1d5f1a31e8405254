// Package format keeps the registry of named formats and the helpers that
// encode, decode and convert through them.
//
// The binary tag format is always registered. Document formats live in
// subpackages that register themselves when imported; import
// format/all to get every one of them.
package format

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/WalkNetwork/serializer-framework/cfg"
	"github.com/WalkNetwork/serializer-framework/compression"
	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/strategy"
	"github.com/WalkNetwork/serializer-framework/tag"
	"github.com/rs/zerolog/log"
)

// ErrUnknownFormat is returned by New for unregistered names
var ErrUnknownFormat = errors.New("unknown format")

// Options configure a format instance
type Options struct {
	Pretty bool              // Indent text output
	Codec  compression.Codec // Compression for binary tag output
}

// DefaultOptions returns options taken from configuration
func DefaultOptions() Options {
	opts := Options{Codec: compression.Default()}
	if cfg.Config != nil {
		opts.Pretty = cfg.Config.Format.Pretty
	}
	return opts
}

// Factory creates a format instance
type Factory func(opts Options) (serial.BinaryFormat, error)

// Document is a format backed by a schemaless value tree. Documents can be
// converted into one another without a serializer.
type Document interface {
	serial.BinaryFormat
	Parse(data []byte) (any, error)
	Render(node any) ([]byte, error)
}

var (
	factories = make(map[string]Factory)
	factoryMu sync.RWMutex
)

func init() {
	Register(tag.FormatName, func(opts Options) (serial.BinaryFormat, error) {
		return &tag.Format{Codec: opts.Codec}, nil
	})
}

// Register registers a format factory under name
func Register(name string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = factory
	log.Debug().Str("format", name).Msg("Registered format")
}

// New creates the format registered under name
func New(name string, opts Options) (serial.BinaryFormat, error) {
	factoryMu.RLock()
	factory, exists := factories[name]
	factoryMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return factory(opts)
}

// Names lists registered formats in lexical order
func Names() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithStrategy decorates f so values pass through s in both directions
func WithStrategy(f serial.BinaryFormat, s strategy.Strategy) serial.BinaryFormat {
	return strategy.NewBinaryFormatter(f, s)
}

// Configured returns the default format from configuration, decorated with
// the configured strategy if any
func Configured() (serial.BinaryFormat, error) {
	name, strategyName := "json", ""
	if cfg.Config != nil {
		name, strategyName = cfg.Config.Format.Default, cfg.Config.Format.Strategy
	}

	f, err := New(name, DefaultOptions())
	if err != nil {
		return nil, err
	}
	if strategyName == "" {
		return f, nil
	}
	s, err := strategy.Lookup(strategyName)
	if err != nil {
		return nil, err
	}
	return WithStrategy(f, s), nil
}
