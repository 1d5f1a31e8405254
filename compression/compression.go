// Package compression provides the named stream transforms applied around
// binary payloads. Tag streams are gzip-compressed unless configured
// otherwise.
package compression

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/WalkNetwork/serializer-framework/cfg"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
)

// ErrUnknownCodec is returned by Lookup for unregistered names
var ErrUnknownCodec = errors.New("unknown compression codec")

// Codec wraps writers and readers with a compressing transform
type Codec interface {
	Name() string
	Compress(w io.Writer) (io.WriteCloser, error)
	Decompress(r io.Reader) (io.ReadCloser, error)
}

var codecs = xsync.NewMapOf[string, Codec]()

func init() {
	level := getCompressionLevel()
	Register(newGzipCodec(configLevelToGzip(level)))
	Register(newZstdCodec(configLevelToZstd(level)))
	Register(newLz4Codec(configLevelToLz4(level)))
	Register(None)
}

// Register makes a codec available by name. A later registration with the
// same name replaces the earlier one.
func Register(c Codec) {
	codecs.Store(c.Name(), c)
	log.Debug().Str("codec", c.Name()).Msg("Registered compression codec")
}

// Lookup returns the codec registered under name
func Lookup(name string) (Codec, error) {
	if c, ok := codecs.Load(name); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

// Default returns the codec selected by configuration, falling back to gzip
func Default() Codec {
	if cfg.Config != nil {
		if c, err := Lookup(cfg.Config.Tag.Compression); err == nil {
			return c
		}
	}
	c, _ := codecs.Load(GzipName)
	return c
}

// Names lists registered codecs in lexical order
func Names() []string {
	names := make([]string, 0, codecs.Size())
	codecs.Range(func(name string, _ Codec) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// getCompressionLevel returns the configured compression level
func getCompressionLevel() int {
	if cfg.Config == nil {
		return 2
	}
	return cfg.Config.Tag.CompressionLevel
}

// NoneName identifies the identity codec
const NoneName = "none"

type noneCodec struct{}

// None passes bytes through untouched
var None Codec = noneCodec{}

func (noneCodec) Name() string { return NoneName }

func (noneCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (noneCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
