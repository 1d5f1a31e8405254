package tag

import (
	"bytes"
	"io"
	"os"

	"github.com/WalkNetwork/serializer-framework/compression"
	"github.com/WalkNetwork/serializer-framework/serial"
)

// FormatName is the registry name of the binary tag format.
const FormatName = "tag"

// Format stores values positionally through Encoder/Decoder inside a
// compression transform.
type Format struct {
	Codec compression.Codec
}

var _ serial.BinaryFormat = (*Format)(nil)

// NewFormat returns a Format using the configured compression codec.
func NewFormat() *Format {
	return &Format{Codec: compression.Default()}
}

func (f *Format) Name() string { return FormatName }

func (f *Format) codec() compression.Codec {
	if f.Codec == nil {
		return compression.Default()
	}
	return f.Codec
}

func (f *Format) EncodeToBytes(s serial.SerializationStrategy, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.EncodeToStream(&buf, s, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Format) DecodeFromBytes(s serial.DeserializationStrategy, data []byte) (any, error) {
	return f.DecodeFromStream(bytes.NewReader(data), s)
}

// EncodeToStream writes v to w. The compression stream is always closed; w
// is left open.
func (f *Format) EncodeToStream(w io.Writer, s serial.SerializationStrategy, v any) (err error) {
	cw, err := f.codec().Compress(w)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cw.Close(); err == nil {
			err = cerr
		}
	}()
	return s.Serialize(NewEncoder(NewWriter(cw, Strict)), v)
}

// DecodeFromStream reads one value from r.
func (f *Format) DecodeFromStream(r io.Reader, s serial.DeserializationStrategy) (any, error) {
	cr, err := f.codec().Decompress(r)
	if err != nil {
		return nil, err
	}
	defer cr.Close()
	return s.Deserialize(NewDecoder(NewReader(cr, WithPolicy(Strict)), 0))
}

// EncodeToFile writes v to path, creating parent directories. A failed
// encode leaves any existing file untouched.
func (f *Format) EncodeToFile(path string, s serial.SerializationStrategy, v any) error {
	return writeFile(path, func(w io.Writer) error {
		return f.EncodeToStream(w, s, v)
	})
}

// DecodeFromFile reads a value written by EncodeToFile.
func (f *Format) DecodeFromFile(path string, s serial.DeserializationStrategy) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return f.DecodeFromStream(file, s)
}
