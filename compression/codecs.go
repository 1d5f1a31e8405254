package compression

import (
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	GzipName = "gzip"
	ZstdName = "zstd"
	Lz4Name  = "lz4"
)

// gzipCodec keeps gzip writers and readers in pools; they are reset onto the
// next stream instead of being reallocated
type gzipCodec struct {
	level      int
	writerPool sync.Pool
	readerPool sync.Pool
}

func newGzipCodec(level int) *gzipCodec {
	return &gzipCodec{level: level}
}

func (c *gzipCodec) Name() string { return GzipName }

func (c *gzipCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	if gz, ok := c.writerPool.Get().(*gzip.Writer); ok {
		gz.Reset(w)
		return &pooledWriter{w: gz, pool: &c.writerPool}, nil
	}
	gz, err := gzip.NewWriterLevel(w, c.level)
	if err != nil {
		return nil, err
	}
	return &pooledWriter{w: gz, pool: &c.writerPool}, nil
}

func (c *gzipCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	if gz, ok := c.readerPool.Get().(*gzip.Reader); ok {
		if err := gz.Reset(r); err != nil {
			c.readerPool.Put(gz)
			return nil, err
		}
		return &pooledReader{r: gz, closer: gz, pool: &c.readerPool}, nil
	}
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &pooledReader{r: gz, closer: gz, pool: &c.readerPool}, nil
}

type zstdCodec struct {
	level       zstd.EncoderLevel
	encoderPool sync.Pool
	decoderPool sync.Pool
}

func newZstdCodec(level zstd.EncoderLevel) *zstdCodec {
	return &zstdCodec{level: level}
}

func (c *zstdCodec) Name() string { return ZstdName }

func (c *zstdCodec) Compress(w io.Writer) (io.WriteCloser, error) {
	if enc, ok := c.encoderPool.Get().(*zstd.Encoder); ok {
		enc.Reset(w)
		return &pooledWriter{w: enc, pool: &c.encoderPool}, nil
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
	if err != nil {
		return nil, err
	}
	return &pooledWriter{w: enc, pool: &c.encoderPool}, nil
}

func (c *zstdCodec) Decompress(r io.Reader) (io.ReadCloser, error) {
	if dec, ok := c.decoderPool.Get().(*zstd.Decoder); ok {
		if err := dec.Reset(r); err != nil {
			c.decoderPool.Put(dec)
			return nil, err
		}
		return &pooledReader{r: dec, pool: &c.decoderPool}, nil
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &pooledReader{r: dec, pool: &c.decoderPool}, nil
}

type lz4Codec struct {
	level      lz4.CompressionLevel
	writerPool sync.Pool
	readerPool sync.Pool
}

func newLz4Codec(level lz4.CompressionLevel) *lz4Codec {
	return &lz4Codec{level: level}
}

func (c *lz4Codec) Name() string { return Lz4Name }

func (c *lz4Codec) Compress(w io.Writer) (io.WriteCloser, error) {
	if zw, ok := c.writerPool.Get().(*lz4.Writer); ok {
		zw.Reset(w)
		return &pooledWriter{w: zw, pool: &c.writerPool}, nil
	}
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(c.level)); err != nil {
		return nil, err
	}
	return &pooledWriter{w: zw, pool: &c.writerPool}, nil
}

func (c *lz4Codec) Decompress(r io.Reader) (io.ReadCloser, error) {
	if zr, ok := c.readerPool.Get().(*lz4.Reader); ok {
		zr.Reset(r)
		return &pooledReader{r: zr, pool: &c.readerPool}, nil
	}
	return &pooledReader{r: lz4.NewReader(r), pool: &c.readerPool}, nil
}

// pooledWriter returns its writer to the pool on Close
type pooledWriter struct {
	w    io.WriteCloser
	pool *sync.Pool
}

func (p *pooledWriter) Write(data []byte) (int, error) {
	return p.w.Write(data)
}

func (p *pooledWriter) Close() error {
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.pool.Put(p.w)
	p.w = nil
	return err
}

// pooledReader returns its reader to the pool on Close
type pooledReader struct {
	r      io.Reader
	closer io.Closer
	pool   *sync.Pool
}

func (p *pooledReader) Read(data []byte) (int, error) {
	return p.r.Read(data)
}

func (p *pooledReader) Close() error {
	if p.r == nil {
		return nil
	}
	var err error
	if p.closer != nil {
		err = p.closer.Close()
	}
	p.pool.Put(p.r)
	p.r = nil
	return err
}

// configLevelToZstd maps config levels (1-4) to zstd.EncoderLevel
func configLevelToZstd(level int) zstd.EncoderLevel {
	switch level {
	case 1:
		return zstd.SpeedFastest
	case 2:
		return zstd.SpeedDefault
	case 3:
		return zstd.SpeedBetterCompression
	case 4:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// configLevelToGzip maps config levels (1-4) to gzip levels
func configLevelToGzip(level int) int {
	switch level {
	case 1:
		return gzip.BestSpeed
	case 2:
		return gzip.DefaultCompression
	case 3:
		return 7
	case 4:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

// configLevelToLz4 maps config levels (1-4) to lz4 levels
func configLevelToLz4(level int) lz4.CompressionLevel {
	switch level {
	case 1:
		return lz4.Fast
	case 2:
		return lz4.Level3
	case 3:
		return lz4.Level6
	case 4:
		return lz4.Level9
	default:
		return lz4.Fast
	}
}
