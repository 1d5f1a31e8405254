package tag

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/WalkNetwork/serializer-framework/cfg"
	"github.com/WalkNetwork/serializer-framework/telemetry"
)

// Policy decides what primitive tag reads do when the underlying stream
// fails.
type Policy uint8

const (
	// Lenient replaces the value of a failed primitive read with its zero
	// value and carries on. Ids, keys and counts still fail the read.
	Lenient Policy = iota
	// Strict returns every read error.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ConfiguredPolicy returns the policy selected in cfg.Config.
func ConfiguredPolicy() Policy {
	if cfg.Config != nil && cfg.Config.Tag.Policy == cfg.PolicyStrict {
		return Strict
	}
	return Lenient
}

// Writer writes big-endian primitives.
type Writer struct {
	w      io.Writer
	buf    [8]byte
	policy Policy
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer, policy Policy) *Writer {
	return &Writer{w: w, policy: policy}
}

// Policy reports how leaf writes that cannot be represented are handled.
func (w *Writer) Policy() Policy { return w.policy }

func (w *Writer) write(n int) error {
	_, err := w.w.Write(w.buf[:n])
	return err
}

func (w *Writer) WriteInt8(v int8) error {
	w.buf[0] = byte(v)
	return w.write(1)
}

func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteInt8(1)
	}
	return w.WriteInt8(0)
}

func (w *Writer) WriteInt16(v int16) error {
	binary.BigEndian.PutUint16(w.buf[:2], uint16(v))
	return w.write(2)
}

func (w *Writer) WriteChar(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	return w.write(2)
}

func (w *Writer) WriteInt32(v int32) error {
	binary.BigEndian.PutUint32(w.buf[:4], uint32(v))
	return w.write(4)
}

func (w *Writer) WriteInt64(v int64) error {
	binary.BigEndian.PutUint64(w.buf[:8], uint64(v))
	return w.write(8)
}

func (w *Writer) WriteFloat32(v float32) error {
	binary.BigEndian.PutUint32(w.buf[:4], math.Float32bits(v))
	return w.write(4)
}

func (w *Writer) WriteFloat64(v float64) error {
	binary.BigEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	return w.write(8)
}

// WriteUTF writes s prefixed with its byte length as an unsigned 16 bit
// integer.
func (w *Writer) WriteUTF(s string) error {
	if len(s) > math.MaxUint16 {
		return ErrStringTooLong
	}
	binary.BigEndian.PutUint16(w.buf[:2], uint16(len(s)))
	if err := w.write(2); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, s)
	return err
}

// WriteID writes a tag id.
func (w *Writer) WriteID(id ID) error {
	return w.WriteInt16(int16(id))
}

// Reader reads big-endian primitives and resolves tag ids through a
// Registry.
type Reader struct {
	r        io.Reader
	buf      [8]byte
	policy   Policy
	registry *Registry
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithPolicy overrides the configured read policy.
func WithPolicy(p Policy) ReaderOption {
	return func(r *Reader) { r.policy = p }
}

// WithRegistry resolves ids through reg instead of Default.
func WithRegistry(reg *Registry) ReaderOption {
	return func(r *Reader) { r.registry = reg }
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{r: r, policy: ConfiguredPolicy(), registry: Default}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Policy reports how failed primitive reads are handled.
func (r *Reader) Policy() Policy { return r.policy }

// Registry returns the registry used to resolve nested tag ids.
func (r *Reader) Registry() *Registry { return r.registry }

func (r *Reader) read(n int) error {
	_, err := io.ReadFull(r.r, r.buf[:n])
	return err
}

// leaf applies the read policy to the error of a primitive read.
func (r *Reader) leaf(err error) error {
	if err == nil || r.policy == Strict {
		return err
	}
	telemetry.TagLenientDefaultsTotal.Inc()
	return nil
}

func (r *Reader) ReadInt8() (int8, error) {
	if err := r.read(1); err != nil {
		return 0, err
	}
	return int8(r.buf[0]), nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadInt8()
	return v != 0, err
}

func (r *Reader) ReadInt16() (int16, error) {
	if err := r.read(2); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(r.buf[:2])), nil
}

func (r *Reader) ReadChar() (uint16, error) {
	if err := r.read(2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	if err := r.read(4); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(r.buf[:4])), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	if err := r.read(8); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(r.buf[:8])), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	if err := r.read(4); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(r.buf[:4])), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.read(8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(r.buf[:8])), nil
}

// ReadUTF reads a string written by WriteUTF.
func (r *Reader) ReadUTF() (string, error) {
	if err := r.read(2); err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(r.buf[:2]))
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	return string(b), nil
}

// ReadID reads a tag id.
func (r *Reader) ReadID() (ID, error) {
	v, err := r.ReadInt16()
	return ID(v), err
}
