package tag

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/WalkNetwork/serializer-framework/compression"
	"github.com/WalkNetwork/serializer-framework/telemetry"
)

// IO reads and writes whole tag trees as [int16 id][payload] inside a
// compression transform.
type IO struct {
	Codec    compression.Codec
	Registry *Registry
	Policy   Policy
}

// NewIO returns an IO using the configured codec and policy and the Default
// registry.
func NewIO() *IO {
	return &IO{
		Codec:    compression.Default(),
		Registry: Default,
		Policy:   ConfiguredPolicy(),
	}
}

func (o *IO) codec() compression.Codec {
	if o.Codec == nil {
		return compression.Default()
	}
	return o.Codec
}

// Write writes t to w. The compressed stream is flushed before returning; w
// itself is not closed.
func (o *IO) Write(w io.Writer, t Tag) (err error) {
	defer func() { telemetry.TagIOTotal.With("write", telemetry.Result(err)).Inc() }()

	cw, err := o.codec().Compress(w)
	if err != nil {
		return err
	}
	tw := NewWriter(cw, o.Policy)
	if err := tw.WriteID(t.ID()); err != nil {
		cw.Close()
		return err
	}
	if err := t.Write(tw); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// Read reads one tag tree from r. A list or set id at the end of the stream
// is read as an empty collection, matching what Write produces for one.
func (o *IO) Read(r io.Reader) (t Tag, err error) {
	defer func() { telemetry.TagIOTotal.With("read", telemetry.Result(err)).Inc() }()

	cr, err := o.codec().Decompress(r)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	br := bufio.NewReader(cr)
	reg := o.Registry
	if reg == nil {
		reg = Default
	}
	tr := NewReader(br, WithPolicy(o.Policy), WithRegistry(reg))

	id, err := tr.ReadID()
	if err != nil {
		return nil, fmt.Errorf("tag: reading root id: %w", err)
	}
	if id == ListID || id == SetID {
		if _, err := br.Peek(1); errors.Is(err, io.EOF) {
			if id == ListID {
				return &ListTag{}, nil
			}
			return &SetTag{}, nil
		}
	}
	return reg.Read(id, tr)
}

// WriteFile writes t to path, creating parent directories. The previous
// contents stay in place if the write fails.
func (o *IO) WriteFile(path string, t Tag) error {
	return writeFile(path, func(w io.Writer) error {
		return o.Write(w, t)
	})
}

// writeFile streams into a temporary sibling of path and renames it over
// path once write succeeds.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile reads a tag tree written by WriteFile.
func (o *IO) ReadFile(path string) (Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return o.Read(f)
}

// Write writes t to w with a default IO.
func Write(w io.Writer, t Tag) error {
	return NewIO().Write(w, t)
}

// Read reads a tag tree from r with a default IO.
func Read(r io.Reader) (Tag, error) {
	return NewIO().Read(r)
}

// ReadCompound reads a tag tree that must be a compound.
func ReadCompound(r io.Reader) (*CompoundTag, error) {
	t, err := Read(r)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*CompoundTag)
	if !ok {
		return nil, fmt.Errorf("tag: expected compound, found id %d", t.ID())
	}
	return c, nil
}
