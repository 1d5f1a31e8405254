package file

import (
	"bytes"
	"fmt"

	"github.com/WalkNetwork/serializer-framework/storage"
	"github.com/WalkNetwork/serializer-framework/tag"
	"github.com/rs/zerolog/log"
)

// TaggedFile is a compound tag kept in a storage backend through tag.IO.
type TaggedFile struct {
	*tag.CompoundTag
	Key     string
	Storage storage.Backend
	IO      *tag.IO
}

// OpenTagged returns the tagged file at key, loading it when it exists and
// is not empty.
func OpenTagged(backend storage.Backend, key string) (*TaggedFile, error) {
	if _, err := storage.CleanKey(key); err != nil {
		return nil, err
	}
	tf := &TaggedFile{
		CompoundTag: tag.NewCompound(),
		Key:         key,
		Storage:     backend,
		IO:          tag.NewIO(),
	}
	data, err := backend.Read(key)
	switch {
	case err == nil && len(data) > 0:
		return tf, tf.decode(data)
	case err == nil, isNotFound(err):
		return tf, nil
	}
	return nil, err
}

// Save writes the compound.
func (f *TaggedFile) Save() error {
	var buf bytes.Buffer
	if err := f.IO.Write(&buf, f.CompoundTag); err != nil {
		return fmt.Errorf("file: encode %s: %w", f.Key, err)
	}
	if err := f.Storage.Write(f.Key, buf.Bytes()); err != nil {
		return err
	}
	log.Debug().Str("file", f.Key).Int("entries", f.Len()).Msg("Saved tagged file")
	return nil
}

// Load replaces the compound with the stored one.
func (f *TaggedFile) Load() error {
	data, err := f.Storage.Read(f.Key)
	if err != nil {
		return err
	}
	return f.decode(data)
}

func (f *TaggedFile) decode(data []byte) error {
	t, err := f.IO.Read(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("file: decode %s: %w", f.Key, err)
	}
	c, ok := t.(*tag.CompoundTag)
	if !ok {
		return fmt.Errorf("file: %s holds tag id %d, not a compound", f.Key, t.ID())
	}
	f.CompoundTag = c
	return nil
}

// ClearFile empties the stored file. The compound in memory is kept.
func (f *TaggedFile) ClearFile() error {
	return f.Storage.Write(f.Key, nil)
}
