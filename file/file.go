// Package file binds values to files kept in a storage backend. A SerialFile
// holds a model used to create the file and the data last loaded from it.
package file

import (
	"errors"
	"fmt"
	"sync"

	"github.com/WalkNetwork/serializer-framework/format"
	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/storage"
	"github.com/WalkNetwork/serializer-framework/telemetry"
	"github.com/rs/zerolog/log"
)

// SerialFile is a value of type T persisted under Key with Format.
type SerialFile[T any] struct {
	Key     string
	Format  serial.BinaryFormat
	Storage storage.Backend
	// Model is written when the file does not exist yet.
	Model T
	// Data is replaced by every Load and Reload and written by Save.
	Data T
	// Hub, when set, receives every event of the file.
	Hub *Hub

	ser       serial.Serializer
	mu        sync.Mutex
	observers observers[T]
}

// New returns a SerialFile without touching storage. Data starts as model.
func New[T any](backend storage.Backend, key string, f serial.BinaryFormat, model T) (*SerialFile[T], error) {
	ser, err := serial.Of[T]()
	if err != nil {
		return nil, err
	}
	if _, err := storage.CleanKey(key); err != nil {
		return nil, err
	}
	return &SerialFile[T]{
		Key:       key,
		Format:    f,
		Storage:   backend,
		Model:     model,
		Data:      model,
		ser:       ser,
		observers: observers[T]{},
	}, nil
}

// Open is New followed by Load.
func Open[T any](backend storage.Backend, key string, f serial.BinaryFormat, model T) (*SerialFile[T], error) {
	sf, err := New(backend, key, f, model)
	if err != nil {
		return nil, err
	}
	if err := sf.Load(); err != nil {
		return nil, err
	}
	return sf, nil
}

// OnObserve registers fn to run on every event of kind. Observers run on
// the goroutine that raised the event, in registration order.
func (f *SerialFile[T]) OnObserve(kind Kind, fn Observer[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers.add(kind, fn)
}

func (f *SerialFile[T]) observe(kind Kind) {
	telemetry.FileEventsTotal.With(kind.String()).Inc()
	log.Debug().Str("file", f.Key).Str("event", kind.String()).Msg("Serial file event")

	f.mu.Lock()
	handlers := append([]Observer[T](nil), f.observers[kind]...)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(f)
	}
	if f.Hub != nil {
		f.Hub.Publish(Event{Key: f.Key, Kind: kind})
	}
}

// Load creates the file from Model when it is absent, then reloads it.
func (f *SerialFile[T]) Load() error {
	f.observe(PreLoad)
	if _, err := f.Create(true); err != nil {
		return err
	}
	if err := f.Reload(); err != nil {
		return err
	}
	f.observe(Load)
	return nil
}

// Create creates the file when it does not exist, writing Model when
// saveModel is set. It reports whether the file was created.
func (f *SerialFile[T]) Create(saveModel bool) (bool, error) {
	exists, err := f.Storage.Exists(f.Key)
	if err != nil || exists {
		return false, err
	}
	if err := f.Storage.Write(f.Key, nil); err != nil {
		return false, fmt.Errorf("file: create %s: %w", f.Key, err)
	}
	f.observe(Create)
	if saveModel {
		return true, f.SaveModel()
	}
	return true, nil
}

// Reload replaces Data with the stored contents.
func (f *SerialFile[T]) Reload() error {
	f.observe(PreReload)
	data, err := f.Storage.Read(f.Key)
	if err != nil {
		return err
	}
	v, err := format.Unmarshal(f.Format, f.ser, data)
	if err != nil {
		return fmt.Errorf("file: decode %s: %w", f.Key, err)
	}
	if v == nil {
		var zero T
		f.Data = zero
	} else {
		f.Data = v.(T)
	}
	f.observe(Reload)
	return nil
}

// Save writes Data.
func (f *SerialFile[T]) Save() error {
	f.observe(PreSave)
	if err := f.write(f.Data); err != nil {
		return err
	}
	f.observe(Save)
	return nil
}

// SaveModel writes Model, leaving Data untouched.
func (f *SerialFile[T]) SaveModel() error {
	f.observe(PreSaveModel)
	if err := f.write(f.Model); err != nil {
		return err
	}
	f.observe(SaveModel)
	return nil
}

func (f *SerialFile[T]) write(v T) error {
	data, err := format.Marshal(f.Format, f.ser, v)
	if err != nil {
		return fmt.Errorf("file: encode %s: %w", f.Key, err)
	}
	return f.Storage.Write(f.Key, data)
}

// Content returns the stored bytes.
func (f *SerialFile[T]) Content() ([]byte, error) {
	return f.Storage.Read(f.Key)
}

// Clear empties the stored file.
func (f *SerialFile[T]) Clear() error {
	return f.Storage.Write(f.Key, nil)
}

// MoveTo copies the stored file to key and rebinds f to it. The old key is
// left in place. When load is set the file is loaded from its new location.
func (f *SerialFile[T]) MoveTo(key string, load bool) error {
	if _, err := storage.CleanKey(key); err != nil {
		return err
	}
	data, err := f.Storage.Read(f.Key)
	if err != nil {
		return err
	}
	if err := f.Storage.Write(key, data); err != nil {
		return err
	}
	f.Key = key
	if load {
		return f.Load()
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
