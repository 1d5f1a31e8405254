// Package storage persists encoded files as byte buffers keyed by a
// slash-separated relative path.
package storage

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/WalkNetwork/serializer-framework/cfg"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrInvalidKey = errors.New("storage: invalid key")
	ErrClosed     = errors.New("storage: closed")
)

// Backend stores whole files. Implementations are safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Exists(key string) (bool, error)
	Delete(key string) error
	// List returns every stored key in ascending order.
	List() ([]string, error)
	Stats() (files int, bytes int64, err error)
	Close() error
}

// Open opens the backend selected by cfg.Config.Storage.
func Open() (Backend, error) {
	root := cfg.StoragePath()
	switch cfg.Config.Storage.Backend {
	case cfg.BackendDisk:
		return NewDisk(root), nil
	case cfg.BackendPebble:
		return OpenPebble(root, PebbleOptions{CacheSizeMB: cfg.Config.Storage.CacheSizeMB})
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.Config.Storage.Backend)
}

// CleanKey normalizes key and rejects keys that leave the storage root.
// Segments starting with a dot are rejected too; Disk keeps its in-flight
// temporaries under such names.
func CleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	cleaned := path.Clean(strings.TrimPrefix(key, "/"))
	if key == "" || cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, segment := range strings.Split(cleaned, "/") {
		if strings.HasPrefix(segment, ".") {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return cleaned, nil
}

func logOpened(b Backend, root string) {
	log.Debug().Str("backend", b.Name()).Str("path", root).Msg("Opened storage")
}
