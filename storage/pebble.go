package storage

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog/log"
)

const pebblePrefixFile = "/file/" // /file/{key}

// PebbleOptions configures the Pebble backend
type PebbleOptions struct {
	CacheSizeMB int64 // Block cache size (default: 8MB)
	DisableWAL  bool  // Only for testing!
}

// Pebble stores files as values in a Pebble database.
type Pebble struct {
	db     *pebble.DB
	path   string
	write  *pebble.WriteOptions
	closed atomic.Bool
}

var _ Backend = (*Pebble)(nil)

// pebbleLogger wraps zerolog for Pebble
type pebbleLogger struct{}

func (l *pebbleLogger) Infof(format string, args ...interface{}) {
	log.Debug().Msgf("[pebble] "+format, args...)
}

func (l *pebbleLogger) Errorf(format string, args ...interface{}) {
	log.Error().Msgf("[pebble] "+format, args...)
}

func (l *pebbleLogger) Fatalf(format string, args ...interface{}) {
	log.Fatal().Msgf("[pebble] "+format, args...)
}

// OpenPebble opens or creates the database at path.
func OpenPebble(path string, opts PebbleOptions) (*Pebble, error) {
	if opts.CacheSizeMB < 1 {
		opts.CacheSizeMB = 8
	}
	cache := pebble.NewCache(opts.CacheSizeMB << 20)
	defer cache.Unref() // DB will hold reference

	db, err := pebble.Open(path, &pebble.Options{
		Cache:      cache,
		DisableWAL: opts.DisableWAL,
		Logger:     &pebbleLogger{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble db: %w", err)
	}

	p := &Pebble{db: db, path: path, write: pebble.Sync}
	if opts.DisableWAL {
		p.write = pebble.NoSync
	}
	logOpened(p, path)
	return p, nil
}

func (p *Pebble) Name() string { return "pebble" }

func pebbleFileKey(key string) ([]byte, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	return []byte(pebblePrefixFile + cleaned), nil
}

// prefixUpperBound returns prefix + 0xFF... for range iteration
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix)+8)
	copy(upper, prefix)
	for i := len(prefix); i < len(upper); i++ {
		upper[i] = 0xFF
	}
	return upper
}

func (p *Pebble) Read(key string) ([]byte, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	k, err := pebbleFileKey(key)
	if err != nil {
		return nil, err
	}

	val, closer, err := p.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(val))
	copy(result, val)
	return result, nil
}

func (p *Pebble) Write(key string, data []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	k, err := pebbleFileKey(key)
	if err != nil {
		return err
	}
	return p.db.Set(k, data, p.write)
}

func (p *Pebble) Exists(key string) (bool, error) {
	_, err := p.Read(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *Pebble) Delete(key string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	k, err := pebbleFileKey(key)
	if err != nil {
		return err
	}
	return p.db.Delete(k, p.write)
}

func (p *Pebble) List() ([]string, error) {
	var keys []string
	err := p.scan(func(key, _ []byte) {
		keys = append(keys, string(key[len(pebblePrefixFile):]))
	})
	return keys, err
}

func (p *Pebble) Stats() (files int, bytes int64, err error) {
	err = p.scan(func(_, value []byte) {
		files++
		bytes += int64(len(value))
	})
	return files, bytes, err
}

func (p *Pebble) scan(visit func(key, value []byte)) error {
	if p.closed.Load() {
		return ErrClosed
	}
	prefix := []byte(pebblePrefixFile)
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		val, err := iter.ValueAndErr()
		if err != nil {
			return err
		}
		visit(iter.Key(), val)
	}
	return iter.Error()
}

// Close closes the database (idempotent - safe to call multiple times)
func (p *Pebble) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	log.Debug().Str("backend", p.Name()).Str("path", p.path).Msg("Closed storage")
	return p.db.Close()
}
