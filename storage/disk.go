package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Disk stores each key as a file under a root directory. Directories are
// created on first write.
type Disk struct {
	root string
	mu   sync.RWMutex
}

var _ Backend = (*Disk)(nil)

// NewDisk returns a Disk rooted at root. Nothing is created until the first
// write.
func NewDisk(root string) *Disk {
	d := &Disk{root: root}
	logOpened(d, root)
	return d
}

func (d *Disk) Name() string { return "disk" }

// Root is the directory files are stored under.
func (d *Disk) Root() string { return d.root }

func (d *Disk) path(key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.root, filepath.FromSlash(cleaned)), nil
}

func (d *Disk) Read(key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}

// Write replaces the file atomically through a temporary sibling.
func (d *Disk) Write(key string, data []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage: create directory for %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (d *Disk) Exists(key string) (bool, error) {
	p, err := d.path(key)
	if err != nil {
		return false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (d *Disk) Delete(key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (d *Disk) List() ([]string, error) {
	var keys []string
	err := d.walk(func(key string, _ fs.FileInfo) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	return keys, err
}

func (d *Disk) Stats() (files int, bytes int64, err error) {
	err = d.walk(func(_ string, info fs.FileInfo) {
		files++
		bytes += info.Size()
	})
	return files, bytes, err
}

// walk visits the regular files that CleanKey can name. Dot entries, which
// include in-flight temporaries, are skipped.
func (d *Disk) walk(visit func(key string, info fs.FileInfo)) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := p != d.root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		visit(filepath.ToSlash(rel), info)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (d *Disk) Close() error {
	log.Debug().Str("backend", d.Name()).Str("path", d.root).Msg("Closed storage")
	return nil
}
