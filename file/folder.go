package file

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/WalkNetwork/serializer-framework/serial"
	"github.com/WalkNetwork/serializer-framework/storage"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// Folder is a set of serial files of the same type under one directory of
// a storage backend. Files are discovered by a glob on their name.
type Folder[T any] struct {
	Dir     string
	Format  serial.BinaryFormat
	Storage storage.Backend
	Model   T
	// Hub is attached to every file added after it is set.
	Hub *Hub

	pattern glob.Glob
	files   []*SerialFile[T]
	index   map[string]int
}

// NewFolder returns a folder matching names against pattern, e.g. "*.json".
// An empty pattern matches every file directly inside dir.
func NewFolder[T any](backend storage.Backend, dir, pattern string, f serial.BinaryFormat, model T) (*Folder[T], error) {
	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid folder pattern %q: %w", pattern, err)
	}
	dir = strings.Trim(path.Clean("/"+dir), "/")
	return &Folder[T]{
		Dir:     dir,
		Format:  f,
		Storage: backend,
		Model:   model,
		pattern: g,
		index:   map[string]int{},
	}, nil
}

func (d *Folder[T]) key(name string) string {
	if d.Dir == "" {
		return name
	}
	return d.Dir + "/" + name
}

// Search lists the names of stored files that belong to the folder.
func (d *Folder[T]) Search() ([]string, error) {
	keys, err := d.Storage.List()
	if err != nil {
		return nil, err
	}
	prefix := ""
	if d.Dir != "" {
		prefix = d.Dir + "/"
	}

	var names []string
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		name := k[len(prefix):]
		if strings.Contains(name, "/") || !d.pattern.Match(name) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// ImplementAll adds every searched file not yet in the folder. Files are
// not loaded.
func (d *Folder[T]) ImplementAll() error {
	names, err := d.Search()
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, ok := d.index[name]; ok {
			continue
		}
		sf, err := New(d.Storage, d.key(name), d.Format, d.Model)
		if err != nil {
			return err
		}
		d.add(name, sf)
	}
	log.Debug().Str("folder", d.Dir).Int("files", len(d.files)).Msg("Implemented folder files")
	return nil
}

// Implement adds a file called name created from model and loads it.
func (d *Folder[T]) Implement(name string, model T) (*SerialFile[T], error) {
	if !d.pattern.Match(name) {
		return nil, fmt.Errorf("file: %q does not match the folder pattern", name)
	}
	sf, err := New(d.Storage, d.key(name), d.Format, model)
	if err != nil {
		return nil, err
	}
	sf.Hub = d.Hub
	if err := sf.Load(); err != nil {
		return nil, err
	}
	d.add(name, sf)
	return sf, nil
}

// ImplementModel is Implement with the folder model.
func (d *Folder[T]) ImplementModel(name string) (*SerialFile[T], error) {
	return d.Implement(name, d.Model)
}

func (d *Folder[T]) add(name string, sf *SerialFile[T]) {
	if sf.Hub == nil {
		sf.Hub = d.Hub
	}
	if i, ok := d.index[name]; ok {
		d.files[i] = sf
		return
	}
	d.index[name] = len(d.files)
	d.files = append(d.files, sf)
}

// Get returns the file called name.
func (d *Folder[T]) Get(name string) (*SerialFile[T], bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.files[i], true
}

// Files returns the folder's files in the order they were added.
func (d *Folder[T]) Files() []*SerialFile[T] {
	return append([]*SerialFile[T](nil), d.files...)
}

func (d *Folder[T]) Len() int { return len(d.files) }

func (d *Folder[T]) LoadAll() error      { return d.each((*SerialFile[T]).Load) }
func (d *Folder[T]) ReloadAll() error    { return d.each((*SerialFile[T]).Reload) }
func (d *Folder[T]) SaveAll() error      { return d.each((*SerialFile[T]).Save) }
func (d *Folder[T]) SaveAllModel() error { return d.each((*SerialFile[T]).SaveModel) }

// each applies fn to every file; failures do not stop the others.
func (d *Folder[T]) each(fn func(*SerialFile[T]) error) error {
	var errs []error
	for _, sf := range d.files {
		if err := fn(sf); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
