package file

import "fmt"

// Kind is a lifecycle event of a SerialFile
type Kind int

const (
	PreLoad Kind = iota
	Load
	PreReload
	Reload
	PreSave
	Save
	PreSaveModel
	SaveModel
	Create
)

var kindNames = [...]string{
	PreLoad:      "pre_load",
	Load:         "load",
	PreReload:    "pre_reload",
	Reload:       "reload",
	PreSave:      "pre_save",
	Save:         "save",
	PreSaveModel: "pre_save_model",
	SaveModel:    "save_model",
	Create:       "create",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Observer is called with the file that raised the event.
type Observer[T any] func(f *SerialFile[T])

// observers holds handlers per kind in registration order.
type observers[T any] map[Kind][]Observer[T]

func (o observers[T]) add(kind Kind, fn Observer[T]) {
	o[kind] = append(o[kind], fn)
}
