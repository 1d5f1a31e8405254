package tag

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ReadFunc reads the payload of one tag variant.
type ReadFunc func(r *Reader) (Tag, error)

// RegisteredTag binds a tag id to a name, a constructor for its zero value
// and a payload reader.
type RegisteredTag struct {
	ID   ID
	Name string
	New  func() Tag
	Read ReadFunc
}

// Registry maps tag ids to variants. Registration is first-wins: an id, once
// bound, is never rebound.
type Registry struct {
	mu   sync.RWMutex
	byID map[ID]RegisteredTag
	last ID
}

// Default is the registry used by readers that are not given one.
var Default = NewRegistry()

// NewRegistry returns a registry holding the built-in variants. Ids handed out
// by Register start after the reserved range.
func NewRegistry() *Registry {
	reg := &Registry{byID: make(map[ID]RegisteredTag), last: LastReservedID}
	for _, b := range builtins {
		reg.byID[b.ID] = b
	}
	return reg
}

var builtins = []RegisteredTag{
	{EmptyID, "empty", func() Tag { return EmptyTag{} }, readEmpty},
	{ByteID, "byte", func() Tag { return ByteTag(0) }, readByte},
	{ShortID, "short", func() Tag { return ShortTag(0) }, readShort},
	{IntID, "int", func() Tag { return IntTag(0) }, readInt},
	{LongID, "long", func() Tag { return LongTag(0) }, readLong},
	{FloatID, "float", func() Tag { return FloatTag(0) }, readFloat},
	{DoubleID, "double", func() Tag { return DoubleTag(0) }, readDouble},
	{BooleanID, "boolean", func() Tag { return BooleanTag(false) }, readBoolean},
	{CharID, "char", func() Tag { return CharTag(' ') }, readChar},
	{StringID, "string", func() Tag { return StringTag("") }, readString},
	{ListID, "list", func() Tag { return &ListTag{} }, readList},
	{SetID, "set", func() Tag { return &SetTag{} }, readSet},
	{CompoundID, "compound", func() Tag { return NewCompound() }, readCompound},
	{UuidID, "uuid", func() Tag { return UuidTag{} }, readUUID},
}

// Register binds a new variant to the id after the highest one registered
// or reserved so far.
func (reg *Registry) Register(name string, newTag func() Tag, read ReadFunc) (RegisteredTag, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	next := int32(reg.last) + 1
	for ; next <= math.MaxInt16; next++ {
		if _, taken := reg.byID[ID(next)]; !taken {
			break
		}
	}
	if next > math.MaxInt16 {
		return RegisteredTag{}, ErrIDsExhausted
	}

	id := ID(next)
	rt := RegisteredTag{ID: id, Name: name, New: newTag, Read: read}
	reg.byID[id] = rt
	reg.last = id
	log.Debug().Int16("id", int16(id)).Str("name", name).Msg("Registered tag type")
	return rt, nil
}

// RegisterAt binds a variant to a fixed id, including the reserved ones.
// Later Register calls continue above it. It reports false and leaves the
// registry unchanged when id is already bound.
func (reg *Registry) RegisterAt(id ID, name string, newTag func() Tag, read ReadFunc) (RegisteredTag, bool) {
	if id < 0 {
		return RegisteredTag{}, false
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if existing, ok := reg.byID[id]; ok {
		log.Debug().Int16("id", int16(id)).Str("name", name).Str("existing", existing.Name).Msg("Tag id already registered")
		return existing, false
	}
	rt := RegisteredTag{ID: id, Name: name, New: newTag, Read: read}
	reg.byID[id] = rt
	if id > reg.last {
		reg.last = id
	}
	log.Debug().Int16("id", int16(id)).Str("name", name).Msg("Registered tag type")
	return rt, true
}

// Lookup returns the variant bound to id.
func (reg *Registry) Lookup(id ID) (RegisteredTag, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rt, ok := reg.byID[id]
	return rt, ok
}

// Create returns the zero value of the variant bound to id.
func (reg *Registry) Create(id ID) (Tag, error) {
	rt, ok := reg.Lookup(id)
	if !ok || rt.New == nil {
		return nil, &UnknownTagError{ID: id}
	}
	return rt.New(), nil
}

// Read reads the payload of the variant bound to id.
func (reg *Registry) Read(id ID, r *Reader) (Tag, error) {
	rt, ok := reg.Lookup(id)
	if !ok || rt.Read == nil {
		return nil, &UnknownTagError{ID: id}
	}
	t, err := rt.Read(r)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// IDs returns the bound ids in ascending order.
func (reg *Registry) IDs() []ID {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ids := make([]ID, 0, len(reg.byID))
	for id := range reg.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (rt RegisteredTag) String() string {
	return fmt.Sprintf("%s(%d)", rt.Name, rt.ID)
}
