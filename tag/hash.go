package tag

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hasher lets registered variants supply their own structural hash. Tags
// that are Equal must hash alike.
type Hasher interface {
	Hash() uint64
}

// Hash returns a structural hash of t consistent with Equal: lists hash in
// order, sets and compounds independently of order.
func Hash(t Tag) uint64 {
	switch x := t.(type) {
	case Hasher:
		return x.Hash()
	case EmptyTag:
		return mix(EmptyID, 0)
	case ByteTag:
		return mix(ByteID, uint64(x))
	case ShortTag:
		return mix(ShortID, uint64(x))
	case IntTag:
		return mix(IntID, uint64(x))
	case LongTag:
		return mix(LongID, uint64(x))
	case FloatTag:
		return mix(FloatID, uint64(math.Float32bits(float32(x))))
	case DoubleTag:
		return mix(DoubleID, math.Float64bits(float64(x)))
	case BooleanTag:
		if x {
			return mix(BooleanID, 1)
		}
		return mix(BooleanID, 0)
	case CharTag:
		return mix(CharID, uint64(x))
	case StringTag:
		return mix(StringID, xxhash.Sum64String(string(x)))
	case UuidTag:
		return mix(UuidID, xxhash.Sum64(x[:]))
	case *ListTag:
		d := xxhash.New()
		var buf [8]byte
		for _, e := range x.elems {
			binary.LittleEndian.PutUint64(buf[:], Hash(e))
			_, _ = d.Write(buf[:])
		}
		return mix(ListID, d.Sum64())
	case *SetTag:
		var sum uint64
		for _, e := range x.elems {
			sum += Hash(e)
		}
		return mix(SetID, sum)
	case *CompoundTag:
		var sum uint64
		for k, v := range x.values {
			sum += xxhash.Sum64String(k) ^ (Hash(v) * 31)
		}
		return mix(CompoundID, sum)
	}
	return mix(t.ID(), xxhash.Sum64String(t.String()))
}

func mix(id ID, v uint64) uint64 {
	var buf [10]byte
	binary.LittleEndian.PutUint16(buf[:2], uint16(id))
	binary.LittleEndian.PutUint64(buf[2:], v)
	return xxhash.Sum64(buf[:])
}
