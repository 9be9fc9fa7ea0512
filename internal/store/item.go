// Package store implements the Value Model and Database Set (§4.B, §4.C):
// the typed value union, per-key expiration bookkeeping, and the
// lazily-materialized collection of numbered databases.
package store

import "time"

// Kind tags which of the three supported shapes an Item holds (§3: the
// Value union excludes Set from storage — it is reserved for the TYPE
// reply only, so there is no SetKind here).
type Kind int

const (
	StringKind Kind = iota
	ListKind
	HashKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "string"
	case ListKind:
		return "list"
	case HashKind:
		return "hash"
	default:
		return "none"
	}
}

// Item is one stored Value plus the access bookkeeping used by the INFO
// enrichment (§3-ext). Exactly one of Str/List/Hash is meaningful,
// determined by Kind.
type Item struct {
	Kind Kind

	Str  string
	List *Deque
	Hash map[string]string

	LastAccessed time.Time
	AccessCount  int64
}

func newItem(kind Kind) *Item {
	return &Item{Kind: kind, LastAccessed: time.Now()}
}

func NewStringItem(s string) *Item {
	it := newItem(StringKind)
	it.Str = s
	return it
}

func NewListItem(vals ...string) *Item {
	it := newItem(ListKind)
	it.List = NewDeque(vals...)
	return it
}

func NewHashItem() *Item {
	it := newItem(HashKind)
	it.Hash = make(map[string]string)
	return it
}

func (it *Item) touch() {
	it.LastAccessed = time.Now()
	it.AccessCount++
}

// Len reports the shape-specific length used by the per-key INFO report:
// 1 for strings, element count for lists/hashes.
func (it *Item) Len() int {
	switch it.Kind {
	case StringKind:
		return 1
	case ListKind:
		return it.List.Len()
	case HashKind:
		return len(it.Hash)
	default:
		return 0
	}
}

// ApproxMemoryUsage estimates the heap footprint of storing key->it,
// grounded on the teacher's Item.ApproxMemoryUsage. Used only by the INFO
// memory report; never affects command semantics.
func (it *Item) ApproxMemoryUsage(key string) int64 {
	const (
		stringHeader = 16
		pointerSize  = 8
		mapOverhead  = 18
	)
	size := int64(stringHeader + len(key) + pointerSize + mapOverhead + 40)
	switch it.Kind {
	case StringKind:
		size += int64(len(it.Str))
	case ListKind:
		for _, s := range it.List.ToSlice() {
			size += int64(stringHeader + len(s))
		}
	case HashKind:
		for f, v := range it.Hash {
			size += int64(stringHeader+len(f)) + int64(stringHeader+len(v)) + mapOverhead
		}
	}
	return size
}
