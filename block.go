package statecache

import (
	"sync"

	"github.com/unkn0wn-root/statecache/namespace"
)

type blockKey struct {
	family string
	key    string
}

type entryKey struct {
	ns  namespace.Namespace
	tag Tag
}

type weighted[V any] struct {
	value  V
	weight int64
}

// block holds every cached entry for one (computation, family, key) under a
// single fencing token. It is reset and evicted as a whole.
type block[V any] struct {
	mu sync.Mutex

	id    blockKey
	comp  *ComputationCache[V]
	shard *shard[V]

	// guarded by mu
	token   uint64
	stamped bool // false until the first handle stamps its token
	dead    bool // removed from its shard; accessors must look up again
	entries map[entryKey]weighted[V]
	groups  map[namespace.Namespace]int // live entries per window group
	weight  int64

	// guarded by Cache.lruMu
	prev, next *block[V]
	listed     bool
	tick       uint64
}

// overhead is charged once per window group held by the block.
func (b *block[V]) overhead() int64 { return int64(len(b.id.key)) }

// put stores value and returns the weight delta. Caller holds mu.
func (b *block[V]) put(ns namespace.Namespace, tag Tag, value V, weight int64) int64 {
	if b.entries == nil {
		b.entries = make(map[entryKey]weighted[V])
		b.groups = make(map[namespace.Namespace]int)
	}
	k := entryKey{ns: ns, tag: tag}
	delta := weight
	if old, ok := b.entries[k]; ok {
		delta -= old.weight
	} else {
		g := ns.Group()
		if b.groups[g] == 0 {
			delta += b.overhead()
		}
		b.groups[g]++
	}
	b.entries[k] = weighted[V]{value: value, weight: weight}
	b.weight += delta
	return delta
}

func (b *block[V]) get(ns namespace.Namespace, tag Tag) (V, bool) {
	e, ok := b.entries[entryKey{ns: ns, tag: tag}]
	return e.value, ok
}

// reset empties the block and stamps it with token. Returns the weight released.
func (b *block[V]) reset(token uint64) int64 {
	w := b.weight
	b.entries = nil
	b.groups = nil
	b.weight = 0
	b.token = token
	b.stamped = true
	return w
}

// retire empties the block for good. Returns the weight released.
func (b *block[V]) retire() int64 {
	w := b.reset(b.token)
	b.dead = true
	return w
}
