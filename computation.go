package statecache

import (
	"github.com/unkn0wn-root/statecache/internal/util"
)

// ComputationCache holds the blocks of one computation (pipeline stage).
type ComputationCache[V any] struct {
	name   string
	cache  *Cache[V]
	shards []*shard[V]
	mask   uint64
}

func newComputationCache[V any](c *Cache[V], name string) *ComputationCache[V] {
	cc := &ComputationCache[V]{
		name:   name,
		cache:  c,
		shards: make([]*shard[V], c.shards),
		mask:   uint64(c.shards - 1),
	}
	for i := range cc.shards {
		cc.shards[i] = newShard[V]()
	}
	return cc
}

func (cc *ComputationCache[V]) Name() string { return cc.name }

// ForKey returns a handle to the block of (key, family) bound to token.
// The token is compared with the cached block lazily, on first Get or Put.
// key is copied.
func (cc *ComputationCache[V]) ForKey(key []byte, family string, token uint64) *KeyCache[V] {
	return &KeyCache[V]{
		comp:  cc,
		id:    blockKey{family: family, key: string(key)},
		token: token,
	}
}

// Invalidate drops the block of (key, family), whatever its token.
func (cc *ComputationCache[V]) Invalidate(key []byte, family string) {
	id := blockKey{family: family, key: string(key)}
	b := cc.shardFor(id).get(id)
	if b == nil {
		return
	}
	b.mu.Lock()
	if b.dead {
		b.mu.Unlock()
		return
	}
	w := cc.cache.discard(b)
	b.mu.Unlock()

	cc.cache.invalidations.Add(1)
	cc.cache.log.Debug("invalidated block", Fields{
		"computation": cc.name,
		"key":         util.Redact(key),
		"weight":      w,
	})
}

func (cc *ComputationCache[V]) shardFor(id blockKey) *shard[V] {
	return cc.shards[util.BlockHash(id.family, id.key)&cc.mask]
}
