package statecache

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/statecache/internal/util"
)

// Lock order: block.mu -> lruMu, block.mu -> shard. shard and lruMu never nest.

// Cache is the process-wide state cache. It owns one ComputationCache per
// computation name and a single weight budget shared by all of them.
//
// When a Put pushes the total weight over the budget, whole blocks are
// evicted in least-recently-accessed order until the budget holds again.
// The block written by that Put is never evicted by its own pass.
//
// Cache methods are safe for concurrent use.
type Cache[V any] struct {
	maxWeight int64
	shards    int
	log       Logger
	hooks     Hooks

	weight atomic.Int64
	blocks atomic.Int64

	compMu sync.RWMutex
	comps  map[string]*ComputationCache[V]

	lruMu sync.Mutex
	lru   lruList[V]
	clock uint64

	hits          atomic.Uint64
	misses        atomic.Uint64
	puts          atomic.Uint64
	evictions     atomic.Uint64
	invalidations atomic.Uint64
	staleHandles  atomic.Uint64
}

func newCache[V any](opts Options) *Cache[V] {
	return &Cache[V]{
		maxWeight: coalesce(opts.MaxWeight, DefaultMaxWeight),
		shards:    ceilPow2(coalesce(opts.Shards, defaultShards)),
		log:       coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:     coalesce[Hooks](opts.Hooks, NopHooks{}),
		comps:     make(map[string]*ComputationCache[V]),
	}
}

// ForComputation returns the sub-cache for name, creating it on first use.
func (c *Cache[V]) ForComputation(name string) *ComputationCache[V] {
	c.compMu.RLock()
	cc := c.comps[name]
	c.compMu.RUnlock()
	if cc != nil {
		return cc
	}

	c.compMu.Lock()
	defer c.compMu.Unlock()
	if cc = c.comps[name]; cc != nil {
		return cc
	}
	cc = newComputationCache(c, name)
	c.comps[name] = cc
	return cc
}

// Weight returns the summed weight of all cached blocks.
func (c *Cache[V]) Weight() int64 { return c.weight.Load() }

func (c *Cache[V]) MaxWeight() int64 { return c.maxWeight }

// Clear drops every block and returns how many it dropped. It makes at
// most one attempt per block held on entry, so blocks accessed or written
// concurrently may survive.
func (c *Cache[V]) Clear() int {
	c.lruMu.Lock()
	attempts := c.lru.len
	c.lruMu.Unlock()

	n := 0
	for ; attempts > 0; attempts-- {
		evicted, more := c.evictOne(nil, false)
		if evicted {
			n++
		}
		if !more {
			break
		}
	}
	c.log.Debug("cache cleared", Fields{"blocks": n})
	return n
}

// touch marks b most recently used. Caller holds b.mu and b is live.
func (c *Cache[V]) touch(b *block[V]) {
	c.lruMu.Lock()
	c.clock++
	b.tick = c.clock
	if b.listed {
		c.lru.moveToFront(b)
	} else {
		c.lru.pushFront(b)
	}
	c.lruMu.Unlock()
}

// discard unlinks and empties b and reclaims its weight. Caller holds b.mu
// and b is live.
func (c *Cache[V]) discard(b *block[V]) int64 {
	c.lruMu.Lock()
	c.lru.remove(b)
	c.lruMu.Unlock()

	w := b.retire()
	c.weight.Add(-w)
	if b.shard.deleteIfSame(b) {
		c.blocks.Add(-1)
	}
	return w
}

// evictUntilUnderBudget evicts blocks other than exempt while over budget.
func (c *Cache[V]) evictUntilUnderBudget(exempt *block[V]) {
	for c.weight.Load() > c.maxWeight {
		if _, more := c.evictOne(exempt, true); !more {
			break
		}
	}
	if exempt == nil || c.weight.Load() <= c.maxWeight {
		return
	}

	exempt.mu.Lock()
	w, dead := exempt.weight, exempt.dead
	exempt.mu.Unlock()
	if dead || w <= c.maxWeight {
		// over budget only transiently, through concurrent writers
		return
	}
	key := []byte(exempt.id.key)
	c.hooks.OversizedBlock(exempt.comp.name, key, w, c.maxWeight)
	c.log.Warn("block exceeds weight budget on its own", Fields{
		"computation": exempt.comp.name,
		"key":         util.Redact(key),
		"weight":      w,
		"maxWeight":   c.maxWeight,
	})
}

// evictOne tries to drop the least recently used block other than exempt.
// evicted reports whether a block was dropped; more is false when there was
// nothing left to evict.
func (c *Cache[V]) evictOne(exempt *block[V], budget bool) (evicted, more bool) {
	c.lruMu.Lock()
	cand := c.lru.oldest(exempt)
	if cand == nil {
		c.lruMu.Unlock()
		return false, false
	}
	tick := cand.tick
	c.lruMu.Unlock()

	cand.mu.Lock()
	c.lruMu.Lock()
	valid := cand.listed && cand.tick == tick
	c.lruMu.Unlock()
	if !valid {
		// accessed or removed since it was picked; let the caller re-check
		cand.mu.Unlock()
		return false, true
	}
	w := c.discard(cand)
	cand.mu.Unlock()

	if !budget {
		return true, true
	}
	c.evictions.Add(1)
	key := []byte(cand.id.key)
	c.hooks.BlockEvicted(cand.comp.name, key, w)
	c.log.Debug("evicted block", Fields{
		"computation": cand.comp.name,
		"key":         util.Redact(key),
		"weight":      w,
	})
	return true, true
}
