package statecache

import (
	"sync/atomic"

	"github.com/unkn0wn-root/statecache/internal/util"
	"github.com/unkn0wn-root/statecache/namespace"
)

const (
	handleFresh uint32 = iota
	handleReconciled
)

// KeyCache is a handle to the block of one key, bound to the fencing token
// of the current work item. Handles are cheap; create one per work item.
type KeyCache[V any] struct {
	comp  *ComputationCache[V]
	id    blockKey
	token uint64
	state atomic.Uint32
}

func (h *KeyCache[V]) Token() uint64 { return h.token }

// Get returns the value cached at (ns, tag). A miss is reported the same
// whether the value was never cached, evicted or written under another token.
//
// Get never allocates a block: a miss on an uncached key leaves nothing
// behind, and a first Get under a new token drops the old block whole.
func (h *KeyCache[V]) Get(ns namespace.Namespace, tag Tag) (V, bool) {
	c := h.comp.cache
	b, ok := h.acquire(false)
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	v, found := b.get(ns, tag)
	b.mu.Unlock()

	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, found
}

// Put caches value at (ns, tag) with the given weight, replacing any previous
// value. It may evict other blocks to restore the weight budget; the value
// written is readable through this handle when Put returns.
//
// A negative weight is rejected with a *WeightError and nothing is stored.
// A handle superseded by another token stores nothing and gets ErrStaleHandle.
func (h *KeyCache[V]) Put(ns namespace.Namespace, tag Tag, value V, weight int64) error {
	if weight < 0 {
		return &WeightError{Computation: h.comp.name, Namespace: ns, Tag: tag, Weight: weight}
	}
	c := h.comp.cache
	b, ok := h.acquire(true)
	if !ok {
		return ErrStaleHandle
	}
	c.weight.Add(b.put(ns, tag, value, weight))
	b.mu.Unlock()

	c.puts.Add(1)
	if c.weight.Load() > c.maxWeight {
		c.evictUntilUnderBudget(b)
	}
	return nil
}

// acquire returns the live block of h, locked and reconciled with h's token.
// ok is false, and nothing is locked, when there is no block h may use.
//
// With create unset, an absent block counts as one stamped with h's token
// and a block of another token is dropped rather than reset.
func (h *KeyCache[V]) acquire(create bool) (b *block[V], ok bool) {
	c := h.comp.cache
	s := h.comp.shardFor(h.id)
	for {
		if create {
			var created bool
			b, created = s.getOrCreate(h.id, h.comp)
			if created {
				c.blocks.Add(1)
			}
		} else if b = s.get(h.id); b == nil {
			h.state.Store(handleReconciled)
			return nil, false
		}
		b.mu.Lock()
		if !b.dead {
			break
		}
		b.mu.Unlock()
	}

	switch {
	case !b.stamped:
		b.token = h.token
		b.stamped = true
	case b.token == h.token:
	case h.state.Load() == handleFresh:
		stale := b.token
		var w int64
		if create {
			w = b.reset(h.token)
			c.weight.Add(-w)
		} else {
			w = c.discard(b)
		}
		c.invalidations.Add(1)
		key := []byte(h.id.key)
		c.hooks.BlockInvalidated(h.comp.name, key, stale, h.token, w)
		c.log.Debug("token changed; discarded block", Fields{
			"computation": h.comp.name,
			"key":         util.Redact(key),
			"staleToken":  stale,
			"token":       h.token,
			"weight":      w,
		})
		if !create {
			b.mu.Unlock()
			h.state.Store(handleReconciled)
			return nil, false
		}
	default:
		blockToken := b.token
		b.mu.Unlock()
		c.staleHandles.Add(1)
		key := []byte(h.id.key)
		c.hooks.StaleHandle(h.comp.name, key, h.token, blockToken)
		c.log.Debug("handle superseded by another token", Fields{
			"computation": h.comp.name,
			"key":         util.Redact(key),
			"token":       h.token,
			"blockToken":  blockToken,
		})
		return nil, false
	}

	h.state.Store(handleReconciled)
	c.touch(b)
	return b, true
}
