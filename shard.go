package statecache

import (
	"sync"
)

type shard[V any] struct {
	sync.RWMutex
	blocks map[blockKey]*block[V]
}

func newShard[V any]() *shard[V] {
	return &shard[V]{blocks: make(map[blockKey]*block[V])}
}

func (s *shard[V]) get(k blockKey) *block[V] {
	s.RLock()
	defer s.RUnlock()
	return s.blocks[k]
}

// getOrCreate returns the block for k, creating an unstamped one if absent.
// created reports whether this call created it.
func (s *shard[V]) getOrCreate(k blockKey, comp *ComputationCache[V]) (b *block[V], created bool) {
	if b = s.get(k); b != nil {
		return b, false
	}
	s.Lock()
	defer s.Unlock()
	if b = s.blocks[k]; b != nil {
		return b, false
	}
	b = &block[V]{id: k, comp: comp, shard: s}
	s.blocks[k] = b
	return b, true
}

// deleteIfSame removes b only if it is still the block stored under its key.
func (s *shard[V]) deleteIfSame(b *block[V]) bool {
	s.Lock()
	defer s.Unlock()
	if s.blocks[b.id] != b {
		return false
	}
	delete(s.blocks, b.id)
	return true
}
