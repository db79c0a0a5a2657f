// Package asynchook moves statecache.Hooks calls off the hot path onto a
// bounded queue drained by worker goroutines. Events are dropped when the
// queue is full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{EvictEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := statecache.New[State](statecache.Options{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/statecache"
)

type Hooks struct {
	inner   statecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ statecache.Hooks = (*Hooks)(nil)

func New(inner statecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

// key slices are copied: callers may reuse them after the hook returns.
func (h *Hooks) BlockEvicted(c string, key []byte, w int64) {
	k := append([]byte(nil), key...)
	h.try(func() { h.inner.BlockEvicted(c, k, w) })
}

func (h *Hooks) BlockInvalidated(c string, key []byte, stale, tok uint64, w int64) {
	k := append([]byte(nil), key...)
	h.try(func() { h.inner.BlockInvalidated(c, k, stale, tok, w) })
}

func (h *Hooks) StaleHandle(c string, key []byte, ht, bt uint64) {
	k := append([]byte(nil), key...)
	h.try(func() { h.inner.StaleHandle(c, k, ht, bt) })
}

func (h *Hooks) OversizedBlock(c string, key []byte, w, limit int64) {
	k := append([]byte(nil), key...)
	h.try(func() { h.inner.OversizedBlock(c, k, w, limit) })
}
