package statecache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/statecache/namespace"
)

const (
	testComputation = "computation"
	testFamily      = "family"
)

var testKey = []byte("key")

func windowNS(start int64) namespace.Namespace {
	return namespace.IntervalWindow{
		Start: time.UnixMilli(start),
		End:   time.UnixMilli(start + 1),
	}.Namespace()
}

func triggerNS(start int64, idx int) namespace.Namespace {
	return namespace.IntervalWindow{
		Start: time.UnixMilli(start),
		End:   time.UnixMilli(start + 1),
	}.TriggerNamespace(idx)
}

func newTestCache(t *testing.T, opts Options) *Cache[string] {
	t.Helper()
	c, err := New[string](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mustPut(t *testing.T, kc *KeyCache[string], ns namespace.Namespace, tag Tag, v string, w int64) {
	t.Helper()
	if err := kc.Put(ns, tag, v, w); err != nil {
		t.Fatalf("Put(%s, %s): %v", ns, tag, err)
	}
}

func expectHit(t *testing.T, kc *KeyCache[string], ns namespace.Namespace, tag Tag, want string) {
	t.Helper()
	got, ok := kc.Get(ns, tag)
	if !ok || got != want {
		t.Fatalf("Get(%s, %s) = %q, %v; want %q", ns, tag, got, ok, want)
	}
}

func expectMiss(t *testing.T, kc *KeyCache[string], ns namespace.Namespace, tag Tag) {
	t.Helper()
	if got, ok := kc.Get(ns, tag); ok {
		t.Fatalf("Get(%s, %s) = %q; want miss", ns, tag, got)
	}
}

func expectWeight(t *testing.T, c *Cache[string], want int64) {
	t.Helper()
	if got := c.Weight(); got != want {
		t.Fatalf("Weight() = %d; want %d", got, want)
	}
}

// sumBlockWeights walks every block; it must agree with Weight() when idle.
func sumBlockWeights(c *Cache[string]) int64 {
	c.compMu.RLock()
	defer c.compMu.RUnlock()
	var total int64
	for _, cc := range c.comps {
		for _, s := range cc.shards {
			s.RLock()
			for _, b := range s.blocks {
				b.mu.Lock()
				total += b.weight
				b.mu.Unlock()
			}
			s.RUnlock()
		}
	}
	return total
}

// ==============================
// Basic behavior
// ==============================

func TestBasic(t *testing.T) {
	c := newTestCache(t, Options{})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)
	expectWeight(t, c, 0)

	expectMiss(t, kc, namespace.Global(), "tag1")
	expectMiss(t, kc, windowNS(0), "tag2")
	expectMiss(t, kc, triggerNS(0, 0), "tag3")
	expectMiss(t, kc, triggerNS(0, 0), "tag2")

	// len("key") is charged once per window group.
	mustPut(t, kc, namespace.Global(), "tag1", "g1", 2)
	expectWeight(t, c, 5)
	mustPut(t, kc, windowNS(0), "tag2", "w2", 2)
	expectWeight(t, c, 10)
	mustPut(t, kc, triggerNS(0, 0), "tag3", "t3", 2)
	expectWeight(t, c, 12)
	mustPut(t, kc, triggerNS(0, 0), "tag2", "t2", 2)
	expectWeight(t, c, 14)

	expectHit(t, kc, namespace.Global(), "tag1", "g1")
	expectHit(t, kc, windowNS(0), "tag2", "w2")
	expectHit(t, kc, triggerNS(0, 0), "tag3", "t3")
	expectHit(t, kc, triggerNS(0, 0), "tag2", "t2")
}

func TestZeroWeightEntryIsPresent(t *testing.T) {
	c := newTestCache(t, Options{})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)

	mustPut(t, kc, namespace.Global(), "empty", "", 0)
	expectHit(t, kc, namespace.Global(), "empty", "")
	expectWeight(t, c, int64(len(testKey)))
}

func TestReplaceAdjustsWeightByDelta(t *testing.T) {
	c := newTestCache(t, Options{})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)

	mustPut(t, kc, namespace.Global(), "t", "a", 10)
	expectWeight(t, c, 13)
	mustPut(t, kc, namespace.Global(), "t", "b", 4)
	expectWeight(t, c, 7)
	mustPut(t, kc, namespace.Global(), "t", "c", 40)
	expectWeight(t, c, 43)
	expectHit(t, kc, namespace.Global(), "t", "c")
}

func TestNegativeWeightRejected(t *testing.T) {
	c := newTestCache(t, Options{})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)
	mustPut(t, kc, namespace.Global(), "t", "a", 1)

	err := kc.Put(namespace.Global(), "t", "b", -1)
	if !errors.Is(err, ErrNegativeWeight) {
		t.Fatalf("want ErrNegativeWeight, got %v", err)
	}
	var we *WeightError
	if !errors.As(err, &we) || we.Weight != -1 || we.Tag != "t" || we.Computation != testComputation {
		t.Fatalf("want *WeightError with details, got %#v", err)
	}
	expectHit(t, kc, namespace.Global(), "t", "a")
	expectWeight(t, c, 4)
}

func TestSmallestBudgetKeepsOnlyLastBlock(t *testing.T) {
	c := newTestCache(t, Options{MaxWeight: 1})
	cc := c.ForComputation(testComputation)
	a := cc.ForKey([]byte("a"), testFamily, 0)
	b := cc.ForKey([]byte("b"), testFamily, 0)

	mustPut(t, a, namespace.Global(), "t", "a", 0)
	expectWeight(t, c, 1)
	mustPut(t, b, namespace.Global(), "t", "b", 5)
	expectWeight(t, c, 6)
	expectMiss(t, a, namespace.Global(), "t")
	expectHit(t, b, namespace.Global(), "t", "b")
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	if _, err := New[string](Options{MaxWeight: -1}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("want ErrInvalidOptions for negative weight, got %v", err)
	}
	if _, err := New[string](Options{Shards: -2}); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("want ErrInvalidOptions for negative shards, got %v", err)
	}
	c := newTestCache(t, Options{Shards: 5})
	if c.shards != 8 {
		t.Fatalf("shards not rounded to power of two: %d", c.shards)
	}
	if c.MaxWeight() != DefaultMaxWeight {
		t.Fatalf("MaxWeight() = %d; want default", c.MaxWeight())
	}
}

// ==============================
// Token fencing
// ==============================

func TestInvalidation(t *testing.T) {
	c := newTestCache(t, Options{})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)

	expectMiss(t, kc, namespace.Global(), "tag1")
	mustPut(t, kc, namespace.Global(), "tag1", "g1", 2)
	expectWeight(t, c, 5)
	expectHit(t, kc, namespace.Global(), "tag1", "g1")

	// Handle creation is lazy: nothing changes until first use.
	kc = c.ForComputation(testComputation).ForKey(testKey, testFamily, 1)
	expectWeight(t, c, 5)
	expectMiss(t, kc, namespace.Global(), "tag1")
	expectWeight(t, c, 0)

	if s := c.Stats(); s.Invalidations != 1 {
		t.Fatalf("Invalidations = %d; want 1", s.Invalidations)
	}
}

func TestInvalidationDropsAllNamespaces(t *testing.T) {
	c := newTestCache(t, Options{})
	old := c.ForComputation(testComputation).ForKey(testKey, testFamily, 7)
	mustPut(t, old, namespace.Global(), "a", "g", 1)
	mustPut(t, old, windowNS(0), "b", "w", 1)
	mustPut(t, old, triggerNS(0, 1), "c", "t", 1)

	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 9)
	mustPut(t, kc, windowNS(0), "z", "fresh", 1)
	expectMiss(t, kc, namespace.Global(), "a")
	expectMiss(t, kc, windowNS(0), "b")
	expectMiss(t, kc, triggerNS(0, 1), "c")
	expectHit(t, kc, windowNS(0), "z", "fresh")
	expectWeight(t, c, 4)
}

func TestMissesDoNotAllocateBlocks(t *testing.T) {
	c := newTestCache(t, Options{MaxWeight: 10})
	cc := c.ForComputation(testComputation)
	for i := 0; i < 10000; i++ {
		kc := cc.ForKey([]byte(fmt.Sprintf("k%05d", i)), testFamily, 0)
		expectMiss(t, kc, namespace.Global(), "t")
	}
	if s := c.Stats(); s.Blocks != 0 || s.Weight != 0 || s.Misses != 10000 {
		t.Fatalf("after misses: blocks=%d weight=%d misses=%d", s.Blocks, s.Weight, s.Misses)
	}
}

func TestTokenChangeOnGetDropsBlock(t *testing.T) {
	c := newTestCache(t, Options{})
	cc := c.ForComputation(testComputation)
	mustPut(t, cc.ForKey(testKey, testFamily, 0), namespace.Global(), "t", "v", 2)
	if s := c.Stats(); s.Blocks != 1 {
		t.Fatalf("Blocks = %d; want 1", s.Blocks)
	}

	kc := cc.ForKey(testKey, testFamily, 1)
	expectMiss(t, kc, namespace.Global(), "t")
	if s := c.Stats(); s.Blocks != 0 || s.Weight != 0 {
		t.Fatalf("after token change: blocks=%d weight=%d", s.Blocks, s.Weight)
	}

	// kc reconciled on its Get; its first Put stamps a new block
	mustPut(t, kc, namespace.Global(), "t", "w", 2)
	expectHit(t, kc, namespace.Global(), "t", "w")
	expectMiss(t, cc.ForKey(testKey, testFamily, 0), namespace.Global(), "t")
}

func TestMissedHandleIsFencedByNewerBlock(t *testing.T) {
	c := newTestCache(t, Options{})
	cc := c.ForComputation(testComputation)
	oldH := cc.ForKey(testKey, testFamily, 1)
	expectMiss(t, oldH, namespace.Global(), "t")

	newH := cc.ForKey(testKey, testFamily, 2)
	mustPut(t, newH, namespace.Global(), "t", "new", 1)

	if err := oldH.Put(namespace.Global(), "t", "old", 1); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("Put after losing the key: err = %v; want ErrStaleHandle", err)
	}
	expectHit(t, newH, namespace.Global(), "t", "new")
}

func TestSameTokenSharesBlock(t *testing.T) {
	c := newTestCache(t, Options{})
	a := c.ForComputation(testComputation).ForKey(testKey, testFamily, 3)
	mustPut(t, a, namespace.Global(), "t", "v", 1)

	b := c.ForComputation(testComputation).ForKey(testKey, testFamily, 3)
	expectHit(t, b, namespace.Global(), "t", "v")
}

func TestStaleHandleIsFenced(t *testing.T) {
	c := newTestCache(t, Options{})
	oldH := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)
	mustPut(t, oldH, namespace.Global(), "t", "old", 1)

	newH := c.ForComputation(testComputation).ForKey(testKey, testFamily, 1)
	mustPut(t, newH, namespace.Global(), "t", "new", 1)

	// oldH was reconciled under token 0; it must neither read nor write token 1 state.
	expectMiss(t, oldH, namespace.Global(), "t")
	if err := oldH.Put(namespace.Global(), "other", "old", 1); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("stale Put err = %v; want ErrStaleHandle", err)
	}
	expectMiss(t, newH, namespace.Global(), "other")
	expectHit(t, newH, namespace.Global(), "t", "new")
	expectWeight(t, c, 4)

	if s := c.Stats(); s.StaleHandles != 2 {
		t.Fatalf("StaleHandles = %d; want 2", s.StaleHandles)
	}
}

func TestReconciledHandleSurvivesEviction(t *testing.T) {
	c := newTestCache(t, Options{MaxWeight: 10})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 5)
	mustPut(t, kc, namespace.Global(), "t", "v", 1)

	other := c.ForComputation(testComputation).ForKey([]byte("other"), testFamily, 0)
	mustPut(t, other, namespace.Global(), "t", "big", 8)

	// The re-created block is stamped by the first handle that uses it.
	expectMiss(t, kc, namespace.Global(), "t")
	mustPut(t, kc, namespace.Global(), "t", "again", 1)
	expectHit(t, kc, namespace.Global(), "t", "again")
}

// ==============================
// Isolation
// ==============================

func TestMultipleKeys(t *testing.T) {
	c := newTestCache(t, Options{})
	kc1 := c.ForComputation("comp1").ForKey([]byte("key1"), testFamily, 0)
	kc2 := c.ForComputation("comp1").ForKey([]byte("key2"), testFamily, 0)
	kc3 := c.ForComputation("comp2").ForKey([]byte("key1"), testFamily, 0)

	mustPut(t, kc1, namespace.Global(), "tag1", "g1", 2)
	expectHit(t, kc1, namespace.Global(), "tag1", "g1")
	expectMiss(t, kc2, namespace.Global(), "tag1")
	expectMiss(t, kc3, namespace.Global(), "tag1")
}

func TestFamiliesAreSeparateBlocks(t *testing.T) {
	c := newTestCache(t, Options{})
	cc := c.ForComputation(testComputation)
	a := cc.ForKey(testKey, "fa", 0)
	b := cc.ForKey(testKey, "fb", 1)

	mustPut(t, a, namespace.Global(), "t", "a", 1)
	mustPut(t, b, namespace.Global(), "t", "b", 1)
	expectHit(t, a, namespace.Global(), "t", "a")
	expectHit(t, b, namespace.Global(), "t", "b")
	expectWeight(t, c, 8)
}

func TestForComputationReturnsSameInstance(t *testing.T) {
	c := newTestCache(t, Options{})
	const n = 16
	got := make([]*ComputationCache[string], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.ForComputation("shared")
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("ForComputation returned different instances")
		}
	}
	if got[0].Name() != "shared" {
		t.Fatalf("Name() = %q", got[0].Name())
	}
}

// ==============================
// Eviction
// ==============================

func TestEvictionKeepsOversizedWrite(t *testing.T) {
	c := newTestCache(t, Options{MaxWeight: 100})
	kc := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)
	other := c.ForComputation("other").ForKey([]byte("k2"), testFamily, 0)

	mustPut(t, other, namespace.Global(), "t", "o", 10)
	mustPut(t, kc, windowNS(0), "tag2", "w2", 2)
	expectWeight(t, c, 17)

	mustPut(t, kc, triggerNS(0, 0), "tag3", "t3", 2_000_000_000)
	expectWeight(t, c, 2_000_000_005)

	// The written block is kept whole; every other block is gone.
	expectHit(t, kc, windowNS(0), "tag2", "w2")
	expectHit(t, kc, triggerNS(0, 0), "tag3", "t3")
	expectMiss(t, other, namespace.Global(), "t")

	// The next write elsewhere evicts the oversized block.
	mustPut(t, other, namespace.Global(), "t", "o", 10)
	expectWeight(t, c, 12)
	expectMiss(t, kc, windowNS(0), "tag2")
	expectMiss(t, kc, triggerNS(0, 0), "tag3")
}

func TestEvictionIsAtomicAcrossNamespaces(t *testing.T) {
	c := newTestCache(t, Options{MaxWeight: 40})
	victim := c.ForComputation(testComputation).ForKey(testKey, testFamily, 0)
	mustPut(t, victim, namespace.Global(), "g", "g", 5)
	mustPut(t, victim, windowNS(0), "w", "w", 5)
	mustPut(t, victim, triggerNS(0, 0), "t", "t", 5)
	mustPut(t, victim, windowNS(1), "w", "w1", 5)
	expectWeight(t, c, 29)

	writer := c.ForComputation(testComputation).ForKey([]byte("writer"), testFamily, 0)
	mustPut(t, writer, namespace.Global(), "x", "x", 20)

	expectMiss(t, victim, namespace.Global(), "g")
	expectMiss(t, victim, windowNS(0), "w")
	expectMiss(t, victim, triggerNS(0, 0), "t")
	expectMiss(t, victim, windowNS(1), "w")
	expectWeight(t, c, 26)
	if s := c.Stats(); s.Evictions != 1 {
		t.Fatalf("Evictions = %d; want 1", s.Evictions)
	}
}

func TestEvictionOrderIsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, Options{MaxWeight: 30})
	cc := c.ForComputation(testComputation)
	k := func(name string) *KeyCache[string] { return cc.ForKey([]byte(name), testFamily, 0) }

	// each block weighs 8 + len("kN") = 10
	mustPut(t, k("k1"), namespace.Global(), "t", "1", 8)
	mustPut(t, k("k2"), namespace.Global(), "t", "2", 8)
	mustPut(t, k("k3"), namespace.Global(), "t", "3", 8)
	expectWeight(t, c, 30)

	expectHit(t, k("k1"), namespace.Global(), "t", "1")
	mustPut(t, k("k4"), namespace.Global(), "t", "4", 8)
	expectWeight(t, c, 30)

	expectHit(t, k("k1"), namespace.Global(), "t", "1")
	expectHit(t, k("k3"), namespace.Global(), "t", "3")
	expectHit(t, k("k4"), namespace.Global(), "t", "4")
	expectMiss(t, k("k2"), namespace.Global(), "t")
}

func TestBudgetHoldsAfterEveryPut(t *testing.T) {
	const maxWeight = 50
	c := newTestCache(t, Options{MaxWeight: maxWeight})
	cc := c.ForComputation(testComputation)
	for i := 0; i < 200; i++ {
		kc := cc.ForKey([]byte(fmt.Sprintf("k%03d", i)), testFamily, 0)
		mustPut(t, kc, windowNS(int64(i%3)), "t", "v", int64(i%7))
		if w := c.Weight(); w > maxWeight {
			t.Fatalf("after put %d weight %d exceeds %d", i, w, maxWeight)
		}
	}
	if got, want := c.Weight(), sumBlockWeights(c); got != want {
		t.Fatalf("Weight() = %d but blocks sum to %d", got, want)
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := newTestCache(t, Options{})
	cc := c.ForComputation(testComputation)
	a := cc.ForKey([]byte("a"), testFamily, 0)
	b := cc.ForKey([]byte("b"), testFamily, 0)
	mustPut(t, a, namespace.Global(), "t", "a", 3)
	mustPut(t, b, namespace.Global(), "t", "b", 3)
	expectWeight(t, c, 8)

	cc.Invalidate([]byte("a"), testFamily)
	expectWeight(t, c, 4)
	expectMiss(t, a, namespace.Global(), "t")
	expectHit(t, b, namespace.Global(), "t", "b")

	cc.Invalidate([]byte("missing"), testFamily)

	if n := c.Clear(); n != 1 {
		t.Fatalf("Clear() = %d; want 1", n)
	}
	expectWeight(t, c, 0)
	expectMiss(t, b, namespace.Global(), "t")
	if n := c.Clear(); n != 0 {
		t.Fatalf("Clear() on empty cache = %d; want 0", n)
	}
	if s := c.Stats(); s.Evictions != 0 {
		t.Fatalf("Clear must not count as budget eviction, got %d", s.Evictions)
	}
}

// ==============================
// Concurrency
// ==============================

func TestConcurrentDisjointKeys(t *testing.T) {
	c := newTestCache(t, Options{})
	const workers, puts = 32, 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			comp := c.ForComputation(fmt.Sprintf("comp%d", w%4))
			kc := comp.ForKey([]byte(fmt.Sprintf("k%03d", w)), testFamily, uint64(w))
			for i := 0; i < puts; i++ {
				tag := Tag(fmt.Sprintf("t%d", i))
				val := fmt.Sprintf("%d/%d", w, i)
				if err := kc.Put(namespace.Global(), tag, val, 1); err != nil {
					errs <- err
					return
				}
				if got, ok := kc.Get(namespace.Global(), tag); !ok || got != val {
					errs <- fmt.Errorf("worker %d: Get(%s) = %q, %v", w, tag, got, ok)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	// per block: 4 bytes of key overhead + puts entries of weight 1
	expectWeight(t, c, workers*(4+puts))
	if s := c.Stats(); s.Blocks != workers {
		t.Fatalf("Blocks = %d; want %d", s.Blocks, workers)
	}
}

func TestConcurrentEvictionKeepsAccounting(t *testing.T) {
	const maxWeight = 200
	c := newTestCache(t, Options{MaxWeight: maxWeight, Shards: 4})

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			cc := c.ForComputation(fmt.Sprintf("comp%d", w%3))
			for i := 0; i < 300; i++ {
				key := []byte(fmt.Sprintf("k%02d", (w*7+i)%40))
				kc := cc.ForKey(key, testFamily, uint64(i%5))
				_ = kc.Put(triggerNS(int64(i%4), i%2), Tag("t"), "v", int64(i%11))
				kc.Get(windowNS(int64(i % 4)), "t")
				if i%50 == 0 {
					cc.Invalidate(key, testFamily)
				}
			}
		}(w)
	}
	wg.Wait()

	if got, want := c.Weight(), sumBlockWeights(c); got != want {
		t.Fatalf("Weight() = %d but blocks sum to %d", got, want)
	}
	if w := c.Weight(); w > maxWeight {
		t.Fatalf("idle weight %d exceeds budget %d", w, maxWeight)
	}
}

func TestClearTerminatesUnderConcurrentAccess(t *testing.T) {
	c := newTestCache(t, Options{})
	cc := c.ForComputation(testComputation)
	for i := 0; i < 64; i++ {
		mustPut(t, cc.ForKey([]byte(fmt.Sprintf("k%02d", i)), testFamily, 0), namespace.Global(), "t", "v", 1)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				kc := cc.ForKey([]byte(fmt.Sprintf("k%02d", (w*16+i)%64)), testFamily, 0)
				_ = kc.Put(namespace.Global(), "t", "v", 1)
				kc.Get(namespace.Global(), "t")
			}
		}(w)
	}

	done := make(chan int)
	go func() {
		n := 0
		for i := 0; i < 100; i++ {
			n += c.Clear()
		}
		done <- n
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("Clear did not return under concurrent access")
	}
	close(stop)
	wg.Wait()

	if got, want := c.Weight(), sumBlockWeights(c); got != want {
		t.Fatalf("Weight() = %d but blocks sum to %d", got, want)
	}
}

func TestConcurrentSameKeyReadsOwnWrites(t *testing.T) {
	c := newTestCache(t, Options{})
	cc := c.ForComputation(testComputation)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			kc := cc.ForKey(testKey, testFamily, 1)
			tag := Tag(fmt.Sprintf("w%d", w))
			for i := 0; i < 100; i++ {
				val := fmt.Sprint(i)
				if err := kc.Put(namespace.Global(), tag, val, 1); err != nil {
					t.Errorf("Put: %v", err)
					return
				}
				if got, ok := kc.Get(namespace.Global(), tag); !ok || got != val {
					t.Errorf("worker %d read %q, %v after writing %q", w, got, ok, val)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	expectWeight(t, c, 3+8)
}
