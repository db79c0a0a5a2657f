// Package statecache implements the per-key state cache of a streaming worker:
// a bounded, weighted cache shared by all worker goroutines that lets a worker
// skip round-trips to the remote state service when it processes the same key
// again.
//
// Hierarchy:
//
//	Cache                 one per process; owns the weight budget and LRU order
//	  ComputationCache    one per computation (pipeline stage)
//	    block             one per (key, state family): entries by namespace and tag
//	KeyCache              handle for one key, bound to a fencing token
//
// Fencing:
//
// Every work item carries a fencing token for its key. A handle compares its
// token with the cached block on first use; on mismatch the whole block is
// discarded before anything is read or written. Handles never see values
// written under another token.
//
// Weight:
//
// Callers declare a weight with every Put. A block weighs the sum of its
// entries plus len(key) for each window group it holds (Global, or a window
// together with all of its trigger namespaces). When the total exceeds
// Options.MaxWeight, least recently used blocks are evicted whole.
//
// Usage:
//
//	c, _ := statecache.New[State](statecache.Options{MaxWeight: 512 << 20})
//	kc := c.ForComputation("stage-7").ForKey(key, "family", workToken)
//	if v, ok := kc.Get(namespace.Global(), "count"); ok {
//	    ...
//	}
//	_ = kc.Put(namespace.Global(), "count", v, weight)
package statecache
