package statecache

// Stats is a point-in-time snapshot of cache counters.
// Counters are cumulative since construction.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Puts          uint64
	Evictions     uint64 // blocks dropped to restore the budget
	Invalidations uint64 // blocks dropped for a token change or Invalidate
	StaleHandles  uint64

	Blocks    int64
	Weight    int64
	MaxWeight int64
}

func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Puts:          c.puts.Load(),
		Evictions:     c.evictions.Load(),
		Invalidations: c.invalidations.Load(),
		StaleHandles:  c.staleHandles.Load(),
		Blocks:        c.blocks.Load(),
		Weight:        c.weight.Load(),
		MaxWeight:     c.maxWeight,
	}
}
