package statecache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths, sometimes while holding a block lock;
// they must not call back into the cache.
type Hooks interface {
	// A whole block was dropped to restore the weight budget.
	BlockEvicted(computation string, key []byte, weight int64)

	// A handle presented a new token; the block written under staleToken was discarded.
	BlockInvalidated(computation string, key []byte, staleToken, token uint64, weight int64)

	// A reconciled handle found its block re-stamped by a handle with another token.
	StaleHandle(computation string, key []byte, handleToken, blockToken uint64)

	// The block just written exceeds the budget on its own and was kept.
	OversizedBlock(computation string, key []byte, weight, maxWeight int64)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) BlockEvicted(string, []byte, int64)                     {}
func (NopHooks) BlockInvalidated(string, []byte, uint64, uint64, int64) {}
func (NopHooks) StaleHandle(string, []byte, uint64, uint64)             {}
func (NopHooks) OversizedBlock(string, []byte, int64, int64)            {}
