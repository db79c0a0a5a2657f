package statecache

import (
	"fmt"
)

// Tag identifies one state value within a namespace. The cache only compares tags.
type Tag string

// DefaultMaxWeight is the weight budget used when Options.MaxWeight is zero.
const DefaultMaxWeight int64 = 100 << 20

const defaultShards = 16

// Options tune the cache. The zero value is usable.
type Options struct {
	// MaxWeight bounds the summed weight of all cached blocks.
	// 0 => DefaultMaxWeight. The smallest budget is 1, which keeps only the
	// block written last.
	MaxWeight int64
	// Shards per computation; rounded up to a power of two. 0 => 16.
	Shards int

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// New constructs an empty cache. A zero MaxWeight selects DefaultMaxWeight,
// not an empty budget; see Options.
func New[V any](opts Options) (*Cache[V], error) {
	if opts.MaxWeight < 0 {
		return nil, fmt.Errorf("%w: max weight %d", ErrInvalidOptions, opts.MaxWeight)
	}
	if opts.Shards < 0 {
		return nil, fmt.Errorf("%w: shards %d", ErrInvalidOptions, opts.Shards)
	}
	return newCache[V](opts), nil
}
