// Package remote puts a statecache.Cache in front of a remote state service.
//
// The cache never performs I/O itself. A Reader pairs it with a StateService
// and a codec: reads fall back to the service on a miss and cache what they
// fetched, writes persist first and cache second.
//
// StateService implementations MUST be byte-for-byte transparent: Fetch must
// return exactly the bytes previously passed to Store for the same key.
package remote

import (
	"context"
	"errors"

	"github.com/unkn0wn-root/statecache/internal/wire"
	"github.com/unkn0wn-root/statecache/namespace"
)

// StateService is the durable source of truth for per-key state.
// Must be safe for concurrent use.
type StateService interface {
	// Fetch returns (value, true, nil) on hit; (nil, false, nil) on miss.
	Fetch(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, value []byte) error
	// Delete removes a key (best-effort).
	Delete(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

var (
	ErrNilCache   = errors.New("remote: nil cache")
	ErrNilCodec   = errors.New("remote: nil codec")
	ErrNilService = errors.New("remote: nil state service")
)

// StateKey is the service key of one cached entry. The address is framed
// with wire.EncodeAddress so distinct addresses never collide.
func StateKey(computation string, key []byte, family string, ns namespace.Namespace, tag string) string {
	return "state:" + string(wire.EncodeAddress(wire.Address{
		Computation: computation,
		Key:         key,
		Family:      family,
		Namespace:   ns.String(),
		Tag:         tag,
	}))
}
