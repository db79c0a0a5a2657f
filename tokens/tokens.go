// Package tokens issues fencing tokens per (computation, key). The dispatch
// side advances a key's token whenever the key is (re)assigned, and stamps
// every work item, and so every statecache handle, with the current value.
//
// The cache never issues tokens itself; it only compares them.
package tokens

import (
	"context"
	"encoding/base64"
	"time"
)

// Source abstracts where tokens live.
// Use Local for a single worker process, or Redis to share tokens across processes.
type Source interface {
	// Current returns the key's token; keys never advanced report 0.
	Current(ctx context.Context, key string) (uint64, error)
	// CurrentMany returns tokens for many keys; missing => 0.
	CurrentMany(ctx context.Context, keys []string) (map[string]uint64, error)
	// Advance atomically moves the key to a new token and returns it.
	Advance(ctx context.Context, key string) (uint64, error)
	// Cleanup prunes long-idle keys if applicable.
	Cleanup(retention time.Duration)
	Close(context.Context) error
}

// Key names the token of one raw key within a computation.
func Key(computation string, rawKey []byte) string {
	return computation + ":" + base64.RawStdEncoding.EncodeToString(rawKey)
}
