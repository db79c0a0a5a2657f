package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/unkn0wn-root/statecache"
	"github.com/unkn0wn-root/statecache/codec"
	"github.com/unkn0wn-root/statecache/internal/util"
	"github.com/unkn0wn-root/statecache/namespace"
	"github.com/unkn0wn-root/statecache/tokens"
)

type Options[V any] struct {
	Cache   *statecache.Cache[V]
	Weigher codec.Weigher[V]
	Service StateService
	// Tokens supplies the fencing token of each key. When nil, every handle
	// is bound to token 0 and Invalidate is the only way to drop a block.
	Tokens tokens.Source
	Logger statecache.Logger
}

// Reader is a read-through, write-through view of a remote state service.
type Reader[V any] struct {
	cache   *statecache.Cache[V]
	weigher codec.Weigher[V]
	svc     StateService
	tokens  tokens.Source
	log     statecache.Logger
}

func New[V any](opts Options[V]) (*Reader[V], error) {
	if opts.Cache == nil {
		return nil, ErrNilCache
	}
	if opts.Weigher.Codec == nil {
		return nil, ErrNilCodec
	}
	if opts.Service == nil {
		return nil, ErrNilService
	}
	log := opts.Logger
	if log == nil {
		log = statecache.NopLogger{}
	}
	return &Reader[V]{
		cache:   opts.Cache,
		weigher: opts.Weigher,
		svc:     opts.Service,
		tokens:  opts.Tokens,
		log:     log,
	}, nil
}

// ForKey opens the state of one key for the current work item. The key's
// token is read from the token source once, here.
func (r *Reader[V]) ForKey(ctx context.Context, computation string, key []byte, family string) (*KeyReader[V], error) {
	var token uint64
	if r.tokens != nil {
		t, err := r.tokens.Current(ctx, tokens.Key(computation, key))
		if err != nil {
			return nil, fmt.Errorf("remote: token for %s: %w", computation, err)
		}
		token = t
	}
	return r.ForKeyToken(computation, key, family, token), nil
}

// ForKeyToken is ForKey with a token supplied by the caller.
func (r *Reader[V]) ForKeyToken(computation string, key []byte, family string, token uint64) *KeyReader[V] {
	return &KeyReader[V]{
		r:      r,
		h:      r.cache.ForComputation(computation).ForKey(key, family, token),
		comp:   computation,
		key:    append([]byte(nil), key...),
		family: family,
	}
}

// KeyReader reads and writes the state of one key under one token.
type KeyReader[V any] struct {
	r      *Reader[V]
	h      *statecache.KeyCache[V]
	comp   string
	key    []byte
	family string
}

// Handle exposes the underlying cache handle.
func (k *KeyReader[V]) Handle() *statecache.KeyCache[V] { return k.h }

func (k *KeyReader[V]) stateKey(ns namespace.Namespace, tag statecache.Tag) string {
	return StateKey(k.comp, k.key, k.family, ns, string(tag))
}

// Read returns the value at (ns, tag), from the cache when possible.
// ok is false when neither the cache nor the service has it.
func (k *KeyReader[V]) Read(ctx context.Context, ns namespace.Namespace, tag statecache.Tag) (V, bool, error) {
	if v, ok := k.h.Get(ns, tag); ok {
		return v, true, nil
	}

	var zero V
	sk := k.stateKey(ns, tag)
	raw, ok, err := k.r.svc.Fetch(ctx, sk)
	if err != nil {
		return zero, false, fmt.Errorf("remote: fetch: %w", err)
	}
	if !ok {
		return zero, false, nil
	}
	v, err := k.r.weigher.Codec.Decode(raw)
	if err != nil {
		k.r.log.Warn("undecodable remote state; deleting", statecache.Fields{
			"computation": k.comp,
			"key":         util.Redact(k.key),
			"namespace":   ns.String(),
			"tag":         string(tag),
			"err":         err,
		})
		_ = k.r.svc.Delete(ctx, sk) // self-heal
		return zero, false, nil
	}

	// a stale handle cannot cache; the fetched value is still served
	if err := k.h.Put(ns, tag, v, int64(len(raw))+k.r.weigher.Overhead); err != nil && !errors.Is(err, statecache.ErrStaleHandle) {
		return zero, false, err
	}
	return v, true, nil
}

// Write persists v at (ns, tag) and then caches it. Nothing is cached when
// the service rejects the write. A handle superseded by another token gets
// statecache.ErrStaleHandle after the service write.
func (k *KeyReader[V]) Write(ctx context.Context, ns namespace.Namespace, tag statecache.Tag, v V) error {
	raw, weight, err := k.r.weigher.Encode(v)
	if err != nil {
		return fmt.Errorf("remote: encode: %w", err)
	}
	if err := k.r.svc.Store(ctx, k.stateKey(ns, tag), raw); err != nil {
		return fmt.Errorf("remote: store: %w", err)
	}
	return k.h.Put(ns, tag, v, weight)
}
