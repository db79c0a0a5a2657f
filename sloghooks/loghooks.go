// Package sloghooks implements statecache.Hooks on top of log/slog, with
// sampling for the high-volume events and key redaction.
package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/statecache"
	"github.com/unkn0wn-root/statecache/internal/util"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	EvictEvery      uint64
	InvalidateEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func([]byte) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	evictCtr      atomic.Uint64
	invalidateCtr atomic.Uint64
}

var _ statecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k []byte) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.Redact(k)
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) BlockEvicted(computation string, key []byte, weight int64) {
	if h.l == nil || !sample(h.opts.EvictEvery, &h.evictCtr) {
		return
	}
	h.l.Debug("statecache.block_evicted",
		"computation", computation,
		"key", h.redact(key),
		"weight", weight)
}

func (h *Hooks) BlockInvalidated(computation string, key []byte, staleToken, token uint64, weight int64) {
	if h.l == nil || !sample(h.opts.InvalidateEvery, &h.invalidateCtr) {
		return
	}
	h.l.Debug("statecache.block_invalidated",
		"computation", computation,
		"key", h.redact(key),
		"stale_token", staleToken,
		"token", token,
		"weight", weight)
}

func (h *Hooks) StaleHandle(computation string, key []byte, handleToken, blockToken uint64) {
	if h.l == nil {
		return
	}
	h.l.Info("statecache.stale_handle",
		"computation", computation,
		"key", h.redact(key),
		"handle_token", handleToken,
		"block_token", blockToken)
}

func (h *Hooks) OversizedBlock(computation string, key []byte, weight, maxWeight int64) {
	if h.l == nil {
		return
	}
	h.l.Warn("statecache.oversized_block",
		"computation", computation,
		"key", h.redact(key),
		"weight", weight,
		"max_weight", maxWeight)
}
