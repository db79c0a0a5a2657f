// Package metrics exports state cache telemetry to Prometheus: per-computation
// event counters through statecache.Hooks, and the cache's weight and
// hit/miss counters through collector funcs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/unkn0wn-root/statecache"
)

// Hooks holds the event counters and implements statecache.Hooks.
type Hooks struct {
	Evictions       *prometheus.CounterVec
	EvictedWeight   *prometheus.CounterVec
	Invalidations   *prometheus.CounterVec
	StaleHandles    *prometheus.CounterVec
	OversizedBlocks *prometheus.CounterVec
}

var _ statecache.Hooks = (*Hooks)(nil)

// NewHooks creates and registers the event counters with the provided registry.
func NewHooks(reg prometheus.Registerer) *Hooks {
	evictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "state_cache_evictions_total",
		Help: "Blocks evicted to restore the weight budget",
	}, []string{"computation"})

	evictedWeight := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "state_cache_evicted_weight_total",
		Help: "Weight reclaimed by budget evictions",
	}, []string{"computation"})

	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "state_cache_token_invalidations_total",
		Help: "Blocks discarded because a handle presented a new fencing token",
	}, []string{"computation"})

	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "state_cache_stale_handle_total",
		Help: "Accesses through handles superseded by another token",
	}, []string{"computation"})

	oversized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "state_cache_oversized_block_total",
		Help: "Writes leaving a single block heavier than the whole budget",
	}, []string{"computation"})

	reg.MustRegister(evictions, evictedWeight, invalidations, stale, oversized)

	return &Hooks{
		Evictions:       evictions,
		EvictedWeight:   evictedWeight,
		Invalidations:   invalidations,
		StaleHandles:    stale,
		OversizedBlocks: oversized,
	}
}

func (h *Hooks) BlockEvicted(computation string, _ []byte, weight int64) {
	h.Evictions.WithLabelValues(computation).Inc()
	h.EvictedWeight.WithLabelValues(computation).Add(float64(weight))
}

func (h *Hooks) BlockInvalidated(computation string, _ []byte, _, _ uint64, _ int64) {
	h.Invalidations.WithLabelValues(computation).Inc()
}

func (h *Hooks) StaleHandle(computation string, _ []byte, _, _ uint64) {
	h.StaleHandles.WithLabelValues(computation).Inc()
}

func (h *Hooks) OversizedBlock(computation string, _ []byte, _, _ int64) {
	h.OversizedBlocks.WithLabelValues(computation).Inc()
}

// StatsSource is implemented by *statecache.Cache.
type StatsSource interface {
	Stats() statecache.Stats
}

// RegisterCache exports the aggregate weight, budget, block count and
// hit/miss counters of c. Values are read at scrape time. On error nothing
// stays registered.
func RegisterCache(reg prometheus.Registerer, c StatsSource) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "state_cache_weight",
			Help: "Current aggregate weight of all cached blocks",
		}, func() float64 { return float64(c.Stats().Weight) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "state_cache_max_weight",
			Help: "Configured weight budget",
		}, func() float64 { return float64(c.Stats().MaxWeight) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "state_cache_blocks",
			Help: "Per-key blocks currently held",
		}, func() float64 { return float64(c.Stats().Blocks) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "state_cache_hits_total",
			Help: "Get calls answered from the cache",
		}, func() float64 { return float64(c.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "state_cache_misses_total",
			Help: "Get calls that missed",
		}, func() float64 { return float64(c.Stats().Misses) }),
	}
	for i, col := range collectors {
		if err := reg.Register(col); err != nil {
			for _, done := range collectors[:i] {
				reg.Unregister(done)
			}
			return err
		}
	}
	return nil
}
