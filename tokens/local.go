package tokens

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Token     uint64
	UpdatedAt time.Time
}

// Local keeps tokens in-process with an optional sweep of long-idle keys.
//
// Swept keys are not forgotten outright: the sweep raises a floor to the
// highest token it dropped. A key with no counter reports the floor, and
// Advance restarts it above the floor, so a token once issued for a key is
// never issued for it again.
type Local struct {
	mu     sync.RWMutex
	tokens map[string]localEntry
	floor  uint64
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Source = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{tokens: make(map[string]localEntry)}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

// current reads the token of k. Caller holds mu.
func (s *Local) current(k string) uint64 {
	if e, ok := s.tokens[k]; ok {
		return e.Token
	}
	return s.floor
}

func (s *Local) Current(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	tok := s.current(k)
	s.mu.RUnlock()
	return tok, nil
}

// CurrentMany takes the read lock once for all keys.
func (s *Local) CurrentMany(_ context.Context, ks []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(ks))
	s.mu.RLock()
	for _, k := range ks {
		out[k] = s.current(k)
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *Local) Advance(_ context.Context, k string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	tok := s.current(k) + 1
	s.tokens[k] = localEntry{Token: tok, UpdatedAt: now}
	s.mu.Unlock()
	return tok, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.tokens {
		if e.UpdatedAt.Before(cutoff) {
			if e.Token > s.floor {
				s.floor = e.Token
			}
			delete(s.tokens, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			s.ticker.Stop()
			close(s.stopCh)
			s.wg.Wait()
		}
	})
	return nil
}
