// Package redis is a StateService backed by go-redis.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/statecache/remote"
)

var ErrNilClient = errors.New("redis state service: nil client")

type Service struct {
	rdb         goredis.UniversalClient
	ttl         time.Duration
	closeClient bool
}

var _ remote.StateService = (*Service)(nil)

type Config struct {
	Client goredis.UniversalClient
	// TTL expires stored state; <= 0 keeps it forever.
	TTL         time.Duration
	CloseClient bool // set true only if this service exclusively owns the client
}

func New(cfg Config) (*Service, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	ttl := cfg.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &Service{rdb: cfg.Client, ttl: ttl, closeClient: cfg.CloseClient}, nil
}

func (s *Service) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Service) Store(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, key, value, s.ttl).Err()
}

func (s *Service) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Close releases the client only when this service owns it.
// Safe to call multiple times.
func (s *Service) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
