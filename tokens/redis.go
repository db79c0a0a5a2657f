package tokens

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// advanceScript increments a token key, seeding a missing key from the
// namespace floor, and raises the floor to the token it issues.
// KEYS[1] token key, KEYS[2] floor key, ARGV[1] ttl in ms (0 = none).
var advanceScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
	v = redis.call('GET', KEYS[2]) or 0
end
v = tonumber(v) + 1
local ttl = tonumber(ARGV[1])
if ttl > 0 then
	redis.call('SET', KEYS[1], v, 'PX', ttl)
else
	redis.call('SET', KEYS[1], v)
end
local f = tonumber(redis.call('GET', KEYS[2]) or 0)
if v > f then
	redis.call('SET', KEYS[2], v)
end
return v
`)

// Redis shares tokens across worker processes and survives restarts.
//
// With a TTL, idle token keys expire. The namespace keeps a floor key, which
// never expires, holding the highest token issued; an expired key reports the
// floor and restarts above it, so no key is handed a token it held before.
// Token keys of one namespace share a hash slot.
type Redis struct {
	rdb redis.UniversalClient
	ns  string
	ttl time.Duration
}

var _ Source = (*Redis)(nil)

func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: client, ns: namespace}
}

// NewRedisWithTTL is NewRedis with key expiry; ttl <= 0 disables it.
func NewRedisWithTTL(client redis.UniversalClient, namespace string, ttl time.Duration) *Redis {
	return &Redis{rdb: client, ns: namespace, ttl: ttl}
}

func (s *Redis) key(k string) string { return "token:{" + s.ns + "}:" + k }
func (s *Redis) floorKey() string    { return "token-floor:{" + s.ns + "}" }

func (s *Redis) Current(ctx context.Context, k string) (uint64, error) {
	out, err := s.CurrentMany(ctx, []string{k})
	if err != nil {
		return 0, err
	}
	return out[k], nil
}

// CurrentMany reads the keys and the floor in one MGET.
func (s *Redis) CurrentMany(ctx context.Context, ks []string) (map[string]uint64, error) {
	if len(ks) == 0 {
		return map[string]uint64{}, nil
	}
	keys := make([]string, len(ks)+1)
	for i, k := range ks {
		keys[i] = s.key(k)
	}
	keys[len(ks)] = s.floorKey()
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	floor, err := parseToken(vals[len(ks)])
	if err != nil {
		return nil, fmt.Errorf("redis token floor: %w", err)
	}
	out := make(map[string]uint64, len(ks))
	for i, k := range ks {
		if vals[i] == nil {
			out[k] = floor
			continue
		}
		u, err := parseToken(vals[i])
		if err != nil {
			return nil, fmt.Errorf("redis token parse at %s: %w", k, err)
		}
		out[k] = u
	}
	return out, nil
}

func parseToken(v any) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	return strconv.ParseUint(fmt.Sprint(v), 10, 64)
}

// Advance moves the key past both its own token and the floor in one script call.
func (s *Redis) Advance(ctx context.Context, k string) (uint64, error) {
	var ttl int64
	if s.ttl > 0 {
		ttl = s.ttl.Milliseconds()
		if ttl == 0 {
			ttl = 1
		}
	}
	return advanceScript.Run(ctx, s.rdb, []string{s.key(k), s.floorKey()}, ttl).Uint64()
}

// Cleanup is a no-op; Redis expires keys when a TTL is set.
func (s *Redis) Cleanup(time.Duration) {}

func (s *Redis) Close(context.Context) error { return s.rdb.Close() }
