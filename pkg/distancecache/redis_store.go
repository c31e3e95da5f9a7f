package distancecache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production Store backend: a Redis hash per cache key
// (fields "km"/"minutes"), with no TTL — entries never invalidate within a
// run, and a stale cross-run entry is harmless since tickets and
// crews change slowly relative to the cache's lifetime. Grounded on
// PricingRepository.GetDemandSupply's try-Redis/fall-back-and-repopulate
// shape, minus that repository's TTL (surge data goes stale in seconds;
// pairwise distances do not).
type RedisStore struct {
	client *redis.Client
	keyPrefix string
}

// NewRedisStore wraps a Redis client. keyPrefix namespaces this engine's
// keys from anything else sharing the same Redis instance.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "crewrouter:dist:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) redisKey(key string) string {
	return s.keyPrefix + key
}

// Get returns (km, minutes, true, nil) on a hit, (0, 0, false, nil) on a
// clean miss, and a non-nil error on I/O failure or when a cached value
// cannot be parsed — the Oracle treats either as Transient and computes
// the distance itself.
func (s *RedisStore) Get(ctx context.Context, key string) (km, minutes float64, ok bool, err error) {
	vals, err := s.client.HMGet(ctx, s.redisKey(key), "km", "minutes").Result()
	if err != nil {
		return 0, 0, false, fmt.Errorf("distancecache: redis get %s: %w", key, err)
	}
	if vals[0] == nil || vals[1] == nil {
		return 0, 0, false, nil
	}

	kmStr, kmOK := vals[0].(string)
	minStr, minOK := vals[1].(string)
	if !kmOK || !minOK {
		return 0, 0, false, nil
	}

	if _, err := fmt.Sscanf(kmStr, "%g", &km); err != nil {
		return 0, 0, false, fmt.Errorf("distancecache: parse cached km for %s: %w", key, err)
	}
	if _, err := fmt.Sscanf(minStr, "%g", &minutes); err != nil {
		return 0, 0, false, fmt.Errorf("distancecache: parse cached minutes for %s: %w", key, err)
	}

	return km, minutes, true, nil
}

// Put writes the pair's distance unconditionally; last-writer-wins is
// acceptable since the run's distance oracle is advisory across runs.
func (s *RedisStore) Put(ctx context.Context, key string, km, minutes float64) error {
	err := s.client.HSet(ctx, s.redisKey(key), "km", km, "minutes", minutes).Err()
	if err != nil {
		return fmt.Errorf("distancecache: redis put %s: %w", key, err)
	}
	return nil
}
