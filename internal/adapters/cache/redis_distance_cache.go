package cache

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/obs"
	"delivery-zone-planner/internal/ports"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "planner:dist:"

// RedisDistanceCache keeps one hash per origin: field = destination key,
// value = distance in km. Each hash expires ttl after its last write.
type RedisDistanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDistanceCache connects to the Redis server at url (redis://...).
// A zero ttl disables expiry.
func NewRedisDistanceCache(url string, ttl time.Duration) (*RedisDistanceCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis distance cache: parse url: %w", err)
	}
	return &RedisDistanceCache{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

func NewRedisDistanceCacheFromClient(rdb *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{rdb: rdb, ttl: ttl}
}

func (r *RedisDistanceCache) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisDistanceCache) Close() error { return r.rdb.Close() }

func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ map[domain.Coordinates]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if r.rdb == nil {
		return nil, errors.New("redis distance cache: client is nil")
	}

	out := make(map[domain.Coordinates]ports.DistanceResult, len(destinations))
	if len(destinations) == 0 {
		return out, nil
	}

	keys, index := uniqueKeys(destinations)

	vals, err := r.rdb.HMGet(ctx, redisKeyPrefix+origin.Key(), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis distance cache: hmget: %w", err)
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		km, err := strconv.ParseFloat(s, 64)
		if err != nil {
			log.Printf("redis distance cache: bad value field=%s value=%q", keys[i], s)
			continue
		}
		out[index[keys[i]]] = ports.DistanceResult{DistanceKm: km}
	}
	return out, nil
}

func (r *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin domain.Coordinates,
	results map[domain.Coordinates]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.redis.PutMany")(&err)

	if r.rdb == nil {
		return errors.New("redis distance cache: client is nil")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for d, res := range results {
		fields[d.Key()] = strconv.FormatFloat(res.DistanceKm, 'f', -1, 64)
	}

	key := redisKeyPrefix + origin.Key()
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis distance cache: write %s: %w", key, err)
	}
	return nil
}
