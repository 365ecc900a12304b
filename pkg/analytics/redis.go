package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis key layout. Each process writes under its own instance id so a
// restart starts from zero, like the in-memory Counter.
const (
	redisKeyPrefix   = "edge:analytics"
	redisKeyTTL      = 24 * time.Hour
	totalSuffix      = "total"
	byEndpointSuffix = "by_endpoint"
)

// RedisStore keeps the counters in Redis. INCR and HINCRBY run inside a
// MULTI/EXEC transaction, which makes increments atomic across replicas
// sharing one instance id.
type RedisStore struct {
	redis      *redis.Client
	instanceID string
}

// NewRedisStore creates a store with a fresh instance id.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:      redisClient,
		instanceID: uuid.NewString(),
	}
}

// InstanceID returns the id used to namespace this process's keys.
func (s *RedisStore) InstanceID() string {
	return s.instanceID
}

func (s *RedisStore) key(suffix string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, s.instanceID, suffix)
}

// Record implements Store.
func (s *RedisStore) Record(ctx context.Context, path string) error {
	totalKey, endpointsKey := s.key(totalSuffix), s.key(byEndpointSuffix)

	pipe := s.redis.TxPipeline()
	pipe.Incr(ctx, totalKey)
	pipe.HIncrBy(ctx, endpointsKey, path, 1)
	pipe.Expire(ctx, totalKey, redisKeyTTL)
	pipe.Expire(ctx, endpointsKey, redisKeyTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record request in redis: %w", err)
	}
	return nil
}

// Snapshot implements Store. Both reads run in one transaction so the
// result never mixes two different request counts.
func (s *RedisStore) Snapshot(ctx context.Context) (State, error) {
	pipe := s.redis.TxPipeline()
	totalCmd := pipe.Get(ctx, s.key(totalSuffix))
	endpointsCmd := pipe.HGetAll(ctx, s.key(byEndpointSuffix))

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return State{}, fmt.Errorf("snapshot analytics from redis: %w", err)
	}

	state := State{ByEndpoint: make(map[string]int64)}

	total, err := totalCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return State{}, fmt.Errorf("parse total requests: %w", err)
	}
	state.TotalRequests = total

	for path, raw := range endpointsCmd.Val() {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return State{}, fmt.Errorf("parse count for %s: %w", path, err)
		}
		state.ByEndpoint[path] = n
	}

	return state, nil
}
