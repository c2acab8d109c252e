package rate

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	counterPrefix = "rate:"
	configPrefix  = "config:"
)

// RedisStore backs both the counter and limit stores with Redis. The
// two namespaces use distinct key prefixes so counting and
// configuration never collide.
type RedisStore struct {
	client redis.UniversalClient
}

var (
	_ CounterStore = (*RedisStore)(nil)
	_ LimitStore   = (*RedisStore)(nil)
)

// NewRedisStore wraps the given Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Incr(ctx context.Context, identifier string) (int64, error) {
	return s.client.Incr(ctx, counterPrefix+identifier).Result()
}

func (s *RedisStore) Expire(ctx context.Context, identifier string, ttl time.Duration) error {
	return s.client.Expire(ctx, counterPrefix+identifier, ttl).Err()
}

func (s *RedisStore) TTL(ctx context.Context, identifier string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, counterPrefix+identifier).Result()
	if err != nil {
		return 0, err
	}
	// -1 (no expiry) and -2 (no key) both mean there is no useful
	// retry hint.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (Limit, bool, error) {
	fields, err := s.client.HGetAll(ctx, configPrefix+identifier).Result()
	if err != nil {
		return Limit{}, false, err
	}
	if len(fields) == 0 {
		return Limit{}, false, nil
	}

	requests, err := strconv.Atoi(fields["limit"])
	if err != nil {
		return Limit{}, false, err
	}
	windowSeconds, err := strconv.Atoi(fields["window"])
	if err != nil {
		return Limit{}, false, err
	}

	return Limit{
		Requests: requests,
		Window:   time.Duration(windowSeconds) * time.Second,
	}, true, nil
}

func (s *RedisStore) Set(ctx context.Context, identifier string, limit Limit) error {
	return s.client.HSet(ctx, configPrefix+identifier,
		"limit", strconv.Itoa(limit.Requests),
		"window", strconv.Itoa(int(limit.Window/time.Second)),
	).Err()
}
