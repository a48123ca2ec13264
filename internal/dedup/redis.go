package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const crawledURLsKey = "crawler:crawled_urls"

// RedisStore keeps the crawled-URL set in a Redis set.
type RedisStore struct {
	mu     sync.RWMutex
	urls   map[string]struct{}
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		urls:   make(map[string]struct{}),
		client: client,
	}, nil
}

func (s *RedisStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.client.SMembers(ctx, crawledURLsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to load crawled urls from redis: %w", err)
	}

	for _, url := range members {
		s.urls[url] = struct{}{}
	}

	return nil
}

func (s *RedisStore) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.urls[url]
	return exists
}

func (s *RedisStore) Record(ctx context.Context, url string) error {
	if err := s.client.SAdd(ctx, crawledURLsKey, url).Err(); err != nil {
		return fmt.Errorf("failed to record crawled url in redis: %w", err)
	}

	s.mu.Lock()
	s.urls[url] = struct{}{}
	s.mu.Unlock()

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
