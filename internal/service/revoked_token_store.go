package service

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "banned_token:"

// RevokedTokenStore guarda los tokens invalidados por logout.
type RevokedTokenStore interface {
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}

// memoryRevokedTokenStore no expira entradas: crece sin limite y solo sirve
// para procesos de vida corta y tests.
type memoryRevokedTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewMemoryRevokedTokenStore() RevokedTokenStore {
	return &memoryRevokedTokenStore{
		tokens: make(map[string]struct{}),
	}
}

func (s *memoryRevokedTokenStore) Add(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
	return nil
}

func (s *memoryRevokedTokenStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok, nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisRevokedTokenStore expira cada entrada a los ttl segundos; ttl debe ser
// >= la vida del token para que la entrada no caduque antes que el token.
type redisRevokedTokenStore struct {
	client redisKVClient
	prefix string
	ttl    time.Duration
}

func NewRedisRevokedTokenStore(client *redis.Client, ttl time.Duration) RevokedTokenStore {
	if client == nil {
		return nil
	}
	return &redisRevokedTokenStore{
		client: client,
		prefix: revokedTokenKeyPrefix,
		ttl:    ttl,
	}
}

func (s *redisRevokedTokenStore) Add(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.prefix+token, true, s.ttl).Err()
}

func (s *redisRevokedTokenStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
