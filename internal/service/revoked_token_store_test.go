package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetTTL time.Duration
	lastExists []string

	setErr    error
	existsErr error
	existsN   int64
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, _ interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastExists = keys
	cmd := redis.NewIntCmd(ctx)
	if m.existsErr != nil {
		cmd.SetErr(m.existsErr)
		return cmd
	}
	cmd.SetVal(m.existsN)
	return cmd
}

func TestMemoryRevokedTokenStore_Basics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevokedTokenStore()

	ok, err := store.Contains(ctx, "token")
	if err != nil || ok {
		t.Fatalf("expected missing token false,nil; got %v,%v", ok, err)
	}

	if err := store.Add(ctx, "token"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(ctx, "token"); err != nil {
		t.Fatalf("second add must be idempotent, got %v", err)
	}
	ok, err = store.Contains(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("expected token revoked, got %v,%v", ok, err)
	}
}

func TestRedisRevokedTokenStore_Miniredis(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniredis(t)
	store := NewRedisRevokedTokenStore(rdb, 10*time.Minute)

	if err := store.Add(ctx, "token"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := store.Add(ctx, "token"); err != nil {
		t.Fatalf("second add must be idempotent, got %v", err)
	}
	if !mr.Exists("banned_token:token") {
		t.Fatalf("expected key banned_token:token")
	}
	if ttl := mr.TTL("banned_token:token"); ttl != 10*time.Minute {
		t.Fatalf("expected ttl 10m, got %v", ttl)
	}

	ok, err := store.Contains(ctx, "token")
	if err != nil || !ok {
		t.Fatalf("expected revoked, got %v,%v", ok, err)
	}

	mr.FastForward(9 * time.Minute)
	if ok, _ := store.Contains(ctx, "token"); !ok {
		t.Fatalf("expected token still revoked before ttl")
	}

	mr.FastForward(2 * time.Minute)
	ok, err = store.Contains(ctx, "token")
	if err != nil || ok {
		t.Fatalf("expected entry expired after ttl, got %v,%v", ok, err)
	}
}

func TestRedisRevokedTokenStore_KeysAndErrors(t *testing.T) {
	ctx := context.Background()
	mock := &mockRedisKVClient{existsN: 1}
	store := &redisRevokedTokenStore{client: mock, prefix: revokedTokenKeyPrefix, ttl: time.Minute}

	if err := store.Add(ctx, "abc"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if mock.lastSetKey != "banned_token:abc" || mock.lastSetTTL != time.Minute {
		t.Fatalf("unexpected set, key=%q ttl=%v", mock.lastSetKey, mock.lastSetTTL)
	}
	ok, err := store.Contains(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("expected contains true,nil; got %v,%v", ok, err)
	}
	if len(mock.lastExists) != 1 || mock.lastExists[0] != "banned_token:abc" {
		t.Fatalf("unexpected exists key: %+v", mock.lastExists)
	}

	failing := &redisRevokedTokenStore{
		client: &mockRedisKVClient{setErr: errors.New("set failed"), existsErr: errors.New("exists failed")},
		prefix: revokedTokenKeyPrefix,
		ttl:    time.Minute,
	}
	if err := failing.Add(ctx, "abc"); err == nil {
		t.Fatalf("expected add error")
	}
	if _, err := failing.Contains(ctx, "abc"); err == nil {
		t.Fatalf("expected contains error")
	}
}
