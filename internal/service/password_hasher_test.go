package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func newTestHasher(t *testing.T, workers int) *Argon2Hasher {
	t.Helper()
	h, err := NewArgon2Hasher(Argon2Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}, workers)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	return h
}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	h := newTestHasher(t, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
	if strings.Contains(hash, "password123") {
		t.Fatalf("hash leaks plaintext")
	}

	ok, err := h.Verify(ctx, "password123", hash)
	if err != nil || !ok {
		t.Fatalf("expected verify ok, got %v,%v", ok, err)
	}
	ok, err = h.Verify(ctx, "wrong-password", hash)
	if err != nil || ok {
		t.Fatalf("expected verify mismatch, got %v,%v", ok, err)
	}
}

func TestArgon2Hasher_SaltIsPerHash(t *testing.T) {
	h := newTestHasher(t, 1)
	a, err := h.Hash(context.Background(), "password123")
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := h.Hash(context.Background(), "password123")
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestArgon2Hasher_VerifyRejectsMalformedHash(t *testing.T) {
	h := newTestHasher(t, 1)
	cases := []string{
		"",
		"password123",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	}
	for _, encoded := range cases {
		if _, err := h.Verify(context.Background(), "password123", encoded); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("expected ErrInvalidHash for %q, got %v", encoded, err)
		}
	}
}

func TestArgon2Hasher_RejectsZeroParams(t *testing.T) {
	if _, err := NewArgon2Hasher(Argon2Params{MemoryKiB: 1024, Iterations: 0, Parallelism: 1}, 1); !errors.Is(err, ErrInvalidHashParams) {
		t.Fatalf("expected ErrInvalidHashParams, got %v", err)
	}
}

func TestArgon2Hasher_CancelledContext(t *testing.T) {
	h := newTestHasher(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Hash(ctx, "password123"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestArgon2Hasher_ConcurrentCallsAndObserver(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	var mu sync.Mutex
	observed := map[string]int{}
	h := newTestHasher(t, 2).WithObserver(func(op string, _ time.Duration) {
		mu.Lock()
		observed[op]++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash(context.Background(), "password123")
			if err != nil {
				errs <- err
				return
			}
			if ok, err := h.Verify(context.Background(), "password123", hash); err != nil || !ok {
				errs <- errors.New("verify failed")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent hashing: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if observed["hash"] != 8 || observed["verify"] != 8 {
		t.Fatalf("unexpected observer counts: %+v", observed)
	}
}
