package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const (
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

var (
	ErrInvalidHash       = errors.New("invalid password hash")
	ErrInvalidHashParams = errors.New("invalid argon2 parameters")
)

// Argon2Params son los parametros de coste de argon2id; fijos para todo el proceso.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// PasswordHasher calcula y verifica hashes de contraseñas.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encodedHash string) (bool, error)
}

// Argon2Hasher ejecuta argon2id en un pool acotado de workers, fuera de la
// goroutine que atiende la request. Un hash lento solo ocupa un slot del pool.
type Argon2Hasher struct {
	params  Argon2Params
	slots   *semaphore.Weighted
	observe func(op string, d time.Duration)
}

func NewArgon2Hasher(params Argon2Params, workers int) (*Argon2Hasher, error) {
	if params.MemoryKiB == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return nil, ErrInvalidHashParams
	}
	if workers <= 0 {
		workers = 1
	}
	return &Argon2Hasher{
		params: params,
		slots:  semaphore.NewWeighted(int64(workers)),
	}, nil
}

// WithObserver registra un callback con la duracion de cada operacion (hash|verify).
func (h *Argon2Hasher) WithObserver(observe func(op string, d time.Duration)) *Argon2Hasher {
	h.observe = observe
	return h
}

func (h *Argon2Hasher) Hash(ctx context.Context, password string) (string, error) {
	return offload(ctx, h, "hash", func() (string, error) {
		salt := make([]byte, argon2SaltLen)
		if _, err := rand.Read(salt); err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, argon2KeyLen)
		return fmt.Sprintf(
			"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
			argon2.Version,
			h.params.MemoryKiB,
			h.params.Iterations,
			h.params.Parallelism,
			base64.RawStdEncoding.EncodeToString(salt),
			base64.RawStdEncoding.EncodeToString(key),
		), nil
	})
}

// Verify devuelve (false, nil) si la contraseña no coincide y error solo si el hash es ilegible.
func (h *Argon2Hasher) Verify(ctx context.Context, password, encodedHash string) (bool, error) {
	return offload(ctx, h, "verify", func() (bool, error) {
		parsed, err := parseArgon2Hash(encodedHash)
		if err != nil {
			return false, err
		}
		computed := argon2.IDKey([]byte(password), parsed.salt, parsed.iterations, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))
		return subtle.ConstantTimeCompare(computed, parsed.key) == 1, nil
	})
}

type hashResult[T any] struct {
	val T
	err error
}

// offload ocupa un slot del pool y corre fn en su propia goroutine. Si ctx se
// cancela mientras se espera, la llamada retorna y el calculo termina en segundo plano.
func offload[T any](ctx context.Context, h *Argon2Hasher, op string, fn func() (T, error)) (T, error) {
	var zero T
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	done := make(chan hashResult[T], 1)
	go func() {
		defer h.slots.Release(1)
		start := time.Now()
		v, err := fn()
		if h.observe != nil {
			h.observe(op, time.Since(start))
		}
		done <- hashResult[T]{val: v, err: err}
	}()
	select {
	case res := <-done:
		return res.val, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

type argon2Hash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parseArgon2Hash(encoded string) (argon2Hash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argon2Hash{}, ErrInvalidHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argon2Hash{}, ErrInvalidHash
	}
	var memory, iterations, parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return argon2Hash{}, ErrInvalidHash
	}
	if memory == 0 || iterations == 0 || parallelism == 0 || parallelism > 255 {
		return argon2Hash{}, ErrInvalidHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return argon2Hash{}, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return argon2Hash{}, ErrInvalidHash
	}
	return argon2Hash{
		memory:      memory,
		iterations:  iterations,
		parallelism: uint8(parallelism),
		salt:        salt,
		key:         key,
	}, nil
}
