package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"auth-service/internal/domain"
)

const twoFACodeKeyPrefix = "two_fa_code:"

var (
	ErrLoginAttemptNotFound = errors.New("login attempt not found")
	ErrTwoFACodeMismatch    = errors.New("2fa code mismatch")
)

// TwoFACodeStore guarda a lo sumo un par (attempt id, codigo) pendiente por email.
type TwoFACodeStore interface {
	// Add sobrescribe cualquier par previo del mismo email.
	Add(ctx context.Context, email domain.Email, attemptID domain.LoginAttemptID, code domain.TwoFACode) error
	Get(ctx context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error)
	// Remove no falla si el email no tiene par pendiente.
	Remove(ctx context.Context, email domain.Email) error
	// Consume compara y borra en una sola operacion atomica. Si no coincide,
	// el par queda intacto y devuelve ErrTwoFACodeMismatch.
	Consume(ctx context.Context, email domain.Email, attemptID domain.LoginAttemptID, code domain.TwoFACode) error
}

type twoFAEntry struct {
	attemptID domain.LoginAttemptID
	code      domain.TwoFACode
	expiresAt time.Time
}

type memoryTwoFACodeStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	codes map[string]twoFAEntry
	now   func() time.Time
}

// NewMemoryTwoFACodeStore crea un store en memoria; las entradas vencidas se
// descartan al leerlas.
func NewMemoryTwoFACodeStore(ttl time.Duration) TwoFACodeStore {
	return &memoryTwoFACodeStore{
		ttl:   ttl,
		codes: make(map[string]twoFAEntry),
		now:   time.Now,
	}
}

func (s *memoryTwoFACodeStore) Add(_ context.Context, email domain.Email, attemptID domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email.String()] = twoFAEntry{
		attemptID: attemptID,
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *memoryTwoFACodeStore) Get(_ context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.codes[email.String()]
	if !ok || !s.now().Before(entry.expiresAt) {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, ErrLoginAttemptNotFound
	}
	return entry.attemptID, entry.code, nil
}

func (s *memoryTwoFACodeStore) Remove(_ context.Context, email domain.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email.String())
	return nil
}

func (s *memoryTwoFACodeStore) Consume(_ context.Context, email domain.Email, attemptID domain.LoginAttemptID, code domain.TwoFACode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := email.String()
	entry, ok := s.codes[key]
	if !ok {
		return ErrLoginAttemptNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.codes, key)
		return ErrLoginAttemptNotFound
	}
	idOK := subtle.ConstantTimeCompare([]byte(entry.attemptID.String()), []byte(attemptID.String())) == 1
	codeOK := subtle.ConstantTimeCompare([]byte(entry.code.String()), []byte(code.String())) == 1
	if !idOK || !codeOK {
		return ErrTwoFACodeMismatch
	}
	delete(s.codes, key)
	return nil
}

// twoFAPayload es el valor JSON guardado en Redis.
type twoFAPayload struct {
	LoginAttemptID string `json:"login_attempt_id"`
	Code           string `json:"code"`
}

// consumeTwoFACodeLua hace GET→comparar→DEL de forma atomica.
// KEYS[1] = clave del email, ARGV[1] = payload esperado.
var consumeTwoFACodeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end
if data ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('DEL', KEYS[1])
return 1
`)

type redisTwoFACodeStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisTwoFACodeStore(client *redis.Client, ttl time.Duration) TwoFACodeStore {
	if client == nil {
		return nil
	}
	return &redisTwoFACodeStore{
		client: client,
		prefix: twoFACodeKeyPrefix,
		ttl:    ttl,
	}
}

func (s *redisTwoFACodeStore) key(email domain.Email) string {
	return s.prefix + email.String()
}

func encodeTwoFAPayload(attemptID domain.LoginAttemptID, code domain.TwoFACode) (string, error) {
	raw, err := json.Marshal(twoFAPayload{LoginAttemptID: attemptID.String(), Code: code.String()})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *redisTwoFACodeStore) Add(ctx context.Context, email domain.Email, attemptID domain.LoginAttemptID, code domain.TwoFACode) error {
	payload, err := encodeTwoFAPayload(attemptID, code)
	if err != nil {
		return fmt.Errorf("encode 2fa payload: %w", err)
	}
	return s.client.Set(ctx, s.key(email), payload, s.ttl).Err()
}

func (s *redisTwoFACodeStore) Get(ctx context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	raw, err := s.client.Get(ctx, s.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, ErrLoginAttemptNotFound
	}
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, err
	}
	var payload twoFAPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode 2fa payload: %w", err)
	}
	attemptID, err := domain.ParseLoginAttemptID(payload.LoginAttemptID)
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode 2fa payload: %w", err)
	}
	code, err := domain.ParseTwoFACode(payload.Code)
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("decode 2fa payload: %w", err)
	}
	return attemptID, code, nil
}

func (s *redisTwoFACodeStore) Remove(ctx context.Context, email domain.Email) error {
	return s.client.Del(ctx, s.key(email)).Err()
}

func (s *redisTwoFACodeStore) Consume(ctx context.Context, email domain.Email, attemptID domain.LoginAttemptID, code domain.TwoFACode) error {
	expected, err := encodeTwoFAPayload(attemptID, code)
	if err != nil {
		return fmt.Errorf("encode 2fa payload: %w", err)
	}
	err = consumeTwoFACodeLua.Run(ctx, s.client, []string{s.key(email)}, expected).Err()
	if err == nil {
		return nil
	}
	// Algunas versiones de Redis anteponen un codigo al error del script.
	switch msg := err.Error(); {
	case strings.HasSuffix(msg, "not_found"):
		return ErrLoginAttemptNotFound
	case strings.HasSuffix(msg, "mismatch"):
		return ErrTwoFACodeMismatch
	}
	return err
}
