package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auth-service/internal/domain"
)

// MemoryCredentialStore guarda credenciales en un map protegido por RWMutex.
// Igual que el backend Postgres, solo persiste el hash de la contraseña.
type MemoryCredentialStore struct {
	mu     sync.RWMutex
	hasher PasswordHasher
	users  map[string]domain.Credential
}

func NewMemoryCredentialStore(hasher PasswordHasher) *MemoryCredentialStore {
	return &MemoryCredentialStore{
		hasher: hasher,
		users:  make(map[string]domain.Credential),
	}
}

func (s *MemoryCredentialStore) Add(ctx context.Context, user domain.User) error {
	if _, err := s.Get(ctx, user.Email); err == nil {
		return ErrUserAlreadyExists
	}
	// El hash se calcula fuera del lock para no bloquear lecturas concurrentes.
	hash, err := s.hasher.Hash(ctx, user.Password.Reveal())
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := user.Email.String()
	if _, ok := s.users[key]; ok {
		return ErrUserAlreadyExists
	}
	s.users[key] = domain.Credential{
		Email:        user.Email,
		PasswordHash: hash,
		Requires2FA:  user.Requires2FA,
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

func (s *MemoryCredentialStore) Get(_ context.Context, email domain.Email) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.users[email.String()]
	if !ok {
		return domain.Credential{}, ErrUserNotFound
	}
	return cred, nil
}

func (s *MemoryCredentialStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	cred, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	return verifyCredential(ctx, s.hasher, cred.PasswordHash, password)
}

// Delete revalida la contraseña y borra el registro bajo el lock de escritura.
// Si el registro cambio entre la verificacion y el borrado, se trata como no encontrado.
func (s *MemoryCredentialStore) Delete(ctx context.Context, email domain.Email, password domain.Password) error {
	cred, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := verifyCredential(ctx, s.hasher, cred.PasswordHash, password); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[email.String()]
	if !ok || current.PasswordHash != cred.PasswordHash {
		return ErrUserNotFound
	}
	delete(s.users, email.String())
	return nil
}

func verifyCredential(ctx context.Context, hasher PasswordHasher, hash string, password domain.Password) error {
	ok, err := hasher.Verify(ctx, password.Reveal(), hash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}
