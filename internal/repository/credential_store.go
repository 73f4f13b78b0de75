package repository

import (
	"context"
	"errors"

	"auth-service/internal/domain"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// CredentialStore define el contrato de persistencia para credenciales.
// Cualquier error distinto de los sentinels anteriores es un fallo inesperado del backend.
type CredentialStore interface {
	Add(ctx context.Context, user domain.User) error
	Get(ctx context.Context, email domain.Email) (domain.Credential, error)
	Validate(ctx context.Context, email domain.Email, password domain.Password) error
	Delete(ctx context.Context, email domain.Email, password domain.Password) error
}

// PasswordHasher es la parte del hasher que necesitan los stores.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encodedHash string) (bool, error)
}
