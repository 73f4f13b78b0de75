package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"auth-service/internal/domain"
)

// pgQuerier es el subconjunto de pgxpool.Pool que usa el store; permite pgxmock en tests.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgCredentialStore implementa CredentialStore sobre la tabla users.
// La unicidad del email la garantiza la constraint users_email_key.
type PgCredentialStore struct {
	db     pgQuerier
	hasher PasswordHasher
}

func NewPgCredentialStore(db pgQuerier, hasher PasswordHasher) *PgCredentialStore {
	return &PgCredentialStore{db: db, hasher: hasher}
}

func (r *PgCredentialStore) Add(ctx context.Context, user domain.User) error {
	hash, err := r.hasher.Hash(ctx, user.Password.Reveal())
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	const query = `
		INSERT INTO users (email, password_hash, requires_2fa, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.Exec(ctx, query,
		user.Email.String(),
		hash,
		user.Requires2FA,
		time.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgCredentialStore) Get(ctx context.Context, email domain.Email) (domain.Credential, error) {
	const query = `
		SELECT email, password_hash, requires_2fa, created_at
		FROM users
		WHERE email = $1
	`
	var (
		rawEmail string
		cred     domain.Credential
	)
	err := r.db.QueryRow(ctx, query, email.String()).Scan(
		&rawEmail,
		&cred.PasswordHash,
		&cred.Requires2FA,
		&cred.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Credential{}, ErrUserNotFound
	}
	if err != nil {
		return domain.Credential{}, fmt.Errorf("select user: %w", err)
	}
	cred.Email, err = domain.ParseEmail(rawEmail)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("stored email %q: %w", rawEmail, err)
	}
	return cred, nil
}

func (r *PgCredentialStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	cred, err := r.Get(ctx, email)
	if err != nil {
		return err
	}
	return verifyCredential(ctx, r.hasher, cred.PasswordHash, password)
}

// Delete revalida la contraseña antes de borrar. El DELETE filtra tambien por
// el hash leido, asi un cambio concurrente del registro no se borra a ciegas.
func (r *PgCredentialStore) Delete(ctx context.Context, email domain.Email, password domain.Password) error {
	cred, err := r.Get(ctx, email)
	if err != nil {
		return err
	}
	if err := verifyCredential(ctx, r.hasher, cred.PasswordHash, password); err != nil {
		return err
	}

	const query = `
		DELETE FROM users
		WHERE email = $1 AND password_hash = $2
	`
	tag, err := r.db.Exec(ctx, query, email.String(), cred.PasswordHash)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
