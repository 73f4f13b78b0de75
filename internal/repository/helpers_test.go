package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"auth-service/internal/domain"
)

// plainHasher evita el coste de argon2 en tests de stores.
type plainHasher struct {
	hashErr   error
	verifyErr error
}

func (h plainHasher) Hash(_ context.Context, password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "plain:" + password, nil
}

func (h plainHasher) Verify(_ context.Context, password, encodedHash string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	if !strings.HasPrefix(encodedHash, "plain:") {
		return false, errors.New("invalid hash")
	}
	return encodedHash == "plain:"+password, nil
}

func mustUser(t *testing.T, email, password string, requires2FA bool) domain.User {
	t.Helper()
	e, err := domain.ParseEmail(email)
	if err != nil {
		t.Fatalf("parse email: %v", err)
	}
	p, err := domain.ParsePassword(password)
	if err != nil {
		t.Fatalf("parse password: %v", err)
	}
	return domain.User{Email: e, Password: p, Requires2FA: requires2FA}
}
