package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"auth-service/internal/domain"
)

const tokenIssuer = "auth-service"

// TokenService emite y valida los tokens de sesion.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevokedTokenStore
	now     func() time.Time
}

type Claims struct {
	jwt.RegisteredClaims
}

// Email devuelve el subject del token.
func (c Claims) Email() string {
	return c.Subject
}

var (
	ErrEmptySecret  = errors.New("jwt secret is empty")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// NewTokenService falla si el secreto esta vacio.
func NewTokenService(secret string, ttl time.Duration, revoked RevokedTokenStore) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if revoked == nil {
		revoked = NewMemoryRevokedTokenStore()
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  tokenIssuer,
		revoked: revoked,
		now:     time.Now,
	}, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(email domain.Email) (string, error) {
	if email.IsZero() {
		return "", ErrTokenInvalid
	}
	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// jti distinto por emision: dos logins en el mismo segundo no
			// comparten token ni revocacion.
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   email.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate comprueba firma y expiracion antes de consultar el store de
// revocados. Los errores del store se devuelven envueltos.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return Claims{}, err
	}
	revoked, err := s.revoked.Contains(ctx, tokenString)
	if err != nil {
		return Claims{}, fmt.Errorf("check revoked token: %w", err)
	}
	if revoked {
		return Claims{}, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke agrega el token al store de revocados sin validarlo.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	return s.revoked.Add(ctx, tokenString)
}

func (s *TokenService) parse(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
