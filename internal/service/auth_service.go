package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"auth-service/internal/domain"
	"auth-service/internal/email"
	"auth-service/internal/repository"
)

// Errores que ve la capa HTTP. Cualquier otro fallo se reporta como ErrUnexpected.
var (
	ErrMalformedInput       = errors.New("malformed input")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrMissingToken         = errors.New("missing token")
	ErrInvalidToken         = errors.New("invalid token")
	ErrRateLimited          = errors.New("rate limited")
	ErrUnexpected           = errors.New("unexpected error")
)

// AuthService coordina signup, login, 2FA, logout, verificacion de token y baja.
type AuthService struct {
	logger      *zap.Logger
	credentials repository.CredentialStore
	codes       TwoFACodeStore
	tokens      *TokenService
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	codeTTL     time.Duration
	metrics     *Metrics
	now         func() time.Time
}

func NewAuthService(
	logger *zap.Logger,
	credentials repository.CredentialStore,
	codes TwoFACodeStore,
	tokens *TokenService,
	emailSender email.Sender,
	otpLimiter OTPRateLimiter,
	codeTTL time.Duration,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emailSender == nil {
		emailSender = email.NewLogSender(logger)
	}
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(codeTTL, 5)
	}
	return &AuthService{
		logger:      logger,
		credentials: credentials,
		codes:       codes,
		tokens:      tokens,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		codeTTL:     codeTTL,
		now:         time.Now,
	}
}

func (s *AuthService) WithMetrics(m *Metrics) *AuthService {
	s.metrics = m
	return s
}

// TokenTTL es la vida de la sesion; la capa HTTP la usa para el cookie.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

type SignupInput struct {
	Email       string
	Password    string
	Requires2FA bool
}

// LoginResult trae Token o, si la cuenta exige 2FA, LoginAttemptID.
type LoginResult struct {
	Token          string
	Requires2FA    bool
	LoginAttemptID string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) error {
	user, err := parseUser(input)
	if err != nil {
		s.observe("signup", err)
		return err
	}

	_, err = s.credentials.Get(ctx, user.Email)
	switch {
	case err == nil:
		err = ErrUserAlreadyExists
	case errors.Is(err, repository.ErrUserNotFound):
		err = s.addCredential(ctx, user)
	default:
		err = s.unexpected("signup: lookup credential", err)
	}
	s.observe("signup", err)
	return err
}

func (s *AuthService) addCredential(ctx context.Context, user domain.User) error {
	err := s.credentials.Add(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserAlreadyExists):
		return ErrUserAlreadyExists
	default:
		return s.unexpected("signup: add credential", err)
	}
}

func (s *AuthService) Login(ctx context.Context, rawEmail, rawPassword string) (LoginResult, error) {
	result, err := s.login(ctx, rawEmail, rawPassword)
	s.observe("login", err)
	return result, err
}

func (s *AuthService) login(ctx context.Context, rawEmail, rawPassword string) (LoginResult, error) {
	emailAddr, password, err := parseCredentials(rawEmail, rawPassword)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.credentials.Validate(ctx, emailAddr, password); err != nil {
		if isCredentialMiss(err) {
			return LoginResult{}, ErrIncorrectCredentials
		}
		return LoginResult{}, s.unexpected("login: validate credential", err)
	}
	credential, err := s.credentials.Get(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, ErrIncorrectCredentials
		}
		return LoginResult{}, s.unexpected("login: fetch credential", err)
	}

	if !credential.Requires2FA {
		token, err := s.tokens.Issue(emailAddr)
		if err != nil {
			return LoginResult{}, s.unexpected("login: issue token", err)
		}
		return LoginResult{Token: token}, nil
	}

	attemptID, err := s.issueChallenge(ctx, emailAddr)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Requires2FA: true, LoginAttemptID: attemptID.String()}, nil
}

// issueChallenge reemplaza cualquier par previo del email y envia el codigo.
func (s *AuthService) issueChallenge(ctx context.Context, emailAddr domain.Email) (domain.LoginAttemptID, error) {
	if !s.otpLimiter.Allow(ctx, emailAddr.String()) {
		return domain.LoginAttemptID{}, ErrRateLimited
	}
	attemptID := domain.NewLoginAttemptID()
	code, err := domain.NewTwoFACode()
	if err != nil {
		return domain.LoginAttemptID{}, s.unexpected("login: generate 2fa code", err)
	}
	if err := s.codes.Add(ctx, emailAddr, attemptID, code); err != nil {
		return domain.LoginAttemptID{}, s.unexpected("login: store 2fa code", err)
	}
	expiresAt := s.now().UTC().Add(s.codeTTL)
	if err := s.emailSender.SendTwoFACode(ctx, emailAddr.String(), code.String(), expiresAt); err != nil {
		return domain.LoginAttemptID{}, s.unexpected("login: send 2fa code", err)
	}
	return attemptID, nil
}

// Verify2FA consume el par (attempt id, codigo) y emite el token de sesion.
// Un par ya consumido no vuelve a validar.
func (s *AuthService) Verify2FA(ctx context.Context, rawEmail, rawAttemptID, rawCode string) (string, error) {
	token, err := s.verify2FA(ctx, rawEmail, rawAttemptID, rawCode)
	s.observe("verify_2fa", err)
	return token, err
}

func (s *AuthService) verify2FA(ctx context.Context, rawEmail, rawAttemptID, rawCode string) (string, error) {
	emailAddr, err := domain.ParseEmail(rawEmail)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	attemptID, err := domain.ParseLoginAttemptID(rawAttemptID)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	code, err := domain.ParseTwoFACode(rawCode)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	err = s.codes.Consume(ctx, emailAddr, attemptID, code)
	switch {
	case err == nil:
	case errors.Is(err, ErrLoginAttemptNotFound), errors.Is(err, ErrTwoFACodeMismatch):
		return "", ErrIncorrectCredentials
	default:
		return "", s.unexpected("verify 2fa: consume code", err)
	}

	token, err := s.tokens.Issue(emailAddr)
	if err != nil {
		return "", s.unexpected("verify 2fa: issue token", err)
	}
	return token, nil
}

// Logout revoca un token valido. Un token ya revocado falla con ErrInvalidToken
// y no cambia estado.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.logout(ctx, token)
	s.observe("logout", err)
	return err
}

func (s *AuthService) logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrMissingToken
	}
	if _, err := s.validateToken(ctx, token); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, token); err != nil {
		return s.unexpected("logout: revoke token", err)
	}
	return nil
}

// VerifyToken no tiene efectos laterales.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (Claims, error) {
	claims, err := s.validateToken(ctx, token)
	s.observe("verify_token", err)
	return claims, err
}

func (s *AuthService) validateToken(ctx context.Context, token string) (Claims, error) {
	claims, err := s.tokens.Validate(ctx, token)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, ErrTokenInvalid), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenRevoked):
		return Claims{}, ErrInvalidToken
	default:
		return Claims{}, s.unexpected("validate token", err)
	}
}

// DeleteAccount re-valida la contraseña en el store antes de borrar. Cuenta
// inexistente y contraseña incorrecta dan el mismo ErrInvalidCredentials.
func (s *AuthService) DeleteAccount(ctx context.Context, rawEmail, rawPassword string) error {
	err := s.deleteAccount(ctx, rawEmail, rawPassword)
	s.observe("delete_account", err)
	return err
}

func (s *AuthService) deleteAccount(ctx context.Context, rawEmail, rawPassword string) error {
	emailAddr, password, err := parseCredentials(rawEmail, rawPassword)
	if err != nil {
		return err
	}
	if err := s.credentials.Delete(ctx, emailAddr, password); err != nil {
		if isCredentialMiss(err) {
			return ErrInvalidCredentials
		}
		return s.unexpected("delete account", err)
	}
	return nil
}

func (s *AuthService) unexpected(msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	return ErrUnexpected
}

func (s *AuthService) observe(operation string, err error) {
	s.metrics.ObserveOperation(operation, outcomeLabel(err))
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrIncorrectCredentials):
		return "incorrect_credentials"
	case errors.Is(err, ErrUserAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrMissingToken):
		return "missing_token"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "unexpected"
	}
}

func parseCredentials(rawEmail, rawPassword string) (domain.Email, domain.Password, error) {
	emailAddr, err := domain.ParseEmail(rawEmail)
	if err != nil {
		return domain.Email{}, domain.Password{}, ErrInvalidCredentials
	}
	password, err := domain.ParsePassword(rawPassword)
	if err != nil {
		return domain.Email{}, domain.Password{}, ErrInvalidCredentials
	}
	return emailAddr, password, nil
}

func parseUser(input SignupInput) (domain.User, error) {
	emailAddr, password, err := parseCredentials(input.Email, input.Password)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{Email: emailAddr, Password: password, Requires2FA: input.Requires2FA}, nil
}

func isCredentialMiss(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidCredentials)
}
