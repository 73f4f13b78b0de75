package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const TwoFACodeLength = 6

var (
	ErrInvalidLoginAttemptID = errors.New("invalid login attempt id")
	ErrInvalidTwoFACode      = errors.New("invalid 2fa code")
)

// LoginAttemptID identifica un intento de login pendiente de segundo factor.
type LoginAttemptID struct {
	value string
}

func NewLoginAttemptID() LoginAttemptID {
	return LoginAttemptID{value: uuid.NewString()}
}

func ParseLoginAttemptID(raw string) (LoginAttemptID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return LoginAttemptID{}, ErrInvalidLoginAttemptID
	}
	return LoginAttemptID{value: id.String()}, nil
}

func (id LoginAttemptID) String() string {
	return id.value
}

// TwoFACode es un codigo numerico de 6 digitos.
type TwoFACode struct {
	value string
}

// NewTwoFACode genera un codigo aleatorio con crypto/rand.
func NewTwoFACode() (TwoFACode, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return TwoFACode{}, err
	}
	return TwoFACode{value: fmt.Sprintf("%06d", n.Int64())}, nil
}

func ParseTwoFACode(raw string) (TwoFACode, error) {
	if len(raw) != TwoFACodeLength {
		return TwoFACode{}, ErrInvalidTwoFACode
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return TwoFACode{}, ErrInvalidTwoFACode
		}
	}
	return TwoFACode{value: raw}, nil
}

func (c TwoFACode) String() string {
	return c.value
}
