package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidEmail = errors.New("invalid email")

var emailValidator = validator.New()

// Email es una direccion de correo ya validada. Se usa como clave primaria
// en los stores de credenciales y de codigos 2FA.
type Email struct {
	value string
}

// ParseEmail valida la gramatica de la direccion sin normalizarla, de modo que
// String() devuelve exactamente el valor recibido.
func ParseEmail(raw string) (Email, error) {
	if strings.TrimSpace(raw) != raw || raw == "" {
		return Email{}, ErrInvalidEmail
	}
	if err := emailValidator.Var(raw, "required,email"); err != nil {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: raw}, nil
}

func (e Email) String() string {
	return e.value
}

func (e Email) IsZero() bool {
	return e.value == ""
}
