package domain

import "errors"

// MinPasswordLength es la longitud minima (en bytes) aceptada para una contraseña.
const MinPasswordLength = 8

var ErrInvalidPassword = errors.New("invalid password")

// Password envuelve una contraseña en texto plano que ya cumple la longitud minima.
// Nunca se persiste: los stores guardan solo su hash.
type Password struct {
	value string
}

func ParsePassword(raw string) (Password, error) {
	if len(raw) < MinPasswordLength {
		return Password{}, ErrInvalidPassword
	}
	return Password{value: raw}, nil
}

// Reveal devuelve el texto plano para hashing o verificacion.
func (p Password) Reveal() string {
	return p.value
}

// String evita filtrar la contraseña en logs o fmt.
func (p Password) String() string {
	return "********"
}
