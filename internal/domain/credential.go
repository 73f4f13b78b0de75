package domain

import "time"

// User es la entrada de signup: contraseña en claro ya validada.
type User struct {
	Email       Email
	Password    Password
	Requires2FA bool
}

// Credential es el registro persistido: una fila por email.
// PasswordHash siempre contiene un hash argon2id en formato PHC, nunca el texto plano.
type Credential struct {
	Email        Email
	PasswordHash string
	Requires2FA  bool
	CreatedAt    time.Time
}
