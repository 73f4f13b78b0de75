package email

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sender entrega el codigo 2FA al dueño de la cuenta.
type Sender interface {
	SendTwoFACode(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

// logSender no envia nada: escribe el codigo en el log. Solo para desarrollo.
type logSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logSender{logger: logger}
}

func (s *logSender) SendTwoFACode(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	s.logger.Info("2fa code issued",
		zap.String("to", toEmail),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt.UTC()),
	)
	return nil
}
