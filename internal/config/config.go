package config

import (
	"errors"
	"runtime"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio. Se construye una vez al
// arrancar y se pasa explicitamente a cada componente.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret             string `env:"JWT_SECRET,required,notEmpty"`
	TokenTTLSeconds       int    `env:"TOKEN_TTL_SECONDS" envDefault:"600"`
	TwoFACodeTTLSeconds   int    `env:"TWO_FA_CODE_TTL_SECONDS" envDefault:"600"`
	CookieSecure          bool   `env:"COOKIE_SECURE" envDefault:"true"`
	OTPRateLimitMax       int    `env:"OTP_RATE_LIMIT_MAX" envDefault:"5"`
	OTPRateLimitWindowSec int    `env:"OTP_RATE_LIMIT_WINDOW_SECONDS" envDefault:"600"`

	Argon2MemoryKiB   uint32 `env:"ARGON2_MEMORY_KIB" envDefault:"15000"`
	Argon2Iterations  uint32 `env:"ARGON2_ITERATIONS" envDefault:"2"`
	Argon2Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"1"`
	HashWorkers       int    `env:"HASH_WORKERS"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`
}

var (
	ErrInvalidTTL        = errors.New("config: ttl values must be positive")
	ErrInvalidHashParams = errors.New("config: argon2 parameters must be positive")
	ErrInvalidRateLimit  = errors.New("config: otp rate limit values must be positive")
)

// LoadConfig carga la configuración desde variables de entorno y la valida.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rechaza valores que dejarian al servicio en un estado inseguro.
func (c *Config) Validate() error {
	if c.TokenTTLSeconds <= 0 || c.TwoFACodeTTLSeconds <= 0 {
		return ErrInvalidTTL
	}
	if c.Argon2MemoryKiB == 0 || c.Argon2Iterations == 0 || c.Argon2Parallelism == 0 {
		return ErrInvalidHashParams
	}
	if c.OTPRateLimitMax <= 0 || c.OTPRateLimitWindowSec <= 0 {
		return ErrInvalidRateLimit
	}
	if c.HashWorkers <= 0 {
		c.HashWorkers = runtime.NumCPU()
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

func (c *Config) TwoFACodeTTL() time.Duration {
	return time.Duration(c.TwoFACodeTTLSeconds) * time.Second
}

func (c *Config) OTPRateLimitWindow() time.Duration {
	return time.Duration(c.OTPRateLimitWindowSec) * time.Second
}
