package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/db"
	"auth-service/internal/email"
	apihttp "auth-service/internal/http"
	"auth-service/internal/repository"
	"auth-service/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(reg)

	hasher, err := service.NewArgon2Hasher(service.Argon2Params{
		MemoryKiB:   cfg.Argon2MemoryKiB,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	}, cfg.HashWorkers)
	if err != nil {
		logger.Fatal("password hasher", zap.Error(err))
	}
	hasher.WithObserver(metrics.ObserveHash)

	var credentials repository.CredentialStore
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = db.Ping(ctxPing, pool)
		cancel()
		if err != nil {
			logger.Fatal("db ping failed", zap.Error(err))
		}
		if err := db.RunMigrations(ctx, pool); err != nil {
			logger.Fatal("db migrations", zap.Error(err))
		}
		credentials = repository.NewPgCredentialStore(pool, hasher)
		logger.Info("credential store: postgres")
	} else {
		credentials = repository.NewMemoryCredentialStore(hasher)
		logger.Warn("credential store: memory (DATABASE_URL not set)")
	}

	var (
		revoked    service.RevokedTokenStore
		codes      service.TwoFACodeStore
		otpLimiter service.OTPRateLimiter
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		revoked = service.NewRedisRevokedTokenStore(redisClient, cfg.TokenTTL())
		codes = service.NewRedisTwoFACodeStore(redisClient, cfg.TwoFACodeTTL())
		otpLimiter = service.NewRedisOTPRateLimiter(redisClient, cfg.OTPRateLimitWindow(), cfg.OTPRateLimitMax)
		logger.Info("token and 2fa stores: redis")
	} else {
		revoked = service.NewMemoryRevokedTokenStore()
		codes = service.NewMemoryTwoFACodeStore(cfg.TwoFACodeTTL())
		otpLimiter = service.NewOTPRateLimiter(cfg.OTPRateLimitWindow(), cfg.OTPRateLimitMax)
		logger.Warn("token and 2fa stores: memory (REDIS_ADDR not set)")
	}

	emailSender := email.NewLogSender(logger)
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	} else {
		logger.Warn("smtp not configured: 2fa codes are written to the log")
	}

	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL(), revoked)
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}

	authSvc := service.NewAuthService(logger, credentials, codes, tokens, emailSender, otpLimiter, cfg.TwoFACodeTTL()).
		WithMetrics(metrics)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, cfg.CookieSecure)
	router := apihttp.NewRouter(logger, authHandler, reg)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
