// Package main реализует точку входа службы учетных данных.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	httpServer "credkeeper/internal/auth/adapters/http"
	"credkeeper/internal/auth/adapters/mail"
	"credkeeper/internal/auth/adapters/services"
	"credkeeper/internal/auth/app"
	"credkeeper/internal/auth/config"
	svc "credkeeper/internal/auth/ports/services"
	"credkeeper/pkg/logger"
	"credkeeper/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "AUTH_LOGGER_MODE"
	EnvLoggerLevel = "AUTH_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitStorage          = "failed to initialize storage"
	ErrInitMailer           = "failed to initialize mail sender"
	ErrStartHTTPServer      = "failed to start HTTP server"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "credential service started"
	LogServiceShutdownDone = "credential service shutdown complete"
	LogStoppingHTTP        = "stopping HTTP server"
	LogInitMailer          = "initializing mail sender"
	LogMailerLogOnly       = "SMTP host is not set, reset mails will only be logged"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		userRepo, closeStorage, err := openStorage(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitStorage, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitMailer)
		mailSender, err := newMailSender(ctx, &cfg.SMTP)
		if err != nil {
			log.Error(ctx, ErrInitMailer, zap.Error(err))
			_ = closeStorage(ctx)
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(
			cfg.JWT.SecretKey,
			cfg.JWT.GetTokenTTL(),
			cfg.JWT.BCryptCost,
			cfg.JWT.BCryptConcurrency,
		)
		passwordService := serviceFactory.PasswordService()
		tokenService := serviceFactory.TokenService()

		log.Info(ctx, LogInitUseCases)
		deps := httpServer.Dependencies{
			Auth: app.NewAuthUseCase(userRepo, passwordService, tokenService),
			Reset: app.NewResetUseCase(userRepo, passwordService, serviceFactory.ResetTokenService(), mailSender,
				app.ResetSettings{
					TokenTTL:    cfg.Reset.GetTokenTTL(),
					LinkBaseURL: cfg.Reset.LinkBaseURL,
				}),
			User:   app.NewUserUseCase(),
			Gate:   app.NewGate(tokenService),
			Health: userRepo,
		}

		log.Info(ctx, LogInitHTTPServer)
		fiberApp := fiber.New(fiber.Config{
			ReadTimeout:  cfg.HTTP.GetReadTimeout(),
			WriteTimeout: cfg.HTTP.GetWriteTimeout(),
		})

		httpServer.SetupRouter(fiberApp, deps, cfg.HTTP.CORSOrigin)

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := fiberApp.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
			}
		}()

		// Хранилище закрывается только после того, как HTTP сервер дождался активных запросов.
		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			shutdown.Sequence(
				func(ctx context.Context) error {
					log.Info(ctx, LogStoppingHTTP)
					return fiberApp.ShutdownWithContext(ctx)
				},
				closeStorage,
			),
		)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// newMailSender создает SMTP отправителя или, без SMTP хоста, отправителя в лог.
func newMailSender(ctx context.Context, cfg *config.SMTPConfig) (svc.MailSender, error) {
	if !cfg.Enabled() {
		logger.Log(ctx).Warn(ctx, LogMailerLogOnly)
		return mail.NewLogSender(), nil
	}

	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}
	return sender, nil
}
