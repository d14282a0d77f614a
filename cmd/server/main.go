package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enumm/identity/internal/api"
	"github.com/enumm/identity/internal/app"
	"github.com/enumm/identity/internal/app/maintenance"
	iauth "github.com/enumm/identity/internal/auth"
	"github.com/enumm/identity/internal/database"
	"github.com/enumm/identity/internal/ratelimit"
	"github.com/enumm/identity/internal/services"
	"github.com/enumm/identity/pkg/logger"
	"github.com/enumm/identity/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("enumm-identity", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	limiter, closeLimiter, err := initialiseLimiter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	tokens, err := iauth.NewTokenService(cfg.Auth.TokenServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise token service: %w", err)
	}

	sessions, err := iauth.NewSessionService(db, tokens, iauth.SessionConfig{})
	if err != nil {
		return fmt.Errorf("initialise session service: %w", err)
	}

	mailer, err := initialiseMailer(cfg)
	if err != nil {
		return err
	}

	verifications, err := services.NewVerificationService(db, mailer, cfg.Verification.VerificationOptions()...)
	if err != nil {
		return fmt.Errorf("initialise verification service: %w", err)
	}

	authService, err := services.NewAuthService(db, tokens, sessions, verifications, limiter)
	if err != nil {
		return fmt.Errorf("initialise auth service: %w", err)
	}

	profiles, err := services.NewProfileService(db)
	if err != nil {
		return fmt.Errorf("initialise profile service: %w", err)
	}

	if cfg.Maintenance.Enabled {
		cleaner := maintenance.NewCleaner(sessions, verifications,
			maintenance.WithSessionSchedule(cfg.Maintenance.SessionSchedule),
			maintenance.WithTokenSchedule(cfg.Maintenance.TokenSchedule),
		)
		if err := cleaner.Start(); err != nil {
			return fmt.Errorf("start maintenance jobs: %w", err)
		}
		defer func() {
			stopCtx := cleaner.Stop()
			if err := cleaner.RunOnce(stopCtx); err != nil {
				log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
			}
		}()
	}

	router, err := api.NewRouter(db, authService, profiles)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

// initialiseLimiter prefers the Redis limiter so attempt counts survive
// restarts and are shared across instances; without Redis the process-local
// limiter is used.
func initialiseLimiter(ctx context.Context, cfg *app.Config, log *zap.Logger) (ratelimit.Limiter, func(), error) {
	limiterCfg := cfg.RateLimit.LimiterConfig()

	if cfg.Redis.Enabled {
		client := redis.NewClient(cfg.Redis.RedisOptions())

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			log.Warn("redis unavailable; falling back to in-memory rate limiting", zap.Error(err))
		} else {
			limiter, err := ratelimit.NewRedisLimiter(client, limiterCfg)
			if err != nil {
				_ = client.Close()
				return nil, nil, err
			}
			log.Info("redis connected", zap.String("addr", cfg.Redis.Address))
			return limiter, func() { _ = client.Close() }, nil
		}
	}

	return ratelimit.NewMemoryLimiter(limiterCfg), func() {}, nil
}

func initialiseMailer(cfg *app.Config) (mail.Mailer, error) {
	if cfg.Email.SMTP.Enabled {
		mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
		if err != nil {
			return nil, fmt.Errorf("initialise smtp mailer: %w", err)
		}
		return mailer, nil
	}

	return mail.NewLogMailer(logger.WithModule("mail")), nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
