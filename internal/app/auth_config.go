package app

import (
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/enumm/identity/internal/auth"
	"github.com/enumm/identity/internal/database"
	"github.com/enumm/identity/internal/ratelimit"
	"github.com/enumm/identity/internal/services"
	"github.com/enumm/identity/pkg/mail"
)

// TokenServiceConfig converts AuthConfig into the parameters expected by the
// token service.
func (c AuthConfig) TokenServiceConfig() auth.TokenConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultTokenTTL
	}

	return auth.TokenConfig{
		Secret: c.JWT.Secret,
		Issuer: c.JWT.Issuer,
		TTL:    ttl,
	}
}

// LimiterConfig converts RateLimitConfig into limiter parameters.
func (c RateLimitConfig) LimiterConfig() ratelimit.Config {
	return ratelimit.Config{
		MaxAttempts: c.MaxAttempts,
		Window:      c.Window,
	}
}

// VerificationOptions converts VerificationConfig into service options.
func (c VerificationConfig) VerificationOptions() []services.VerificationOption {
	opts := []services.VerificationOption{}
	if c.Expiry > 0 {
		opts = append(opts, services.WithVerificationExpiry(c.Expiry))
	}
	if c.TokenBytes > 0 {
		opts = append(opts, services.WithVerificationTokenSize(c.TokenBytes))
	}
	if strings.TrimSpace(c.BaseURL) != "" {
		opts = append(opts, services.WithVerificationBaseURL(c.BaseURL))
	}
	return opts
}

// SMTPSettings converts EmailConfig into mailer parameters.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		Timeout:  c.SMTP.Timeout,
	}
}

// RedisOptions converts RedisConfig into go-redis client options.
func (c RedisConfig) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Address,
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	}
}

// DatabaseConfig normalises DatabaseConfig into the database package's form.
func (c DatabaseConfig) DatabaseConfig() database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(c.Postgres.Host)
		dbCfg.Port = c.Postgres.Port
		dbCfg.Name = strings.TrimSpace(c.Postgres.Database)
		dbCfg.User = strings.TrimSpace(c.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(c.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(c.MySQL.Host)
		dbCfg.Port = c.MySQL.Port
		dbCfg.Name = strings.TrimSpace(c.MySQL.Database)
		dbCfg.User = strings.TrimSpace(c.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(c.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}
