package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enumm/identity/internal/models"
	"github.com/enumm/identity/pkg/crypto"
	"github.com/enumm/identity/pkg/logger"
	"github.com/enumm/identity/pkg/mail"
)

const (
	defaultVerificationExpiry     = 24 * time.Hour
	defaultVerificationTokenBytes = 32
)

var (
	// ErrVerificationNotFound indicates the token does not exist.
	ErrVerificationNotFound = errors.New("verification: token not found")
	// ErrVerificationUsed signals that the token has already been consumed.
	ErrVerificationUsed = errors.New("verification: token already used")
	// ErrVerificationExpired indicates the token's expiry has passed.
	ErrVerificationExpired = errors.New("verification: token expired")
)

// VerificationOption customises the VerificationService.
type VerificationOption func(*VerificationService)

// WithVerificationBaseURL sets the base URL used in emailed verification links.
func WithVerificationBaseURL(url string) VerificationOption {
	return func(s *VerificationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithVerificationExpiry overrides the token lifetime.
func WithVerificationExpiry(d time.Duration) VerificationOption {
	return func(s *VerificationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithVerificationTokenSize adjusts the number of random bytes in generated tokens.
func WithVerificationTokenSize(size int) VerificationOption {
	return func(s *VerificationService) {
		if size >= crypto.MinTokenBytes {
			s.tokenLength = size
		}
	}
}

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock func() time.Time) VerificationOption {
	return func(s *VerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// VerificationService issues and consumes single-use email verification
// tokens. Tokens are persisted raw so the value returned to the caller can be
// matched verbatim; issuing never invalidates a user's earlier tokens, so
// several may be live at once until each expires or is consumed.
type VerificationService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
}

// NewVerificationService constructs a verification service.
func NewVerificationService(db *gorm.DB, mailer mail.Mailer, opts ...VerificationOption) (*VerificationService, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}

	service := &VerificationService{
		db:          db,
		mailer:      mailer,
		expiry:      defaultVerificationExpiry,
		tokenLength: defaultVerificationTokenBytes,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Issue generates an unpredictable URL-safe token for the user, persists it
// with used=false and expiry = now + lifetime, and dispatches the
// verification email. Delivery is fire-and-forget: a mailer failure is
// logged, not returned.
func (s *VerificationService) Issue(ctx context.Context, user *models.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("verification service: user is required")
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return "", fmt.Errorf("verification service: generate token: %w", err)
	}

	record := models.VerificationToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.expiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("verification service: create token: %w", err)
	}

	s.notify(ctx, user.Email, token)

	return token, nil
}

// Consume validates the token and marks it used inside the supplied
// transaction handle, returning the stored record with its owning user
// preloaded. Checks run in fixed order: a token that does not exist cannot be
// classified further, and "used" is a stronger terminal signal than "expired"
// when a client retries a stale link.
func (s *VerificationService) Consume(tx *gorm.DB, token string) (*models.VerificationToken, error) {
	if tx == nil {
		tx = s.db
	}
	if token == "" {
		return nil, ErrVerificationNotFound
	}

	var record models.VerificationToken
	err := tx.Preload("User").Where("token = ?", token).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("verification service: find token: %w", err)
	}

	if record.Used {
		return nil, ErrVerificationUsed
	}
	if !record.ExpiresAt.After(s.now()) {
		return nil, ErrVerificationExpired
	}

	if err := tx.Model(&record).Update("used", true).Error; err != nil {
		return nil, fmt.Errorf("verification service: mark used: %w", err)
	}

	record.Used = true
	return &record, nil
}

// CleanupStale purges tokens that are expired or already consumed. Live
// unused tokens are never touched. Used by the maintenance sweeper.
func (s *VerificationService) CleanupStale(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Or("used = ?", true).
		Delete(&models.VerificationToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("verification service: cleanup: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *VerificationService) notify(ctx context.Context, email, token string) {
	if s.mailer == nil {
		return
	}

	link := token
	if s.baseURL != "" {
		link = fmt.Sprintf("%s?token=%s", s.baseURL, token)
	}

	msg := mail.Message{
		To:      []string{email},
		Subject: "Confirm your enumm account",
		Body: fmt.Sprintf("Welcome to enumm!\n\nPlease confirm your email address by visiting the link below:\n%s\n\nIf you did not create an account, you can ignore this message.\n", link),
	}

	if err := s.mailer.Send(ctx, msg); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("verification").Warn("verification email delivery failed",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}
