package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/enumm/identity/internal/models"
	"github.com/enumm/identity/pkg/metrics"
)

var (
	// ErrSessionNotFound indicates that no live session matches the token.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionExpired signals that the session's expiry has passed.
	ErrSessionExpired = errors.New("session: expired")
)

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	Clock func() time.Time
}

// SessionService persists issued bearer tokens as revocable session rows.
// The token itself is self-verifying; the row is what makes logout possible.
type SessionService struct {
	db     *gorm.DB
	tokens *TokenService
	now    func() time.Time
}

// NewSessionService constructs a session manager backed by the provided
// database and token service.
func NewSessionService(db *gorm.DB, tokens *TokenService, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("session service: token service is required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{db: db, tokens: tokens, now: clock}, nil
}

// Open persists a session row pairing the user with an issued token. The
// expiry must mirror the expiry embedded in the token.
func (s *SessionService) Open(ctx context.Context, userID, token string, expiresAt time.Time) (*models.Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("session service: user id is required")
	}
	if token == "" {
		return nil, errors.New("session service: token is required")
	}

	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("session service: create session: %w", err)
	}

	metrics.ActiveSessions.Inc()

	return session, nil
}

// Close deletes the session row matching the token. Closing a token that was
// never issued, or one already closed, is a silent no-op: logout must be
// idempotent and must not reveal whether the token existed.
func (s *SessionService) Close(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: delete session: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return nil
}

// Validate resolves a bearer token to its user. The token must carry a valid
// signature and expiry, a session row must still exist for it, and that row
// must not have lapsed. Only then is the embedded subject trusted.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.User, error) {
	if !s.tokens.Validate(token) {
		return nil, ErrTokenInvalid
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	if !session.ExpiresAt.After(s.now()) {
		return nil, ErrSessionExpired
	}

	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("session service: load user: %w", err)
	}

	return &user, nil
}

// CleanupExpired removes sessions whose expiry has passed and adjusts the
// active-session gauge. Used by the maintenance sweeper.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	now := s.now()

	result := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup expired: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return result.RowsAffected, nil
}
