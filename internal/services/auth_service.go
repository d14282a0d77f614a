package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enumm/identity/internal/auth"
	"github.com/enumm/identity/internal/models"
	"github.com/enumm/identity/internal/ratelimit"
	"github.com/enumm/identity/pkg/crypto"
	apperrors "github.com/enumm/identity/pkg/errors"
	"github.com/enumm/identity/pkg/logger"
	"github.com/enumm/identity/pkg/metrics"
)

// SignupResult is the outcome of a signup request. Resent marks the accepted
// (not failed) case where the email already has an unverified account and a
// fresh verification link was dispatched; the supplied password is ignored on
// that path.
type SignupResult struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	Status  string `json:"status"`
	Resent  bool   `json:"-"`
}

// VerifyResult reports a completed email verification.
type VerifyResult struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// LoginResult carries the issued bearer token.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// AuthService composes the verification issuer, rate limiter, token service
// and session manager into the signup/verify/login/logout flows. It owns all
// business-rule ordering and error classification; collaborators return their
// own sentinels which are mapped to the public taxonomy here.
type AuthService struct {
	db            *gorm.DB
	tokens        *auth.TokenService
	sessions      *auth.SessionService
	verifications *VerificationService
	limiter       ratelimit.Limiter
	log           *zap.Logger
}

// NewAuthService constructs the orchestrator.
func NewAuthService(
	db *gorm.DB,
	tokens *auth.TokenService,
	sessions *auth.SessionService,
	verifications *VerificationService,
	limiter ratelimit.Limiter,
) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if tokens == nil || sessions == nil || verifications == nil || limiter == nil {
		return nil, errors.New("auth service: all collaborators are required")
	}

	return &AuthService{
		db:            db,
		tokens:        tokens,
		sessions:      sessions,
		verifications: verifications,
		limiter:       limiter,
		log:           logger.WithModule("auth"),
	}, nil
}

// Signup registers a new account or re-sends verification for an existing
// unverified one. Emails are matched exactly as stored.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*SignupResult, error) {
	// The unique index on users.email serialises concurrent signups for the
	// same address; a duplicated-key failure means another request won the
	// race, so the lookup is retried once and handled as an existing account.
	for attempt := 0; attempt < 2; attempt++ {
		var user models.User
		err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error

		switch {
		case err == nil:
			return s.signupExisting(ctx, &user)

		case errors.Is(err, gorm.ErrRecordNotFound):
			result, createErr := s.signupCreate(ctx, email, password)
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				continue
			}
			return result, createErr

		default:
			return nil, apperrors.Wrap(err, "signup: user lookup failed")
		}
	}

	return nil, apperrors.ErrInternalServer
}

func (s *AuthService) signupExisting(ctx context.Context, user *models.User) (*SignupResult, error) {
	if user.IsVerified() {
		metrics.Signups.WithLabelValues("conflict").Inc()
		return nil, apperrors.ErrEmailInUse
	}

	// Pending account: issue a fresh link without touching the stored hash.
	// Earlier tokens stay valid until they expire or are consumed.
	if _, err := s.verifications.Issue(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, "signup: issue verification token failed")
	}

	metrics.Signups.WithLabelValues("resent").Inc()
	return &SignupResult{
		Message: "A new verification link has been sent to your email. Please check your inbox.",
		Status:  string(models.StatusPendingVerification),
		Resent:  true,
	}, nil
}

func (s *AuthService) signupCreate(ctx context.Context, email, password string) (*SignupResult, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(err, "signup: hash password failed")
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Status:       models.StatusPendingVerification,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "signup: create user failed")
	}

	token, err := s.verifications.Issue(ctx, &user)
	if err != nil {
		return nil, apperrors.Wrap(err, "signup: issue verification token failed")
	}

	metrics.Signups.WithLabelValues("created").Inc()
	s.log.Info("account created", zap.String("user_id", user.ID))

	// The raw token is surfaced in the response for local testability; mock
	// email delivery logs the same link.
	return &SignupResult{
		Message: "Account created successfully. Please check your email to verify your account.",
		Token:   token,
		Status:  string(models.StatusPendingVerification),
	}, nil
}

// VerifyEmail consumes a verification token and flips the owning account to
// verified. Consumption and the status flip commit as one unit.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*VerifyResult, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.verifications.Consume(tx, token)
		if err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", record.UserID).
			Update("status", models.StatusVerified).Error
	})

	switch {
	case err == nil:
		metrics.Verifications.WithLabelValues("verified").Inc()
		return &VerifyResult{
			Message: "Email verified successfully! You can now log in.",
			Status:  string(models.StatusVerified),
		}, nil

	case errors.Is(err, ErrVerificationNotFound):
		metrics.Verifications.WithLabelValues("invalid").Inc()
		return nil, apperrors.ErrTokenInvalid
	case errors.Is(err, ErrVerificationUsed):
		metrics.Verifications.WithLabelValues("used").Inc()
		return nil, apperrors.ErrTokenAlreadyUsed
	case errors.Is(err, ErrVerificationExpired):
		metrics.Verifications.WithLabelValues("expired").Inc()
		return nil, apperrors.ErrTokenExpired

	default:
		return nil, apperrors.Wrap(err, "verify email: transaction failed")
	}
}

// Login authenticates an email/password pair and opens a session for the
// issued bearer token. The rate-limit gate runs before any lookup and a
// blocked request records no new attempt. Unknown accounts and wrong
// passwords produce the same error so registration cannot be probed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	limited, err := s.limiter.IsLimited(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(err, "login: rate limit check failed")
	}
	if limited {
		metrics.LoginAttempts.WithLabelValues("rate_limited").Inc()
		return nil, apperrors.ErrRateLimited
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.failAttempt(ctx, email)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "login: user lookup failed")
	}

	// Unverified accounts are excluded from the attempt counter: this is not
	// a guessing-related failure.
	if !user.IsVerified() {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrEmailNotVerified
	}

	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return nil, s.failAttempt(ctx, email)
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		return nil, apperrors.Wrap(err, "login: rate limit reset failed")
	}

	token, expiresAt, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, apperrors.Wrap(err, "login: issue token failed")
	}

	if _, err := s.sessions.Open(ctx, user.ID, token, expiresAt); err != nil {
		return nil, apperrors.Wrap(err, "login: open session failed")
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.log.Info("login succeeded", zap.String("user_id", user.ID))

	return &LoginResult{Message: "Login successful!", Token: token}, nil
}

func (s *AuthService) failAttempt(ctx context.Context, email string) error {
	if err := s.limiter.RecordAttempt(ctx, email); err != nil {
		return apperrors.Wrap(err, "login: record attempt failed")
	}

	metrics.LoginAttempts.WithLabelValues("failure").Inc()
	return apperrors.ErrInvalidCredentials
}

// Logout closes the session for the supplied bearer token. It succeeds
// whether or not the token ever named a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Close(ctx, token); err != nil {
		return apperrors.Wrap(err, "logout: close session failed")
	}
	return nil
}

// Authenticate resolves a bearer token for the request boundary. Every
// failure mode collapses into the same opaque unauthorized error.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	user, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
