package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL defines the fallback validity period for bearer tokens.
const DefaultTokenTTL = time.Hour

// ErrTokenInvalid is returned when a bearer token fails structural, signature
// or expiry checks. All failure modes collapse into this one sentinel so the
// caller cannot distinguish a forged token from a stale one.
var ErrTokenInvalid = errors.New("token: invalid")

// TokenConfig bundles the configuration required to build a TokenService.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Clock  func() time.Time
}

// TokenService issues and validates compact signed bearer tokens carrying a
// subject claim and an expiry. Tokens are self-verifying: validation needs no
// stored state, only the shared secret.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. The signing secret must carry at
// least 128 bits of key material.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("token: secret must be at least 16 bytes")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    now,
	}, nil
}

// TTL reports the validity window applied to issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token embedding the subject and an expiry of now + TTL, and
// returns the token together with that expiry instant.
func (s *TokenService) Issue(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token: subject is required")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate reports whether the token's signature verifies and its embedded
// expiry lies in the future. Untrusted input never panics or errors loudly;
// any malformation simply yields false.
func (s *TokenService) Validate(tokenString string) bool {
	_, err := s.parse(tokenString)
	return err == nil
}

// Subject extracts the embedded subject claim. It fails with ErrTokenInvalid
// whenever Validate would return false.
func (s *TokenService) Subject(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	var claims jwt.RegisteredClaims
	if _, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return nil, ErrTokenInvalid
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &claims, nil
}
