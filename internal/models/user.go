package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus enumerates the account lifecycle states. The only legal
// transition is PendingVerification -> Verified.
type UserStatus string

const (
	StatusPendingVerification UserStatus = "pending_verification"
	StatusVerified            UserStatus = "verified"
)

// User is an identity record keyed by email. Emails are stored and compared
// exactly as supplied; the unique index serialises concurrent signups for the
// same address.
type User struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Status       UserStatus `gorm:"not null;default:pending_verification" json:"status"`

	Sessions           []Session           `gorm:"foreignKey:UserID" json:"-"`
	VerificationTokens []VerificationToken `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsVerified reports whether the account completed email verification.
func (u *User) IsVerified() bool {
	return u.Status == StatusVerified
}
