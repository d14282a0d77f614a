package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationToken is a single-use, time-bounded proof of mailbox ownership.
// The raw token string is persisted so the value handed to the caller can be
// matched verbatim on consumption. Rows are never deleted by the auth flow;
// the maintenance sweeper purges expired and used rows.
type VerificationToken struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Token  string `gorm:"uniqueIndex;not null" json:"-"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	Used      bool      `gorm:"not null;default:false" json:"used"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *VerificationToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
