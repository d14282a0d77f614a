package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session pairs an issued bearer token with a revocable server-side record.
// A row exists iff the token was issued through login and not yet logged out;
// its expiry mirrors the expiry embedded in the token itself.
type Session struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Token  string `gorm:"uniqueIndex;not null" json:"-"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
