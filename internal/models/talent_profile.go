package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TalentProfile holds the optional application documents attached to a user.
// Fields are merged null-coalescing on update: absent request fields keep
// their stored values.
type TalentProfile struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`

	Transcript         string `gorm:"type:text" json:"transcript"`
	StatementOfPurpose string `gorm:"type:text" json:"statement_of_purpose"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *TalentProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
