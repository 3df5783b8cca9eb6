package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingSignup is the ephemeral pre-account record created by a signup
// request and destroyed on promotion to User or on expiry cleanup. The
// unique EmailHash guarantees at most one live row per email; concurrent
// signup requests lose on the constraint.
type PendingSignup struct {
	ID           uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	FirstNameEnc string     `json:"-" gorm:"type:text;not null"`
	LastNameEnc  string     `json:"-" gorm:"type:text;not null"`
	EmailEnc     string     `json:"-" gorm:"type:text;not null"`
	EmailHash    string     `json:"-" gorm:"type:char(64);uniqueIndex;not null"`
	MobileEnc    string     `json:"-" gorm:"type:text"`
	DOB          *time.Time `json:"-"`
	OTPHash      string     `json:"-" gorm:"type:char(64);not null"`
	OTPExpiresAt time.Time  `json:"-" gorm:"not null;index"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *PendingSignup) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
