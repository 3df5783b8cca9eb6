package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardThreshold is the number of paid cups that earns one free cup.
const RewardThreshold = 5

// CustomerProfile holds the loyalty counters and the current QR redemption
// token for a CUSTOMER user. TotalPaidCups and TotalRedeemedCups only ever
// grow; TotalRedeemedCups never exceeds TotalPaidCups/RewardThreshold.
type CustomerProfile struct {
	ID                uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID            uuid.UUID  `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	FirstNameEnc      string     `json:"-" gorm:"type:text;not null"`
	LastNameEnc       string     `json:"-" gorm:"type:text;not null"`
	DOB               *time.Time `json:"dob,omitempty"`
	TotalPaidCups     int        `json:"total_paid_cups" gorm:"not null;default:0"`
	TotalRedeemedCups int        `json:"total_redeemed_cups" gorm:"not null;default:0"`
	QRToken           string     `json:"-" gorm:"type:char(64);index"`
	QRExpiresAt       *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *CustomerProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EarnedFreeCups is the lifetime free-cup entitlement.
func (p *CustomerProfile) EarnedFreeCups() int {
	return p.TotalPaidCups / RewardThreshold
}

// AvailableFreeCups is the entitlement not yet redeemed, never below zero.
func (p *CustomerProfile) AvailableFreeCups() int {
	available := p.EarnedFreeCups() - p.TotalRedeemedCups
	if available < 0 {
		return 0
	}
	return available
}

// CurrentPoints is progress toward the next free cup.
func (p *CustomerProfile) CurrentPoints() int {
	return p.TotalPaidCups % RewardThreshold
}
