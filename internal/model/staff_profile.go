package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StaffProfile holds the encrypted name of a STAFF user.
type StaffProfile struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	FirstNameEnc string    `json:"-" gorm:"type:text;not null"`
	LastNameEnc  string    `json:"-" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	User       *User       `json:"-" gorm:"foreignKey:UserID"`
	StaffSites []StaffSite `json:"-" gorm:"foreignKey:StaffID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *StaffProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// StaffSite assigns a staff member to a site. The composite unique index
// prevents duplicate assignments.
type StaffSite struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	StaffID   uuid.UUID `json:"staff_id" gorm:"type:char(36);not null;uniqueIndex:idx_staff_site"`
	SiteID    uuid.UUID `json:"site_id" gorm:"type:char(36);not null;uniqueIndex:idx_staff_site"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Staff *StaffProfile `json:"-" gorm:"foreignKey:StaffID"`
	Site  *Site         `json:"-" gorm:"foreignKey:SiteID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *StaffSite) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
