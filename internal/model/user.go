package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold.
const (
	RoleAdmin    = "ADMIN"
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// User is the identity root. Email and mobile are stored encrypted; the
// deterministic EmailHash is the only way to look a user up by email.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Role      string    `json:"role" gorm:"size:16;not null;index"`
	EmailEnc  string    `json:"-" gorm:"type:text;not null"`
	EmailHash string    `json:"-" gorm:"type:char(64);uniqueIndex;not null"`
	MobileEnc string    `json:"-" gorm:"type:text"`
	// PasswordHash is nil until the user is onboarded (staff invitations
	// create the user before a password exists).
	PasswordHash *string `json:"-" gorm:"size:255"`
	Active       bool    `json:"active" gorm:"default:true;index"`
	// TokenVersion is bumped to invalidate every previously issued token.
	TokenVersion        int        `json:"-" gorm:"not null;default:0"`
	PasswordResetToken  *string    `json:"-" gorm:"type:char(64);index"`
	PasswordResetExpiry *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// Relations
	CustomerProfile *CustomerProfile `json:"-" gorm:"foreignKey:UserID"`
	StaffProfile    *StaffProfile    `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Onboarded reports whether the user has completed password setup.
func (u *User) Onboarded() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
