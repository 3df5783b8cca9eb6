package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is an immutable ledger entry recording a point-of-sale
// event. Rows are only ever appended; there is no update or delete path.
type Transaction struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:char(36);not null;index"`
	SiteID     uuid.UUID `json:"site_id" gorm:"type:char(36);not null;index"`
	StaffID    uuid.UUID `json:"staff_id" gorm:"type:char(36);not null;index"`
	PaidCups   int       `json:"paid_cups" gorm:"not null"`
	FreeCups   int       `json:"free_cups" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`

	// Relations
	Customer *CustomerProfile `json:"-" gorm:"foreignKey:CustomerID"`
	Site     *Site            `json:"-" gorm:"foreignKey:SiteID"`
	Staff    *StaffProfile    `json:"-" gorm:"foreignKey:StaffID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
