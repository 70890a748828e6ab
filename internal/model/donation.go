package model

import (
	"time"

	"gorm.io/gorm"
)

// Donation statuses as reported by the payment processor.
const (
	DonationStatusPending   = "pending"
	DonationStatusSucceeded = "succeeded"
	DonationStatusFailed    = "failed"
	DonationStatusRefunded  = "refunded"
)

// Donation is one gift from a donor to a missionary (or to the
// organization when MissionaryID is nil). Amounts are stored in cents.
type Donation struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	TenantID          uint           `json:"tenant_id" gorm:"index;not null"`
	DonorID           uint           `json:"donor_id" gorm:"index;not null"`
	MissionaryID      *uint          `json:"missionary_id,omitempty" gorm:"index"`
	FundID            *uint          `json:"fund_id,omitempty" gorm:"index"`
	AmountCents       int64          `json:"amount_cents" gorm:"not null"`
	Currency          string         `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	Status            string         `json:"status" gorm:"type:varchar(20);index;default:'pending'"`
	Recurring         bool           `json:"recurring" gorm:"default:false"`
	RecurringInterval string         `json:"recurring_interval,omitempty" gorm:"type:varchar(20)"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}
