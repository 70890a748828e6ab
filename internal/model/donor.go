package model

import (
	"time"

	"gorm.io/gorm"
)

// Donor links a profile to the giving-side features (donations, follows,
// feed preferences). 1:1 with a Profile.
type Donor struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProfileID uint           `json:"profile_id" gorm:"uniqueIndex;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}
