package model

import (
	"time"

	"gorm.io/gorm"
)

// Missionary links a profile to the missionary-facing features
// (posts, funds, supporter lists). 1:1 with a Profile.
type Missionary struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProfileID uint           `json:"profile_id" gorm:"uniqueIndex;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Bio       string         `json:"bio" gorm:"type:text"`
	Region    string         `json:"region" gorm:"type:varchar(100)"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Profile Profile `json:"profile,omitempty" gorm:"foreignKey:ProfileID"`
}
