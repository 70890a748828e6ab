package model

import (
	"time"

	"gorm.io/gorm"
)

// Fund is a fundraising goal, either for a specific missionary or
// org-wide when MissionaryID is nil.
type Fund struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null"`
	MissionaryID *uint          `json:"missionary_id,omitempty" gorm:"index"`
	Name         string         `json:"name" gorm:"type:varchar(200);not null"`
	GoalCents    int64          `json:"goal_cents" gorm:"not null"`
	CurrentCents int64          `json:"current_cents" gorm:"default:0"`
	Active       bool           `json:"active" gorm:"default:true"`
	StartsAt     *time.Time     `json:"starts_at,omitempty"`
	EndsAt       *time.Time     `json:"ends_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
