package model

import (
	"time"

	"gorm.io/gorm"
)

// Location pin types and publication statuses.
const (
	LocationTypeMissionary = "missionary"
	LocationTypeProject    = "project"
	LocationTypeCustom     = "custom"

	LocationStatusDraft     = "draft"
	LocationStatusPublished = "published"
)

// Location is a map pin shown on the org's field map. LinkedID points at
// the missionary or project the pin represents, when Type is not custom.
type Location struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(200)"`
	Lat       float64        `json:"lat" gorm:"not null"`
	Lng       float64        `json:"lng" gorm:"not null"`
	Type      string         `json:"type" gorm:"type:varchar(20);default:'custom'"`
	LinkedID  *uint          `json:"linked_id,omitempty"`
	Status    string         `json:"status" gorm:"type:varchar(20);default:'draft'"`
	SortKey   int            `json:"sort_key" gorm:"default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
