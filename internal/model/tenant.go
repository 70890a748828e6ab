package model

import (
	"time"

	"gorm.io/gorm"
)

// Post visibility settings an organization can choose for its feed.
const (
	OrgPostVisibilityEveryone  = "everyone"
	OrgPostVisibilityFollowers = "followers"
)

// Tenant represents one organization on the platform.
// Every other row carries a TenantID pointing here; tenant scoping is the
// primary isolation boundary of the whole service.
type Tenant struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug              string         `json:"slug" gorm:"type:varchar(100);uniqueIndex"`
	OrgPostVisibility string         `json:"org_post_visibility" gorm:"type:varchar(20);default:'everyone'"`
	Active            bool           `json:"active" gorm:"default:true"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}
