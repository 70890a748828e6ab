package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles a profile can hold within its tenant.
const (
	RoleDonor      = "donor"
	RoleMissionary = "missionary"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleSuperAdmin = "super_admin"
)

// Profile is the application identity: one per authenticated user per
// tenant, carrying the role used for authorization decisions.
type Profile struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Role      string         `json:"role" gorm:"type:varchar(50);not null;default:'donor'"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100)"`
	AvatarURL string         `json:"avatar_url" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User   User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Tenant Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

// DisplayName returns the profile's human-readable name.
func (p *Profile) DisplayName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
