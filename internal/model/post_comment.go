package model

import (
	"time"

	"gorm.io/gorm"
)

// PostComment is a comment on a post. ParentID points at another comment
// when this is a reply; deleting a comment removes its direct replies
// (one level only), handled by the comment handlers.
type PostComment struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	PostID    uint           `json:"post_id" gorm:"index;not null"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	ParentID  *uint          `json:"parent_id,omitempty" gorm:"index"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
