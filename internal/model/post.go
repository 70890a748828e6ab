package model

import (
	"time"

	"gorm.io/gorm"
)

// Post moderation statuses. Transitions are admin-only:
// published -> hidden, published -> flagged, hidden|flagged -> published.
const (
	PostStatusPublished = "published"
	PostStatusHidden    = "hidden"
	PostStatusFlagged   = "flagged"
)

// Post content types surfaced in donor feeds.
const (
	PostTypeUpdate       = "update"
	PostTypePrayer       = "prayer_request"
	PostTypeAnnouncement = "announcement"
)

// Post is an update authored by a missionary, or by the organization
// itself when MissionaryID is nil.
type Post struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null"`
	MissionaryID *uint          `json:"missionary_id,omitempty" gorm:"index"`
	Content      string         `json:"content" gorm:"type:text;not null"`
	MediaURL     string         `json:"media_url" gorm:"type:text"`
	Status       string         `json:"status" gorm:"type:varchar(20);index;default:'published'"`
	Visibility   string         `json:"visibility" gorm:"type:varchar(20);default:'everyone'"`
	PostType     string         `json:"post_type" gorm:"type:varchar(30);default:'update'"`
	IsPinned     bool           `json:"is_pinned" gorm:"default:false"`
	LikeCount    int            `json:"like_count" gorm:"default:0"`
	PrayerCount  int            `json:"prayer_count" gorm:"default:0"`
	CommentCount int            `json:"comment_count" gorm:"default:0"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
