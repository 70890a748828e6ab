package model

import "time"

// Reaction kinds a user can leave on a post.
const (
	ReactionPrayer = "prayer"
	ReactionLike   = "like"
)

// PostReaction records one user's reaction of a given kind on a post.
// The composite unique index makes double-reacting a constraint violation,
// which the handlers surface as a conflict.
type PostReaction struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	PostID    uint      `json:"post_id" gorm:"uniqueIndex:idx_post_user_kind;not null"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_post_user_kind;not null"`
	Kind      string    `json:"kind" gorm:"type:varchar(20);uniqueIndex:idx_post_user_kind;not null"`
	CreatedAt time.Time `json:"created_at"`
}
