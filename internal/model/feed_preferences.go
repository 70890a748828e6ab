package model

import "time"

// DonorFeedPreferences controls which post types surface in a donor's
// feed and whether org-authored posts are included. One row per
// (donor, tenant); created on first read with everything enabled.
type DonorFeedPreferences struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	DonorID           uint      `json:"donor_id" gorm:"uniqueIndex:idx_donor_tenant;not null"`
	TenantID          uint      `json:"tenant_id" gorm:"uniqueIndex:idx_donor_tenant;not null"`
	ShowUpdates       bool      `json:"show_updates" gorm:"default:true"`
	ShowPrayers       bool      `json:"show_prayer_requests" gorm:"default:true"`
	ShowAnnouncements bool      `json:"show_announcements" gorm:"default:true"`
	FollowsOrg        bool      `json:"follows_org" gorm:"default:true"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AllowsPostType reports whether posts of the given type should appear
// in this donor's feed.
func (p *DonorFeedPreferences) AllowsPostType(postType string) bool {
	switch postType {
	case PostTypeUpdate:
		return p.ShowUpdates
	case PostTypePrayer:
		return p.ShowPrayers
	case PostTypeAnnouncement:
		return p.ShowAnnouncements
	default:
		return true
	}
}
