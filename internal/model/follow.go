package model

import "time"

// Follow is the subscription edge between a donor and a missionary.
// One edge per pair.
type Follow struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenantID     uint      `json:"tenant_id" gorm:"index;not null"`
	DonorID      uint      `json:"donor_id" gorm:"uniqueIndex:idx_donor_missionary;not null"`
	MissionaryID uint      `json:"missionary_id" gorm:"uniqueIndex:idx_donor_missionary;not null"`
	CreatedAt    time.Time `json:"created_at"`
}
