package models

import (
	"time"
)

// Reward link statuses
const (
	LinkStatusActive   = "active"
	LinkStatusExpired  = "expired"
	LinkStatusInactive = "inactive"
)

// RewardLink is a shareable short link from the reward pool. Links are
// status-transitioned, never deleted. One link may be assigned to many users;
// each user can claim it at most once.
type RewardLink struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	URL       string     `gorm:"size:500;not null" json:"url"`
	Payload   string     `gorm:"size:64;uniqueIndex;not null" json:"payload"`
	Status    string     `gorm:"size:20;default:active;index" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TableName specifies the table name for RewardLink model
func (RewardLink) TableName() string {
	return "reward_links"
}

// LinkAssignment records that a link was handed to a user and whether the
// one-shot claim credit was already given.
type LinkAssignment struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      int64       `gorm:"not null;uniqueIndex:uk_link_assignments_user_link" json:"user_id"`
	LinkID      uint        `gorm:"not null;uniqueIndex:uk_link_assignments_user_link;index" json:"link_id"`
	Link        *RewardLink `gorm:"foreignKey:LinkID" json:"link,omitempty"`
	AssignedAt  time.Time   `gorm:"autoCreateTime" json:"assigned_at"`
	CreditGiven bool        `gorm:"default:false" json:"credit_given"`
	CreditedAt  *time.Time  `json:"credited_at,omitempty"`
}

// TableName specifies the table name for LinkAssignment model
func (LinkAssignment) TableName() string {
	return "link_assignments"
}
