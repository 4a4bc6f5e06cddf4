package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralRecord links a referred user to their referrer. At most one row
// may exist per referred_id: a user can be referred once, ever.
type ReferralRecord struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ReferrerID    int64           `gorm:"not null;index" json:"referrer_id"`
	ReferredID    int64           `gorm:"not null;uniqueIndex" json:"referred_id"`
	ReferralCode  string          `gorm:"size:32;not null;index" json:"referral_code"`
	CreditsEarned decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"credits_earned"`
	IsClaimed     bool            `gorm:"default:false" json:"is_claimed"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name for ReferralRecord model
func (ReferralRecord) TableName() string {
	return "referrals"
}
