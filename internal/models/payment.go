package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment request statuses. Confirmed and cancelled are terminal.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusCancelled = "cancelled"
)

// PaymentRequest is a manually verified payment. TransactionID is supplied
// by the paying user and is not globally unique.
type PaymentRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        int64           `gorm:"not null;index" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CreditsToAdd  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"credits_to_add"`
	TransactionID string          `gorm:"size:100;index" json:"transaction_id"`
	Status        string          `gorm:"size:20;default:pending;index" json:"status"`
	BonusGiven    bool            `gorm:"default:false" json:"bonus_given"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
}

// TableName specifies the table name for PaymentRequest model
func (PaymentRequest) TableName() string {
	return "payment_requests"
}
