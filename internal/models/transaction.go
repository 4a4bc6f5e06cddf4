package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TxTypeWelcome         = "welcome"
	TxTypeEarned          = "earned"
	TxTypeSpent           = "spent"
	TxTypeBonus           = "bonus"
	TxTypeReferral        = "referral_bonus"
	TxTypeReferralWelcome = "referral_welcome"
	TxTypePurchase        = "purchase"
	TxTypeAdminGive       = "admin_give"
)

// Transaction sources, used for summary bucketing
const (
	SourceWelcomeBonus = "welcome_bonus"
	SourceTTSUsage     = "tts_usage"
	SourceFreeLink     = "free_link"
	SourceReferral     = "referral_bonus"
	SourcePayment      = "payment"
	SourceAdmin        = "admin"
	SourceBonus        = "bonus"
)

// CreditTransaction is an immutable ledger entry. Rows are never updated or
// deleted; BalanceBefore/BalanceAfter stamp the user's balance around the
// mutation so the per-user chain can be audited.
type CreditTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        int64           `gorm:"not null;index" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type          string          `gorm:"size:50;not null;index" json:"type"`
	Source        string          `gorm:"size:50;not null;index" json:"source"`
	Description   string          `gorm:"type:text" json:"description"`
	TransactionID string          `gorm:"size:32;uniqueIndex;not null" json:"transaction_id"`
	ReferenceID   *string         `gorm:"size:64" json:"reference_id,omitempty"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for CreditTransaction model
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// UserCreditSummary holds rolling aggregates per user. It is maintained
// incrementally inside the same transaction as each ledger write and must
// stay equal to a fold over credit_transactions.
type UserCreditSummary struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            int64           `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalEarned       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_earned"`
	TotalSpent        decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_spent"`
	CurrentBalance    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"current_balance"`
	TotalTransactions int             `gorm:"default:0" json:"total_transactions"`
	FirstTransaction  *time.Time      `json:"first_transaction,omitempty"`
	LastTransaction   *time.Time      `json:"last_transaction,omitempty"`
	EarnedWelcome     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"earned_welcome"`
	EarnedReferral    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"earned_referral"`
	EarnedLinks       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"earned_links"`
	EarnedPurchase    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"earned_purchase"`
	EarnedAdmin       decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"earned_admin"`
	SpentTTS          decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"spent_tts"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name for UserCreditSummary model
func (UserCreditSummary) TableName() string {
	return "user_credit_summaries"
}
