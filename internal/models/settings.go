package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Well-known setting names
const (
	SettingWelcomeCredit   = "welcome_credit"
	SettingTTSCharge       = "tts_charge"
	SettingEarnCredit      = "earn_credit"
	SettingReferrerBonus   = "referrer_bonus"
	SettingReferredBonus   = "referred_bonus"
	SettingPatienceBonus   = "patience_bonus"
	SettingMinPayment      = "min_payment_amount"
	SettingMaxPayment      = "max_payment_amount"
	SettingPaymentRate     = "payment_rate"
	SettingLinkTimeoutMins = "link_timeout_minutes"
)

// BotSetting is a tunable numeric knob stored in the database so admins can
// change credit amounts without a redeploy.
type BotSetting struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Value       decimal.Decimal `gorm:"type:decimal(15,4);not null" json:"value"`
	Description string          `gorm:"size:500" json:"description"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for BotSetting model
func (BotSetting) TableName() string {
	return "bot_settings"
}

// Shortener holds the configured link-shortening provider. At most one row
// is active at a time; rotating providers deactivates the previous ones.
type Shortener struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Domain    string    `gorm:"size:200;uniqueIndex;not null" json:"domain"`
	APIKey    string    `gorm:"size:200;not null" json:"-"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Shortener model
func (Shortener) TableName() string {
	return "link_shorteners"
}
