package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TTSRequest logs a completed synthesis request and what it cost.
type TTSRequest struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      int64           `gorm:"not null;index" json:"user_id"`
	Text        string          `gorm:"type:text" json:"text"`
	Voice       string          `gorm:"size:20;default:male1" json:"voice"`
	WordCount   int             `gorm:"default:0" json:"word_count"`
	CreditsUsed decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"credits_used"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for TTSRequest model
func (TTSRequest) TableName() string {
	return "tts_requests"
}
