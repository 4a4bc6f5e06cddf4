package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a bot user keyed by the messaging platform's numeric id.
// Credits is a cache of the transaction fold and is only mutated by the
// ledger service.
type User struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     int64           `gorm:"uniqueIndex;not null" json:"user_id"`
	Username   *string         `json:"username,omitempty"`
	FirstName  *string         `json:"first_name,omitempty"`
	LastName   *string         `json:"last_name,omitempty"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	IsBanned   bool            `gorm:"default:false" json:"is_banned"`
	Credits    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"credits"`
	JoinDate   time.Time       `gorm:"autoCreateTime" json:"join_date"`
	LastActive time.Time       `json:"last_active"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
