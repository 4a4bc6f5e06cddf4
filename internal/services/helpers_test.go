package services

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tts-credit-bot/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// :memory: is unique per connection unless using cache=shared, and gorm
	// pools connections, so the shared name keeps every handle on one DB.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.CreditTransaction{},
		&models.UserCreditSummary{},
		&models.TTSRequest{},
		&models.RewardLink{},
		&models.LinkAssignment{},
		&models.ReferralRecord{},
		&models.PaymentRequest{},
		&models.BotSetting{},
		&models.Shortener{},
		&models.AdminUser{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared in-memory DB survives across tests in this package, so each
	// test starts from empty tables.
	for _, table := range []string{
		"credit_transactions", "user_credit_summaries", "tts_requests",
		"link_assignments", "reward_links", "referrals",
		"payment_requests", "bot_settings", "link_shorteners",
		"admin_users", "users",
	} {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func createTestUser(t *testing.T, db *gorm.DB, userID int64) *models.User {
	user := models.User{
		UserID:     userID,
		IsActive:   true,
		Credits:    decimal.Zero,
		LastActive: time.Now().UTC(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %d: %v", userID, err)
	}
	return &user
}
