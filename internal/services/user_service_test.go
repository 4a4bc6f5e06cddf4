package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/models"
)

func TestGetOrCreateAppliesWelcomeBonus(t *testing.T) {
	db := setupTestDB(t)
	log := testLogger()
	ledger := NewLedgerService(db, log)
	settings := NewSettingsService(db, log)
	users := NewUserService(db, log, ledger, settings)

	user, created, err := users.GetOrCreate(200, "alice", "Alice", "")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !created {
		t.Fatal("expected first contact to create the user")
	}
	if !user.Credits.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected welcome balance 10, got %s", user.Credits)
	}

	var count int64
	db.Model(&models.CreditTransaction{}).Where("user_id = ? AND type = ?", 200, models.TxTypeWelcome).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one welcome transaction, got %d", count)
	}

	// Second contact: no new account, no second bonus.
	user, created, err = users.GetOrCreate(200, "alice", "Alice", "")
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if created {
		t.Error("expected existing user on second contact")
	}
	if !user.Credits.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected balance still 10, got %s", user.Credits)
	}
}

func TestCheckUsable(t *testing.T) {
	db := setupTestDB(t)
	log := testLogger()
	ledger := NewLedgerService(db, log)
	settings := NewSettingsService(db, log)
	users := NewUserService(db, log, ledger, settings)

	createTestUser(t, db, 201)
	if _, err := users.CheckUsable(201); err != nil {
		t.Fatalf("expected usable user, got %v", err)
	}

	db.Model(&models.User{}).Where("user_id = ?", 201).Update("is_banned", true)
	if _, err := users.CheckUsable(201); !errors.Is(err, ErrUserBanned) {
		t.Errorf("expected ErrUserBanned, got %v", err)
	}

	if _, err := users.CheckUsable(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchUnknownUser(t *testing.T) {
	db := setupTestDB(t)
	log := testLogger()
	users := NewUserService(db, log, NewLedgerService(db, log), NewSettingsService(db, log))

	if err := users.Touch(12345, "ghost", "", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
