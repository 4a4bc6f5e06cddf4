package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/models"
)

func newAdminFixture(t *testing.T) (*AdminService, *LedgerService) {
	db := setupTestDB(t)
	log := testLogger()
	ledger := NewLedgerService(db, log)
	svc := NewAdminService(db, log, ledger)
	return svc, ledger
}

func TestGiveCredit(t *testing.T) {
	svc, ledger := newAdminFixture(t)
	createTestUser(t, svc.db, 700)

	entry, err := svc.GiveCredit(700, decimal.NewFromInt(50), "promo")
	if err != nil {
		t.Fatalf("GiveCredit failed: %v", err)
	}
	if entry.Source != models.SourceAdmin {
		t.Errorf("expected admin source, got %s", entry.Source)
	}

	balance, _ := ledger.GetBalance(700)
	if !balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected balance 50, got %s", balance)
	}

	if _, err := svc.GiveCredit(700, decimal.NewFromInt(-5), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative amount, got %v", err)
	}
}

func TestGiveCreditToAll(t *testing.T) {
	svc, ledger := newAdminFixture(t)
	for id := int64(701); id <= 703; id++ {
		createTestUser(t, svc.db, id)
	}

	credited, err := svc.GiveCreditToAll(decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("GiveCreditToAll failed: %v", err)
	}
	if credited != 3 {
		t.Errorf("expected 3 users credited, got %d", credited)
	}

	for id := int64(701); id <= 703; id++ {
		balance, _ := ledger.GetBalance(id)
		if !balance.Equal(decimal.NewFromInt(5)) {
			t.Errorf("user %d: expected balance 5, got %s", id, balance)
		}
	}
}

func TestSetBanned(t *testing.T) {
	svc, _ := newAdminFixture(t)
	createTestUser(t, svc.db, 704)

	if err := svc.SetBanned(704, true); err != nil {
		t.Fatalf("SetBanned failed: %v", err)
	}
	var user models.User
	svc.db.Where("user_id = ?", 704).First(&user)
	if !user.IsBanned {
		t.Error("expected user to be banned")
	}

	if err := svc.SetBanned(999, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRotateShortener(t *testing.T) {
	svc, _ := newAdminFixture(t)

	if err := svc.RotateShortener("first.ly", "key1"); err != nil {
		t.Fatalf("RotateShortener failed: %v", err)
	}
	if err := svc.RotateShortener("second.ly", "key2"); err != nil {
		t.Fatalf("second RotateShortener failed: %v", err)
	}

	var active []models.Shortener
	svc.db.Where("is_active = ?", true).Find(&active)
	if len(active) != 1 {
		t.Fatalf("expected exactly one active provider, got %d", len(active))
	}
	if active[0].Domain != "second.ly" {
		t.Errorf("expected second.ly active, got %s", active[0].Domain)
	}
}

func TestEnsureAdminAndAuthenticate(t *testing.T) {
	svc, _ := newAdminFixture(t)

	if err := svc.EnsureAdmin("boss", "hunter22"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	// Idempotent.
	if err := svc.EnsureAdmin("boss", "different"); err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}

	admin, err := svc.Authenticate("boss", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if admin.Username != "boss" {
		t.Errorf("expected username boss, got %s", admin.Username)
	}

	if _, err := svc.Authenticate("boss", "wrong"); err == nil {
		t.Error("expected authentication failure for wrong password")
	}
	if _, err := svc.Authenticate("nobody", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
