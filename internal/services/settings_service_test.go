package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/models"
)

func TestSeedDefaultsNeverOverwrites(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(db, testLogger())

	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults failed: %v", err)
	}

	got := svc.Get(models.SettingWelcomeCredit, decimal.Zero)
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected seeded welcome credit 10, got %s", got)
	}

	if err := svc.Update(models.SettingWelcomeCredit, decimal.NewFromInt(25), ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Re-seeding keeps the operator's value.
	if err := svc.SeedDefaults(); err != nil {
		t.Fatalf("second SeedDefaults failed: %v", err)
	}
	got = svc.Get(models.SettingWelcomeCredit, decimal.Zero)
	if !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected updated value 25 to survive reseed, got %s", got)
	}
}

func TestGetFallsBackToDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(db, testLogger())

	got := svc.Get("no_such_setting", decimal.NewFromInt(7))
	if !got.Equal(decimal.NewFromInt(7)) {
		t.Errorf("expected fallback 7, got %s", got)
	}
}

func TestUpdateCreatesMissingSetting(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSettingsService(db, testLogger())

	if err := svc.Update("custom_rate", decimal.NewFromFloat(1.5), "custom"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got := svc.Get("custom_rate", decimal.Zero)
	if !got.Equal(decimal.NewFromFloat(1.5)) {
		t.Errorf("expected 1.5, got %s", got)
	}
}
