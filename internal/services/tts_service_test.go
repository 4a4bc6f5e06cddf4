package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/models"
)

type fakeSynth struct {
	fail  bool
	calls int
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("synth down")
	}
	return []byte("audio"), nil
}

func newTTSFixture(t *testing.T, synth Synthesizer) (*TTSService, *LedgerService) {
	db := setupTestDB(t)
	log := testLogger()
	ledger := NewLedgerService(db, log)
	settings := NewSettingsService(db, log)
	svc := NewTTSService(db, log, ledger, settings, synth)

	createTestUser(t, db, 600)
	if _, err := ledger.Apply(600, decimal.NewFromInt(10), models.TxTypeWelcome, models.SourceWelcomeBonus, "seed", nil); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
	return svc, ledger
}

func TestQuote(t *testing.T) {
	svc, _ := newTTSFixture(t, &fakeSynth{})

	words, cost := svc.Quote("hello world from the bot")
	if words != 5 {
		t.Errorf("expected 5 words, got %d", words)
	}
	if !cost.Equal(decimal.NewFromFloat(0.25)) {
		t.Errorf("expected cost 0.25, got %s", cost)
	}
}

func TestSpeakDebitsAfterSynthesis(t *testing.T) {
	synth := &fakeSynth{}
	svc, ledger := newTTSFixture(t, synth)

	result, err := svc.Speak(context.Background(), 600, "one two three four", "female2")
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}
	if result.WordCount != 4 {
		t.Errorf("expected 4 words, got %d", result.WordCount)
	}
	if !result.Cost.Equal(decimal.NewFromFloat(0.2)) {
		t.Errorf("expected cost 0.2, got %s", result.Cost)
	}
	if len(result.Audio) == 0 {
		t.Error("expected audio bytes")
	}

	balance, _ := ledger.GetBalance(600)
	if !balance.Equal(decimal.NewFromFloat(9.8)) {
		t.Errorf("expected balance 9.8, got %s", balance)
	}

	var request models.TTSRequest
	if err := svc.db.Where("user_id = ?", 600).First(&request).Error; err != nil {
		t.Fatalf("expected tts request row: %v", err)
	}
	if request.Voice != "female2" {
		t.Errorf("expected voice female2, got %s", request.Voice)
	}
}

func TestSpeakInsufficientCredits(t *testing.T) {
	synth := &fakeSynth{}
	svc, _ := newTTSFixture(t, synth)

	// 300 words at 0.05 is 15, above the seeded balance of 10.
	long := ""
	for i := 0; i < 300; i++ {
		long += "word "
	}

	_, err := svc.Speak(context.Background(), 600, long, "male1")
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if synth.calls != 0 {
		t.Errorf("synthesizer must not be called without funds, got %d calls", synth.calls)
	}
}

func TestSpeakSynthesisFailureCostsNothing(t *testing.T) {
	synth := &fakeSynth{fail: true}
	svc, ledger := newTTSFixture(t, synth)

	_, err := svc.Speak(context.Background(), 600, "some words here", "male1")
	if err == nil {
		t.Fatal("expected synthesis error")
	}

	balance, _ := ledger.GetBalance(600)
	if !balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected balance untouched at 10, got %s", balance)
	}

	var count int64
	svc.db.Model(&models.CreditTransaction{}).
		Where("user_id = ? AND source = ?", 600, models.SourceTTSUsage).Count(&count)
	if count != 0 {
		t.Errorf("expected no spend entries after failed synthesis, got %d", count)
	}
}

func TestSpeakRejectsBadInput(t *testing.T) {
	svc, _ := newTTSFixture(t, &fakeSynth{})

	if _, err := svc.Speak(context.Background(), 600, "   ", "male1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank text: expected ErrInvalidInput, got %v", err)
	}

	long := make([]byte, maxTTSTextLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := svc.Speak(context.Background(), 600, string(long), "male1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("oversized text: expected ErrInvalidInput, got %v", err)
	}
}

func TestSpeakUnknownVoiceFallsBack(t *testing.T) {
	synth := &fakeSynth{}
	svc, _ := newTTSFixture(t, synth)

	if _, err := svc.Speak(context.Background(), 600, "fallback voice test", "robot9"); err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	var request models.TTSRequest
	svc.db.Where("user_id = ?", 600).First(&request)
	if request.Voice != "male1" {
		t.Errorf("expected fallback voice male1, got %s", request.Voice)
	}
}
