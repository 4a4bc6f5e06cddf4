package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

const maxTTSTextLength = 3000

// Synthesizer is the external speech-synthesis collaborator. The service
// only cares whether synthesis succeeded: credits are debited strictly
// after a successful call, never before.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Voice catalog exposed to the transport layer.
var voiceCatalog = map[string]string{
	"male1":   "Deep Male Voice (Hindi)",
	"male2":   "Professional Male Voice (English)",
	"male3":   "Warm Male Voice (Hindi)",
	"female1": "Sweet Female Voice (Hindi)",
	"female2": "Clear Female Voice (English)",
	"female3": "Soft Female Voice (Hindi)",
}

// TTSService runs the spend flow: price the text, check the balance, call
// the synthesizer, and only then debit through the ledger.
type TTSService struct {
	db       *gorm.DB
	log      *logrus.Logger
	ledger   *LedgerService
	settings *SettingsService
	synth    Synthesizer
}

func NewTTSService(db *gorm.DB, log *logrus.Logger, ledger *LedgerService, settings *SettingsService, synth Synthesizer) *TTSService {
	return &TTSService{db: db, log: log, ledger: ledger, settings: settings, synth: synth}
}

// SpeakResult carries the synthesized audio and the cost that was debited.
type SpeakResult struct {
	Audio      []byte
	WordCount  int
	Cost       decimal.Decimal
	NewBalance decimal.Decimal
}

// Quote returns the word count and cost for a text without spending.
func (s *TTSService) Quote(text string) (int, decimal.Decimal) {
	words := len(strings.Fields(text))
	charge := s.settings.Get(models.SettingTTSCharge, decimal.NewFromFloat(0.05))
	return words, charge.Mul(decimal.NewFromInt(int64(words)))
}

// Speak synthesizes text for a user and debits the cost. The balance check
// happens up front; the debit happens only after synthesis succeeds, so a
// failed synthesis never costs anything.
func (s *TTSService) Speak(ctx context.Context, userID int64, text, voice string) (*SpeakResult, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxTTSTextLength {
		return nil, ErrInvalidInput
	}
	if _, ok := voiceCatalog[voice]; !ok {
		voice = "male1"
	}

	words, cost := s.Quote(text)

	balance, err := s.ledger.GetBalance(userID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(cost) {
		return nil, ErrInsufficientCredits
	}

	audio, err := s.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}

	entry, err := s.ledger.Apply(userID, cost.Neg(), models.TxTypeSpent, models.SourceTTSUsage,
		fmt.Sprintf("TTS generation (%d words)", words), nil)
	if err != nil {
		return nil, err
	}

	request := models.TTSRequest{
		UserID:      userID,
		Text:        text,
		Voice:       voice,
		WordCount:   words,
		CreditsUsed: cost,
	}
	if err := s.db.Create(&request).Error; err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to record tts request")
	}

	return &SpeakResult{
		Audio:      audio,
		WordCount:  words,
		Cost:       cost,
		NewBalance: entry.BalanceAfter,
	}, nil
}

// Voices returns the selectable voice catalog.
func (s *TTSService) Voices() map[string]string {
	out := make(map[string]string, len(voiceCatalog))
	for k, v := range voiceCatalog {
		out[k] = v
	}
	return out
}
