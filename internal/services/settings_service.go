package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// SettingsService reads and updates the tunable credit amounts stored in
// bot_settings. Missing settings fall back to the caller-provided default.
type SettingsService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewSettingsService(db *gorm.DB, log *logrus.Logger) *SettingsService {
	return &SettingsService{db: db, log: log}
}

type defaultSetting struct {
	name        string
	value       decimal.Decimal
	description string
}

var defaultSettings = []defaultSetting{
	{models.SettingWelcomeCredit, decimal.NewFromInt(10), "Credits given to new users"},
	{models.SettingTTSCharge, decimal.NewFromFloat(0.05), "Credits charged per word for TTS"},
	{models.SettingEarnCredit, decimal.NewFromInt(10), "Credits earned per reward link claim"},
	{models.SettingReferrerBonus, decimal.NewFromInt(20), "Credits for the referrer per successful referral"},
	{models.SettingReferredBonus, decimal.NewFromInt(15), "Welcome credits for a referred user"},
	{models.SettingPatienceBonus, decimal.NewFromInt(10), "Bonus credits while a payment awaits verification"},
	{models.SettingMinPayment, decimal.NewFromInt(10), "Minimum payment amount in rupees"},
	{models.SettingMaxPayment, decimal.NewFromInt(100), "Maximum payment amount in rupees"},
	{models.SettingPaymentRate, decimal.NewFromInt(10), "Credits per 1 rupee"},
	{models.SettingLinkTimeoutMins, decimal.NewFromInt(10), "Reward link validity in minutes"},
}

// SeedDefaults inserts any missing default settings. Existing values are
// never overwritten.
func (s *SettingsService) SeedDefaults() error {
	created := 0
	for _, def := range defaultSettings {
		var existing models.BotSetting
		err := s.db.Where("name = ?", def.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		setting := models.BotSetting{
			Name:        def.name,
			Value:       def.value,
			Description: def.description,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		s.log.WithField("created", created).Info("seeded default settings")
	}
	return nil
}

// Get returns a setting value, or the default when the row is missing.
func (s *SettingsService) Get(name string, def decimal.Decimal) decimal.Decimal {
	var setting models.BotSetting
	if err := s.db.Where("name = ?", name).First(&setting).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithError(err).WithField("setting", name).Warn("failed to read setting")
		}
		return def
	}
	return setting.Value
}

// Update sets a setting value, creating the row if needed.
func (s *SettingsService) Update(name string, value decimal.Decimal, description string) error {
	var setting models.BotSetting
	err := s.db.Where("name = ?", name).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.BotSetting{Name: name, Value: value, Description: description}
		return s.db.Create(&setting).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"value":      value,
		"updated_at": time.Now().UTC(),
	}
	if description != "" {
		updates["description"] = description
	}
	return s.db.Model(&setting).Updates(updates).Error
}

// List returns all settings.
func (s *SettingsService) List() ([]models.BotSetting, error) {
	var settings []models.BotSetting
	if err := s.db.Order("name").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
