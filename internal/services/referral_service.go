package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// ReferralService applies the two-sided referral bonus. A user can refer
// any number of people but can be referred at most once, ever.
type ReferralService struct {
	db       *gorm.DB
	log      *logrus.Logger
	ledger   *LedgerService
	settings *SettingsService
}

func NewReferralService(db *gorm.DB, log *logrus.Logger, ledger *LedgerService, settings *SettingsService) *ReferralService {
	return &ReferralService{db: db, log: log, ledger: ledger, settings: settings}
}

// ReferralResult describes a successfully processed referral.
type ReferralResult struct {
	ReferrerID    int64
	ReferrerBonus decimal.Decimal
	ReferredBonus decimal.Decimal
}

// CodeFor returns the deterministic referral code for a user.
func (s *ReferralService) CodeFor(userID int64) string {
	return fmt.Sprintf("ref_%d", userID)
}

// LinkFor returns the shareable deep link for a user's referral code.
func (s *ReferralService) LinkFor(userID int64, botUsername string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, s.CodeFor(userID))
}

// parseCode extracts the referrer id out of a "ref_<id>" code.
func parseCode(code string) (int64, error) {
	if !strings.HasPrefix(code, "ref_") {
		return 0, ErrInvalidCode
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(code, "ref_"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidCode
	}
	return id, nil
}

// Process validates the code and credits both sides. The referral record is
// written only after both credits succeed, so a failed run can be retried
// safely; if the second credit fails after the first landed, the stray
// credit is left for operator reconciliation rather than hidden.
// Eligibility windows (e.g. "new users only") are the caller's concern.
func (s *ReferralService) Process(code string, newUserID int64) (*ReferralResult, error) {
	referrerID, err := parseCode(code)
	if err != nil {
		return nil, err
	}

	if referrerID == newUserID {
		return nil, ErrSelfReferral
	}

	var referrer models.User
	err = s.db.Where("user_id = ? AND is_active = ? AND is_banned = ?", referrerID, true, false).
		First(&referrer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var existing models.ReferralRecord
	err = s.db.Where("referred_id = ?", newUserID).First(&existing).Error
	if err == nil {
		return nil, ErrAlreadyReferred
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	referrerBonus := s.settings.Get(models.SettingReferrerBonus, decimal.NewFromInt(20))
	referredBonus := s.settings.Get(models.SettingReferredBonus, decimal.NewFromInt(15))

	if _, err := s.ledger.Apply(referrerID, referrerBonus, models.TxTypeReferral, models.SourceReferral,
		fmt.Sprintf("Referral bonus for referring user %d", newUserID), nil); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Apply(newUserID, referredBonus, models.TxTypeReferralWelcome, models.SourceReferral,
		fmt.Sprintf("Welcome bonus for using referral code %s", code), nil); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"referrer_id": referrerID,
			"referred_id": newUserID,
		}).Error("referred-side credit failed after referrer credit; record not written, reconcile referrer credit")
		return nil, err
	}

	record := models.ReferralRecord{
		ReferrerID:    referrerID,
		ReferredID:    newUserID,
		ReferralCode:  code,
		CreditsEarned: referrerBonus,
		IsClaimed:     true,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"referrer_id": referrerID,
		"referred_id": newUserID,
	}).Info("referral processed")

	return &ReferralResult{
		ReferrerID:    referrerID,
		ReferrerBonus: referrerBonus,
		ReferredBonus: referredBonus,
	}, nil
}

// Stats summarizes a user's referral activity.
type ReferralStats struct {
	Code                 string                  `json:"code"`
	SuccessfulReferrals  int64                   `json:"successful_referrals"`
	TotalReferralCredits decimal.Decimal         `json:"total_referral_credits"`
	Recent               []models.ReferralRecord `json:"recent"`
}

// Stats returns referral statistics for a referrer.
func (s *ReferralService) Stats(userID int64) (*ReferralStats, error) {
	var count int64
	if err := s.db.Model(&models.ReferralRecord{}).
		Where("referrer_id = ? AND is_claimed = ?", userID, true).
		Count(&count).Error; err != nil {
		return nil, err
	}

	var total decimal.Decimal
	row := s.db.Model(&models.ReferralRecord{}).
		Where("referrer_id = ? AND is_claimed = ?", userID, true).
		Select("COALESCE(SUM(credits_earned), 0)").Row()
	if err := row.Scan(&total); err != nil {
		total = decimal.Zero
	}

	var recent []models.ReferralRecord
	if err := s.db.Where("referrer_id = ? AND is_claimed = ?", userID, true).
		Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		return nil, err
	}

	return &ReferralStats{
		Code:                 s.CodeFor(userID),
		SuccessfulReferrals:  count,
		TotalReferralCredits: total,
		Recent:               recent,
	}, nil
}
