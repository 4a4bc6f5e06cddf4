package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// AdminService exposes the discrete admin actions. It has no ledger logic
// of its own; credit mutations go through the ledger service.
type AdminService struct {
	db     *gorm.DB
	log    *logrus.Logger
	ledger *LedgerService
}

func NewAdminService(db *gorm.DB, log *logrus.Logger, ledger *LedgerService) *AdminService {
	return &AdminService{db: db, log: log, ledger: ledger}
}

// GiveCredit credits a single user from the admin surface.
func (s *AdminService) GiveCredit(userID int64, amount decimal.Decimal, note string) (*models.CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidInput
	}
	if note == "" {
		note = "Credits given by admin"
	}
	return s.ledger.Apply(userID, amount, models.TxTypeAdminGive, models.SourceAdmin, note, nil)
}

// GiveCreditToAll credits every registered user. Each user gets their own
// ledger entry so every balance still equals its transaction sum; a
// per-user failure is logged and skipped rather than aborting the batch.
func (s *AdminService) GiveCreditToAll(amount decimal.Decimal) (int, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidInput
	}

	var ids []int64
	if err := s.db.Model(&models.User{}).Pluck("user_id", &ids).Error; err != nil {
		return 0, err
	}

	credited := 0
	for _, id := range ids {
		if _, err := s.ledger.Apply(id, amount, models.TxTypeAdminGive, models.SourceAdmin, "Credits given to all users", nil); err != nil {
			s.log.WithError(err).WithField("user_id", id).Error("give-all credit failed for user")
			continue
		}
		credited++
	}

	s.log.WithFields(logrus.Fields{
		"credited": credited,
		"amount":   amount.String(),
	}).Info("bulk credit applied")

	return credited, nil
}

// SetBanned bans or unbans a user.
func (s *AdminService) SetBanned(userID int64, banned bool) error {
	result := s.db.Model(&models.User{}).Where("user_id = ?", userID).Update("is_banned", banned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RotateShortener deactivates any existing provider and installs a new one.
func (s *AdminService) RotateShortener(domain, apiKey string) error {
	if domain == "" || apiKey == "" {
		return ErrInvalidInput
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Shortener{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}

		var existing models.Shortener
		err := tx.Where("domain = ?", domain).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Updates(map[string]interface{}{
				"api_key":   apiKey,
				"is_active": true,
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		provider := models.Shortener{Domain: domain, APIKey: apiKey, IsActive: true}
		return tx.Create(&provider).Error
	})
}

// Authenticate checks dashboard credentials and returns the admin user.
func (s *AdminService) Authenticate(username, password string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &admin, nil
}

// EnsureAdmin creates an admin account if the username is free. Used at
// startup to bootstrap the first dashboard login from the environment.
func (s *AdminService) EnsureAdmin(username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var existing models.AdminUser
	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := models.AdminUser{Username: username, PasswordHash: string(hash)}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	s.log.WithField("username", username).Info("bootstrapped admin user")
	return nil
}
