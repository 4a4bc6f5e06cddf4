package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// UserService handles onboarding and account state. User creation lives
// here, not in the ledger: a brand-new account starts at zero credits and
// the welcome bonus arrives as a regular ledger entry, so the cached balance
// always equals the transaction fold from the very first row.
type UserService struct {
	db       *gorm.DB
	log      *logrus.Logger
	ledger   *LedgerService
	settings *SettingsService
}

func NewUserService(db *gorm.DB, log *logrus.Logger, ledger *LedgerService, settings *SettingsService) *UserService {
	return &UserService{db: db, log: log, ledger: ledger, settings: settings}
}

// GetOrCreate looks up a user by platform id, creating the account and
// applying the welcome bonus on first contact. The returned flag reports
// whether this was a first contact.
func (s *UserService) GetOrCreate(userID int64, username, firstName, lastName string) (*models.User, bool, error) {
	var user models.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{
		UserID:     userID,
		IsActive:   true,
		Credits:    decimal.Zero,
		LastActive: time.Now().UTC(),
	}
	if username != "" {
		user.Username = &username
	}
	if firstName != "" {
		user.FirstName = &firstName
	}
	if lastName != "" {
		user.LastName = &lastName
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, false, err
	}

	welcome := s.settings.Get(models.SettingWelcomeCredit, decimal.NewFromInt(10))
	if welcome.IsPositive() {
		if _, err := s.ledger.Apply(userID, welcome, models.TxTypeWelcome, models.SourceWelcomeBonus, "Welcome credits for new user", nil); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Error("failed to apply welcome bonus")
			return nil, false, err
		}
	}

	s.log.WithField("user_id", userID).Info("created new user")

	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// GetByID retrieves a user by platform id
func (s *UserService) GetByID(userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Touch updates profile fields and the last-active timestamp.
func (s *UserService) Touch(userID int64, username, firstName, lastName string) error {
	updates := map[string]interface{}{
		"last_active": time.Now().UTC(),
	}
	if username != "" {
		updates["username"] = username
	}
	if firstName != "" {
		updates["first_name"] = firstName
	}
	if lastName != "" {
		updates["last_name"] = lastName
	}

	result := s.db.Model(&models.User{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CheckUsable verifies a user exists, is active and is not banned.
func (s *UserService) CheckUsable(userID int64) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *UserService) CountUsers() (int64, error) {
	var count int64
	err := s.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
