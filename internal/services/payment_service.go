package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// PaymentService handles manually verified payments. Requests are created
// pending and move exactly once to confirmed or cancelled; the status flip
// is a check-and-set inside the same transaction as the ledger credit, so a
// duplicate admin tap can never double-credit.
type PaymentService struct {
	db       *gorm.DB
	log      *logrus.Logger
	ledger   *LedgerService
	settings *SettingsService
}

func NewPaymentService(db *gorm.DB, log *logrus.Logger, ledger *LedgerService, settings *SettingsService) *PaymentService {
	return &PaymentService{db: db, log: log, ledger: ledger, settings: settings}
}

// CreateRequest records a pending payment. No ledger effect.
func (s *PaymentService) CreateRequest(userID int64, amount decimal.Decimal, userTxID string) (*models.PaymentRequest, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidInput
	}
	if userTxID == "" {
		return nil, ErrInvalidInput
	}

	minAmount := s.settings.Get(models.SettingMinPayment, decimal.NewFromInt(10))
	maxAmount := s.settings.Get(models.SettingMaxPayment, decimal.NewFromInt(100))
	if amount.LessThan(minAmount) || amount.GreaterThan(maxAmount) {
		return nil, ErrInvalidInput
	}

	rate := s.settings.Get(models.SettingPaymentRate, decimal.NewFromInt(10))
	request := models.PaymentRequest{
		UserID:        userID,
		Amount:        amount,
		CreditsToAdd:  amount.Mul(rate),
		TransactionID: userTxID,
		Status:        models.PaymentStatusPending,
	}

	if err := s.db.Create(&request).Error; err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": request.ID,
		"user_id":    userID,
		"amount":     amount.String(),
	}).Info("payment request created")

	return &request, nil
}

// Confirm moves a pending request to confirmed and credits the user. A
// request already in a terminal state returns ErrAlreadyProcessed with no
// ledger mutation.
func (s *PaymentService) Confirm(paymentID uint) (*models.PaymentRequest, error) {
	return s.finish(paymentID, models.PaymentStatusConfirmed)
}

// Cancel moves a pending request to cancelled. No ledger effect, ever.
func (s *PaymentService) Cancel(paymentID uint) (*models.PaymentRequest, error) {
	return s.finish(paymentID, models.PaymentStatusCancelled)
}

func (s *PaymentService) finish(paymentID uint, status string) (*models.PaymentRequest, error) {
	var payment models.PaymentRequest
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		// Only the first confirm/cancel wins the pending row.
		result := tx.Model(&models.PaymentRequest{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":      status,
				"verified_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		if status == models.PaymentStatusConfirmed {
			reference := fmt.Sprintf("payment:%d", paymentID)
			_, txErr := s.ledger.ApplyTx(tx, payment.UserID, payment.CreditsToAdd,
				models.TxTypePurchase, models.SourcePayment,
				fmt.Sprintf("Payment confirmed - %s", payment.Amount), &reference)
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"status":     status,
	}).Info("payment request finalized")

	if err := s.db.First(&payment, paymentID).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// GrantPatienceBonus credits the waiting bonus promised when a request is
// submitted. Guarded by a check-and-set on the request so it lands at most
// once per payment request.
func (s *PaymentService) GrantPatienceBonus(paymentID uint) (*models.CreditTransaction, error) {
	var payment models.PaymentRequest
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	bonus := s.settings.Get(models.SettingPatienceBonus, decimal.NewFromInt(10))
	if !bonus.IsPositive() {
		return nil, nil
	}

	var entry *models.CreditTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.PaymentRequest{}).
			Where("id = ? AND bonus_given = ?", paymentID, false).
			Update("bonus_given", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		reference := fmt.Sprintf("payment:%d", paymentID)
		var txErr error
		entry, txErr = s.ledger.ApplyTx(tx, payment.UserID, bonus,
			models.TxTypeBonus, models.SourceBonus, "Patience bonus for payment delay", &reference)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns a payment request by id.
func (s *PaymentService) Get(paymentID uint) (*models.PaymentRequest, error) {
	var payment models.PaymentRequest
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// ListPending returns pending requests, oldest first.
func (s *PaymentService) ListPending() ([]models.PaymentRequest, error) {
	var pending []models.PaymentRequest
	if err := s.db.Where("status = ?", models.PaymentStatusPending).
		Order("created_at").Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}
