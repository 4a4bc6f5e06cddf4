package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// LedgerService is the single writer for credit balances. Every balance
// mutation goes through Apply (or ApplyTx for callers that need the credit
// atomic with their own status transition): it stamps balance_before and
// balance_after on an immutable transaction row, updates the cached
// User.Credits and the per-user summary, all inside one database transaction.
//
// The mutex serializes ledger writes process-wide so the balance chain for a
// user can never interleave. A single store and a single process are assumed.
type LedgerService struct {
	db  *gorm.DB
	log *logrus.Logger
	mu  sync.Mutex
}

func NewLedgerService(db *gorm.DB, log *logrus.Logger) *LedgerService {
	return &LedgerService{db: db, log: log}
}

// Apply records a balance delta for an existing user. Positive amounts
// credit, negative amounts debit. No balance floor is enforced here; callers
// that must not overdraw check the balance before debiting.
func (s *LedgerService) Apply(userID int64, amount decimal.Decimal, txType, source, description string, referenceID *string) (*models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry *models.CreditTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = s.applyLocked(tx, userID, amount, txType, source, description, referenceID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApplyTx is Apply for callers that already hold a database transaction, so
// a claim flag flip and the credit it triggers commit or roll back together.
// The caller must not hold the ledger mutex.
func (s *LedgerService) ApplyTx(tx *gorm.DB, userID int64, amount decimal.Decimal, txType, source, description string, referenceID *string) (*models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(tx, userID, amount, txType, source, description, referenceID)
}

func (s *LedgerService) applyLocked(tx *gorm.DB, userID int64, amount decimal.Decimal, txType, source, description string, referenceID *string) (*models.CreditTransaction, error) {
	var user models.User
	if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ledgerErr("load user", err)
	}

	balanceBefore := user.Credits
	balanceAfter := balanceBefore.Add(amount)

	txID, err := generateTransactionID()
	if err != nil {
		return nil, ledgerErr("generate id", err)
	}

	entry := &models.CreditTransaction{
		UserID:        userID,
		Amount:        amount,
		Type:          txType,
		Source:        source,
		Description:   description,
		TransactionID: txID,
		ReferenceID:   referenceID,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}

	// The unique index on transaction_id is the authority on collisions: a
	// duplicate fails the whole transaction instead of overwriting anything.
	if err := tx.Create(entry).Error; err != nil {
		return nil, ledgerErr("insert transaction", err)
	}

	if err := tx.Model(&models.User{}).Where("user_id = ?", userID).
		Update("credits", balanceAfter).Error; err != nil {
		return nil, ledgerErr("update balance", err)
	}

	if err := s.updateSummary(tx, userID, amount, source, balanceAfter); err != nil {
		return nil, ledgerErr("update summary", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        userID,
		"amount":         amount.String(),
		"type":           txType,
		"source":         source,
		"transaction_id": txID,
	}).Info("ledger entry applied")

	return entry, nil
}

// updateSummary maintains the rolling per-user aggregates. The lookup and
// create are an explicit two-step inside the caller's transaction, guarded
// by the ledger mutex, so no duplicate summary row can race into existence.
func (s *LedgerService) updateSummary(tx *gorm.DB, userID int64, amount decimal.Decimal, source string, balanceAfter decimal.Decimal) error {
	now := time.Now().UTC()

	var summary models.UserCreditSummary
	err := tx.Where("user_id = ?", userID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		summary = models.UserCreditSummary{
			UserID:           userID,
			FirstTransaction: &now,
		}
		if err := tx.Create(&summary).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	summary.TotalTransactions++
	summary.CurrentBalance = balanceAfter
	summary.LastTransaction = &now
	summary.UpdatedAt = now
	if summary.FirstTransaction == nil {
		summary.FirstTransaction = &now
	}

	if amount.IsPositive() {
		summary.TotalEarned = summary.TotalEarned.Add(amount)
		switch source {
		case models.SourceWelcomeBonus:
			summary.EarnedWelcome = summary.EarnedWelcome.Add(amount)
		case models.SourceReferral:
			summary.EarnedReferral = summary.EarnedReferral.Add(amount)
		case models.SourceFreeLink:
			summary.EarnedLinks = summary.EarnedLinks.Add(amount)
		case models.SourcePayment:
			summary.EarnedPurchase = summary.EarnedPurchase.Add(amount)
		case models.SourceAdmin:
			summary.EarnedAdmin = summary.EarnedAdmin.Add(amount)
		}
	} else {
		spent := amount.Abs()
		summary.TotalSpent = summary.TotalSpent.Add(spent)
		if source == models.SourceTTSUsage {
			summary.SpentTTS = summary.SpentTTS.Add(spent)
		}
	}

	return tx.Save(&summary).Error
}

// GetBalance returns the cached balance for a user.
func (s *LedgerService) GetBalance(userID int64) (decimal.Decimal, error) {
	var user models.User
	if err := s.db.Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, err
	}
	return user.Credits, nil
}

// GetSummary returns the rolling aggregates for a user, if any exist yet.
func (s *LedgerService) GetSummary(userID int64) (*models.UserCreditSummary, error) {
	var summary models.UserCreditSummary
	if err := s.db.Where("user_id = ?", userID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// GetHistory returns the most recent ledger entries for a user.
func (s *LedgerService) GetHistory(userID int64, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var history []models.CreditTransaction
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// generateTransactionID builds a 16-character id: a 12-digit UTC timestamp
// prefix for human traceability plus 4 random digits. Uniqueness is still
// enforced by the store's unique index.
func generateTransactionID() (string, error) {
	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}
	return fmt.Sprintf("%s%04d", time.Now().UTC().Format("060102150405"), suffix.Int64()), nil
}
