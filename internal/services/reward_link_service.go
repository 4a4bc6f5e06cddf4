package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// URLShortener is the external shortening collaborator. It is called before
// any database write and must be treated as unreliable.
type URLShortener interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// RewardLinkService manages the shared pool of single-use-per-user reward
// links. A link is assigned to many users over its lifetime; each user earns
// the claim credit for a given link at most once.
type RewardLinkService struct {
	db          *gorm.DB
	log         *logrus.Logger
	ledger      *LedgerService
	settings    *SettingsService
	botUsername string

	// newShortener builds a client for the currently configured provider;
	// injected so tests can substitute a fake.
	newShortener func(domain, apiKey string) URLShortener
}

func NewRewardLinkService(db *gorm.DB, log *logrus.Logger, ledger *LedgerService, settings *SettingsService, botUsername string, newShortener func(domain, apiKey string) URLShortener) *RewardLinkService {
	return &RewardLinkService{
		db:           db,
		log:          log,
		ledger:       ledger,
		settings:     settings,
		botUsername:  botUsername,
		newShortener: newShortener,
	}
}

// RequestResult is what the transport layer relays to the user.
type RequestResult struct {
	URL     string
	Minted  bool
	Message string
}

// RequestLink hands the user an active link they have not seen yet, minting
// a new one through the shortener when the pool is exhausted for them. The
// external call happens strictly before any row is written.
func (s *RewardLinkService) RequestLink(ctx context.Context, userID int64) (*RequestResult, error) {
	timeout := s.settings.Get(models.SettingLinkTimeoutMins, decimal.NewFromInt(10)).IntPart()
	reward := s.settings.Get(models.SettingEarnCredit, decimal.NewFromInt(10))

	// Reuse: any active link with no assignment row for this user.
	var link models.RewardLink
	err := s.db.Where("status = ?", models.LinkStatusActive).
		Where("id NOT IN (?)", s.db.Model(&models.LinkAssignment{}).
			Select("link_id").Where("user_id = ?", userID)).
		First(&link).Error
	if err == nil {
		if err := s.assign(userID, link.ID); err != nil {
			return nil, err
		}
		return &RequestResult{
			URL:     link.URL,
			Message: fmt.Sprintf("Click this link to earn %s free credits! (Valid for %d minutes)", reward, timeout),
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Mint a new link. Shortening happens outside any lock or transaction.
	payload, err := generatePayload()
	if err != nil {
		return nil, err
	}
	longURL := fmt.Sprintf("https://t.me/%s?start=credit_%s", s.botUsername, payload)

	client, err := s.activeShortener()
	if err != nil {
		return nil, err
	}

	shortURL, err := client.Shorten(ctx, longURL)
	if err != nil || shortURL == longURL {
		s.log.WithError(err).Warn("shortening failed, no link minted")
		return nil, ErrShortenerUnavailable
	}

	expiresAt := time.Now().UTC().Add(time.Duration(timeout) * time.Minute)
	link = models.RewardLink{
		URL:       shortURL,
		Payload:   payload,
		Status:    models.LinkStatusActive,
		ExpiresAt: &expiresAt,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		assignment := models.LinkAssignment{
			UserID: userID,
			LinkID: link.ID,
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"link_id": link.ID,
	}).Info("minted new reward link")

	return &RequestResult{
		URL:     shortURL,
		Minted:  true,
		Message: fmt.Sprintf("New link created! Click to earn %s free credits! (Valid for %d minutes)", reward, timeout),
	}, nil
}

func (s *RewardLinkService) assign(userID int64, linkID uint) error {
	assignment := models.LinkAssignment{
		UserID: userID,
		LinkID: linkID,
	}
	return s.db.Create(&assignment).Error
}

func (s *RewardLinkService) activeShortener() (URLShortener, error) {
	var provider models.Shortener
	if err := s.db.Where("is_active = ?", true).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShortenerUnavailable
		}
		return nil, err
	}
	return s.newShortener(provider.Domain, provider.APIKey), nil
}

// ClaimResult reports a successful claim.
type ClaimResult struct {
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
}

// Claim credits the user for clicking their assigned link. The credit_given
// flip and the ledger credit commit atomically; a second claim of the same
// assignment returns ErrAlreadyClaimed and touches nothing.
func (s *RewardLinkService) Claim(userID int64, payload string) (*ClaimResult, error) {
	var link models.RewardLink
	err := s.db.Where("payload = ? AND status = ?", payload, models.LinkStatusActive).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Expiry is judged by time, whether or not the sweep flipped the flag yet.
	if link.ExpiresAt != nil && link.ExpiresAt.Before(time.Now().UTC()) {
		return nil, ErrLinkExpired
	}

	var assignment models.LinkAssignment
	err = s.db.Where("user_id = ? AND link_id = ?", userID, link.ID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if assignment.CreditGiven {
		return nil, ErrAlreadyClaimed
	}

	reward := s.settings.Get(models.SettingEarnCredit, decimal.NewFromInt(10))
	reference := link.Payload

	var entry *models.CreditTransaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		// Atomic check-and-set: only the first claimer flips the flag.
		result := tx.Model(&models.LinkAssignment{}).
			Where("id = ? AND credit_given = ?", assignment.ID, false).
			Updates(map[string]interface{}{
				"credit_given": true,
				"credited_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}

		var txErr error
		entry, txErr = s.ledger.ApplyTx(tx, userID, reward, models.TxTypeEarned, models.SourceFreeLink, "Free credit claimed via link", &reference)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return &ClaimResult{Amount: reward, NewBalance: entry.BalanceAfter}, nil
}

// ExpireStale flips active links past their deadline to expired. Claims do
// not depend on this; it keeps the pool query cheap and the audit trail
// honest.
func (s *RewardLinkService) ExpireStale() (int64, error) {
	result := s.db.Model(&models.RewardLink{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.LinkStatusActive, time.Now().UTC()).
		Update("status", models.LinkStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		s.log.WithField("expired", result.RowsAffected).Info("expired stale reward links")
	}
	return result.RowsAffected, nil
}

// Revoke deactivates a link administratively. The row stays for the audit
// trail.
func (s *RewardLinkService) Revoke(linkID uint) error {
	result := s.db.Model(&models.RewardLink{}).
		Where("id = ? AND status = ?", linkID, models.LinkStatusActive).
		Update("status", models.LinkStatusInactive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// generatePayload builds a short URL-safe claim token.
func generatePayload() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate payload: %w", err)
	}
	return base58.Encode(b), nil
}
