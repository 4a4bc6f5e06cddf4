package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tts-credit-bot/internal/models"
)

// ReportService answers the read-only reporting questions and produces CSV
// exports of the transaction log.
type ReportService struct {
	db        *gorm.DB
	log       *logrus.Logger
	exportDir string
}

func NewReportService(db *gorm.DB, log *logrus.Logger, exportDir string) *ReportService {
	if exportDir == "" {
		exportDir = os.TempDir()
	}
	return &ReportService{db: db, log: log, exportDir: exportDir}
}

// SourceBreakdown is one aggregation bucket in a period report.
type SourceBreakdown struct {
	Source string          `json:"source"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PeriodReport summarizes ledger activity over a window.
type PeriodReport struct {
	From         time.Time         `json:"from"`
	To           time.Time         `json:"to"`
	Transactions int64             `json:"transactions"`
	TotalEarned  decimal.Decimal   `json:"total_earned"`
	TotalSpent   decimal.Decimal   `json:"total_spent"`
	ActiveUsers  int64             `json:"active_users"`
	NewUsers     int64             `json:"new_users"`
	BySource     []SourceBreakdown `json:"by_source"`
}

// ForRange aggregates ledger activity between from (inclusive) and to
// (exclusive).
func (s *ReportService) ForRange(from, to time.Time) (*PeriodReport, error) {
	report := &PeriodReport{From: from, To: to, TotalEarned: decimal.Zero, TotalSpent: decimal.Zero}

	base := s.db.Model(&models.CreditTransaction{}).
		Where("created_at >= ? AND created_at < ?", from, to)

	if err := base.Session(&gorm.Session{}).Count(&report.Transactions).Error; err != nil {
		return nil, err
	}

	row := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0), COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)").
		Row()
	if err := row.Scan(&report.TotalEarned, &report.TotalSpent); err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Distinct("user_id").Count(&report.ActiveUsers).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.User{}).
		Where("join_date >= ? AND join_date < ?", from, to).
		Count(&report.NewUsers).Error; err != nil {
		return nil, err
	}

	if err := base.Session(&gorm.Session{}).
		Select("source, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Group("source").Order("source").
		Scan(&report.BySource).Error; err != nil {
		return nil, err
	}

	return report, nil
}

// Today reports on the current UTC day so far.
func (s *ReportService) Today() (*PeriodReport, error) {
	start := startOfDay(time.Now().UTC())
	return s.ForRange(start, start.Add(24*time.Hour))
}

// Yesterday reports on the previous UTC day.
func (s *ReportService) Yesterday() (*PeriodReport, error) {
	start := startOfDay(time.Now().UTC()).Add(-24 * time.Hour)
	return s.ForRange(start, start.Add(24*time.Hour))
}

// LastWeek reports on the trailing seven days.
func (s *ReportService) LastWeek() (*PeriodReport, error) {
	now := time.Now().UTC()
	return s.ForRange(now.Add(-7*24*time.Hour), now)
}

// LastMonth reports on the trailing thirty days.
func (s *ReportService) LastMonth() (*PeriodReport, error) {
	now := time.Now().UTC()
	return s.ForRange(now.Add(-30*24*time.Hour), now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FindPaymentByTransactionID looks up payment requests by the user-supplied
// payment reference. More than one request can carry the same reference, so
// all matches are returned, newest first.
func (s *ReportService) FindPaymentByTransactionID(userTxID string) ([]models.PaymentRequest, error) {
	if userTxID == "" {
		return nil, ErrInvalidInput
	}
	var matches []models.PaymentRequest
	if err := s.db.Where("transaction_id = ?", userTxID).
		Order("created_at DESC").Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches, nil
}

// ExportTransactionsCSV writes the transaction log for a window to a CSV file
// and returns its path. The caller is responsible for deleting the file once
// it has been delivered; CleanupExports sweeps leftovers.
func (s *ReportService) ExportTransactionsCSV(from, to time.Time) (string, error) {
	var entries []models.CreditTransaction
	if err := s.db.Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").Find(&entries).Error; err != nil {
		return "", err
	}

	path := filepath.Join(s.exportDir, fmt.Sprintf("transactions_%s.csv", uuid.New().String()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"transaction_id", "user_id", "amount", "type", "source", "description", "balance_before", "balance_after", "created_at"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, e := range entries {
		record := []string{
			e.TransactionID,
			fmt.Sprintf("%d", e.UserID),
			e.Amount.String(),
			e.Type,
			e.Source,
			e.Description,
			e.BalanceBefore.String(),
			e.BalanceAfter.String(),
			e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{
		"path": path,
		"rows": len(entries),
	}).Info("wrote transaction export")

	return path, nil
}

// CleanupExports deletes export files older than maxAge.
func (s *ReportService) CleanupExports(maxAge time.Duration) error {
	pattern := filepath.Join(s.exportDir, "transactions_*.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				s.log.WithError(err).WithField("file", file).Warn("failed to remove stale export")
			}
		}
	}
	return nil
}

// Drift describes a user whose cached summary disagrees with the ledger fold.
type Drift struct {
	UserID        int64           `json:"user_id"`
	CachedBalance decimal.Decimal `json:"cached_balance"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
}

// VerifyBalances recomputes every user's balance from the transaction log and
// reports users whose cached credits disagree. It never repairs anything.
func (s *ReportService) VerifyBalances() ([]Drift, error) {
	var users []models.User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, u := range users {
		var sum decimal.Decimal
		row := s.db.Model(&models.CreditTransaction{}).
			Where("user_id = ?", u.UserID).
			Select("COALESCE(SUM(amount), 0)").Row()
		if err := row.Scan(&sum); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				sum = decimal.Zero
			} else {
				return nil, err
			}
		}
		if !u.Credits.Equal(sum) {
			drifts = append(drifts, Drift{UserID: u.UserID, CachedBalance: u.Credits, LedgerBalance: sum})
		}
	}
	if len(drifts) > 0 {
		s.log.WithField("drifted_users", len(drifts)).Warn("balance drift detected")
	}
	return drifts, nil
}
