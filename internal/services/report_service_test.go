package services

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/models"
)

func newReportFixture(t *testing.T) (*ReportService, *LedgerService) {
	db := setupTestDB(t)
	log := testLogger()
	ledger := NewLedgerService(db, log)
	svc := NewReportService(db, log, t.TempDir())
	createTestUser(t, db, 800)
	return svc, ledger
}

func TestTodayReport(t *testing.T) {
	svc, ledger := newReportFixture(t)

	if _, err := ledger.Apply(800, decimal.NewFromInt(10), models.TxTypeWelcome, models.SourceWelcomeBonus, "w", nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, err := ledger.Apply(800, decimal.NewFromFloat(-2.5), models.TxTypeSpent, models.SourceTTSUsage, "s", nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	report, err := svc.Today()
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if report.Transactions != 2 {
		t.Errorf("expected 2 transactions, got %d", report.Transactions)
	}
	if !report.TotalEarned.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected earned 10, got %s", report.TotalEarned)
	}
	if !report.TotalSpent.Equal(decimal.NewFromFloat(2.5)) {
		t.Errorf("expected spent 2.5, got %s", report.TotalSpent)
	}
	if report.ActiveUsers != 1 {
		t.Errorf("expected 1 active user, got %d", report.ActiveUsers)
	}
	if len(report.BySource) != 2 {
		t.Errorf("expected 2 source buckets, got %d", len(report.BySource))
	}
}

func TestYesterdayExcludesToday(t *testing.T) {
	svc, ledger := newReportFixture(t)

	if _, err := ledger.Apply(800, decimal.NewFromInt(10), models.TxTypeWelcome, models.SourceWelcomeBonus, "w", nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	report, err := svc.Yesterday()
	if err != nil {
		t.Fatalf("Yesterday failed: %v", err)
	}
	if report.Transactions != 0 {
		t.Errorf("expected 0 transactions yesterday, got %d", report.Transactions)
	}
}

func TestFindPaymentByTransactionID(t *testing.T) {
	svc, _ := newReportFixture(t)

	payment := models.PaymentRequest{
		UserID:        800,
		Amount:        decimal.NewFromInt(10),
		CreditsToAdd:  decimal.NewFromInt(100),
		TransactionID: "UPI-FIND-ME",
		Status:        models.PaymentStatusPending,
	}
	if err := svc.db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	matches, err := svc.FindPaymentByTransactionID("UPI-FIND-ME")
	if err != nil {
		t.Fatalf("FindPaymentByTransactionID failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	if _, err := svc.FindPaymentByTransactionID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.FindPaymentByTransactionID(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExportTransactionsCSV(t *testing.T) {
	svc, ledger := newReportFixture(t)

	if _, err := ledger.Apply(800, decimal.NewFromInt(10), models.TxTypeWelcome, models.SourceWelcomeBonus, "w", nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	now := time.Now().UTC()
	path, err := svc.ExportTransactionsCSV(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ExportTransactionsCSV failed: %v", err)
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "transaction_id,user_id,amount") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "800") {
		t.Errorf("expected row for user 800, got %s", lines[1])
	}
}

func TestCleanupExports(t *testing.T) {
	svc, ledger := newReportFixture(t)

	if _, err := ledger.Apply(800, decimal.NewFromInt(1), models.TxTypeBonus, models.SourceBonus, "b", nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	now := time.Now().UTC()
	path, err := svc.ExportTransactionsCSV(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ExportTransactionsCSV failed: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("failed to age export: %v", err)
	}

	if err := svc.CleanupExports(24 * time.Hour); err != nil {
		t.Fatalf("CleanupExports failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected stale export to be removed")
	}
}

func TestVerifyBalances(t *testing.T) {
	svc, ledger := newReportFixture(t)

	if _, err := ledger.Apply(800, decimal.NewFromInt(10), models.TxTypeWelcome, models.SourceWelcomeBonus, "w", nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	drifts, err := svc.VerifyBalances()
	if err != nil {
		t.Fatalf("VerifyBalances failed: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("expected clean ledger, got %d drifts", len(drifts))
	}

	// Corrupt the cached balance behind the ledger's back.
	svc.db.Model(&models.User{}).Where("user_id = ?", 800).Update("credits", decimal.NewFromInt(999))

	drifts, err = svc.VerifyBalances()
	if err != nil {
		t.Fatalf("VerifyBalances failed: %v", err)
	}
	if len(drifts) != 1 {
		t.Fatalf("expected 1 drift, got %d", len(drifts))
	}
	if drifts[0].UserID != 800 {
		t.Errorf("expected drift for user 800, got %d", drifts[0].UserID)
	}
	if !drifts[0].LedgerBalance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected ledger balance 10, got %s", drifts[0].LedgerBalance)
	}
}
