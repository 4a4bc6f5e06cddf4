package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tts-credit-bot/internal/models"
)

func newPaymentFixture(t *testing.T) (*PaymentService, *LedgerService) {
	db := setupTestDB(t)
	log := testLogger()
	ledger := NewLedgerService(db, log)
	settings := NewSettingsService(db, log)
	svc := NewPaymentService(db, log, ledger, settings)
	createTestUser(t, db, 500)
	return svc, ledger
}

func TestCreateRequestConversion(t *testing.T) {
	svc, _ := newPaymentFixture(t)

	payment, err := svc.CreateRequest(500, decimal.NewFromInt(50), "UPI123")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Errorf("expected pending status, got %s", payment.Status)
	}
	if !payment.CreditsToAdd.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected 500 credits at rate 10, got %s", payment.CreditsToAdd)
	}
}

func TestCreateRequestBounds(t *testing.T) {
	svc, _ := newPaymentFixture(t)

	cases := []decimal.Decimal{
		decimal.NewFromInt(5),    // below minimum
		decimal.NewFromInt(1000), // above maximum
		decimal.NewFromInt(-10),
		decimal.Zero,
	}
	for _, amount := range cases {
		if _, err := svc.CreateRequest(500, amount, "UPI123"); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("amount %s: expected ErrInvalidInput, got %v", amount, err)
		}
	}

	if _, err := svc.CreateRequest(500, decimal.NewFromInt(50), ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty tx id: expected ErrInvalidInput, got %v", err)
	}
}

func TestConfirmCreditsExactlyOnce(t *testing.T) {
	svc, ledger := newPaymentFixture(t)

	payment, err := svc.CreateRequest(500, decimal.NewFromInt(10), "UPI456")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	confirmed, err := svc.Confirm(payment.ID)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if confirmed.Status != models.PaymentStatusConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}
	if confirmed.VerifiedAt == nil {
		t.Error("expected verified_at to be set")
	}

	balance, _ := ledger.GetBalance(500)
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance 100, got %s", balance)
	}

	// A second confirm is a no-op.
	if _, err := svc.Confirm(payment.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	balance, _ = ledger.GetBalance(500)
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance still 100 after duplicate confirm, got %s", balance)
	}
}

func TestCancelIsTerminal(t *testing.T) {
	svc, ledger := newPaymentFixture(t)

	payment, err := svc.CreateRequest(500, decimal.NewFromInt(10), "UPI789")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	cancelled, err := svc.Cancel(payment.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if cancelled.Status != models.PaymentStatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	balance, _ := ledger.GetBalance(500)
	if !balance.Equal(decimal.Zero) {
		t.Errorf("expected no credit on cancel, got %s", balance)
	}

	// Confirm after cancel must not credit.
	if _, err := svc.Confirm(payment.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	balance, _ = ledger.GetBalance(500)
	if !balance.Equal(decimal.Zero) {
		t.Errorf("expected balance still 0, got %s", balance)
	}
}

func TestPatienceBonusAtMostOnce(t *testing.T) {
	svc, ledger := newPaymentFixture(t)

	payment, err := svc.CreateRequest(500, decimal.NewFromInt(10), "UPI321")
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	entry, err := svc.GrantPatienceBonus(payment.ID)
	if err != nil {
		t.Fatalf("GrantPatienceBonus failed: %v", err)
	}
	if !entry.Amount.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected bonus 10, got %s", entry.Amount)
	}

	if _, err := svc.GrantPatienceBonus(payment.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed on second grant, got %v", err)
	}

	balance, _ := ledger.GetBalance(500)
	if !balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected balance 10, got %s", balance)
	}
}

func TestListPendingOldestFirst(t *testing.T) {
	svc, _ := newPaymentFixture(t)

	first, _ := svc.CreateRequest(500, decimal.NewFromInt(10), "A")
	second, _ := svc.CreateRequest(500, decimal.NewFromInt(20), "B")
	if _, err := svc.Confirm(first.ID); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	pending, err := svc.ListPending()
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if pending[0].ID != second.ID {
		t.Errorf("expected request %d pending, got %d", second.ID, pending[0].ID)
	}
}
