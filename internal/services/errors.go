package services

import (
	"errors"
	"fmt"
)

// Expected business outcomes. Handlers translate these into stable result
// codes; none of them indicate an unhealthy system.
var (
	ErrNotFound            = errors.New("record not found")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrAlreadyClaimed      = errors.New("credit already claimed")
	ErrAlreadyReferred     = errors.New("user already referred")
	ErrSelfReferral        = errors.New("cannot use your own referral code")
	ErrInvalidCode         = errors.New("invalid referral code")
	ErrInvalidInput        = errors.New("invalid input")
	ErrLinkExpired         = errors.New("link expired")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUserBanned          = errors.New("user is banned")
	ErrUserInactive        = errors.New("user is not active")

	// ErrShortenerUnavailable means the external shortening call failed or
	// echoed the input back; no link state was persisted.
	ErrShortenerUnavailable = errors.New("link shortening service unavailable")
)

// LedgerError wraps a store-level failure inside the ledger primitive. The
// operation it came from was fully rolled back.
type LedgerError struct {
	Op  string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

func ledgerErr(op string, err error) error {
	return &LedgerError{Op: op, Err: err}
}
