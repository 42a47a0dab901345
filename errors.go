package busk

import (
	"errors"
	"fmt"

	"github.com/xraph/busk/bank"
)

// Sentinel errors for the engine's failure categories. Every mutating
// operation either succeeds or returns exactly one of these kinds, leaving
// all state untouched.
var (
	// General errors
	ErrNotFound     = errors.New("busk: not found")
	ErrUnauthorized = errors.New("busk: unauthorized")
	ErrInvalidInput = errors.New("busk: invalid input")

	// Performer errors
	ErrPerformerNotFound = errors.New("busk: performer not found")
	ErrPerformerInactive = errors.New("busk: performer is deactivated")

	// Session errors
	ErrSessionNotFound = errors.New("busk: session not found")
	ErrSessionClosed   = errors.New("busk: session already closed")

	// Tip errors
	ErrTipNotFound   = errors.New("busk: tip not found")
	ErrInvalidAmount = errors.New("busk: amount must be greater than zero")

	// Fee errors
	ErrFeeTooHigh = errors.New("busk: fee exceeds the allowed maximum")

	// Store errors
	ErrStoreNotReady   = errors.New("busk: store not ready")
	ErrMigrationFailed = errors.New("busk: migration failed")
)

// ErrInsufficientBalance is the bank's failure kind, re-exported so callers
// can classify settlement failures without importing the bank package.
var ErrInsufficientBalance = bank.ErrInsufficientBalance

// ValidationError reports an oversized or otherwise malformed text field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("busk: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error. Deactivated
// performers count: for session creation they are indistinguishable from
// absent ones.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPerformerNotFound) ||
		errors.Is(err, ErrPerformerInactive) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrTipNotFound)
}

// IsUnauthorized returns true if the error reports a caller acting on a
// record it does not own or administer.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsInsufficientBalance returns true if the error reports a tipper who
// cannot cover the transfer.
func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

// IsInvalidAmount returns true if the error reports a rejected amount or
// fee rate.
func IsInvalidAmount(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrFeeTooHigh)
}

// IsInvalidState returns true if the error reports an illegal lifecycle
// transition, such as tipping or re-closing a closed session.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrSessionClosed)
}

// IsValidation returns true if the error is a text-field validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
