// Package bank defines the value-transfer capability the engine consumes
// from its host. The engine never holds balances itself; it only asks the
// bank to move value between accounts during tip settlement.
package bank

import (
	"context"
	"errors"
	"sync"

	"github.com/xraph/busk/id"
)

// ErrInsufficientBalance is returned when the source account cannot cover
// a transfer. A failed transfer has no partial effect.
var ErrInsufficientBalance = errors.New("bank: insufficient balance")

// Bank atomically moves a fungible unit of value between two accounts.
type Bank interface {
	// Transfer moves amount from one account to the other. It either fully
	// succeeds or fails with no effect; insufficient funds fail with
	// ErrInsufficientBalance. A zero-amount transfer always succeeds.
	Transfer(ctx context.Context, from, to id.AccountID, amount uint64) error
}

// InMemory is a process-local Bank for tests, examples and single-node use.
// Accounts are created implicitly with a zero balance.
type InMemory struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

var _ Bank = (*InMemory)(nil)

// NewInMemory creates an empty in-memory bank.
func NewInMemory() *InMemory {
	return &InMemory{balances: make(map[string]uint64)}
}

// Deposit credits an account, minting value from nothing. Test setup only.
func (b *InMemory) Deposit(account id.AccountID, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account.String()] += amount
}

// Balance returns the current balance of an account.
func (b *InMemory) Balance(account id.AccountID) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[account.String()]
}

// Transfer implements Bank.
func (b *InMemory) Transfer(_ context.Context, from, to id.AccountID, amount uint64) error {
	if amount == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	src := from.String()
	if b.balances[src] < amount {
		return ErrInsufficientBalance
	}

	b.balances[src] -= amount
	b.balances[to.String()] += amount
	return nil
}
