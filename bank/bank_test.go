package bank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/busk/bank"
	"github.com/xraph/busk/id"
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	b := bank.NewInMemory()
	b.Deposit(alice, 1_000)

	if err := b.Transfer(ctx, alice, bob, 400); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if got := b.Balance(alice); got != 600 {
		t.Errorf("alice balance: got %d, want 600", got)
	}
	if got := b.Balance(bob); got != 400 {
		t.Errorf("bob balance: got %d, want 400", got)
	}
}

func TestTransferInsufficient(t *testing.T) {
	ctx := context.Background()
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	b := bank.NewInMemory()
	b.Deposit(alice, 100)

	err := b.Transfer(ctx, alice, bob, 101)
	if !errors.Is(err, bank.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	// No partial effect.
	if got := b.Balance(alice); got != 100 {
		t.Errorf("alice balance changed on failed transfer: %d", got)
	}
	if got := b.Balance(bob); got != 0 {
		t.Errorf("bob balance changed on failed transfer: %d", got)
	}
}

func TestTransferZeroAmount(t *testing.T) {
	ctx := context.Background()
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	b := bank.NewInMemory()
	if err := b.Transfer(ctx, alice, bob, 0); err != nil {
		t.Fatalf("zero transfer should succeed even for empty accounts: %v", err)
	}
}

func TestTransferSelf(t *testing.T) {
	ctx := context.Background()
	alice := id.NewAccountID()

	b := bank.NewInMemory()
	b.Deposit(alice, 50)

	if err := b.Transfer(ctx, alice, alice, 50); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}
	if got := b.Balance(alice); got != 50 {
		t.Errorf("self transfer changed balance: %d", got)
	}
	if err := b.Transfer(ctx, alice, alice, 51); !errors.Is(err, bank.ErrInsufficientBalance) {
		t.Errorf("overdrawn self transfer should fail, got %v", err)
	}
}
