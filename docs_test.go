package busk_test

import (
	"context"
	"log/slog"
	"testing"

	busk "github.com/xraph/busk"
	"github.com/xraph/busk/bank"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		// and a bank that holds the account balances.
		store := memory.New()
		b := bank.NewInMemory()
		platform := id.NewAccountID()

		engine := busk.New(store, b, platform,
			busk.WithLogger(slog.Default()),
		)

		ctx := context.Background()
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		// Register a performer under its owner account.
		owner := id.NewAccountID()
		performerID, err := engine.RegisterPerformer(ctx, owner, "Jane Smith", "Saxophone", "Downtown")
		if err != nil {
			t.Fatal(err)
		}

		// Open a session; tips only land on open sessions.
		sessionID, err := engine.StartSession(ctx, owner, performerID, "Times Square")
		if err != nil {
			t.Fatal(err)
		}

		// Fund a tipper and send a tip. The default 1% fee goes to the
		// platform, the rest to the performer's owner.
		tipper := id.NewAccountID()
		b.Deposit(tipper, 2_000_000)

		tipID, err := engine.SendTip(ctx, tipper, sessionID, 2_000_000, "great set!")
		if err != nil {
			t.Fatal(err)
		}

		rec, err := engine.Tip(ctx, tipID)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Fee != 20_000 || rec.Net != 1_980_000 {
			t.Fatalf("unexpected split: fee %d net %d", rec.Fee, rec.Net)
		}

		// Close the session; it accepts no more tips.
		if err := engine.EndSession(ctx, owner, sessionID); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("FeeExamples", func(t *testing.T) {
		var fee busk.BasisPoints = 250 // 2.5%

		gross := uint64(10_000)
		f, n := fee.Split(gross)
		if f != 250 || n != 9_750 {
			t.Fatalf("split = %d/%d", f, n)
		}
		if f+n != gross {
			t.Fatal("split must conserve the gross amount")
		}

		_ = fee.String() // "2.5%"
	})
}
