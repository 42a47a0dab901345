package busk_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	busk "github.com/xraph/busk"
	"github.com/xraph/busk/bank"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/session"
	"github.com/xraph/busk/store/memory"
	"github.com/xraph/busk/tip"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testWorld wires an engine against the in-memory store and bank.
type testWorld struct {
	engine   *busk.Engine
	bank     *bank.InMemory
	platform id.AccountID
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()

	b := bank.NewInMemory()
	platform := id.NewAccountID()

	engine := busk.New(memory.New(), b, platform,
		busk.WithLogger(quietLogger()),
	)
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = engine.Stop() })

	return &testWorld{engine: engine, bank: b, platform: platform}
}

// registerPerformer registers a performer under a fresh owner account.
func (w *testWorld) registerPerformer(t *testing.T, name string) (id.AccountID, id.PerformerID) {
	t.Helper()

	owner := id.NewAccountID()
	performerID, err := w.engine.RegisterPerformer(context.Background(), owner, name, "Saxophone", "Downtown")
	if err != nil {
		t.Fatalf("RegisterPerformer() error = %v", err)
	}
	return owner, performerID
}

func TestRegisterPerformer(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner := id.NewAccountID()

	first, err := w.engine.RegisterPerformer(ctx, owner, "Jane Smith", "Saxophone", "Times Square")
	if err != nil {
		t.Fatalf("RegisterPerformer() error = %v", err)
	}
	if first != 1 {
		t.Errorf("first performer id = %d, want 1", first)
	}

	second, err := w.engine.RegisterPerformer(ctx, owner, "Sam Lee", "Guitar", "Union Square")
	if err != nil {
		t.Fatalf("RegisterPerformer() error = %v", err)
	}
	if second != first+1 {
		t.Errorf("second performer id = %d, want %d", second, first+1)
	}

	p, err := w.engine.Performer(ctx, first)
	if err != nil {
		t.Fatalf("Performer() error = %v", err)
	}
	if p.Name != "Jane Smith" || p.Instrument != "Saxophone" || p.Location != "Times Square" {
		t.Errorf("performer fields = %q/%q/%q", p.Name, p.Instrument, p.Location)
	}
	if p.Owner.String() != owner.String() {
		t.Errorf("owner = %s, want %s", p.Owner, owner)
	}
	if !p.Active {
		t.Error("new performer should be active")
	}
	if p.TotalEarned != 0 || p.TipCount != 0 {
		t.Errorf("new performer has earnings %d, count %d", p.TotalEarned, p.TipCount)
	}
}

func TestRegisterPerformerValidation(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner := id.NewAccountID()

	tests := []struct {
		name       string
		pname      string
		instrument string
		location   string
	}{
		{"NameTooLong", strings.Repeat("x", 51), "Guitar", "Park"},
		{"InstrumentTooLong", "Sam", strings.Repeat("x", 31), "Park"},
		{"LocationTooLong", "Sam", "Guitar", strings.Repeat("x", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.engine.RegisterPerformer(ctx, owner, tt.pname, tt.instrument, tt.location)
			if !busk.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}

	// Bounds are rune counts, not bytes.
	name := strings.Repeat("é", 50)
	if _, err := w.engine.RegisterPerformer(ctx, owner, name, "Accordion", "Metro"); err != nil {
		t.Errorf("50-rune name rejected: %v", err)
	}
}

func TestStartSession(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner, performerID := w.registerPerformer(t, "Jane Smith")

	sessionID, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if sessionID != 1 {
		t.Errorf("first session id = %d, want 1", sessionID)
	}

	s, err := w.engine.Session(ctx, sessionID)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if !s.Open() {
		t.Error("new session should be open")
	}
	if s.PerformerID != performerID {
		t.Errorf("session performer = %d, want %d", s.PerformerID, performerID)
	}
	if s.StartedAt == 0 {
		t.Error("session has no start tick")
	}

	t.Run("Unauthorized", func(t *testing.T) {
		stranger := id.NewAccountID()
		_, err := w.engine.StartSession(ctx, stranger, performerID, "Elsewhere")
		if !errors.Is(err, busk.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("UnknownPerformer", func(t *testing.T) {
		_, err := w.engine.StartSession(ctx, owner, 999, "Nowhere")
		if !busk.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	t.Run("MultipleOpenSessions", func(t *testing.T) {
		second, err := w.engine.StartSession(ctx, owner, performerID, "Union Square")
		if err != nil {
			t.Fatalf("second open session rejected: %v", err)
		}
		if second == sessionID {
			t.Error("session ids must be distinct")
		}
	})
}

func TestEndSession(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner, performerID := w.registerPerformer(t, "Jane Smith")

	sessionID, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	t.Run("Unauthorized", func(t *testing.T) {
		stranger := id.NewAccountID()
		if err := w.engine.EndSession(ctx, stranger, sessionID); !errors.Is(err, busk.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	if err := w.engine.EndSession(ctx, owner, sessionID); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}

	s, err := w.engine.Session(ctx, sessionID)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if s.Open() {
		t.Error("session still open after EndSession")
	}
	if s.EndedAt == nil || *s.EndedAt <= s.StartedAt {
		t.Errorf("end tick %v not after start tick %d", s.EndedAt, s.StartedAt)
	}

	t.Run("AlreadyClosed", func(t *testing.T) {
		err := w.engine.EndSession(ctx, owner, sessionID)
		if !errors.Is(err, busk.ErrSessionClosed) {
			t.Errorf("error = %v, want ErrSessionClosed", err)
		}
		if !busk.IsInvalidState(err) {
			t.Error("ErrSessionClosed should classify as invalid state")
		}
	})

	t.Run("UnknownSession", func(t *testing.T) {
		err := w.engine.EndSession(ctx, owner, 999)
		if !busk.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})
}

func TestSendTip(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner, performerID := w.registerPerformer(t, "Jane Smith")

	sessionID, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	tipper := id.NewAccountID()
	w.bank.Deposit(tipper, 5_000_000)

	tipID, err := w.engine.SendTip(ctx, tipper, sessionID, 2_000_000, "great set!")
	if err != nil {
		t.Fatalf("SendTip() error = %v", err)
	}
	if tipID != 1 {
		t.Errorf("first tip id = %d, want 1", tipID)
	}

	// Default fee is 100 bps: fee 20,000, net 1,980,000.
	if got := w.bank.Balance(tipper); got != 3_000_000 {
		t.Errorf("tipper balance = %d, want 3000000", got)
	}
	if got := w.bank.Balance(owner); got != 1_980_000 {
		t.Errorf("owner balance = %d, want 1980000", got)
	}
	if got := w.bank.Balance(w.platform); got != 20_000 {
		t.Errorf("platform balance = %d, want 20000", got)
	}

	rec, err := w.engine.Tip(ctx, tipID)
	if err != nil {
		t.Fatalf("Tip() error = %v", err)
	}
	if rec.Amount != 2_000_000 || rec.Fee != 20_000 || rec.Net != 1_980_000 {
		t.Errorf("tip split = %d/%d/%d", rec.Amount, rec.Fee, rec.Net)
	}
	if rec.Message == nil || *rec.Message != "great set!" {
		t.Errorf("tip message = %v", rec.Message)
	}
	if rec.Tipper.String() != tipper.String() {
		t.Errorf("tipper = %s, want %s", rec.Tipper, tipper)
	}

	s, err := w.engine.Session(ctx, sessionID)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if s.Earnings != 1_980_000 || s.TipCount != 1 {
		t.Errorf("session bookkeeping = %d/%d", s.Earnings, s.TipCount)
	}

	p, err := w.engine.Performer(ctx, performerID)
	if err != nil {
		t.Fatalf("Performer() error = %v", err)
	}
	if p.TotalEarned != 1_980_000 || p.TipCount != 1 {
		t.Errorf("performer bookkeeping = %d/%d", p.TotalEarned, p.TipCount)
	}

	t.Run("EmptyMessageStoredAsAbsent", func(t *testing.T) {
		tid, err := w.engine.SendTip(ctx, tipper, sessionID, 1000, "")
		if err != nil {
			t.Fatalf("SendTip() error = %v", err)
		}
		rec, err := w.engine.Tip(ctx, tid)
		if err != nil {
			t.Fatalf("Tip() error = %v", err)
		}
		if rec.Message != nil {
			t.Errorf("empty message stored as %q", *rec.Message)
		}
	})
}

func TestSendTipFailures(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner, performerID := w.registerPerformer(t, "Jane Smith")

	sessionID, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	tipper := id.NewAccountID()
	w.bank.Deposit(tipper, 100)

	assertUntouched := func(t *testing.T, wantTipperBalance uint64) {
		t.Helper()
		if got := w.bank.Balance(tipper); got != wantTipperBalance {
			t.Errorf("tipper balance = %d, want %d", got, wantTipperBalance)
		}
		if got := w.bank.Balance(owner); got != 0 {
			t.Errorf("owner balance = %d, want 0", got)
		}
		s, err := w.engine.Session(ctx, sessionID)
		if err != nil {
			t.Fatalf("Session() error = %v", err)
		}
		if s.Earnings != 0 || s.TipCount != 0 {
			t.Errorf("session bookkeeping = %d/%d, want 0/0", s.Earnings, s.TipCount)
		}
	}

	t.Run("ZeroAmount", func(t *testing.T) {
		_, err := w.engine.SendTip(ctx, tipper, sessionID, 0, "")
		if !errors.Is(err, busk.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
		assertUntouched(t, 100)
	})

	t.Run("ZeroAmountUnknownSession", func(t *testing.T) {
		_, err := w.engine.SendTip(ctx, tipper, 999, 0, "")
		if !errors.Is(err, busk.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("UnknownSession", func(t *testing.T) {
		_, err := w.engine.SendTip(ctx, tipper, 999, 50, "")
		if !busk.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
		assertUntouched(t, 100)
	})

	t.Run("MessageTooLong", func(t *testing.T) {
		_, err := w.engine.SendTip(ctx, tipper, sessionID, 50, strings.Repeat("x", 201))
		if !busk.IsValidation(err) {
			t.Errorf("error = %v, want validation error", err)
		}
		assertUntouched(t, 100)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		_, err := w.engine.SendTip(ctx, tipper, sessionID, 10_000_000, "")
		if !errors.Is(err, busk.ErrInsufficientBalance) {
			t.Errorf("error = %v, want ErrInsufficientBalance", err)
		}
		assertUntouched(t, 100)
	})

	t.Run("FeeLegFailureRollsBackNetLeg", func(t *testing.T) {
		// At 100 bps a 10,000 tip splits into net 9,900 and fee 100. A
		// balance of 9,950 lets the net leg through but not the fee leg;
		// the net leg must be returned.
		poor := id.NewAccountID()
		w.bank.Deposit(poor, 9_950)

		_, err := w.engine.SendTip(ctx, poor, sessionID, 10_000, "")
		if !errors.Is(err, busk.ErrInsufficientBalance) {
			t.Errorf("error = %v, want ErrInsufficientBalance", err)
		}
		if got := w.bank.Balance(poor); got != 9_950 {
			t.Errorf("tipper balance after rollback = %d, want 9950", got)
		}
		if got := w.bank.Balance(owner); got != 0 {
			t.Errorf("owner balance after rollback = %d, want 0", got)
		}
		assertUntouched(t, 100)
	})

	t.Run("ClosedSession", func(t *testing.T) {
		if err := w.engine.EndSession(ctx, owner, sessionID); err != nil {
			t.Fatalf("EndSession() error = %v", err)
		}
		_, err := w.engine.SendTip(ctx, tipper, sessionID, 50, "")
		if !errors.Is(err, busk.ErrSessionClosed) {
			t.Errorf("error = %v, want ErrSessionClosed", err)
		}
	})
}

func TestSetPlatformFee(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()

	fee, err := w.engine.PlatformFee(ctx)
	if err != nil {
		t.Fatalf("PlatformFee() error = %v", err)
	}
	if fee != busk.DefaultPlatformFee {
		t.Errorf("initial fee = %d, want %d", fee, busk.DefaultPlatformFee)
	}

	t.Run("Unauthorized", func(t *testing.T) {
		stranger := id.NewAccountID()
		if err := w.engine.SetPlatformFee(ctx, stranger, 250); !errors.Is(err, busk.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("AboveCap", func(t *testing.T) {
		err := w.engine.SetPlatformFee(ctx, w.platform, 1001)
		if !errors.Is(err, busk.ErrFeeTooHigh) {
			t.Errorf("error = %v, want ErrFeeTooHigh", err)
		}
		if !busk.IsInvalidAmount(err) {
			t.Error("ErrFeeTooHigh should classify as invalid amount")
		}
	})

	t.Run("AtCap", func(t *testing.T) {
		if err := w.engine.SetPlatformFee(ctx, w.platform, busk.MaxPlatformFee); err != nil {
			t.Errorf("fee at cap rejected: %v", err)
		}
	})

	t.Run("Zero", func(t *testing.T) {
		if err := w.engine.SetPlatformFee(ctx, w.platform, 0); err != nil {
			t.Errorf("zero fee rejected: %v", err)
		}
		fee, err := w.engine.PlatformFee(ctx)
		if err != nil {
			t.Fatalf("PlatformFee() error = %v", err)
		}
		if fee != 0 {
			t.Errorf("fee = %d, want 0", fee)
		}
	})
}

func TestFeeChangeAppliesToSubsequentTips(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner, performerID := w.registerPerformer(t, "Jane Smith")

	sessionID, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	tipper := id.NewAccountID()
	w.bank.Deposit(tipper, 1_000_000)

	before, err := w.engine.SendTip(ctx, tipper, sessionID, 100_000, "")
	if err != nil {
		t.Fatalf("SendTip() error = %v", err)
	}

	if err := w.engine.SetPlatformFee(ctx, w.platform, 250); err != nil {
		t.Fatalf("SetPlatformFee() error = %v", err)
	}

	after, err := w.engine.SendTip(ctx, tipper, sessionID, 100_000, "")
	if err != nil {
		t.Fatalf("SendTip() error = %v", err)
	}

	t1, _ := w.engine.Tip(ctx, before)
	t2, _ := w.engine.Tip(ctx, after)

	if t1.Fee != 1_000 {
		t.Errorf("pre-change fee = %d, want 1000", t1.Fee)
	}
	if t2.Fee != 2_500 {
		t.Errorf("post-change fee = %d, want 2500", t2.Fee)
	}
}

func TestDeactivatePerformer(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()
	owner, performerID := w.registerPerformer(t, "Jane Smith")

	sessionID, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	t.Run("Unauthorized", func(t *testing.T) {
		if err := w.engine.DeactivatePerformer(ctx, owner, performerID); !errors.Is(err, busk.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if err := w.engine.DeactivatePerformer(ctx, w.platform, 999); !busk.IsNotFound(err) {
			t.Errorf("error = %v, want not found", err)
		}
	})

	if err := w.engine.DeactivatePerformer(ctx, w.platform, performerID); err != nil {
		t.Fatalf("DeactivatePerformer() error = %v", err)
	}

	p, err := w.engine.Performer(ctx, performerID)
	if err != nil {
		t.Fatalf("Performer() error = %v", err)
	}
	if p.Active {
		t.Error("performer still active after deactivation")
	}

	t.Run("NoNewSessions", func(t *testing.T) {
		_, err := w.engine.StartSession(ctx, owner, performerID, "Elsewhere")
		if !errors.Is(err, busk.ErrPerformerInactive) {
			t.Errorf("error = %v, want ErrPerformerInactive", err)
		}
		if !busk.IsNotFound(err) {
			t.Error("ErrPerformerInactive should classify as not found")
		}
	})

	t.Run("OpenSessionStillAcceptsTips", func(t *testing.T) {
		tipper := id.NewAccountID()
		w.bank.Deposit(tipper, 10_000)
		if _, err := w.engine.SendTip(ctx, tipper, sessionID, 10_000, ""); err != nil {
			t.Errorf("tip to deactivated performer's open session rejected: %v", err)
		}
	})
}

func TestListQueries(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()

	owner, performerID := w.registerPerformer(t, "Jane Smith")
	_, other := w.registerPerformer(t, "Sam Lee")
	if err := w.engine.DeactivatePerformer(ctx, w.platform, other); err != nil {
		t.Fatalf("DeactivatePerformer() error = %v", err)
	}

	first, err := w.engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	second, err := w.engine.StartSession(ctx, owner, performerID, "Union Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := w.engine.EndSession(ctx, owner, first); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}

	tipper := id.NewAccountID()
	w.bank.Deposit(tipper, 10_000)
	for i := 0; i < 3; i++ {
		if _, err := w.engine.SendTip(ctx, tipper, second, 1_000, ""); err != nil {
			t.Fatalf("SendTip() error = %v", err)
		}
	}

	t.Run("ActivePerformers", func(t *testing.T) {
		got, err := w.engine.Performers(ctx, performer.ListOpts{ActiveOnly: true})
		if err != nil {
			t.Fatalf("Performers() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != performerID {
			t.Errorf("active performers = %d entries", len(got))
		}
	})

	t.Run("OpenSessions", func(t *testing.T) {
		got, err := w.engine.Sessions(ctx, performerID, session.ListOpts{OpenOnly: true})
		if err != nil {
			t.Fatalf("Sessions() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != second {
			t.Errorf("open sessions = %d entries", len(got))
		}
	})

	t.Run("TipsPaged", func(t *testing.T) {
		got, err := w.engine.Tips(ctx, second, tip.ListOpts{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("Tips() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("paged tips = %d entries, want 2", len(got))
		}
		if got[0].ID != 2 || got[1].ID != 3 {
			t.Errorf("paged tip ids = %d,%d, want 2,3", got[0].ID, got[1].ID)
		}
	})
}

// recordingPlugin captures settlement events for assertions.
type recordingPlugin struct {
	settled []*tip.Tip
}

func (p *recordingPlugin) Name() string { return "recording" }

func (p *recordingPlugin) OnTipSettled(_ context.Context, v interface{}) error {
	if t, ok := v.(*tip.Tip); ok {
		p.settled = append(p.settled, t)
	}
	return nil
}

func TestPluginReceivesSettlements(t *testing.T) {
	ctx := context.Background()
	b := bank.NewInMemory()
	platform := id.NewAccountID()
	rec := &recordingPlugin{}

	engine := busk.New(memory.New(), b, platform,
		busk.WithLogger(quietLogger()),
		busk.WithPlugin(rec),
	)
	if err := engine.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer engine.Stop()

	owner := id.NewAccountID()
	performerID, err := engine.RegisterPerformer(ctx, owner, "Jane Smith", "Saxophone", "Downtown")
	if err != nil {
		t.Fatalf("RegisterPerformer() error = %v", err)
	}
	sessionID, err := engine.StartSession(ctx, owner, performerID, "Times Square")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	tipper := id.NewAccountID()
	b.Deposit(tipper, 10_000)
	if _, err := engine.SendTip(ctx, tipper, sessionID, 10_000, "bravo"); err != nil {
		t.Fatalf("SendTip() error = %v", err)
	}

	if len(rec.settled) != 1 {
		t.Fatalf("plugin saw %d settlements, want 1", len(rec.settled))
	}
	if rec.settled[0].Amount != 10_000 {
		t.Errorf("plugin saw amount %d, want 10000", rec.settled[0].Amount)
	}
}
