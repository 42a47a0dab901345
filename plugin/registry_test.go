package plugin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type basePlugin struct{ name string }

func (p *basePlugin) Name() string { return p.name }

type settlementPlugin struct {
	basePlugin
	settled int
	fees    []uint32
	initErr error
}

func (p *settlementPlugin) OnInit(_ context.Context, _ interface{}) error {
	return p.initErr
}

func (p *settlementPlugin) OnTipSettled(_ context.Context, _ interface{}) error {
	p.settled++
	return nil
}

func (p *settlementPlugin) OnFeeUpdated(_ context.Context, _, newBps uint32) error {
	p.fees = append(p.fees, newBps)
	return nil
}

func newTestRegistry() *Registry {
	return NewRegistry().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := newTestRegistry()

	if err := r.Register(&basePlugin{name: "a"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&basePlugin{name: "a"}); err == nil {
		t.Error("duplicate registration accepted")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestGetAndList(t *testing.T) {
	r := newTestRegistry()
	p := &basePlugin{name: "a"}
	if err := r.Register(p); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := r.Get("a"); got != p {
		t.Errorf("Get(a) = %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}
	if got := r.List(); len(got) != 1 {
		t.Errorf("List() = %d entries, want 1", len(got))
	}
}

func TestDispatchOnlyReachesImplementors(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	sp := &settlementPlugin{basePlugin: basePlugin{name: "settlement"}}
	if err := r.Register(sp); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	// A plugin without hooks must never be dispatched to.
	if err := r.Register(&basePlugin{name: "inert"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	r.EmitTipSettled(ctx, nil)
	r.EmitTipSettled(ctx, nil)
	r.EmitFeeUpdated(ctx, 100, 250)
	r.EmitSessionStarted(ctx, nil) // no implementor, must not panic

	if sp.settled != 2 {
		t.Errorf("settled = %d, want 2", sp.settled)
	}
	if len(sp.fees) != 1 || sp.fees[0] != 250 {
		t.Errorf("fees = %v, want [250]", sp.fees)
	}
}

func TestEmitInitSwallowsPluginErrors(t *testing.T) {
	r := newTestRegistry()
	ctx := context.Background()

	sp := &settlementPlugin{
		basePlugin: basePlugin{name: "failing"},
		initErr:    errors.New("boom"),
	}
	if err := r.Register(sp); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Plugin failures are logged, never propagated.
	r.EmitInit(ctx, nil)
}
