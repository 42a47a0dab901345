package busk

import (
	"context"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/xraph/busk/bank"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/plugin"
	"github.com/xraph/busk/session"
	"github.com/xraph/busk/store"
	"github.com/xraph/busk/tip"
	"github.com/xraph/busk/types"
)

// Engine is the tipping ledger. It owns all record tables and counters
// through its store and is their sole mutator; value movement is delegated
// to the host bank. Every mutating operation takes the caller identity
// explicitly and runs under a single lock, one at a time, so settlements
// are indivisible with respect to concurrent observers. Queries run
// lock-free against committed state.
type Engine struct {
	store    store.Store
	bank     bank.Bank
	platform id.AccountID

	clock   Clock
	plugins *plugin.Registry
	logger  *slog.Logger

	// mu serializes all mutating operations.
	mu sync.Mutex
}

// New creates a new Engine. The platform account is the fixed identity that
// receives fees and administers the engine; it never changes after
// construction.
func New(s store.Store, b bank.Bank, platform id.AccountID, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		bank:     b,
		platform: platform,
		clock:    NewSequenceClock(),
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithClock sets the logical clock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("busk engine started",
		"platform", e.platform.String(),
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Platform returns the fixed platform owner account.
func (e *Engine) Platform() id.AccountID { return e.platform }

// ──────────────────────────────────────────────────
// Registration
// ──────────────────────────────────────────────────

// RegisterPerformer creates a new performer owned by the caller. Text
// fields are bounded; the returned id is always the previous performer
// counter plus one.
func (e *Engine) RegisterPerformer(ctx context.Context, caller id.AccountID, name, instrument, location string) (id.PerformerID, error) {
	if err := validateLen("name", name, performer.MaxNameLen); err != nil {
		return 0, err
	}
	if err := validateLen("instrument", instrument, performer.MaxInstrumentLen); err != nil {
		return 0, err
	}
	if err := validateLen("location", location, performer.MaxLocationLen); err != nil {
		return 0, err
	}

	p := &performer.Performer{
		Entity:     types.NewEntity(),
		Owner:      caller,
		Name:       name,
		Instrument: instrument,
		Location:   location,
		Active:     true,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.CreatePerformer(ctx, p); err != nil {
		return 0, err
	}

	e.plugins.EmitPerformerRegistered(ctx, p)

	e.logger.Info("performer registered",
		"performer_id", p.ID.String(),
		"owner", caller.String(),
	)

	return p.ID, nil
}

// ──────────────────────────────────────────────────
// Session lifecycle
// ──────────────────────────────────────────────────

// StartSession opens a new session for a performer. Only the performer's
// owner may start one, and only while the performer is active. A performer
// may hold several open sessions at once.
func (e *Engine) StartSession(ctx context.Context, caller id.AccountID, performerID id.PerformerID, location string) (id.SessionID, error) {
	if err := validateLen("location", location, session.MaxLocationLen); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.store.GetPerformer(ctx, performerID)
	if err != nil {
		return 0, err
	}
	if p.Owner.String() != caller.String() {
		return 0, ErrUnauthorized
	}
	if !p.Active {
		return 0, ErrPerformerInactive
	}

	s := &session.Session{
		Entity:      types.NewEntity(),
		PerformerID: performerID,
		StartedAt:   e.clock.Now(),
		Location:    location,
	}

	if err := e.store.CreateSession(ctx, s); err != nil {
		return 0, err
	}

	e.plugins.EmitSessionStarted(ctx, s)

	e.logger.Info("session started",
		"session_id", s.ID.String(),
		"performer_id", performerID.String(),
	)

	return s.ID, nil
}

// EndSession closes an open session. Only the owning performer's owner may
// close it; the end tick is immutable once set and the session accepts no
// further tips.
func (e *Engine) EndSession(ctx context.Context, caller id.AccountID, sessionID id.SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	// The performer lookup also guards against a session whose performer
	// record has gone missing in an external store.
	p, err := e.store.GetPerformer(ctx, s.PerformerID)
	if err != nil {
		return err
	}
	if p.Owner.String() != caller.String() {
		return ErrUnauthorized
	}
	if !s.Open() {
		return ErrSessionClosed
	}

	endedAt := e.clock.Now()
	if err := e.store.CloseSession(ctx, sessionID, endedAt); err != nil {
		return err
	}

	e.plugins.EmitSessionEnded(ctx, s)

	e.logger.Info("session ended",
		"session_id", sessionID.String(),
		"earnings", s.Earnings,
		"tip_count", s.TipCount,
	)

	return nil
}

// ──────────────────────────────────────────────────
// Tip settlement
// ──────────────────────────────────────────────────

// SendTip settles a tip on an open session. The gross amount is split at
// the current fee rate — the fee rounds down, favoring the performer — and
// moved in two transfers: net to the performer's owner, fee to the platform.
// Either both transfers and the bookkeeping land, or nothing does: a failed
// leg rolls the completed ones back before the error is returned. An empty
// message is recorded as absent.
func (e *Engine) SendTip(ctx context.Context, caller id.AccountID, sessionID id.SessionID, amount uint64, message string) (id.TipID, error) {
	if message != "" {
		if err := validateLen("message", message, tip.MaxMessageLen); err != nil {
			return 0, err
		}
	}

	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	p, err := e.store.GetPerformer(ctx, s.PerformerID)
	if err != nil {
		return 0, err
	}
	if !s.Open() {
		return 0, ErrSessionClosed
	}

	// The fee rate is read per settlement, not fixed per session: a rate
	// change mid-session applies to subsequent tips only.
	rate, err := e.store.PlatformFee(ctx)
	if err != nil {
		return 0, err
	}
	fee, net := rate.Split(amount)

	if err := e.bank.Transfer(ctx, caller, p.Owner, net); err != nil {
		return 0, err
	}
	if err := e.bank.Transfer(ctx, caller, e.platform, fee); err != nil {
		e.refund(ctx, p.Owner, caller, net)
		return 0, err
	}

	t := &tip.Tip{
		Entity:    types.NewEntity(),
		SessionID: sessionID,
		Tipper:    caller,
		Amount:    amount,
		Fee:       fee,
		Net:       net,
		Timestamp: e.clock.Now(),
	}
	if message != "" {
		t.Message = &message
	}

	if err := e.store.SettleTip(ctx, t); err != nil {
		e.refund(ctx, p.Owner, caller, net)
		e.refund(ctx, e.platform, caller, fee)
		return 0, err
	}

	e.plugins.EmitTipSettled(ctx, t)

	e.logger.Info("tip settled",
		"tip_id", t.ID.String(),
		"session_id", sessionID.String(),
		"amount", amount,
		"fee", fee,
		"net", net,
	)

	return t.ID, nil
}

// refund reverses one completed transfer leg while unwinding a failed
// settlement. A refund can only fail if the recipient spent the funds in
// the meantime; mutations are serialized, so that cannot happen here — the
// error path still logs.
func (e *Engine) refund(ctx context.Context, from, to id.AccountID, amount uint64) {
	if err := e.bank.Transfer(ctx, from, to, amount); err != nil {
		e.logger.Error("failed to roll back transfer",
			"from", from.String(),
			"to", to.String(),
			"amount", amount,
			"error", err,
		)
	}
}

// ──────────────────────────────────────────────────
// Administration
// ──────────────────────────────────────────────────

// SetPlatformFee overwrites the fee rate. Only the platform owner may call
// it, and the rate is capped at types.MaxPlatformFee. Settled tips keep the
// split they were settled with.
func (e *Engine) SetPlatformFee(ctx context.Context, caller id.AccountID, fee types.BasisPoints) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller.String() != e.platform.String() {
		return ErrUnauthorized
	}
	if !fee.Valid() {
		return ErrFeeTooHigh
	}

	old, err := e.store.PlatformFee(ctx)
	if err != nil {
		return err
	}
	if err := e.store.SetPlatformFee(ctx, fee); err != nil {
		return err
	}

	e.plugins.EmitFeeUpdated(ctx, uint32(old), uint32(fee))

	e.logger.Info("platform fee updated",
		"old", old.String(),
		"new", fee.String(),
	)

	return nil
}

// DeactivatePerformer blocks a performer from starting new sessions. Only
// the platform owner may call it. Open sessions stay open and keep
// accepting tips; earnings and counts are untouched.
func (e *Engine) DeactivatePerformer(ctx context.Context, caller id.AccountID, performerID id.PerformerID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller.String() != e.platform.String() {
		return ErrUnauthorized
	}

	if _, err := e.store.GetPerformer(ctx, performerID); err != nil {
		return err
	}
	if err := e.store.DeactivatePerformer(ctx, performerID); err != nil {
		return err
	}

	e.plugins.EmitPerformerDeactivated(ctx, performerID.String())

	e.logger.Info("performer deactivated",
		"performer_id", performerID.String(),
	)

	return nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// Performer retrieves a performer by id.
func (e *Engine) Performer(ctx context.Context, performerID id.PerformerID) (*performer.Performer, error) {
	return e.store.GetPerformer(ctx, performerID)
}

// Performers lists performers.
func (e *Engine) Performers(ctx context.Context, opts performer.ListOpts) ([]*performer.Performer, error) {
	return e.store.ListPerformers(ctx, opts)
}

// Session retrieves a session by id.
func (e *Engine) Session(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	return e.store.GetSession(ctx, sessionID)
}

// Sessions lists a performer's sessions.
func (e *Engine) Sessions(ctx context.Context, performerID id.PerformerID, opts session.ListOpts) ([]*session.Session, error) {
	return e.store.ListSessions(ctx, performerID, opts)
}

// Tip retrieves a tip by id.
func (e *Engine) Tip(ctx context.Context, tipID id.TipID) (*tip.Tip, error) {
	return e.store.GetTip(ctx, tipID)
}

// Tips lists a session's tips.
func (e *Engine) Tips(ctx context.Context, sessionID id.SessionID, opts tip.ListOpts) ([]*tip.Tip, error) {
	return e.store.ListTips(ctx, sessionID, opts)
}

// PlatformFee returns the current fee rate.
func (e *Engine) PlatformFee(ctx context.Context) (types.BasisPoints, error) {
	return e.store.PlatformFee(ctx)
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func validateLen(field, value string, maxRunes int) error {
	if utf8.RuneCountInString(value) > maxRunes {
		return ValidationError{
			Field:   field,
			Message: "exceeds maximum length",
		}
	}
	return nil
}
