package store

import (
	"context"

	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/session"
	"github.com/xraph/busk/tip"
	"github.com/xraph/busk/types"
)

// Store is the unified storage interface for all Busk records, the id
// counters and the platform fee scalar. Instead of embedding the
// sub-interfaces, we explicitly declare all methods to avoid naming
// conflicts.
//
// Stores do not serialize mutations themselves: the engine calls every
// mutating method under its own lock, one operation at a time. Reads may
// run concurrently and must return only fully committed state.
type Store interface {
	// Performer methods
	CreatePerformer(ctx context.Context, p *performer.Performer) error
	GetPerformer(ctx context.Context, performerID id.PerformerID) (*performer.Performer, error)
	ListPerformers(ctx context.Context, opts performer.ListOpts) ([]*performer.Performer, error)
	DeactivatePerformer(ctx context.Context, performerID id.PerformerID) error

	// Session methods
	CreateSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error)
	ListSessions(ctx context.Context, performerID id.PerformerID, opts session.ListOpts) ([]*session.Session, error)
	CloseSession(ctx context.Context, sessionID id.SessionID, endedAt uint64) error

	// Tip methods. SettleTip assigns the tip id, persists the record and
	// applies both bookkeeping bumps — session earnings/count and performer
	// earnings/count — as one unit. No reader observes the tip without the
	// bumps or vice versa.
	SettleTip(ctx context.Context, t *tip.Tip) error
	GetTip(ctx context.Context, tipID id.TipID) (*tip.Tip, error)
	ListTips(ctx context.Context, sessionID id.SessionID, opts tip.ListOpts) ([]*tip.Tip, error)

	// Platform fee. The fee is read at every settlement, never cached by
	// the engine, so a change applies to subsequent tips only.
	PlatformFee(ctx context.Context) (types.BasisPoints, error)
	SetPlatformFee(ctx context.Context, fee types.BasisPoints) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
