package session

import (
	"context"

	"github.com/xraph/busk/id"
)

type Store interface {
	// Create persists a new open session and assigns the next counter id.
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, sessionID id.SessionID) (*Session, error)
	List(ctx context.Context, performerID id.PerformerID, opts ListOpts) ([]*Session, error)
	// Close sets the end tick on an open session. Closing a closed session
	// is an error; the end tick never changes once set.
	Close(ctx context.Context, sessionID id.SessionID, endedAt uint64) error
	// Credit applies a settled tip: earnings grow by the net amount and the
	// tip count by one.
	Credit(ctx context.Context, sessionID id.SessionID, net uint64) error
}

type ListOpts struct {
	OpenOnly bool
	Limit    int
	Offset   int
}
