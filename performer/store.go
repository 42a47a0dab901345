package performer

import (
	"context"

	"github.com/xraph/busk/id"
)

type Store interface {
	// Create persists a new performer and assigns the next counter id.
	Create(ctx context.Context, p *Performer) error
	Get(ctx context.Context, performerID id.PerformerID) (*Performer, error)
	List(ctx context.Context, opts ListOpts) ([]*Performer, error)
	// Deactivate clears the active flag. Earnings and counts are untouched.
	Deactivate(ctx context.Context, performerID id.PerformerID) error
	// Credit applies a settled tip: earnings grow by the net amount and the
	// tip count by one.
	Credit(ctx context.Context, performerID id.PerformerID, net uint64) error
}

type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
