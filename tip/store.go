package tip

import (
	"context"

	"github.com/xraph/busk/id"
)

type Store interface {
	// Create persists a new tip record and assigns the next counter id.
	// Tips are append-only; there is no update or delete.
	Create(ctx context.Context, t *Tip) error
	Get(ctx context.Context, tipID id.TipID) (*Tip, error)
	List(ctx context.Context, sessionID id.SessionID, opts ListOpts) ([]*Tip, error)
}

type ListOpts struct {
	Limit  int
	Offset int
}
