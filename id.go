package busk

import "github.com/xraph/busk/id"

// AccountID is the principal identity type for callers and owners.
type AccountID = id.AccountID

// Record identifier types, allocated densely from store counters.
type (
	PerformerID = id.PerformerID
	SessionID   = id.SessionID
	TipID       = id.TipID
)
