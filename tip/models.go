package tip

import (
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/types"
)

// MaxMessageLen bounds the optional tip message, in runes.
const MaxMessageLen = 200

// Tip is an immutable settlement record: it is never updated or deleted
// after creation. Amount is the gross amount the tipper paid; Fee and Net
// record how it was split at settlement time, since the platform fee rate
// may change between tips. Timestamp is a logical clock tick.
type Tip struct {
	types.Entity
	ID        id.TipID     `json:"id"`
	SessionID id.SessionID `json:"session_id"`
	Tipper    id.AccountID `json:"tipper"`
	Amount    uint64       `json:"amount"`
	Fee       uint64       `json:"fee"`
	Net       uint64       `json:"net"`
	Timestamp uint64       `json:"timestamp"`
	Message   *string      `json:"message,omitempty"`
}
