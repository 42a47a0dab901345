package performer

import (
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/types"
)

// Field length bounds, in runes. Registration rejects anything longer.
const (
	MaxNameLen       = 50
	MaxInstrumentLen = 30
	MaxLocationLen   = 100
)

// Performer is the identity record for a street performer. The owner is the
// account that registered it and never changes. TotalEarned and TipCount are
// cumulative over all sessions and only ever increase; deactivation blocks
// new sessions but leaves existing records (and open sessions) untouched.
type Performer struct {
	types.Entity
	ID          id.PerformerID `json:"id"`
	Owner       id.AccountID   `json:"owner"`
	Name        string         `json:"name"`
	Instrument  string         `json:"instrument"`
	Location    string         `json:"location"`
	TotalEarned uint64         `json:"total_earned"`
	TipCount    uint64         `json:"tip_count"`
	Active      bool           `json:"active"`
}
