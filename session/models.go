package session

import (
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/types"
)

// MaxLocationLen bounds the session location text, in runes.
const MaxLocationLen = 100

// Session is one performance by a performer. A session is open iff EndedAt
// is nil; tips apply only to open sessions, and EndedAt is immutable once
// set. StartedAt and EndedAt are logical clock ticks, not wall time.
// Earnings accumulates net amounts (gross minus platform fee).
type Session struct {
	types.Entity
	ID          id.SessionID   `json:"id"`
	PerformerID id.PerformerID `json:"performer_id"`
	StartedAt   uint64         `json:"started_at"`
	EndedAt     *uint64        `json:"ended_at,omitempty"`
	Location    string         `json:"location"`
	Earnings    uint64         `json:"earnings"`
	TipCount    uint64         `json:"tip_count"`
}

// Open reports whether the session still accepts tips.
func (s *Session) Open() bool { return s.EndedAt == nil }
