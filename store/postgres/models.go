package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/session"
	"github.com/xraph/busk/tip"
	"github.com/xraph/busk/types"
)

// ==================== Performer models ====================

type performerModel struct {
	grove.BaseModel `grove:"table:busk_performers"`

	ID          int64     `grove:"id,pk"`
	Owner       string    `grove:"owner"`
	Name        string    `grove:"name"`
	Instrument  string    `grove:"instrument"`
	Location    string    `grove:"location"`
	TotalEarned int64     `grove:"total_earned"`
	TipCount    int64     `grove:"tip_count"`
	Active      bool      `grove:"active"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toPerformerModel(p *performer.Performer) *performerModel {
	return &performerModel{
		ID:          int64(p.ID),
		Owner:       p.Owner.String(),
		Name:        p.Name,
		Instrument:  p.Instrument,
		Location:    p.Location,
		TotalEarned: int64(p.TotalEarned),
		TipCount:    int64(p.TipCount),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromPerformerModel(m *performerModel) (*performer.Performer, error) {
	owner, err := id.ParseAccountID(m.Owner)
	if err != nil {
		return nil, err
	}

	return &performer.Performer{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          id.PerformerID(m.ID),
		Owner:       owner,
		Name:        m.Name,
		Instrument:  m.Instrument,
		Location:    m.Location,
		TotalEarned: uint64(m.TotalEarned),
		TipCount:    uint64(m.TipCount),
		Active:      m.Active,
	}, nil
}

// ==================== Session models ====================

type sessionModel struct {
	grove.BaseModel `grove:"table:busk_sessions"`

	ID          int64     `grove:"id,pk"`
	PerformerID int64     `grove:"performer_id"`
	StartedAt   int64     `grove:"started_at"`
	EndedAt     *int64    `grove:"ended_at"`
	Location    string    `grove:"location"`
	Earnings    int64     `grove:"earnings"`
	TipCount    int64     `grove:"tip_count"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
}

func toSessionModel(s *session.Session) *sessionModel {
	m := &sessionModel{
		ID:          int64(s.ID),
		PerformerID: int64(s.PerformerID),
		StartedAt:   int64(s.StartedAt),
		Location:    s.Location,
		Earnings:    int64(s.Earnings),
		TipCount:    int64(s.TipCount),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if s.EndedAt != nil {
		endedAt := int64(*s.EndedAt)
		m.EndedAt = &endedAt
	}
	return m
}

func fromSessionModel(m *sessionModel) (*session.Session, error) {
	s := &session.Session{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          id.SessionID(m.ID),
		PerformerID: id.PerformerID(m.PerformerID),
		StartedAt:   uint64(m.StartedAt),
		Location:    m.Location,
		Earnings:    uint64(m.Earnings),
		TipCount:    uint64(m.TipCount),
	}
	if m.EndedAt != nil {
		endedAt := uint64(*m.EndedAt)
		s.EndedAt = &endedAt
	}
	return s, nil
}

// ==================== Tip models ====================

type tipModel struct {
	grove.BaseModel `grove:"table:busk_tips"`

	ID        int64     `grove:"id,pk"`
	SessionID int64     `grove:"session_id"`
	Tipper    string    `grove:"tipper"`
	Amount    int64     `grove:"amount"`
	Fee       int64     `grove:"fee"`
	Net       int64     `grove:"net"`
	Timestamp int64     `grove:"timestamp"`
	Message   *string   `grove:"message"`
	CreatedAt time.Time `grove:"created_at"`
}

func toTipModel(t *tip.Tip) *tipModel {
	return &tipModel{
		ID:        int64(t.ID),
		SessionID: int64(t.SessionID),
		Tipper:    t.Tipper.String(),
		Amount:    int64(t.Amount),
		Fee:       int64(t.Fee),
		Net:       int64(t.Net),
		Timestamp: int64(t.Timestamp),
		Message:   t.Message,
		CreatedAt: t.CreatedAt,
	}
}

func fromTipModel(m *tipModel) (*tip.Tip, error) {
	tipper, err := id.ParseAccountID(m.Tipper)
	if err != nil {
		return nil, err
	}

	return &tip.Tip{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.CreatedAt,
		},
		ID:        id.TipID(m.ID),
		SessionID: id.SessionID(m.SessionID),
		Tipper:    tipper,
		Amount:    uint64(m.Amount),
		Fee:       uint64(m.Fee),
		Net:       uint64(m.Net),
		Timestamp: uint64(m.Timestamp),
		Message:   m.Message,
	}, nil
}

// ==================== Setting models ====================

type settingModel struct {
	grove.BaseModel `grove:"table:busk_settings"`

	Key   string `grove:"key,pk"`
	Value int64  `grove:"value"`
}
