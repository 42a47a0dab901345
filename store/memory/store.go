// Package memory provides an in-process Store implementation backed by
// maps. It is the reference store: tests and examples use it, and the Forge
// extension falls back to it when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/busk"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/session"
	buskstore "github.com/xraph/busk/store"
	"github.com/xraph/busk/tip"
	"github.com/xraph/busk/types"
)

// compile-time interface check
var _ buskstore.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	performers map[id.PerformerID]*performer.Performer
	sessions   map[id.SessionID]*session.Session
	tips       map[id.TipID]*tip.Tip

	// Next-id sources. Bumped exactly once per successful creation and
	// never reused, even if a creation is later deemed logically void.
	performerCounter uint64
	sessionCounter   uint64
	tipCounter       uint64

	feeBps types.BasisPoints
}

func New() *Store {
	return &Store{
		performers: make(map[id.PerformerID]*performer.Performer),
		sessions:   make(map[id.SessionID]*session.Session),
		tips:       make(map[id.TipID]*tip.Tip),
		feeBps:     types.DefaultPlatformFee,
	}
}

// Performer Store implementation

func (s *Store) CreatePerformer(_ context.Context, p *performer.Performer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.performerCounter++
	p.ID = id.PerformerID(s.performerCounter)
	s.performers[p.ID] = p
	return nil
}

func (s *Store) GetPerformer(_ context.Context, performerID id.PerformerID) (*performer.Performer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.performers[performerID]; ok {
		return p, nil
	}
	return nil, busk.ErrPerformerNotFound
}

func (s *Store) ListPerformers(_ context.Context, opts performer.ListOpts) ([]*performer.Performer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*performer.Performer, 0)
	for _, p := range s.performers {
		if opts.ActiveOnly && !p.Active {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) DeactivatePerformer(_ context.Context, performerID id.PerformerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.performers[performerID]
	if !ok {
		return busk.ErrPerformerNotFound
	}
	p.Active = false
	p.Touch()
	return nil
}

// Session Store implementation

func (s *Store) CreateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionCounter++
	sess.ID = id.SessionID(s.sessionCounter)
	s.sessions[sess.ID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID id.SessionID) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	return nil, busk.ErrSessionNotFound
}

func (s *Store) ListSessions(_ context.Context, performerID id.PerformerID, opts session.ListOpts) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*session.Session, 0)
	for _, sess := range s.sessions {
		if sess.PerformerID != performerID {
			continue
		}
		if opts.OpenOnly && !sess.Open() {
			continue
		}
		result = append(result, sess)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return page(result, opts.Offset, opts.Limit), nil
}

func (s *Store) CloseSession(_ context.Context, sessionID id.SessionID, endedAt uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return busk.ErrSessionNotFound
	}
	if !sess.Open() {
		return busk.ErrSessionClosed
	}
	sess.EndedAt = &endedAt
	sess.Touch()
	return nil
}

// Tip Store implementation

func (s *Store) SettleTip(_ context.Context, t *tip.Tip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[t.SessionID]
	if !ok {
		return busk.ErrSessionNotFound
	}
	p, ok := s.performers[sess.PerformerID]
	if !ok {
		return busk.ErrPerformerNotFound
	}

	s.tipCounter++
	t.ID = id.TipID(s.tipCounter)
	s.tips[t.ID] = t

	sess.Earnings += t.Net
	sess.TipCount++
	sess.Touch()

	p.TotalEarned += t.Net
	p.TipCount++
	p.Touch()

	return nil
}

func (s *Store) GetTip(_ context.Context, tipID id.TipID) (*tip.Tip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tips[tipID]; ok {
		return t, nil
	}
	return nil, busk.ErrTipNotFound
}

func (s *Store) ListTips(_ context.Context, sessionID id.SessionID, opts tip.ListOpts) ([]*tip.Tip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*tip.Tip, 0)
	for _, t := range s.tips {
		if t.SessionID == sessionID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return page(result, opts.Offset, opts.Limit), nil
}

// Platform fee

func (s *Store) PlatformFee(_ context.Context) (types.BasisPoints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feeBps, nil
}

func (s *Store) SetPlatformFee(_ context.Context, fee types.BasisPoints) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeBps = fee
	return nil
}

// Lifecycle

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// page applies offset/limit the way all list methods do. Limit 0 means no
// limit; a negative offset counts as 0.
func page[T any](result []T, offset, limit int) []T {
	start := offset
	if start < 0 {
		start = 0
	}
	if start > len(result) {
		start = len(result)
	}
	end := start + limit
	if limit <= 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end]
}
