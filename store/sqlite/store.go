// Package sqlite provides a SQLite-backed Store implementation using the
// Grove ORM. Suitable for development, tests and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	busk "github.com/xraph/busk"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/session"
	buskstore "github.com/xraph/busk/store"
	"github.com/xraph/busk/tip"
	"github.com/xraph/busk/types"
)

// compile-time interface check
var _ buskstore.Store = (*Store)(nil)

// Counter rows; seeded by the migrations.
const (
	counterPerformers = "performers"
	counterSessions   = "sessions"
	counterTips       = "tips"
)

const feeKey = "fee_bps"

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("busk/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("busk/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// nextID bumps a counter row and returns the new value. Ids are dense:
// each call yields the previous value plus one.
func (s *Store) nextID(ctx context.Context, name string) (uint64, error) {
	var v int64
	err := s.sdb.NewRaw(`
		UPDATE busk_counters SET value = value + 1 WHERE name = ? RETURNING value
	`, name).Scan(ctx, &v)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// ==================== Performer Store ====================

func (s *Store) CreatePerformer(ctx context.Context, p *performer.Performer) error {
	n, err := s.nextID(ctx, counterPerformers)
	if err != nil {
		return err
	}
	p.ID = id.PerformerID(n)

	m := toPerformerModel(p)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetPerformer(ctx context.Context, performerID id.PerformerID) (*performer.Performer, error) {
	m := new(performerModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(performerID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, busk.ErrPerformerNotFound
		}
		return nil, err
	}
	return fromPerformerModel(m)
}

func (s *Store) ListPerformers(ctx context.Context, opts performer.ListOpts) ([]*performer.Performer, error) {
	var models []performerModel
	q := s.sdb.NewSelect(&models)

	if opts.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*performer.Performer, len(models))
	for i := range models {
		p, err := fromPerformerModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) DeactivatePerformer(ctx context.Context, performerID id.PerformerID) error {
	res, err := s.sdb.NewUpdate((*performerModel)(nil)).
		Set("active = ?", false).
		Set("updated_at = ?", now()).
		Where("id = ?", int64(performerID)).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return busk.ErrPerformerNotFound
	}
	return nil
}

// ==================== Session Store ====================

func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	n, err := s.nextID(ctx, counterSessions)
	if err != nil {
		return err
	}
	sess.ID = id.SessionID(n)

	m := toSessionModel(sess)
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	m := new(sessionModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(sessionID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, busk.ErrSessionNotFound
		}
		return nil, err
	}
	return fromSessionModel(m)
}

func (s *Store) ListSessions(ctx context.Context, performerID id.PerformerID, opts session.ListOpts) ([]*session.Session, error) {
	var models []sessionModel
	q := s.sdb.NewSelect(&models).
		Where("performer_id = ?", int64(performerID))

	if opts.OpenOnly {
		q = q.Where("ended_at IS NULL")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*session.Session, len(models))
	for i := range models {
		sess, err := fromSessionModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sess
	}
	return result, nil
}

func (s *Store) CloseSession(ctx context.Context, sessionID id.SessionID, endedAt uint64) error {
	res, err := s.sdb.NewUpdate((*sessionModel)(nil)).
		Set("ended_at = ?", int64(endedAt)).
		Set("updated_at = ?", now()).
		Where("id = ?", int64(sessionID)).
		Where("ended_at IS NULL").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Zero rows means either the session does not exist or it is
		// already closed; fetch to tell the cases apart.
		if _, err := s.GetSession(ctx, sessionID); err != nil {
			return err
		}
		return busk.ErrSessionClosed
	}
	return nil
}

// ==================== Tip Store ====================

// SettleTip persists the tip and applies the session and performer
// bookkeeping bumps. The engine holds its settlement lock across the call,
// so intermediate states are never observable.
func (s *Store) SettleTip(ctx context.Context, t *tip.Tip) error {
	sess, err := s.GetSession(ctx, t.SessionID)
	if err != nil {
		return err
	}

	n, err := s.nextID(ctx, counterTips)
	if err != nil {
		return err
	}
	t.ID = id.TipID(n)

	m := toTipModel(t)
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return err
	}

	if _, err := s.sdb.NewUpdate((*sessionModel)(nil)).
		Set("earnings = earnings + ?", int64(t.Net)).
		Set("tip_count = tip_count + 1").
		Set("updated_at = ?", now()).
		Where("id = ?", int64(t.SessionID)).
		Exec(ctx); err != nil {
		return err
	}

	if _, err := s.sdb.NewUpdate((*performerModel)(nil)).
		Set("total_earned = total_earned + ?", int64(t.Net)).
		Set("tip_count = tip_count + 1").
		Set("updated_at = ?", now()).
		Where("id = ?", int64(sess.PerformerID)).
		Exec(ctx); err != nil {
		return err
	}

	return nil
}

func (s *Store) GetTip(ctx context.Context, tipID id.TipID) (*tip.Tip, error) {
	m := new(tipModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", int64(tipID)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, busk.ErrTipNotFound
		}
		return nil, err
	}
	return fromTipModel(m)
}

func (s *Store) ListTips(ctx context.Context, sessionID id.SessionID, opts tip.ListOpts) ([]*tip.Tip, error) {
	var models []tipModel
	q := s.sdb.NewSelect(&models).
		Where("session_id = ?", int64(sessionID))

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*tip.Tip, len(models))
	for i := range models {
		t, err := fromTipModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

// ==================== Platform fee ====================

func (s *Store) PlatformFee(ctx context.Context) (types.BasisPoints, error) {
	m := new(settingModel)
	err := s.sdb.NewSelect(m).
		Where("key = ?", feeKey).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return types.DefaultPlatformFee, nil
		}
		return 0, err
	}
	return types.BasisPoints(m.Value), nil
}

func (s *Store) SetPlatformFee(ctx context.Context, fee types.BasisPoints) error {
	res, err := s.sdb.NewUpdate((*settingModel)(nil)).
		Set("value = ?", int64(fee)).
		Where("key = ?", feeKey).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		m := &settingModel{Key: feeKey, Value: int64(fee)}
		_, err = s.sdb.NewInsert(m).Exec(ctx)
		return err
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
