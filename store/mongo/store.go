// Package mongo provides a MongoDB-backed Store implementation using the
// Grove ORM. Record ids are allocated through an atomic counter document
// per record family, so ids stay dense across concurrent engines.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	busk "github.com/xraph/busk"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/session"
	buskstore "github.com/xraph/busk/store"
	"github.com/xraph/busk/tip"
	"github.com/xraph/busk/types"
)

// Collection name constants.
const (
	colPerformers = "busk_performers"
	colSessions   = "busk_sessions"
	colTips       = "busk_tips"
	colCounters   = "busk_counters"
	colSettings   = "busk_settings"
)

// Counter documents.
const (
	counterPerformers = "performers"
	counterSessions   = "sessions"
	counterTips       = "tips"
)

const feeKey = "fee_bps"

// compile-time interface check
var _ buskstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all busk collections and seeds the fee
// setting. Counter documents are created lazily on first allocation.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("busk/mongo: migrate %s indexes: %w", col, err)
		}
	}

	_, err := s.mdb.Collection(colSettings).UpdateOne(ctx,
		bson.M{"_id": feeKey},
		bson.M{"$setOnInsert": bson.M{"value": int64(types.DefaultPlatformFee)}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("busk/mongo: seed fee setting: %w", err)
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

// nextID atomically bumps a counter document and returns the new value.
// The upsert makes the first allocation create the document at 1.
func (s *Store) nextID(ctx context.Context, name string) (uint64, error) {
	res := s.mdb.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var doc struct {
		Value int64 `bson:"value"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, fmt.Errorf("busk/mongo: next %s id: %w", name, err)
	}
	return uint64(doc.Value), nil
}

// ==================== Performer Store ====================

func (s *Store) CreatePerformer(ctx context.Context, p *performer.Performer) error {
	n, err := s.nextID(ctx, counterPerformers)
	if err != nil {
		return err
	}
	p.ID = id.PerformerID(n)

	m := toPerformerModel(p)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("busk/mongo: create performer: %w", err)
	}
	return nil
}

func (s *Store) GetPerformer(ctx context.Context, performerID id.PerformerID) (*performer.Performer, error) {
	var m performerModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(performerID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, busk.ErrPerformerNotFound
		}
		return nil, fmt.Errorf("busk/mongo: get performer: %w", err)
	}
	return fromPerformerModel(&m)
}

func (s *Store) ListPerformers(ctx context.Context, opts performer.ListOpts) ([]*performer.Performer, error) {
	var models []performerModel

	filter := bson.M{}
	if opts.ActiveOnly {
		filter["active"] = true
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("busk/mongo: list performers: %w", err)
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
	res, err := s.mdb.NewUpdate((*performerModel)(nil)).
		Filter(bson.M{"_id": int64(performerID)}).
		Set("active", false).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("busk/mongo: deactivate performer: %w", err)
	}
	if res.MatchedCount() == 0 {
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
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("busk/mongo: create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	var m sessionModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(sessionID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, busk.ErrSessionNotFound
		}
		return nil, fmt.Errorf("busk/mongo: get session: %w", err)
	}
	return fromSessionModel(&m)
}

func (s *Store) ListSessions(ctx context.Context, performerID id.PerformerID, opts session.ListOpts) ([]*session.Session, error) {
	var models []sessionModel

	filter := bson.M{"performer_id": int64(performerID)}
	if opts.OpenOnly {
		filter["ended_at"] = nil
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("busk/mongo: list sessions: %w", err)
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
	res, err := s.mdb.NewUpdate((*sessionModel)(nil)).
		Filter(bson.M{"_id": int64(sessionID), "ended_at": nil}).
		Set("ended_at", int64(endedAt)).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("busk/mongo: close session: %w", err)
	}
	if res.MatchedCount() == 0 {
		// No match means either the session does not exist or it is
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
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("busk/mongo: create tip: %w", err)
	}

	_, err = s.mdb.Collection(colSessions).UpdateOne(ctx,
		bson.M{"_id": int64(t.SessionID)},
		bson.M{
			"$inc": bson.M{"earnings": int64(t.Net), "tip_count": int64(1)},
			"$set": bson.M{"updated_at": now()},
		},
	)
	if err != nil {
		return fmt.Errorf("busk/mongo: credit session: %w", err)
	}

	_, err = s.mdb.Collection(colPerformers).UpdateOne(ctx,
		bson.M{"_id": int64(sess.PerformerID)},
		bson.M{
			"$inc": bson.M{"total_earned": int64(t.Net), "tip_count": int64(1)},
			"$set": bson.M{"updated_at": now()},
		},
	)
	if err != nil {
		return fmt.Errorf("busk/mongo: credit performer: %w", err)
	}

	return nil
}

func (s *Store) GetTip(ctx context.Context, tipID id.TipID) (*tip.Tip, error) {
	var m tipModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": int64(tipID)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, busk.ErrTipNotFound
		}
		return nil, fmt.Errorf("busk/mongo: get tip: %w", err)
	}
	return fromTipModel(&m)
}

func (s *Store) ListTips(ctx context.Context, sessionID id.SessionID, opts tip.ListOpts) ([]*tip.Tip, error) {
	var models []tipModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"session_id": int64(sessionID)}).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("busk/mongo: list tips: %w", err)
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
	var m settingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": feeKey}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return types.DefaultPlatformFee, nil
		}
		return 0, fmt.Errorf("busk/mongo: get platform fee: %w", err)
	}
	return types.BasisPoints(m.Value), nil
}

func (s *Store) SetPlatformFee(ctx context.Context, fee types.BasisPoints) error {
	_, err := s.mdb.Collection(colSettings).UpdateOne(ctx,
		bson.M{"_id": feeKey},
		bson.M{"$set": bson.M{"value": int64(fee)}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("busk/mongo: set platform fee: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all busk collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colPerformers: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "active", Value: 1}}},
		},
		colSessions: {
			{Keys: bson.D{{Key: "performer_id", Value: 1}}},
			{Keys: bson.D{{Key: "performer_id", Value: 1}, {Key: "ended_at", Value: 1}}},
		},
		colTips: {
			{Keys: bson.D{{Key: "session_id", Value: 1}}},
			{Keys: bson.D{{Key: "tipper", Value: 1}}},
		},
	}
}
