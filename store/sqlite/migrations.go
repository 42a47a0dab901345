package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Busk store (SQLite).
var Migrations = migrate.NewGroup("busk")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_busk_performers",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS busk_performers (
    id           INTEGER PRIMARY KEY,
    owner        TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    instrument   TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    total_earned INTEGER NOT NULL DEFAULT 0,
    tip_count    INTEGER NOT NULL DEFAULT 0,
    active       INTEGER NOT NULL DEFAULT 1,
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_busk_performers_owner ON busk_performers (owner);
CREATE INDEX IF NOT EXISTS idx_busk_performers_active ON busk_performers (active);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS busk_performers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_busk_sessions",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS busk_sessions (
    id           INTEGER PRIMARY KEY,
    performer_id INTEGER NOT NULL,
    started_at   INTEGER NOT NULL DEFAULT 0,
    ended_at     INTEGER,
    location     TEXT NOT NULL DEFAULT '',
    earnings     INTEGER NOT NULL DEFAULT 0,
    tip_count    INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_busk_sessions_performer ON busk_sessions (performer_id);
CREATE INDEX IF NOT EXISTS idx_busk_sessions_open ON busk_sessions (performer_id, ended_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS busk_sessions`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_busk_tips",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS busk_tips (
    id         INTEGER PRIMARY KEY,
    session_id INTEGER NOT NULL,
    tipper     TEXT NOT NULL DEFAULT '',
    amount     INTEGER NOT NULL DEFAULT 0,
    fee        INTEGER NOT NULL DEFAULT 0,
    net        INTEGER NOT NULL DEFAULT 0,
    timestamp  INTEGER NOT NULL DEFAULT 0,
    message    TEXT,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_busk_tips_session ON busk_tips (session_id);
CREATE INDEX IF NOT EXISTS idx_busk_tips_tipper ON busk_tips (tipper);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS busk_tips`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_busk_counters",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS busk_counters (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL DEFAULT 0
);

INSERT INTO busk_counters (name, value) VALUES
    ('performers', 0),
    ('sessions', 0),
    ('tips', 0)
ON CONFLICT (name) DO NOTHING;

CREATE TABLE IF NOT EXISTS busk_settings (
    key   TEXT PRIMARY KEY,
    value INTEGER NOT NULL DEFAULT 0
);

INSERT INTO busk_settings (key, value) VALUES ('fee_bps', 100)
ON CONFLICT (key) DO NOTHING;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
DROP TABLE IF EXISTS busk_settings;
DROP TABLE IF EXISTS busk_counters;
`)
				return err
			},
		},
	)
}
