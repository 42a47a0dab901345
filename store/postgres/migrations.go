package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Busk store.
var Migrations = migrate.NewGroup("busk")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_busk_performers",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS busk_performers (
    id           BIGINT PRIMARY KEY,
    owner        TEXT NOT NULL DEFAULT '',
    name         TEXT NOT NULL DEFAULT '',
    instrument   TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    total_earned BIGINT NOT NULL DEFAULT 0,
    tip_count    BIGINT NOT NULL DEFAULT 0,
    active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    id           BIGINT PRIMARY KEY,
    performer_id BIGINT NOT NULL,
    started_at   BIGINT NOT NULL DEFAULT 0,
    ended_at     BIGINT,
    location     TEXT NOT NULL DEFAULT '',
    earnings     BIGINT NOT NULL DEFAULT 0,
    tip_count    BIGINT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    id         BIGINT PRIMARY KEY,
    session_id BIGINT NOT NULL,
    tipper     TEXT NOT NULL DEFAULT '',
    amount     BIGINT NOT NULL DEFAULT 0,
    fee        BIGINT NOT NULL DEFAULT 0,
    net        BIGINT NOT NULL DEFAULT 0,
    timestamp  BIGINT NOT NULL DEFAULT 0,
    message    TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    value BIGINT NOT NULL DEFAULT 0
);

INSERT INTO busk_counters (name, value) VALUES
    ('performers', 0),
    ('sessions', 0),
    ('tips', 0)
ON CONFLICT (name) DO NOTHING;

CREATE TABLE IF NOT EXISTS busk_settings (
    key   TEXT PRIMARY KEY,
    value BIGINT NOT NULL DEFAULT 0
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
