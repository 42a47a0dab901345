// Package plugin provides an extensible plugin system for the busk engine.
// Plugins can hook into lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Performer hooks
// ──────────────────────────────────────────────────

// OnPerformerRegistered is called when a new performer is registered.
type OnPerformerRegistered interface {
	Plugin
	OnPerformerRegistered(ctx context.Context, performer interface{}) error
}

// OnPerformerDeactivated is called when a performer is deactivated.
type OnPerformerDeactivated interface {
	Plugin
	OnPerformerDeactivated(ctx context.Context, performerID string) error
}

// ──────────────────────────────────────────────────
// Session hooks
// ──────────────────────────────────────────────────

// OnSessionStarted is called when a session is opened.
type OnSessionStarted interface {
	Plugin
	OnSessionStarted(ctx context.Context, session interface{}) error
}

// OnSessionEnded is called when a session is closed.
type OnSessionEnded interface {
	Plugin
	OnSessionEnded(ctx context.Context, session interface{}) error
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnTipSettled is called after a tip has been settled: both transfers have
// completed and the bookkeeping has been committed.
type OnTipSettled interface {
	Plugin
	OnTipSettled(ctx context.Context, tip interface{}) error
}

// OnFeeUpdated is called when the platform fee rate changes. Rates are in
// basis points.
type OnFeeUpdated interface {
	Plugin
	OnFeeUpdated(ctx context.Context, oldBps, newBps uint32) error
}
