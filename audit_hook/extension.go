// Package audithook bridges busk lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any concrete audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/busk/performer"
	"github.com/xraph/busk/plugin"
	"github.com/xraph/busk/session"
	"github.com/xraph/busk/tip"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                 = (*Extension)(nil)
	_ plugin.OnPerformerRegistered  = (*Extension)(nil)
	_ plugin.OnPerformerDeactivated = (*Extension)(nil)
	_ plugin.OnSessionStarted       = (*Extension)(nil)
	_ plugin.OnSessionEnded         = (*Extension)(nil)
	_ plugin.OnTipSettled           = (*Extension)(nil)
	_ plugin.OnFeeUpdated           = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges busk lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Performer hooks
// ──────────────────────────────────────────────────

// OnPerformerRegistered implements plugin.OnPerformerRegistered.
func (e *Extension) OnPerformerRegistered(ctx context.Context, v interface{}) error {
	var resourceID, owner string
	if p, ok := v.(*performer.Performer); ok {
		resourceID = p.ID.String()
		owner = p.Owner.String()
	}
	return e.record(ctx, ActionPerformerRegistered, SeverityInfo, OutcomeSuccess,
		ResourcePerformer, resourceID, CategoryRegistry, nil,
		"owner", owner,
	)
}

// OnPerformerDeactivated implements plugin.OnPerformerDeactivated.
func (e *Extension) OnPerformerDeactivated(ctx context.Context, performerID string) error {
	return e.record(ctx, ActionPerformerDeactivated, SeverityWarning, OutcomeSuccess,
		ResourcePerformer, performerID, CategoryAdmin, nil,
		"performer_id", performerID,
	)
}

// ──────────────────────────────────────────────────
// Session hooks
// ──────────────────────────────────────────────────

// OnSessionStarted implements plugin.OnSessionStarted.
func (e *Extension) OnSessionStarted(ctx context.Context, v interface{}) error {
	var resourceID, performerID string
	if s, ok := v.(*session.Session); ok {
		resourceID = s.ID.String()
		performerID = s.PerformerID.String()
	}
	return e.record(ctx, ActionSessionStarted, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategorySession, nil,
		"performer_id", performerID,
	)
}

// OnSessionEnded implements plugin.OnSessionEnded.
func (e *Extension) OnSessionEnded(ctx context.Context, v interface{}) error {
	var resourceID string
	meta := []any{}
	if s, ok := v.(*session.Session); ok {
		resourceID = s.ID.String()
		meta = append(meta,
			"performer_id", s.PerformerID.String(),
			"earnings", s.Earnings,
			"tip_count", s.TipCount,
		)
	}
	return e.record(ctx, ActionSessionEnded, SeverityInfo, OutcomeSuccess,
		ResourceSession, resourceID, CategorySession, nil, meta...,
	)
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnTipSettled implements plugin.OnTipSettled.
func (e *Extension) OnTipSettled(ctx context.Context, v interface{}) error {
	var resourceID string
	meta := []any{}
	if t, ok := v.(*tip.Tip); ok {
		resourceID = t.ID.String()
		meta = append(meta,
			"session_id", t.SessionID.String(),
			"tipper", t.Tipper.String(),
			"amount", t.Amount,
			"fee", t.Fee,
			"net", t.Net,
		)
	}
	return e.record(ctx, ActionTipSettled, SeverityInfo, OutcomeSuccess,
		ResourceTip, resourceID, CategorySettlement, nil, meta...,
	)
}

// OnFeeUpdated implements plugin.OnFeeUpdated.
func (e *Extension) OnFeeUpdated(ctx context.Context, oldBps, newBps uint32) error {
	return e.record(ctx, ActionFeeUpdated, SeverityWarning, OutcomeSuccess,
		ResourceFee, "", CategoryAdmin, nil,
		"old_bps", oldBps,
		"new_bps", newBps,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
