// Package observability provides a metrics extension for busk that records
// lifecycle event counts and settlement amounts via a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/busk/plugin"
	"github.com/xraph/busk/tip"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                 = (*MetricsExtension)(nil)
	_ plugin.OnInit                 = (*MetricsExtension)(nil)
	_ plugin.OnPerformerRegistered  = (*MetricsExtension)(nil)
	_ plugin.OnPerformerDeactivated = (*MetricsExtension)(nil)
	_ plugin.OnSessionStarted       = (*MetricsExtension)(nil)
	_ plugin.OnSessionEnded         = (*MetricsExtension)(nil)
	_ plugin.OnTipSettled           = (*MetricsExtension)(nil)
	_ plugin.OnFeeUpdated           = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a busk plugin to automatically track tipping metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Performer metrics
	PerformerRegistered  Counter
	PerformerDeactivated Counter

	// Session metrics
	SessionStarted Counter
	SessionEnded   Counter

	// Settlement metrics
	TipsSettled Counter
	TipGross    Histogram
	TipFee      Histogram
	TipNet      Histogram

	// Admin metrics
	FeeUpdated Counter
	FeeRate    Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Performer metrics
		PerformerRegistered:  factory.Counter("busk.performer.registered"),
		PerformerDeactivated: factory.Counter("busk.performer.deactivated"),

		// Session metrics
		SessionStarted: factory.Counter("busk.session.started"),
		SessionEnded:   factory.Counter("busk.session.ended"),

		// Settlement metrics
		TipsSettled: factory.Counter("busk.tip.settled"),
		TipGross:    factory.Histogram("busk.tip.gross_amount"),
		TipFee:      factory.Histogram("busk.tip.fee_amount"),
		TipNet:      factory.Histogram("busk.tip.net_amount"),

		// Admin metrics
		FeeUpdated: factory.Counter("busk.fee.updated"),
		FeeRate:    factory.Histogram("busk.fee.rate_bps"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Performer lifecycle hooks
// ──────────────────────────────────────────────────

// OnPerformerRegistered implements plugin.OnPerformerRegistered.
func (m *MetricsExtension) OnPerformerRegistered(_ context.Context, _ interface{}) error {
	m.PerformerRegistered.Inc()
	return nil
}

// OnPerformerDeactivated implements plugin.OnPerformerDeactivated.
func (m *MetricsExtension) OnPerformerDeactivated(_ context.Context, _ string) error {
	m.PerformerDeactivated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Session lifecycle hooks
// ──────────────────────────────────────────────────

// OnSessionStarted implements plugin.OnSessionStarted.
func (m *MetricsExtension) OnSessionStarted(_ context.Context, _ interface{}) error {
	m.SessionStarted.Inc()
	return nil
}

// OnSessionEnded implements plugin.OnSessionEnded.
func (m *MetricsExtension) OnSessionEnded(_ context.Context, _ interface{}) error {
	m.SessionEnded.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Settlement hooks
// ──────────────────────────────────────────────────

// OnTipSettled implements plugin.OnTipSettled.
func (m *MetricsExtension) OnTipSettled(_ context.Context, v interface{}) error {
	m.TipsSettled.Inc()
	if t, ok := v.(*tip.Tip); ok {
		m.TipGross.Observe(float64(t.Amount))
		m.TipFee.Observe(float64(t.Fee))
		m.TipNet.Observe(float64(t.Net))
	}
	return nil
}

// OnFeeUpdated implements plugin.OnFeeUpdated.
func (m *MetricsExtension) OnFeeUpdated(_ context.Context, _, newBps uint32) error {
	m.FeeUpdated.Inc()
	m.FeeRate.Observe(float64(newBps))
	return nil
}
