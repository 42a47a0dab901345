package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                 []OnInit
	onShutdown             []OnShutdown
	onPerformerRegistered  []OnPerformerRegistered
	onPerformerDeactivated []OnPerformerDeactivated
	onSessionStarted       []OnSessionStarted
	onSessionEnded         []OnSessionEnded
	onTipSettled           []OnTipSettled
	onFeeUpdated           []OnFeeUpdated
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnPerformerRegistered); ok {
		r.onPerformerRegistered = append(r.onPerformerRegistered, v)
	}
	if v, ok := p.(OnPerformerDeactivated); ok {
		r.onPerformerDeactivated = append(r.onPerformerDeactivated, v)
	}
	if v, ok := p.(OnSessionStarted); ok {
		r.onSessionStarted = append(r.onSessionStarted, v)
	}
	if v, ok := p.(OnSessionEnded); ok {
		r.onSessionEnded = append(r.onSessionEnded, v)
	}
	if v, ok := p.(OnTipSettled); ok {
		r.onTipSettled = append(r.onTipSettled, v)
	}
	if v, ok := p.(OnFeeUpdated); ok {
		r.onFeeUpdated = append(r.onFeeUpdated, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnPerformerRegistered)(nil)).Elem(), "OnPerformerRegistered")
	checkInterface(reflect.TypeOf((*OnPerformerDeactivated)(nil)).Elem(), "OnPerformerDeactivated")
	checkInterface(reflect.TypeOf((*OnSessionStarted)(nil)).Elem(), "OnSessionStarted")
	checkInterface(reflect.TypeOf((*OnSessionEnded)(nil)).Elem(), "OnSessionEnded")
	checkInterface(reflect.TypeOf((*OnTipSettled)(nil)).Elem(), "OnTipSettled")
	checkInterface(reflect.TypeOf((*OnFeeUpdated)(nil)).Elem(), "OnFeeUpdated")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPerformerRegistered emits a performer registered event.
func (r *Registry) EmitPerformerRegistered(ctx context.Context, performer interface{}) {
	r.mu.RLock()
	plugins := r.onPerformerRegistered
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPerformerRegistered(ctx, performer)
		}); err != nil {
			r.logger.Warn("plugin OnPerformerRegistered failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitPerformerDeactivated emits a performer deactivated event.
func (r *Registry) EmitPerformerDeactivated(ctx context.Context, performerID string) {
	r.mu.RLock()
	plugins := r.onPerformerDeactivated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnPerformerDeactivated(ctx, performerID)
		}); err != nil {
			r.logger.Warn("plugin OnPerformerDeactivated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionStarted emits a session started event.
func (r *Registry) EmitSessionStarted(ctx context.Context, session interface{}) {
	r.mu.RLock()
	plugins := r.onSessionStarted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionStarted(ctx, session)
		}); err != nil {
			r.logger.Warn("plugin OnSessionStarted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitSessionEnded emits a session ended event.
func (r *Registry) EmitSessionEnded(ctx context.Context, session interface{}) {
	r.mu.RLock()
	plugins := r.onSessionEnded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnSessionEnded(ctx, session)
		}); err != nil {
			r.logger.Warn("plugin OnSessionEnded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTipSettled emits a tip settled event.
func (r *Registry) EmitTipSettled(ctx context.Context, tip interface{}) {
	r.mu.RLock()
	plugins := r.onTipSettled
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTipSettled(ctx, tip)
		}); err != nil {
			r.logger.Warn("plugin OnTipSettled failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitFeeUpdated emits a fee updated event.
func (r *Registry) EmitFeeUpdated(ctx context.Context, oldBps, newBps uint32) {
	r.mu.RLock()
	plugins := r.onFeeUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnFeeUpdated(ctx, oldBps, newBps)
		}); err != nil {
			r.logger.Warn("plugin OnFeeUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block settlement.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
