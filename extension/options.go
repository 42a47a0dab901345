package extension

import (
	busk "github.com/xraph/busk"
	"github.com/xraph/busk/bank"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/plugin"
	"github.com/xraph/busk/store"
)

// Option configures the busk Forge extension.
type Option func(*Extension)

// WithStore sets the store for the busk engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithBank sets the bank used for value movement.
func WithBank(b bank.Bank) Option {
	return func(e *Extension) {
		e.bank = b
	}
}

// WithPlatform sets the platform owner account.
func WithPlatform(platform id.AccountID) Option {
	return func(e *Extension) {
		e.platform = platform
	}
}

// WithEngineOption passes a busk.Option through to the underlying engine.
func WithEngineOption(opt busk.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a busk plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, busk.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithDefaultFeeBps overwrites the platform fee after migration.
func WithDefaultFeeBps(bps uint32) Option {
	return func(e *Extension) { e.config.DefaultFeeBps = bps }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
