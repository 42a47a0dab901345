// Package extension provides the Forge extension adapter for busk.
//
// It implements the forge.Extension interface to integrate the tipping
// engine into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.busk" or "busk" keys.
package extension

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	busk "github.com/xraph/busk"
	"github.com/xraph/busk/bank"
	"github.com/xraph/busk/id"
	"github.com/xraph/busk/store"
	"github.com/xraph/busk/store/memory"
	"github.com/xraph/busk/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "busk"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Embeddable tipping ledger for live performances"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts busk as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *busk.Engine
	store      store.Store
	bank       bank.Bank
	platform   id.AccountID
	engineOpts []busk.Option
}

// New creates a new busk Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying busk engine.
// This is nil until Register is called.
func (e *Extension) Engine() *busk.Engine { return e.engine }

// Platform returns the platform owner account.
func (e *Extension) Platform() id.AccountID { return e.platform }

// Register implements [forge.Extension]. It loads configuration,
// initializes the engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store and bank if none were provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}
	if e.bank == nil {
		e.bank = bank.NewInMemory()
	}

	if err := e.resolvePlatform(); err != nil {
		return err
	}

	eng := busk.New(e.store, e.bank, e.platform, e.engineOpts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*busk.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("busk: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	if e.config.DefaultFeeBps > 0 {
		fee := types.BasisPoints(e.config.DefaultFeeBps)
		if err := e.engine.SetPlatformFee(ctx, e.platform, fee); err != nil {
			return fmt.Errorf("busk: apply configured fee: %w", err)
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("busk: store not initialized")
	}
	return e.store.Ping(ctx)
}

// resolvePlatform picks the platform owner account: the programmatic option
// wins, then the configured account string, then a freshly generated id.
func (e *Extension) resolvePlatform() error {
	if !e.platform.IsNil() {
		return nil
	}

	if e.config.PlatformAccount != "" {
		platform, err := id.ParseAccountID(e.config.PlatformAccount)
		if err != nil {
			return fmt.Errorf("busk: invalid platform_account: %w", err)
		}
		e.platform = platform
		return nil
	}

	e.platform = id.NewAccountID()
	e.Logger().Warn("busk: no platform account configured, generated one",
		forge.F("platform", e.platform.String()),
	)
	return nil
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("busk: configuration is required but not found in config files; " +
				"ensure 'extensions.busk' or 'busk' key exists in your config")
		}

		e.config = programmaticConfig
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("busk: configuration loaded",
		forge.F("platform_account", e.config.PlatformAccount),
		forge.F("default_fee_bps", e.config.DefaultFeeBps),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.busk" first (namespaced pattern).
	if cm.IsSet("extensions.busk") {
		if err := cm.Bind("extensions.busk", &cfg); err == nil {
			e.Logger().Debug("busk: loaded config from file",
				forge.F("key", "extensions.busk"),
			)
			return cfg, true
		}
		e.Logger().Warn("busk: failed to bind extensions.busk config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "busk" key.
	if cm.IsSet("busk") {
		if err := cm.Bind("busk", &cfg); err == nil {
			e.Logger().Debug("busk: loaded config from file",
				forge.F("key", "busk"),
			)
			return cfg, true
		}
		e.Logger().Warn("busk: failed to bind busk config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence; programmatic values fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	if yamlConfig.PlatformAccount == "" && programmaticConfig.PlatformAccount != "" {
		yamlConfig.PlatformAccount = programmaticConfig.PlatformAccount
	}
	if yamlConfig.DefaultFeeBps == 0 && programmaticConfig.DefaultFeeBps != 0 {
		yamlConfig.DefaultFeeBps = programmaticConfig.DefaultFeeBps
	}

	return yamlConfig
}
