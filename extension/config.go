package extension

// Config holds the busk extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.busk" or "busk" keys).
type Config struct {
	// PlatformAccount is the account id of the platform owner. When empty
	// and no WithPlatform option was given, a fresh account id is generated
	// at Register time.
	PlatformAccount string `json:"platform_account" mapstructure:"platform_account" yaml:"platform_account"`

	// DefaultFeeBps overwrites the platform fee after migration. Zero means
	// keep whatever the store holds (100 bps on a fresh store).
	DefaultFeeBps uint32 `json:"default_fee_bps" mapstructure:"default_fee_bps" yaml:"default_fee_bps"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
