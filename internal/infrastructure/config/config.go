// Package config loads permstore configuration from file and environment.
package config

// Config is the complete permstore configuration.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database" toml:"database"`
	Logging     LoggingConfig     `mapstructure:"logging" toml:"logging"`
	Permissions PermissionsConfig `mapstructure:"permissions" toml:"permissions"`
	Appearance  AppearanceConfig  `mapstructure:"appearance" toml:"appearance"`
}

// DatabaseConfig locates the permission and history databases.
// Empty paths resolve to the XDG data directory.
type DatabaseConfig struct {
	Path       string `mapstructure:"path" toml:"path"`
	PlacesPath string `mapstructure:"places_path" toml:"places_path"`

	// BusyTimeoutMs is how long a connection waits on a locked database.
	BusyTimeoutMs int `mapstructure:"busy_timeout_ms" toml:"busy_timeout_ms" validate:"gte=0,lte=600000"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" validate:"oneof=trace debug info warn warning error off disabled"`
	Format string `mapstructure:"format" toml:"format" validate:"oneof=console json"`

	// File output configuration
	EnableFileLog bool   `mapstructure:"enable_file_log" toml:"enable_file_log"`
	LogDir        string `mapstructure:"log_dir" toml:"log_dir"`
	MaxSizeMB     int    `mapstructure:"max_size_mb" toml:"max_size_mb" validate:"gte=1"`
	MaxBackups    int    `mapstructure:"max_backups" toml:"max_backups" validate:"gte=0"`
	MaxAgeDays    int    `mapstructure:"max_age_days" toml:"max_age_days" validate:"gte=0"`
}

// PermissionsConfig holds store behavior defaults.
type PermissionsConfig struct {
	// DefaultScope applies to `set` when no scope flag is given.
	DefaultScope string `mapstructure:"default_scope" toml:"default_scope" validate:"oneof=persistent session"`
}

// AppearanceConfig holds CLI colors.
type AppearanceConfig struct {
	Palette ColorPalette `mapstructure:"palette" toml:"palette"`
}

// ColorPalette is the CLI color set, as hex strings.
type ColorPalette struct {
	Background     string `mapstructure:"background" toml:"background" validate:"omitempty,hexcolor"`
	Surface        string `mapstructure:"surface" toml:"surface" validate:"omitempty,hexcolor"`
	SurfaceVariant string `mapstructure:"surface_variant" toml:"surface_variant" validate:"omitempty,hexcolor"`
	Text           string `mapstructure:"text" toml:"text" validate:"omitempty,hexcolor"`
	Muted          string `mapstructure:"muted" toml:"muted" validate:"omitempty,hexcolor"`
	Accent         string `mapstructure:"accent" toml:"accent" validate:"omitempty,hexcolor"`
	Border         string `mapstructure:"border" toml:"border" validate:"omitempty,hexcolor"`
}
