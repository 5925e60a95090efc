package config

import "github.com/spf13/viper"

// Default configuration constants
const (
	defaultBusyTimeoutMs = 5000

	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 7

	defaultScope = "persistent"
)

// DefaultDarkPalette is the built-in CLI palette.
func DefaultDarkPalette() ColorPalette {
	return ColorPalette{
		Background:     "#0a0a0b",
		Surface:        "#1a1a1b",
		SurfaceVariant: "#2d2d2d",
		Text:           "#ffffff",
		Muted:          "#909090",
		Accent:         "#4ade80",
		Border:         "#333333",
	}
}

// DefaultConfig returns the configuration used when no file exists.
// Database paths are left empty and resolved at load time.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			BusyTimeoutMs: defaultBusyTimeoutMs,
		},
		Logging: LoggingConfig{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAgeDays: defaultMaxAgeDays,
		},
		Permissions: PermissionsConfig{
			DefaultScope: defaultScope,
		},
		Appearance: AppearanceConfig{
			Palette: DefaultDarkPalette(),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.places_path", d.Database.PlacesPath)
	v.SetDefault("database.busy_timeout_ms", d.Database.BusyTimeoutMs)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.enable_file_log", d.Logging.EnableFileLog)
	v.SetDefault("logging.log_dir", d.Logging.LogDir)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)

	v.SetDefault("permissions.default_scope", d.Permissions.DefaultScope)

	p := d.Appearance.Palette
	v.SetDefault("appearance.palette.background", p.Background)
	v.SetDefault("appearance.palette.surface", p.Surface)
	v.SetDefault("appearance.palette.surface_variant", p.SurfaceVariant)
	v.SetDefault("appearance.palette.text", p.Text)
	v.SetDefault("appearance.palette.muted", p.Muted)
	v.SetDefault("appearance.palette.accent", p.Accent)
	v.SetDefault("appearance.palette.border", p.Border)
}
