package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. PERMSTORE_DATABASE_PATH.
const envPrefix = "PERMSTORE"

// Manager loads and saves the configuration.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	configDir string
	mu        sync.RWMutex
}

// NewManager creates a manager reading from the XDG config directory.
func NewManager() (*Manager, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	return NewManagerWithDir(configDir)
}

// NewManagerWithDir creates a manager reading config.toml from configDir.
func NewManagerWithDir(configDir string) (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short forms for the settings most often overridden from a shell.
	if err := v.BindEnv("logging.level", "PERMSTORE_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind PERMSTORE_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "PERMSTORE_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind PERMSTORE_LOG_FORMAT: %w", err)
	}

	return &Manager{viper: v, configDir: configDir}, nil
}

// Load reads the config file, creating it with defaults when missing, then
// applies environment overrides, resolves paths and validates.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	setDefaults(m.viper)

	if err := m.readConfigFile(); err != nil {
		return err
	}

	cfg := &Config{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(), err)
	}

	if err := resolvePaths(cfg); err != nil {
		return err
	}
	normalizeConfig(cfg)

	if err := Validate(cfg); err != nil {
		return err
	}

	m.config = cfg
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions",
			m.ConfigFile(), err)
	}

	if err := m.createDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
			m.configDir, err)
	}
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read newly created config file: %w", err)
	}
	return nil
}

func (m *Manager) createDefaultConfig() error {
	if err := os.MkdirAll(m.configDir, dirPerm); err != nil {
		return err
	}
	return WriteConfig(DefaultConfig(), m.ConfigFile())
}

// resolvePaths fills empty database and log paths from the XDG directories.
func resolvePaths(cfg *Config) error {
	if cfg.Database.Path == "" {
		p, err := GetPermissionsDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
		cfg.Database.Path = p
	}
	if cfg.Database.PlacesPath == "" {
		p, err := GetPlacesDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get places database path: %w", err)
		}
		cfg.Database.PlacesPath = p
	}
	if cfg.Logging.LogDir == "" {
		p, err := GetLogDir()
		if err != nil {
			return fmt.Errorf("failed to get log directory: %w", err)
		}
		cfg.Logging.LogDir = p
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Database.PlacesPath = expandHome(cfg.Database.PlacesPath)
	cfg.Logging.LogDir = expandHome(cfg.Logging.LogDir)
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func normalizeConfig(cfg *Config) {
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	switch strings.ToLower(strings.TrimSpace(cfg.Permissions.DefaultScope)) {
	case "", defaultScope:
		cfg.Permissions.DefaultScope = defaultScope
	case "session":
		cfg.Permissions.DefaultScope = "session"
	default:
		// Left as-is so validation reports it.
	}
}

// Get returns a copy of the loaded configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	cfgCopy := *m.config
	return &cfgCopy
}

// Save validates cfg, writes it to the config file and reloads.
func (m *Manager) Save(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := WriteConfig(cfg, m.ConfigFile()); err != nil {
		return err
	}
	return m.Load()
}

// ConfigFile returns the path of the config file in use, or where it
// would be created.
func (m *Manager) ConfigFile() string {
	if used := m.viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(m.configDir, configFileName)
}
