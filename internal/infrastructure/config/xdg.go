package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	appName = "permstore"

	configFileName      = "config.toml"
	permissionsFileName = "permissions.sqlite"
	placesFileName      = "places.sqlite"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Dirs holds the XDG base directories used by permstore.
type Dirs struct {
	ConfigHome string
	DataHome   string
	StateHome  string
}

// GetDirs returns the permstore XDG directories:
//   - $XDG_CONFIG_HOME/permstore
//   - $XDG_DATA_HOME/permstore
//   - $XDG_STATE_HOME/permstore
//
// With ENV=dev everything lives under ./.dev/permstore.
func GetDirs() (*Dirs, error) {
	if os.Getenv("ENV") == "dev" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		devDir := filepath.Join(cwd, ".dev", appName)
		return &Dirs{ConfigHome: devDir, DataHome: devDir, StateHome: devDir}, nil
	}

	// Pick up XDG_* changes made after process start.
	xdg.Reload()

	return &Dirs{
		ConfigHome: filepath.Join(xdg.ConfigHome, appName),
		DataHome:   filepath.Join(xdg.DataHome, appName),
		StateHome:  filepath.Join(xdg.StateHome, appName),
	}, nil
}

// GetConfigDir returns the permstore config directory.
func GetConfigDir() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// GetConfigFile returns the default config file path.
func GetConfigFile() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetPermissionsDatabaseFile returns the default permission database path.
func GetPermissionsDatabaseFile() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.DataHome, permissionsFileName), nil
}

// GetPlacesDatabaseFile returns the default history database path.
func GetPlacesDatabaseFile() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.DataHome, placesFileName), nil
}

// GetLogDir returns the default log directory.
func GetLogDir() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.StateHome, "logs"), nil
}

// EnsureDirectories creates the config, data and state directories.
func EnsureDirectories() error {
	dirs, err := GetDirs()
	if err != nil {
		return err
	}
	for _, dir := range []string{dirs.ConfigHome, dirs.DataHome, dirs.StateHome} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
