// Package cli wires permstore's stores and use cases for the command line.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/permstore/internal/application/usecase"
	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/build"
	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/infrastructure/config"
	"github.com/bnema/permstore/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/permstore/internal/logging"
)

// Overrides are command-line values that take precedence over config.
type Overrides struct {
	DatabasePath string
	PlacesPath   string
	LogLevel     string
}

// App holds CLI dependencies.
type App struct {
	Config        *config.Config
	ConfigManager *config.Manager
	Theme         *styles.Theme
	BuildInfo     build.Info

	// Stores
	Store    *sqlite.PermissionDB
	History  repository.HistoryRepository
	placesDB *sql.DB

	// Use cases
	Permissions *usecase.SitePermissionsUseCase
	Requests    *usecase.HandlePermissionUseCase

	// Context with logger
	ctx        context.Context
	logCleanup func()
}

// NewApp loads configuration and opens the history database. The permission
// database is opened and migrated on first use.
func NewApp(overrides Overrides) (*App, error) {
	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}
	mgr, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Get()
	applyOverrides(cfg, overrides)

	logger, logCleanup, logErr := logging.NewWithFile(
		logging.Config{
			Level:      logging.ParseLevel(cfg.Logging.Level),
			Format:     cfg.Logging.Format,
			TimeFormat: "15:04:05",
		},
		logging.FileConfig{
			Enabled:       cfg.Logging.EnableFileLog,
			Dir:           cfg.Logging.LogDir,
			MaxSizeMB:     cfg.Logging.MaxSizeMB,
			MaxBackups:    cfg.Logging.MaxBackups,
			MaxAgeDays:    cfg.Logging.MaxAgeDays,
			WriteToStderr: true,
		},
	)
	if logErr != nil {
		logger.Warn().Err(logErr).Msg("file logging unavailable, logging to stderr only")
	}
	ctx := logging.WithContext(context.Background(), logger)

	placesDB, err := sqlite.OpenPlacesDB(ctx, cfg.Database.PlacesPath)
	if err != nil {
		logCleanup()
		return nil, fmt.Errorf("open history database: %w", err)
	}
	history := sqlite.NewHistoryRepository(placesDB)

	busyTimeout := time.Duration(cfg.Database.BusyTimeoutMs) * time.Millisecond
	store := sqlite.NewPermissionDB(cfg.Database.Path, history, sqlite.WithBusyTimeout(busyTimeout))

	permissions := usecase.NewSitePermissionsUseCase(store.Repository(), nil)

	logger.Debug().
		Str("db_path", cfg.Database.Path).
		Str("places_path", cfg.Database.PlacesPath).
		Msg("stores configured")

	return &App{
		Config:        cfg,
		ConfigManager: mgr,
		Theme:         styles.NewTheme(cfg),
		Store:         store,
		History:       history,
		placesDB:      placesDB,
		Permissions:   permissions,
		Requests:      usecase.NewHandlePermissionUseCase(permissions, nil),
		ctx:           ctx,
		logCleanup:    logCleanup,
	}, nil
}

func applyOverrides(cfg *config.Config, o Overrides) {
	if o.DatabasePath != "" {
		cfg.Database.Path = o.DatabasePath
	}
	if o.PlacesPath != "" {
		cfg.Database.PlacesPath = o.PlacesPath
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
}

// Close releases all resources.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.placesDB != nil {
		errs = append(errs, sqlite.Close(a.placesDB))
	}
	if a.logCleanup != nil {
		a.logCleanup()
	}
	return errors.Join(errs...)
}

// Ctx returns the application context with logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// DefaultScope is the scope `set` uses when no flag overrides it.
func (a *App) DefaultScope() entity.PermissionScope {
	if a.Config.Permissions.DefaultScope == string(entity.ScopeSession) {
		return entity.ScopeSession
	}
	return entity.ScopePersistent
}
