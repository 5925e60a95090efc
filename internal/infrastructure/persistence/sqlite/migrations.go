package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/logging"
)

//go:embed migrations/permissions/*.sql migrations/places/*.sql
var embedMigrations embed.FS

const (
	permissionsMigrationsDir = "migrations/permissions"
	placesMigrationsDir      = "migrations/places"

	// gooseVersionTable is goose's default bookkeeping table.
	gooseVersionTable = "goose_db_version"
)

// newProvider builds a goose provider over one embedded migration directory.
// Providers do not touch goose's global registry, so the permission and places
// databases can migrate independently in the same process.
func newProvider(db *sql.DB, dir string, goMigrations ...*goose.Migration) (*goose.Provider, error) {
	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations %s: %w", dir, err)
	}

	opts := []goose.ProviderOption{goose.WithDisableGlobalRegistry(true)}
	if len(goMigrations) > 0 {
		opts = append(opts, goose.WithGoMigrations(goMigrations...))
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

func newPermissionsProvider(db *sql.DB, index repository.VisitIndex) (*goose.Provider, error) {
	return newProvider(db, permissionsMigrationsDir, legacyHostsMigration(index))
}

// runMigrations applies all pending migrations of provider.
func runMigrations(ctx context.Context, provider *goose.Provider, name string) error {
	log := logging.FromContext(ctx).With().Str("schema", name).Logger()

	currentVersion, err := provider.GetDBVersion(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("could not get current db version (may be new database)")
		currentVersion = 0
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run %s migrations: %w", name, err)
	}

	newVersion, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get %s db version after migration: %w", name, err)
	}

	if len(results) > 0 {
		log.Info().
			Int64("from_version", currentVersion).
			Int64("to_version", newVersion).
			Int("applied", len(results)).
			Msg("database migrations applied")
	} else {
		log.Debug().Int64("version", newVersion).Msg("database schema up to date")
	}

	return nil
}

// RunPlacesMigrations applies the history schema to db.
func RunPlacesMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := newProvider(db, placesMigrationsDir)
	if err != nil {
		return err
	}
	return runMigrations(ctx, provider, "places")
}

// OpenPlacesDB opens the history database and brings its schema up to date.
func OpenPlacesDB(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := NewConnection(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if err := RunPlacesMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
