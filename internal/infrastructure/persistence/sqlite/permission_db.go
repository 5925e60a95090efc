package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/logging"
)

// PermissionDB owns the permissions database lifecycle: lazy connect,
// migration and session cleanup. The connection is created on first access.
// Repository calls wait until migration has finished so no caller ever reads
// the pre-migration schema.
type PermissionDB struct {
	dbPath      string
	busyTimeout time.Duration
	index       repository.VisitIndex

	connOnce sync.Once
	db       *sql.DB
	connErr  error

	openMu sync.Mutex
	opened bool

	mu        sync.RWMutex
	closed    bool
	migrating atomic.Bool
	group     singleflight.Group
}

// PermissionDBOption configures a PermissionDB.
type PermissionDBOption func(*PermissionDB)

// WithBusyTimeout overrides DefaultBusyTimeout.
func WithBusyTimeout(d time.Duration) PermissionDBOption {
	return func(p *PermissionDB) {
		if d > 0 {
			p.busyTimeout = d
		}
	}
}

// NewPermissionDB creates a permissions database handle. index is consulted
// when legacy rows are migrated and may be nil when no history is available.
// Nothing is opened until the first call that needs the database.
func NewPermissionDB(dbPath string, index repository.VisitIndex, opts ...PermissionDBOption) *PermissionDB {
	p := &PermissionDB{
		dbPath:      dbPath,
		busyTimeout: DefaultBusyTimeout,
		index:       index,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Path returns the database path.
func (p *PermissionDB) Path() string {
	return p.dbPath
}

// IsInitialized returns true if the connection has been established.
func (p *PermissionDB) IsInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db != nil
}

func (p *PermissionDB) connect(ctx context.Context) (*sql.DB, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, entity.ErrStoreClosed
	}

	p.connOnce.Do(func() {
		log := logging.FromContext(ctx)
		log.Debug().Str("path", p.dbPath).Msg("permission database initialization starting")

		db, err := NewConnectionWithTimeout(ctx, p.dbPath, p.busyTimeout)

		p.mu.Lock()
		p.db, p.connErr = db, err
		p.mu.Unlock()

		if err != nil {
			log.Error().Err(err).Msg("permission database initialization failed")
		}
	})

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, entity.ErrStoreClosed
	}
	if p.connErr != nil {
		return nil, fmt.Errorf("database initialization failed: %w", p.connErr)
	}
	return p.db, nil
}

// Open connects, applies pending migrations and drops session-scoped records
// left by a previous run. Later calls are no-ops once Open has succeeded.
func (p *PermissionDB) Open(ctx context.Context) error {
	p.openMu.Lock()
	defer p.openMu.Unlock()
	if p.opened {
		return nil
	}

	if _, err := p.migrate(ctx); err != nil {
		return err
	}

	p.mu.RLock()
	db := p.db
	p.mu.RUnlock()

	purged, err := NewPermissionRepository(db).DeleteSessionScoped(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop session permissions: %w", err)
	}
	if purged > 0 {
		logging.FromContext(ctx).Debug().Int64("count", purged).Msg("dropped session permissions from previous run")
	}

	p.opened = true
	return nil
}

// Migrate opens the database and reports the resulting migration state.
func (p *PermissionDB) Migrate(ctx context.Context) (entity.MigrationState, error) {
	if err := p.Open(ctx); err != nil {
		return entity.MigrationState{Phase: entity.MigrationNeeded}, err
	}
	return p.State(ctx)
}

// migrate applies pending migrations under the write lock. Concurrent callers
// share one run.
func (p *PermissionDB) migrate(ctx context.Context) (int64, error) {
	db, err := p.connect(ctx)
	if err != nil {
		return 0, err
	}

	v, err, _ := p.group.Do("migrate", func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return int64(0), entity.ErrStoreClosed
		}

		p.migrating.Store(true)
		defer p.migrating.Store(false)

		provider, err := newPermissionsProvider(db, p.index)
		if err != nil {
			return int64(0), err
		}
		if err := runMigrations(ctx, provider, "permissions"); err != nil {
			return int64(0), err
		}
		return provider.GetDBVersion(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// State reports the migration phase without applying anything.
func (p *PermissionDB) State(ctx context.Context) (entity.MigrationState, error) {
	if p.migrating.Load() {
		return entity.MigrationState{Phase: entity.MigrationInProgress}, nil
	}

	db, err := p.connect(ctx)
	if err != nil {
		return entity.MigrationState{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	// A database goose never touched has everything pending.
	versioned, err := TableExists(ctx, db, gooseVersionTable)
	if err != nil {
		return entity.MigrationState{}, err
	}
	if !versioned {
		return entity.MigrationState{Phase: entity.MigrationNeeded}, nil
	}

	provider, err := newPermissionsProvider(db, p.index)
	if err != nil {
		return entity.MigrationState{}, err
	}
	pending, err := provider.HasPending(ctx)
	if err != nil {
		return entity.MigrationState{}, fmt.Errorf("failed to check pending migrations: %w", err)
	}
	if pending {
		return entity.MigrationState{Phase: entity.MigrationNeeded}, nil
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return entity.MigrationState{}, fmt.Errorf("failed to get db version: %w", err)
	}
	return entity.MigrationState{Phase: entity.MigrationDone, Version: version}, nil
}

// DB returns the migrated connection.
func (p *PermissionDB) DB(ctx context.Context) (*sql.DB, error) {
	if err := p.Open(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, entity.ErrStoreClosed
	}
	return p.db, nil
}

// Repository returns a permission repository whose calls open and migrate
// the database on first use.
func (p *PermissionDB) Repository() repository.PermissionRepository {
	return &gatedPermissionRepo{p: p}
}

// Close closes the database connection if it was initialized.
func (p *PermissionDB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// acquire opens the database and holds the read lock until release is called.
func (p *PermissionDB) acquire(ctx context.Context) (repository.PermissionRepository, func(), error) {
	if err := p.Open(ctx); err != nil {
		return nil, nil, err
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, nil, entity.ErrStoreClosed
	}
	return NewPermissionRepository(p.db), p.mu.RUnlock, nil
}

type gatedPermissionRepo struct {
	p *PermissionDB
}

func (g *gatedPermissionRepo) Get(ctx context.Context, origin string, kind entity.PermissionKind) (*entity.PermissionRecord, error) {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return repo.Get(ctx, origin, kind)
}

func (g *gatedPermissionRepo) Set(ctx context.Context, record *entity.PermissionRecord) error {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return repo.Set(ctx, record)
}

func (g *gatedPermissionRepo) Delete(ctx context.Context, origin string, kind entity.PermissionKind) error {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return repo.Delete(ctx, origin, kind)
}

func (g *gatedPermissionRepo) GetAll(ctx context.Context, origin string) ([]*entity.PermissionRecord, error) {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return repo.GetAll(ctx, origin)
}

func (g *gatedPermissionRepo) List(ctx context.Context) ([]*entity.PermissionRecord, error) {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return repo.List(ctx)
}

func (g *gatedPermissionRepo) DeleteAll(ctx context.Context) error {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return repo.DeleteAll(ctx)
}

func (g *gatedPermissionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return repo.DeleteExpired(ctx, now)
}

func (g *gatedPermissionRepo) DeleteSessionScoped(ctx context.Context) (int64, error) {
	repo, release, err := g.p.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return repo.DeleteSessionScoped(ctx)
}
