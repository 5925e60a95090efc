package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/domain/repository"
	"github.com/bnema/permstore/internal/logging"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	execer
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	permissionColumns = `origin, type, permission, expireType, expireTime, modificationTime`

	upsertPermissionSQL = `INSERT INTO moz_perms (` + permissionColumns + `)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(origin, type) DO UPDATE SET
	permission = excluded.permission,
	expireType = excluded.expireType,
	expireTime = excluded.expireTime,
	modificationTime = excluded.modificationTime`
)

type permissionRepo struct {
	db querier
}

// NewPermissionRepository creates a new SQLite-backed permission repository.
// The moz_perms table must already exist.
func NewPermissionRepository(db *sql.DB) repository.PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Get(ctx context.Context, origin string, kind entity.PermissionKind) (*entity.PermissionRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("origin", origin).Str("type", string(kind)).Msg("getting permission")

	row := r.db.QueryRowContext(ctx,
		`SELECT `+permissionColumns+` FROM moz_perms WHERE origin = ? AND type = ?`,
		origin, string(kind))

	record, err := scanPermission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (r *permissionRepo) Set(ctx context.Context, record *entity.PermissionRecord) error {
	log := logging.FromContext(ctx)

	if record == nil {
		log.Error().Msg("cannot set nil permission record")
		return errors.New("cannot set nil permission record")
	}

	log.Debug().
		Str("origin", record.Origin).
		Str("type", string(record.Kind)).
		Str("state", record.State.String()).
		Str("scope", string(record.Scope())).
		Msg("setting permission")

	return upsertPermission(ctx, r.db, record)
}

func (r *permissionRepo) Delete(ctx context.Context, origin string, kind entity.PermissionKind) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("origin", origin).Str("type", string(kind)).Msg("deleting permission")

	_, err := r.db.ExecContext(ctx, `DELETE FROM moz_perms WHERE origin = ? AND type = ?`, origin, string(kind))
	return err
}

func (r *permissionRepo) GetAll(ctx context.Context, origin string) ([]*entity.PermissionRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("origin", origin).Msg("getting all permissions for origin")

	return r.list(ctx, `SELECT `+permissionColumns+` FROM moz_perms WHERE origin = ? ORDER BY id`, origin)
}

func (r *permissionRepo) List(ctx context.Context) ([]*entity.PermissionRecord, error) {
	return r.list(ctx, `SELECT `+permissionColumns+` FROM moz_perms ORDER BY id`)
}

func (r *permissionRepo) DeleteAll(ctx context.Context) error {
	logging.FromContext(ctx).Debug().Msg("deleting all permissions")
	_, err := r.db.ExecContext(ctx, `DELETE FROM moz_perms`)
	return err
}

func (r *permissionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM moz_perms WHERE expireType = ? AND expireTime <= ?`,
		int(entity.ExpireTime), now.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *permissionRepo) DeleteSessionScoped(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM moz_perms WHERE expireType = ?`, int(entity.ExpireSession))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *permissionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.PermissionRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*entity.PermissionRecord
	for rows.Next() {
		record, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func upsertPermission(ctx context.Context, db execer, record *entity.PermissionRecord) error {
	modified := record.ModifiedTime
	if modified.IsZero() {
		modified = time.Now()
	}
	_, err := db.ExecContext(ctx, upsertPermissionSQL,
		record.Origin,
		string(record.Kind),
		int(record.State),
		int(record.ExpireType),
		toMillis(record.ExpireTime),
		modified.UnixMilli(),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPermission(row rowScanner) (*entity.PermissionRecord, error) {
	var (
		record     entity.PermissionRecord
		kind       string
		state      int
		expireType int
		expireTime sql.NullInt64
		modified   sql.NullInt64
	)
	if err := row.Scan(&record.Origin, &kind, &state, &expireType, &expireTime, &modified); err != nil {
		return nil, err
	}
	record.Kind = entity.PermissionKind(kind)
	record.State = entity.PermissionState(state)
	record.ExpireType = entity.ExpireType(expireType)
	record.ExpireTime = fromMillis(expireTime.Int64)
	record.ModifiedTime = fromMillis(modified.Int64)
	return &record, nil
}

// Times are stored as milliseconds since the epoch, 0 meaning unset.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
