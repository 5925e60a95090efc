package repository

import (
	"context"
	"time"

	"github.com/bnema/permstore/internal/domain/entity"
)

// PermissionRepository defines operations for site permission persistence.
// Origins are serialized origin strings including the attribute suffix;
// matching across hosts is the caller's concern.
type PermissionRepository interface {
	// Get retrieves the record stored for exactly this origin and kind.
	// Returns nil if no record exists.
	Get(ctx context.Context, origin string, kind entity.PermissionKind) (*entity.PermissionRecord, error)

	// Set saves or updates a permission record (upsert on origin+kind).
	Set(ctx context.Context, record *entity.PermissionRecord) error

	// Delete removes the record for origin and kind. Missing records are not an error.
	Delete(ctx context.Context, origin string, kind entity.PermissionKind) error

	// GetAll retrieves all records stored for an origin, oldest first.
	GetAll(ctx context.Context, origin string) ([]*entity.PermissionRecord, error)

	// List retrieves every stored record, oldest first.
	List(ctx context.Context) ([]*entity.PermissionRecord, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// DeleteExpired removes time-limited records that lapsed at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteSessionScoped removes every session-scoped record.
	DeleteSessionScoped(ctx context.Context) (int64, error)
}
