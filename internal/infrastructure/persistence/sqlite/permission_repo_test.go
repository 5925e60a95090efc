package sqlite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/infrastructure/persistence/sqlite"
)

func TestPermissionRepo_SetGetDelete(t *testing.T) {
	ctx := testCtx()
	_, db := openTestPermissionDB(t)
	repo := sqlite.NewPermissionRepository(db)

	got, err := repo.Get(ctx, "https://example.com", entity.PermissionKindCamera)
	require.NoError(t, err)
	assert.Nil(t, got, "missing record reads as nil")

	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://example.com",
		Kind:   entity.PermissionKindCamera,
		State:  entity.StateAllow,
	}))

	got, err = repo.Get(ctx, "https://example.com", entity.PermissionKindCamera)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StateAllow, got.State)
	assert.Equal(t, entity.ScopePersistent, got.Scope())
	assert.False(t, got.ModifiedTime.IsZero())

	// upsert keeps a single row per origin+kind
	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin:     "https://example.com",
		Kind:       entity.PermissionKindCamera,
		State:      entity.StateBlock,
		ExpireType: entity.ExpireSession,
	}))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, entity.StateBlock, all[0].State)
	assert.Equal(t, entity.ScopeSession, all[0].Scope())

	require.NoError(t, repo.Delete(ctx, "https://example.com", entity.PermissionKindCamera))
	require.NoError(t, repo.Delete(ctx, "https://example.com", entity.PermissionKindCamera), "delete is idempotent")

	got, err = repo.Get(ctx, "https://example.com", entity.PermissionKindCamera)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPermissionRepo_GetAllKeepsInsertionOrder(t *testing.T) {
	ctx := testCtx()
	_, db := openTestPermissionDB(t)
	repo := sqlite.NewPermissionRepository(db)

	for _, kind := range []entity.PermissionKind{
		entity.PermissionKindCamera,
		entity.PermissionKindMicrophone,
		entity.PermissionKindDesktopNotification,
	} {
		require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
			Origin: "https://example.com",
			Kind:   kind,
			State:  entity.StateAllow,
		}))
	}
	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://other.example",
		Kind:   entity.PermissionKindCamera,
		State:  entity.StateBlock,
	}))

	records, err := repo.GetAll(ctx, "https://example.com")
	require.NoError(t, err)

	kinds := make([]entity.PermissionKind, len(records))
	for i, r := range records {
		kinds[i] = r.Kind
	}
	assert.Equal(t, []entity.PermissionKind{
		entity.PermissionKindCamera,
		entity.PermissionKindMicrophone,
		entity.PermissionKindDesktopNotification,
	}, kinds)
}

func TestPermissionRepo_DeleteExpiredAndSessionScoped(t *testing.T) {
	ctx := testCtx()
	_, db := openTestPermissionDB(t)
	repo := sqlite.NewPermissionRepository(db)

	now := time.UnixMilli(1_700_000_000_000)
	records := []*entity.PermissionRecord{
		{Origin: "https://a.example", Kind: entity.PermissionKindPopup, State: entity.StateAllow},
		{Origin: "https://b.example", Kind: entity.PermissionKindPopup, State: entity.StateAllow, ExpireType: entity.ExpireSession},
		{Origin: "https://c.example", Kind: entity.PermissionKindPopup, State: entity.StateAllow, ExpireType: entity.ExpireTime, ExpireTime: now.Add(-time.Minute)},
		{Origin: "https://d.example", Kind: entity.PermissionKindPopup, State: entity.StateAllow, ExpireType: entity.ExpireTime, ExpireTime: now.Add(time.Minute)},
	}
	for _, r := range records {
		require.NoError(t, repo.Set(ctx, r))
	}

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteSessionScoped(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	remaining, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "https://a.example", remaining[0].Origin)
	assert.Equal(t, "https://d.example", remaining[1].Origin)
	assert.Equal(t, now.Add(time.Minute), remaining[1].ExpireTime)

	require.NoError(t, repo.DeleteAll(ctx))
	remaining, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestPermissionRepo_SetNilRecord(t *testing.T) {
	_, db := openTestPermissionDB(t)
	repo := sqlite.NewPermissionRepository(db)

	assert.Error(t, repo.Set(testCtx(), nil))
}
