package usecase_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/application/usecase"
	"github.com/bnema/permstore/internal/domain/entity"
	repomocks "github.com/bnema/permstore/internal/domain/repository/mocks"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newSitePermissions(t *testing.T) (*usecase.SitePermissionsUseCase, *repomocks.MockPermissionRepository) {
	repo := repomocks.NewMockPermissionRepository(t)
	uc := usecase.NewSitePermissionsUseCase(repo, nil, usecase.WithClock(func() time.Time { return fixedNow }))
	return uc, repo
}

func TestSitePermissions_SetRejectsUnavailableState(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	err := uc.Set(ctx, "https://example.com", entity.PermissionKindCookie, entity.StatePrompt, entity.ScopePersistent)

	var stateErr *entity.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, entity.PermissionKindCookie, stateErr.Kind)
	assert.ErrorIs(t, err, entity.ErrInvalidState)
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestSitePermissions_SetStoresNormalizedOrigin(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().Set(mock.Anything, mock.MatchedBy(func(r *entity.PermissionRecord) bool {
		return r.Origin == "https://example.com" &&
			r.Kind == entity.PermissionKindCamera &&
			r.State == entity.StateAllow &&
			r.ExpireType == entity.ExpireSession &&
			r.ModifiedTime.Equal(fixedNow)
	})).Return(nil).Once()

	err := uc.Set(ctx, "HTTPS://Example.com:443/some/page", entity.PermissionKindCamera, entity.StateAllow, entity.ScopeSession)
	require.NoError(t, err)
}

func TestSitePermissions_SetUnknownRemoves(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().Delete(mock.Anything, "https://example.com", entity.PermissionKindCamera).Return(nil).Once()

	require.NoError(t, uc.Set(ctx, "https://example.com", entity.PermissionKindCamera, entity.StateUnknown, entity.ScopePersistent))
}

func TestSitePermissions_SetFileURIFails(t *testing.T) {
	uc, _ := newSitePermissions(t)

	err := uc.Set(testContext(), "file:///tmp/index.html", entity.PermissionKindPopup, entity.StateAllow, entity.ScopePersistent)
	assert.ErrorIs(t, err, entity.ErrUnsupportedScheme)
}

func TestSitePermissions_SetWithExpiryRequiresFutureTime(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	err := uc.SetWithExpiry(ctx, "https://example.com", entity.PermissionKindPopup, entity.StateAllow, fixedNow)
	assert.Error(t, err)

	expireAt := fixedNow.Add(time.Hour)
	repo.EXPECT().Set(mock.Anything, mock.MatchedBy(func(r *entity.PermissionRecord) bool {
		return r.ExpireType == entity.ExpireTime && r.ExpireTime.Equal(expireAt)
	})).Return(nil).Once()

	require.NoError(t, uc.SetWithExpiry(ctx, "https://example.com", entity.PermissionKindPopup, entity.StateAllow, expireAt))
}

func TestSitePermissions_GetExactKindNeverWalksUp(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().Get(mock.Anything, "https://sub.example.com", entity.PermissionKindCamera).Return(nil, nil).Once()

	result, err := uc.Get(ctx, "https://sub.example.com", entity.PermissionKindCamera)
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownResult(entity.PermissionKindCamera), result)
	repo.AssertNotCalled(t, "Get", mock.Anything, "https://example.com", entity.PermissionKindCamera)
}

func TestSitePermissions_GetInheritedKindWalksToRegistrableDomain(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	origin := "https://a.b.example.co.uk:8443^appId=7"
	repo.EXPECT().Get(mock.Anything, origin, entity.PermissionKindPopup).Return(nil, nil).Once()
	repo.EXPECT().Get(mock.Anything, "https://b.example.co.uk:8443^appId=7", entity.PermissionKindPopup).Return(nil, nil).Once()
	repo.EXPECT().Get(mock.Anything, "https://example.co.uk:8443^appId=7", entity.PermissionKindPopup).
		Return(&entity.PermissionRecord{
			Origin: "https://example.co.uk:8443^appId=7",
			Kind:   entity.PermissionKindPopup,
			State:  entity.StateBlock,
		}, nil).Once()

	result, err := uc.Get(ctx, origin, entity.PermissionKindPopup)
	require.NoError(t, err)
	assert.Equal(t, entity.StateBlock, result.State)
	assert.Equal(t, entity.ScopePersistent, result.Scope)
	repo.AssertNotCalled(t, "Get", mock.Anything, "https://co.uk:8443^appId=7", entity.PermissionKindPopup)
}

func TestSitePermissions_GetSkipsExpiredRecords(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().Get(mock.Anything, "https://sub.example.com", entity.PermissionKindPopup).
		Return(&entity.PermissionRecord{
			Kind:       entity.PermissionKindPopup,
			State:      entity.StateAllow,
			ExpireType: entity.ExpireTime,
			ExpireTime: fixedNow.Add(-time.Second),
		}, nil).Once()
	repo.EXPECT().Get(mock.Anything, "https://example.com", entity.PermissionKindPopup).
		Return(&entity.PermissionRecord{Kind: entity.PermissionKindPopup, State: entity.StateBlock}, nil).Once()

	result, err := uc.Get(ctx, "https://sub.example.com", entity.PermissionKindPopup)
	require.NoError(t, err)
	assert.Equal(t, entity.StateBlock, result.State)
}

func TestSitePermissions_GetPropagatesRepositoryErrors(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().Get(mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("disk I/O error"))

	_, err := uc.Get(ctx, "https://example.com", entity.PermissionKindGeolocation)
	assert.ErrorContains(t, err, "disk I/O error")
}

func TestSitePermissions_UnsupportedSchemesAreEmpty(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)
	repo.EXPECT().Delete(mock.Anything, "about:blank", entity.PermissionKindCamera).Return(nil)

	result, err := uc.Get(ctx, "file:///some/file.html", entity.PermissionKindCamera)
	require.NoError(t, err)
	assert.Equal(t, entity.StateUnknown, result.State)

	all, err := uc.GetAllByURI(ctx, "file:///some/file.html")
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, uc.Remove(ctx, "about:blank", entity.PermissionKindCamera))
}

func TestSitePermissions_RemoveOpaqueOriginsByStoredString(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	for _, raw := range []string{
		"file:///some/path/to/file.html",
		"moz-nullprincipal:{8695105a-adbe-4e4e-8083-851faa5ca2d7}",
		"<file>",
	} {
		repo.EXPECT().Delete(mock.Anything, raw, entity.PermissionKindCamera).Return(nil).Once()
		require.NoError(t, uc.Remove(ctx, " "+raw+" ", entity.PermissionKindCamera), raw)
	}
}

func TestSitePermissions_CaretInURIIsNotAnAttribute(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().Get(mock.Anything, "https://example.com", entity.PermissionKindCamera).Return(&entity.PermissionRecord{
		Origin: "https://example.com", Kind: entity.PermissionKindCamera, State: entity.StateAllow,
	}, nil)
	repo.EXPECT().GetAll(mock.Anything, "https://example.com").Return(nil, nil)

	result, err := uc.Get(ctx, "https://example.com/p^q", entity.PermissionKindCamera)
	require.NoError(t, err)
	assert.Equal(t, entity.StateAllow, result.State)

	all, err := uc.GetAllByURI(ctx, "https://example.com/search?q=a^b")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSitePermissions_GetAllByURIFiltersHiddenEntries(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().GetAll(mock.Anything, "https://example.com").Return([]*entity.PermissionRecord{
		{Kind: entity.PermissionKindCamera, State: entity.StateAllow},
		{Kind: "addon", State: entity.StateAllow},
		{Kind: entity.PermissionKindPopup, State: entity.StateAllow, ExpireType: entity.ExpireTime, ExpireTime: fixedNow},
		{Kind: entity.PermissionKindMicrophone, State: entity.StateBlock, ExpireType: entity.ExpireSession},
	}, nil).Once()

	results, err := uc.GetAllByURI(ctx, "https://example.com/path?q=1")
	require.NoError(t, err)
	assert.Equal(t, []entity.PermissionResult{
		{Kind: entity.PermissionKindCamera, State: entity.StateAllow, Scope: entity.ScopePersistent},
		{Kind: entity.PermissionKindMicrophone, State: entity.StateBlock, Scope: entity.ScopeSession},
	}, results)
}

func TestSitePermissions_ListPermissionsAndStates(t *testing.T) {
	uc, _ := newSitePermissions(t)

	kinds := uc.ListPermissions()
	require.NotEmpty(t, kinds)
	assert.IsNonDecreasing(t, entity.PermissionKindsToStrings(kinds))

	for _, kind := range kinds {
		states := uc.AvailableStates(kind)
		require.NotEmpty(t, states, kind)
		assert.Contains(t, states, entity.StateAllow, kind)
		assert.Contains(t, states, entity.StateBlock, kind)
	}

	assert.Equal(t,
		[]entity.PermissionState{entity.StateAllow, entity.StateAllowCookiesForSession, entity.StateBlock},
		uc.AvailableStates(entity.PermissionKindCookie))
	assert.Equal(t,
		[]entity.PermissionState{entity.StateUnknown, entity.StateAllow, entity.StateBlock},
		uc.AvailableStates("addon"))
}

func TestSitePermissions_PurgeExpired(t *testing.T) {
	ctx := testContext()
	uc, repo := newSitePermissions(t)

	repo.EXPECT().DeleteExpired(mock.Anything, fixedNow).Return(int64(2), nil).Once()

	n, err := uc.PurgeExpired(ctx, fixedNow)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
