package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/application/port"
	portmocks "github.com/bnema/permstore/internal/application/port/mocks"
	"github.com/bnema/permstore/internal/application/usecase"
	"github.com/bnema/permstore/internal/domain/entity"
	repomocks "github.com/bnema/permstore/internal/domain/repository/mocks"
)

func newHandlePermission(t *testing.T) (*usecase.HandlePermissionUseCase, *repomocks.MockPermissionRepository, *portmocks.MockPermissionPrompter) {
	repo := repomocks.NewMockPermissionRepository(t)
	prompter := portmocks.NewMockPermissionPrompter(t)
	perms := usecase.NewSitePermissionsUseCase(repo, nil)
	return usecase.NewHandlePermissionUseCase(perms, prompter), repo, prompter
}

func TestHandlePermissionUseCase_StoredPermissionAllowed(t *testing.T) {
	ctx := testContext()
	uc, repo, prompter := newHandlePermission(t)

	repo.EXPECT().Get(mock.Anything, "https://meet.example.com", entity.PermissionKindMicrophone).
		Return(&entity.PermissionRecord{
			Origin: "https://meet.example.com",
			Kind:   entity.PermissionKindMicrophone,
			State:  entity.StateAllow,
		}, nil)

	state, err := uc.HandlePermissionRequest(ctx, "https://meet.example.com", entity.PermissionKindMicrophone)
	require.NoError(t, err)
	assert.Equal(t, entity.StateAllow, state)
	prompter.AssertNotCalled(t, "PromptPermission", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePermissionUseCase_InheritedBlock(t *testing.T) {
	ctx := testContext()
	uc, repo, prompter := newHandlePermission(t)

	repo.EXPECT().Get(mock.Anything, "https://ads.example.com", entity.PermissionKindPopup).Return(nil, nil)
	repo.EXPECT().Get(mock.Anything, "https://example.com", entity.PermissionKindPopup).
		Return(&entity.PermissionRecord{Kind: entity.PermissionKindPopup, State: entity.StateBlock}, nil)

	state, err := uc.HandlePermissionRequest(ctx, "https://ads.example.com", entity.PermissionKindPopup)
	require.NoError(t, err)
	assert.Equal(t, entity.StateBlock, state)
	prompter.AssertNotCalled(t, "PromptPermission", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePermissionUseCase_PromptsAndRemembers(t *testing.T) {
	tests := []struct {
		name   string
		answer port.PermissionPromptResult
		state  entity.PermissionState
		expire entity.ExpireType
	}{
		{"always allow", port.PermissionPromptResult{Allowed: true, Persistent: true}, entity.StateAllow, entity.ExpireNever},
		{"allow once", port.PermissionPromptResult{Allowed: true}, entity.StateAllow, entity.ExpireSession},
		{"never allow", port.PermissionPromptResult{Persistent: true}, entity.StateBlock, entity.ExpireNever},
		{"block once", port.PermissionPromptResult{}, entity.StateBlock, entity.ExpireSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext()
			uc, repo, prompter := newHandlePermission(t)

			repo.EXPECT().Get(mock.Anything, "https://meet.example.com", entity.PermissionKindCamera).Return(nil, nil)
			prompter.EXPECT().PromptPermission(mock.Anything, "https://meet.example.com", entity.PermissionKindCamera).
				Return(tt.answer, nil).Once()
			repo.EXPECT().Set(mock.Anything, mock.MatchedBy(func(r *entity.PermissionRecord) bool {
				return r.Origin == "https://meet.example.com" &&
					r.Kind == entity.PermissionKindCamera &&
					r.State == tt.state &&
					r.ExpireType == tt.expire
			})).Return(nil).Once()

			state, err := uc.HandlePermissionRequest(ctx, "https://meet.example.com", entity.PermissionKindCamera)
			require.NoError(t, err)
			assert.Equal(t, tt.state, state)
		})
	}
}

func TestHandlePermissionUseCase_DismissedPromptBlocksWithoutStoring(t *testing.T) {
	ctx := testContext()
	uc, repo, prompter := newHandlePermission(t)

	repo.EXPECT().Get(mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	prompter.EXPECT().PromptPermission(mock.Anything, mock.Anything, mock.Anything).
		Return(port.PermissionPromptResult{}, context.Canceled)

	state, err := uc.HandlePermissionRequest(ctx, "https://example.com", entity.PermissionKindGeolocation)
	require.NoError(t, err)
	assert.Equal(t, entity.StateBlock, state)
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestHandlePermissionUseCase_NoPrompterBlocks(t *testing.T) {
	ctx := testContext()
	repo := repomocks.NewMockPermissionRepository(t)
	uc := usecase.NewHandlePermissionUseCase(usecase.NewSitePermissionsUseCase(repo, nil), nil)

	repo.EXPECT().Get(mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)

	state, err := uc.HandlePermissionRequest(ctx, "https://example.com", entity.PermissionKindScreen)
	require.NoError(t, err)
	assert.Equal(t, entity.StateBlock, state)
}

func TestHandlePermissionUseCase_EmptyOriginBlocks(t *testing.T) {
	uc, _, _ := newHandlePermission(t)

	state, err := uc.HandlePermissionRequest(testContext(), "", entity.PermissionKindCamera)
	require.NoError(t, err)
	assert.Equal(t, entity.StateBlock, state)
}

func TestHandlePermissionUseCase_LookupErrorIsReturned(t *testing.T) {
	uc, repo, _ := newHandlePermission(t)

	repo.EXPECT().Get(mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("database is locked"))

	state, err := uc.HandlePermissionRequest(testContext(), "https://example.com", entity.PermissionKindCamera)
	assert.Error(t, err)
	assert.Equal(t, entity.StateBlock, state)
}
