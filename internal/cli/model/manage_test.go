package model

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/cli/styles"
	"github.com/bnema/permstore/internal/domain/entity"
	"github.com/bnema/permstore/internal/infrastructure/config"
)

type fakePermissions struct {
	records []*entity.PermissionRecord
	setErr  error
}

func (f *fakePermissions) All(context.Context) ([]*entity.PermissionRecord, error) {
	return append([]*entity.PermissionRecord(nil), f.records...), nil
}

func (f *fakePermissions) Set(_ context.Context, origin string, kind entity.PermissionKind,
	state entity.PermissionState, scope entity.PermissionScope,
) error {
	if f.setErr != nil {
		return f.setErr
	}
	for _, r := range f.records {
		if r.Origin == origin && r.Kind == kind {
			r.State = state
			r.ExpireType = entity.ExpireTypeForScope(scope)
		}
	}
	return nil
}

func (f *fakePermissions) SetWithExpiry(_ context.Context, origin string, kind entity.PermissionKind,
	state entity.PermissionState, expireAt time.Time,
) error {
	if f.setErr != nil {
		return f.setErr
	}
	for _, r := range f.records {
		if r.Origin == origin && r.Kind == kind {
			r.State = state
			r.ExpireType = entity.ExpireTime
			r.ExpireTime = expireAt
		}
	}
	return nil
}

func (f *fakePermissions) Remove(_ context.Context, origin string, kind entity.PermissionKind) error {
	kept := f.records[:0]
	for _, r := range f.records {
		if r.Origin != origin || r.Kind != kind {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

func newTestManageModel(perms *fakePermissions) ManageModel {
	theme := styles.NewTheme(config.DefaultConfig())
	m := NewManageModel(context.Background(), theme, perms)
	updated, _ := m.Update(m.Init()())
	return updated.(ManageModel)
}

// press sends a key and runs the command chain it triggers until it settles.
func press(t *testing.T, m ManageModel, r rune) ManageModel {
	t.Helper()
	var model tea.Model = m
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	for i := 0; cmd != nil && i < 4; i++ {
		model, cmd = model.Update(cmd())
	}
	return model.(ManageModel)
}

func testRecords() []*entity.PermissionRecord {
	return []*entity.PermissionRecord{
		{Origin: "https://example.com", Kind: entity.PermissionKindCamera, State: entity.StateAllow},
		{Origin: "https://news.example.org", Kind: entity.PermissionKindPopup, State: entity.StateBlock,
			ExpireType: entity.ExpireSession},
	}
}

func TestManageModel_LoadsRecords(t *testing.T) {
	m := newTestManageModel(&fakePermissions{records: testRecords()})

	require.Len(t, m.Records(), 2)
	view := m.View()
	assert.Contains(t, view, "Site permissions (2)")
	assert.Contains(t, view, "https://example.com")
}

func TestManageModel_AllowKeepsScope(t *testing.T) {
	perms := &fakePermissions{records: testRecords()}
	m := newTestManageModel(perms)

	m = press(t, m, 'j')
	m = press(t, m, 'a')

	assert.Equal(t, entity.StateAllow, perms.records[1].State)
	assert.Equal(t, entity.ExpireSession, perms.records[1].ExpireType)
	assert.Contains(t, m.View(), "set to allow")
}

func TestManageModel_BlockKeepsExpiry(t *testing.T) {
	expireAt := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	perms := &fakePermissions{records: []*entity.PermissionRecord{
		{Origin: "https://maps.example.com", Kind: entity.PermissionKindGeolocation, State: entity.StateAllow,
			ExpireType: entity.ExpireTime, ExpireTime: expireAt},
	}}
	m := newTestManageModel(perms)

	m = press(t, m, 'b')

	require.Len(t, perms.records, 1)
	assert.Equal(t, entity.StateBlock, perms.records[0].State)
	assert.Equal(t, entity.ExpireTime, perms.records[0].ExpireType)
	assert.Equal(t, expireAt, perms.records[0].ExpireTime)
	assert.Contains(t, m.View(), "set to block")
}

func TestManageModel_Delete(t *testing.T) {
	perms := &fakePermissions{records: testRecords()}
	m := newTestManageModel(perms)

	m = press(t, m, 'x')

	require.Len(t, perms.records, 1)
	assert.Equal(t, "https://news.example.org", perms.records[0].Origin)
	assert.Len(t, m.Records(), 1)
}

func TestManageModel_ShowsErrors(t *testing.T) {
	perms := &fakePermissions{records: testRecords(), setErr: errors.New("database is locked")}
	m := newTestManageModel(perms)

	m = press(t, m, 'b')

	view := m.View()
	assert.Contains(t, view, "database is locked")
	assert.Contains(t, view, "cannot change https://example.com camera")
}

func TestManageModel_Empty(t *testing.T) {
	m := newTestManageModel(&fakePermissions{})

	assert.Contains(t, m.View(), "No permissions stored.")
	m = press(t, m, 'x')
	assert.Empty(t, m.Records())
}
