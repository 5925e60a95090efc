package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/domain/entity"
	repomocks "github.com/bnema/permstore/internal/domain/repository/mocks"
	"github.com/bnema/permstore/internal/domain/service"
	"github.com/bnema/permstore/internal/logging"
)

func testContext() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func legacyRow(host, typ string, appID uint32, inBrowser bool) *entity.LegacyHostRecord {
	return &entity.LegacyHostRecord{
		Host:               host,
		Type:               typ,
		Permission:         1,
		AppID:              appID,
		IsInBrowserElement: inBrowser,
	}
}

func origins(records []*entity.PermissionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Origin
	}
	return out
}

func TestLegacyExpander_HistoryDrivesSchemes(t *testing.T) {
	ctx := testContext()
	index := repomocks.NewMockVisitIndex(t)
	index.EXPECT().VisitedUnder(mock.Anything, "foo.com").
		Return([]entity.SchemePort{{Scheme: "https"}, {Scheme: "ftp", Port: 8000}, {Scheme: "https"}}, nil).
		Once()

	expander := service.NewLegacyExpander(service.NewVisitResolver(index), time.Now())

	records, err := expander.Expand(ctx, legacyRow("foo.com", "A", 0, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"ftp://foo.com:8000", "https://foo.com"}, origins(records))

	// subdomains reuse the cached eTLD+1 lookup
	records, err = expander.Expand(ctx, legacyRow("subber.sub.foo.com", "B", 0, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"ftp://subber.sub.foo.com:8000", "https://subber.sub.foo.com"}, origins(records))

	records, err = expander.Expand(ctx, legacyRow("foo.com", "A", 2000, true))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ftp://foo.com:8000^appId=2000&inBrowser=1",
		"https://foo.com^appId=2000&inBrowser=1",
	}, origins(records))
}

func TestLegacyExpander_NoHistoryYieldsDualScheme(t *testing.T) {
	ctx := testContext()
	index := repomocks.NewMockVisitIndex(t)
	index.EXPECT().VisitedUnder(mock.Anything, mock.Anything).Return(nil, nil)

	expander := service.NewLegacyExpander(service.NewVisitResolver(index), time.Now())

	tests := []struct {
		row      *entity.LegacyHostRecord
		expected []string
	}{
		{legacyRow("bar.ca", "B", 0, false), []string{"http://bar.ca", "https://bar.ca"}},
		{legacyRow("bar.ca", "B", 1000, false), []string{"http://bar.ca^appId=1000", "https://bar.ca^appId=1000"}},
		{legacyRow("localhost", "A", 0, false), []string{"http://localhost", "https://localhost"}},
		{legacyRow("127.0.0.1", "A", 0, false), []string{"http://127.0.0.1", "https://127.0.0.1"}},
		{legacyRow("[::1]", "A", 0, false), []string{"http://[::1]", "https://[::1]"}},
	}

	for _, tt := range tests {
		t.Run(tt.row.Host, func(t *testing.T) {
			records, err := expander.Expand(ctx, tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, origins(records))
			for _, r := range records {
				assert.Equal(t, entity.PermissionKind(tt.row.Type), r.Kind)
				assert.Equal(t, entity.StateAllow, r.State)
			}
		})
	}
}

func TestLegacyExpander_OpaqueHostsPassThrough(t *testing.T) {
	ctx := testContext()
	index := repomocks.NewMockVisitIndex(t)

	expander := service.NewLegacyExpander(service.NewVisitResolver(index), time.Now())

	for _, host := range []string{
		"file:///some/path/to/file.html",
		"moz-nullprincipal:{8695105a-adbe-4e4e-8083-851faa5ca2d7}",
		"<file>",
	} {
		records, err := expander.Expand(ctx, legacyRow(host, "A", 0, false))
		require.NoError(t, err)
		assert.Equal(t, []string{host}, origins(records))
	}
	index.AssertNotCalled(t, "VisitedUnder", mock.Anything, mock.Anything)
}

func TestLegacyExpander_IndexFailureFallsBackToDualScheme(t *testing.T) {
	ctx := testContext()
	index := repomocks.NewMockVisitIndex(t)
	index.EXPECT().VisitedUnder(mock.Anything, "example.org").Return(nil, errors.New("places locked"))

	expander := service.NewLegacyExpander(service.NewVisitResolver(index), time.Now())

	records, err := expander.Expand(ctx, legacyRow("www.example.org", "A", 0, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.example.org", "https://www.example.org"}, origins(records))
}

func TestLegacyExpander_NilIndexMeansNoHistory(t *testing.T) {
	expander := service.NewLegacyExpander(service.NewVisitResolver(nil), time.Now())

	records, err := expander.Expand(testContext(), legacyRow("bar.ca", "B", 0, false))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://bar.ca", "https://bar.ca"}, origins(records))
}

func TestLegacyExpander_DropsExpiredRows(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	expander := service.NewLegacyExpander(service.NewVisitResolver(nil), now)

	expired := legacyRow("bar.ca", "B", 0, false)
	expired.ExpireType = entity.ExpireTime
	expired.ExpireTime = now.Add(-time.Hour)

	records, err := expander.Expand(testContext(), expired)
	require.NoError(t, err)
	assert.Empty(t, records)

	live := legacyRow("bar.ca", "B", 0, false)
	live.ExpireType = entity.ExpireTime
	live.ExpireTime = now.Add(time.Hour)

	records, err = expander.Expand(testContext(), live)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, live.ExpireTime, records[0].ExpireTime)
}

func TestLegacyExpander_RejectsMalformedRows(t *testing.T) {
	expander := service.NewLegacyExpander(service.NewVisitResolver(nil), time.Now())

	noPermission := legacyRow("nullperm.com", "camera", 0, false)
	noPermission.Permission = 0

	for _, row := range []*entity.LegacyHostRecord{
		nil,
		legacyRow("", "A", 0, false),
		legacyRow("foo.com", "", 0, false),
		legacyRow("foo.com/path", "A", 0, false),
		noPermission,
	} {
		_, err := expander.Expand(testContext(), row)
		assert.ErrorIs(t, err, service.ErrMalformedLegacyRow)
	}
}
