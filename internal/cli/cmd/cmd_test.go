package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/domain/entity"
)

type testEnv struct {
	dbPath     string
	placesPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("ENV", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("PERMSTORE_LOG_LEVEL", "error")
	return &testEnv{
		dbPath:     filepath.Join(root, "permissions.sqlite"),
		placesPath: filepath.Join(root, "places.sqlite"),
	}
}

// run executes the root command with args and returns its stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--db", e.dbPath, "--places", e.placesPath}, args...))

	err := rootCmd.Execute()
	if app != nil {
		_ = app.Close()
		app = nil
	}
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "permstore %v", args)
	return out
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestSetGetInherited(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "set", "https://www.example.com", "cookie", "allow")
	assert.Contains(t, out, "allow")

	out = env.mustRun(t, "get", "https://sub.www.example.com", "cookie")
	assert.Contains(t, out, "allow")

	out = env.mustRun(t, "get", "https://sub.www.example.com", "camera")
	assert.Contains(t, out, "unknown")

	// Bare hosts are read as https origins.
	env.mustRun(t, "set", "example.org", "popup", "allow")
	out = env.mustRun(t, "get", "https://news.example.org", "popup")
	assert.Contains(t, out, "allow")
}

func TestSetRejectsUnavailableState(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "set", "https://example.com", "popup", "prompt")
	require.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestListAndAll(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "set", "https://example.com", "camera", "block")
	env.mustRun(t, "set", "https://example.com", "geo", "allow", "--expire", "1h")

	out := env.mustRun(t, "list", "https://example.com", "https://other.org")
	assert.Contains(t, out, "https://other.org")
	assert.Contains(t, out, "no permissions")
	assert.Less(t, bytes.Index([]byte(out), []byte("camera")), bytes.Index([]byte(out), []byte("geo")))

	out = env.mustRun(t, "all")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "2 permissions")

	out = env.mustRun(t, "all", "--kind", "camera")
	assert.Contains(t, out, "1 permissions")
}

func TestSessionDecisionsDropOnNextRun(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "set", "https://example.com", "geo", "allow", "--session")
	env.mustRun(t, "set", "https://example.com", "camera", "allow")

	// Each run reopens the store.
	out := env.mustRun(t, "list", "https://example.com")
	assert.Contains(t, out, "camera")
	assert.NotContains(t, out, "geo")
}

func TestRemoveAndClear(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "set", "https://example.com", "camera", "block")
	env.mustRun(t, "set", "https://example.com", "popup", "allow")
	env.mustRun(t, "remove", "https://example.com", "camera")

	out := env.mustRun(t, "list", "https://example.com")
	assert.NotContains(t, out, "camera")
	assert.Contains(t, out, "popup")

	_, err := env.run(t, "clear")
	require.Error(t, err, "clear without a terminal needs --force")

	env.mustRun(t, "clear", "--force")
	out = env.mustRun(t, "all")
	assert.Contains(t, out, "No permissions stored.")
}

func TestMigrateReportsTables(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "migrate", "--status")
	assert.Contains(t, out, string(entity.MigrationNeeded))

	out = env.mustRun(t, "migrate")
	assert.Contains(t, out, "migrated(version=3)")
	assert.Contains(t, out, "moz_perms")
	assert.Contains(t, out, "absent")

	out = env.mustRun(t, "migrate", "--status")
	assert.Contains(t, out, "migrated(version=3)")
}

func TestVisitAndHistory(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "visit", "--at", "2024-01-02T03:04:05Z", "https://example.com/a", "ftp://example.com:8000/")
	out := env.mustRun(t, "history")
	assert.Contains(t, out, "https://example.com/a")
	assert.Contains(t, out, "ftp://example.com:8000/")

	_, err := env.run(t, "visit", "not a url")
	require.Error(t, err)
}

func TestRequestWithoutPrompt(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "set", "https://example.com", "camera", "allow")

	out := env.mustRun(t, "request", "--no-prompt", "https://example.com", "camera")
	assert.Contains(t, out, "allow")

	out = env.mustRun(t, "request", "--no-prompt", "https://example.com", "microphone")
	assert.Contains(t, out, "block")
}

func TestPurgeExpired(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "set", "https://example.com", "camera", "allow", "--expire", "1h")
	out := env.mustRun(t, "purge-expired")
	assert.Contains(t, out, "0 expired permissions removed")

	out = env.mustRun(t, "list", "https://example.com")
	assert.Contains(t, out, "camera")
}

func TestKindsAndStates(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "kinds")
	assert.Contains(t, out, "camera")
	assert.Contains(t, out, "exact origin only")
	assert.Contains(t, out, "inherited by subdomains")

	out = env.mustRun(t, "states", "cookie")
	assert.Contains(t, out, "8\tallow-session-cookies")
}

func TestConfigCommandsSkipStores(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "config", "path")
	assert.Contains(t, out, filepath.Join("permstore", "config.toml"))
	assert.NoFileExists(t, env.placesPath)

	out = env.mustRun(t, "config", "show")
	assert.Contains(t, out, "busy_timeout_ms = 5000")

	_, err := env.run(t, "config", "reset")
	require.Error(t, err)
	env.mustRun(t, "config", "reset", "--force")
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want entity.PermissionState
	}{
		{"allow", entity.StateAllow},
		{"BLOCK", entity.StateBlock},
		{"8", entity.StateAllowCookiesForSession},
		{" prompt ", entity.StatePrompt},
	}
	for _, tt := range tests {
		got, err := parseState(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseState("sometimes")
	require.ErrorIs(t, err, entity.ErrInvalidState)
}
