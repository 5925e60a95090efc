package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/permstore/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}

	for name, expected := range tests {
		assert.Equal(t, expected, logging.ParseLevel(name), name)
	}
}

func TestFromContext_WithoutLoggerIsUsable(t *testing.T) {
	log := logging.FromContext(context.Background())
	require.NotNil(t, log)
	log.Info().Msg("goes nowhere")
}

func TestNewWithFile_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	logger, cleanup, err := logging.NewWithFile(
		logging.Config{Level: zerolog.DebugLevel, Format: "console"},
		logging.FileConfig{Enabled: true, Dir: dir, MaxSizeMB: 1},
	)
	require.NoError(t, err)

	ctx := logging.WithComponent(logging.WithContext(context.Background(), logger), "test")
	logging.FromContext(ctx).Info().Str("origin", "https://example.com").Msg("hello")
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "permstore.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestLogRotator_RotatesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	r, err := logging.NewLogRotator(logging.RotatorConfig{
		Dir:        dir,
		BaseName:   "test.log",
		MaxSizeMB:  1,
		MaxBackups: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	chunk := []byte(strings.Repeat("x", 600*1024))
	for range 3 {
		_, err := r.Write(chunk)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var backups int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "test.log.") {
			backups++
		}
	}
	assert.Equal(t, 1, backups, "only MaxBackups rotated files are kept")
}
