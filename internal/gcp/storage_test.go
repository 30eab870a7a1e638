package gcp

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	bucket, object, err := ParseGCSURI("gs://incoming-docs/2025/id card.pdf")
	require.NoError(t, err)
	assert.Equal(t, "incoming-docs", bucket)
	assert.Equal(t, "2025/id card.pdf", object)

	for _, bad := range []string{"", "incoming-docs/a.pdf", "gs://", "gs://bucket", "gs://bucket/", "gs:///a.pdf"} {
		_, _, err := ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DPI", "200")
	t.Setenv("TEST_BAD_INT", "two")
	t.Setenv("TEST_POLL", "250ms")
	t.Setenv("TEST_EMPTY", "")

	assert.Equal(t, 200, GetEnvInt("TEST_DPI", 150))
	assert.Equal(t, 150, GetEnvInt("TEST_BAD_INT", 150))
	assert.Equal(t, 150, GetEnvInt("TEST_UNSET_INT", 150))
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("TEST_POLL", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("TEST_UNSET_POLL", time.Second))
	assert.Equal(t, "", GetEnv("TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TEST_UNSET", "fallback"))
}

func TestGetEnvLogLevel(t *testing.T) {
	t.Setenv("TEST_LEVEL", "debug")
	t.Setenv("TEST_BAD_LEVEL", "verbose")

	assert.Equal(t, slog.LevelDebug, GetEnvLogLevel("TEST_LEVEL", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, GetEnvLogLevel("TEST_BAD_LEVEL", slog.LevelInfo))
	assert.Equal(t, slog.LevelWarn, GetEnvLogLevel("TEST_UNSET_LEVEL", slog.LevelWarn))
}
