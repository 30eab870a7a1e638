package services

import (
	"os"
	"testing"
	"time"

	"github.com/Lllllllleong/documentextraction/internal/gcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MODEL_BACKEND", "GEMINI_MODEL", "GEMINI_API_KEY", "PROJECT_ID", "VERTEX_AI_REGION",
		"STAGING_BUCKET", "PDF_IMAGE_DPI", "PAGES_TO_PROCESS", "IMAGES_FOLDER", "UPLOAD_POLL_INTERVAL",
		"RESULTS_BUCKET", "FIRESTORE_COLLECTION", "WORKFLOW_ID", "WORKFLOW_LOCATION", "PDFTOPPM", "PDFTOTEXT", "PDFINFO",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_GeminiBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_BACKEND", "gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("PDF_IMAGE_DPI", "200")
	t.Setenv("UPLOAD_POLL_INTERVAL", "1s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, gcp.BackendGemini, cfg.Model.Backend)
	assert.Equal(t, 200, cfg.Pipeline.DPI)
	assert.Equal(t, time.Second, cfg.Model.PollInterval)
	assert.False(t, cfg.NeedsStorage())
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"gemini without key", map[string]string{"MODEL_BACKEND": "gemini"}},
		{"vertex without project", map[string]string{"MODEL_BACKEND": "vertex"}},
		{"unknown backend", map[string]string{"MODEL_BACKEND": "openai", "PROJECT_ID": "p"}},
		{"firestore without project", map[string]string{"MODEL_BACKEND": "gemini", "GEMINI_API_KEY": "k", "FIRESTORE_COLLECTION": "runs"}},
		{"zero pages", map[string]string{"MODEL_BACKEND": "vertex", "PROJECT_ID": "p", "PAGES_TO_PROCESS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_VertexWithStaging(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_BACKEND", "vertex")
	t.Setenv("PROJECT_ID", "docs-prod")
	t.Setenv("STAGING_BUCKET", "docs-staging")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.NeedsStorage())
	assert.Equal(t, 2, cfg.Pipeline.MaxPages)
	assert.Equal(t, "pdftoppm", cfg.Rasterizer.Pdftoppm)
}
