package services

import (
	"fmt"

	"github.com/Lllllllleong/documentextraction/internal/gcp"
	"github.com/Lllllllleong/documentextraction/internal/pdf"
)

// PipelineConfig controls how pages are rendered for OCR.
type PipelineConfig struct {
	DPI          int
	MaxPages     int
	ImagesFolder string
}

// Config holds all configuration for the extraction services. Empty
// ResultsBucket, CollectionName or WorkflowID switch that integration off.
type Config struct {
	Model      gcp.ModelConfig
	Pipeline   PipelineConfig
	Rasterizer pdf.Config

	ResultsBucket    string
	CollectionName   string
	WorkflowID       string
	WorkflowLocation string
}

// LoadConfig loads and validates the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Model: gcp.ModelConfig{
			Backend:       gcp.GetEnv("MODEL_BACKEND", gcp.BackendVertex),
			ModelName:     gcp.GetEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			APIKey:        gcp.GetEnv("GEMINI_API_KEY", ""),
			ProjectID:     gcp.GetEnv("PROJECT_ID", ""),
			Region:        gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
			StagingBucket: gcp.GetEnv("STAGING_BUCKET", ""),
			PollInterval:  gcp.GetEnvDuration("UPLOAD_POLL_INTERVAL", defaultPollInterval),
		},
		Pipeline: PipelineConfig{
			DPI:          gcp.GetEnvInt("PDF_IMAGE_DPI", defaultDPI),
			MaxPages:     gcp.GetEnvInt("PAGES_TO_PROCESS", defaultMaxPages),
			ImagesFolder: gcp.GetEnv("IMAGES_FOLDER", "./images"),
		},
		Rasterizer: pdf.Config{
			Pdftoppm:  gcp.GetEnv("PDFTOPPM", "pdftoppm"),
			Pdftotext: gcp.GetEnv("PDFTOTEXT", "pdftotext"),
			Pdfinfo:   gcp.GetEnv("PDFINFO", "pdfinfo"),
		},
		ResultsBucket:    gcp.GetEnv("RESULTS_BUCKET", ""),
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", ""),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Model.Backend {
	case gcp.BackendVertex:
		if c.Model.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the %s backend", gcp.BackendVertex)
		}
	case gcp.BackendGemini:
		if c.Model.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable must be set for the %s backend", gcp.BackendGemini)
		}
	default:
		return fmt.Errorf("MODEL_BACKEND must be %q or %q, got %q", gcp.BackendVertex, gcp.BackendGemini, c.Model.Backend)
	}
	if c.Model.ProjectID == "" && (c.CollectionName != "" || c.WorkflowID != "") {
		return fmt.Errorf("PROJECT_ID environment variable must be set when FIRESTORE_COLLECTION or WORKFLOW_ID is set")
	}
	if c.Pipeline.DPI <= 0 {
		return fmt.Errorf("PDF_IMAGE_DPI must be positive, got %d", c.Pipeline.DPI)
	}
	if c.Pipeline.MaxPages <= 0 {
		return fmt.Errorf("PAGES_TO_PROCESS must be positive, got %d", c.Pipeline.MaxPages)
	}
	return nil
}

// NeedsStorage reports whether any configured integration talks to GCS.
func (c *Config) NeedsStorage() bool {
	return c.ResultsBucket != "" || (c.Model.Backend == gcp.BackendVertex && c.Model.StagingBucket != "")
}
