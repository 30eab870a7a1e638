package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentextraction/internal/llm"
)

const (
	BackendVertex = "vertex"
	BackendGemini = "gemini"
)

// ModelConfig selects and configures the model backend.
type ModelConfig struct {
	Backend       string
	ModelName     string
	APIKey        string
	ProjectID     string
	Region        string
	StagingBucket string
	PollInterval  time.Duration
}

// ModelClient is an llm.Model holding network resources.
type ModelClient interface {
	llm.Model
	Close() error
}

// NewModelClient builds the configured backend.
func NewModelClient(ctx context.Context, cfg ModelConfig, storageClient *storage.Client) (ModelClient, error) {
	switch cfg.Backend {
	case BackendVertex, "":
		client, err := NewVertexClient(ctx, VertexConfig{
			ProjectID:     cfg.ProjectID,
			Region:        cfg.Region,
			ModelName:     cfg.ModelName,
			StagingBucket: cfg.StagingBucket,
			PollInterval:  cfg.PollInterval,
		}, storageClient)
		if err != nil {
			return nil, err
		}
		return client, nil
	case BackendGemini:
		client, err := NewGeminiClient(ctx, cfg.APIKey, cfg.ModelName, cfg.PollInterval)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown model backend %q (want %q or %q)", cfg.Backend, BackendVertex, BackendGemini)
	}
}
