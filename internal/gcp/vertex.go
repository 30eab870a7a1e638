package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/documentextraction/internal/llm"
	"github.com/google/uuid"
)

// SystemPrompt frames every request sent to the extraction model.
const SystemPrompt = "You are a document analysis assistant for Egyptian business and identity documents. You read scanned pages in Arabic and English and answer exactly in the format requested, without commentary."

// VertexConfig configures the Vertex AI backend.
type VertexConfig struct {
	ProjectID     string
	Region        string
	ModelName     string
	StagingBucket string        // uploads are sent inline when empty
	PollInterval  time.Duration // readiness polling for staged uploads
}

// VertexClient is an llm.Model backed by Gemini on Vertex AI. Uploaded files
// are staged in GCS and referenced by URI.
type VertexClient struct {
	model         *genai.GenerativeModel
	baseClient    *genai.Client
	storageClient *storage.Client
	config        VertexConfig
}

// NewVertexClient creates the Vertex AI client and configures its model.
// storageClient may be nil when no staging bucket is used.
func NewVertexClient(ctx context.Context, cfg VertexConfig, storageClient *storage.Client) (*VertexClient, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if cfg.StagingBucket != "" && storageClient == nil {
		return nil, fmt.Errorf("NewVertexClient: staging bucket %q requires a storage client", cfg.StagingBucket)
	}

	baseClient, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := baseClient.GenerativeModel(cfg.ModelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}
	// Identity documents otherwise trip the default personal-data filters.
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		model:         model,
		baseClient:    baseClient,
		storageClient: storageClient,
		config:        cfg,
	}, nil
}

// UploadFile stages the file in GCS and waits until the object is readable.
// Without a staging bucket the bytes are attached inline.
func (c *VertexClient) UploadFile(ctx context.Context, path string) (*llm.File, error) {
	mimeType := llm.MIMETypeFor(path)
	if c.config.StagingBucket == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return &llm.File{Name: filepath.Base(path), MIMEType: mimeType, Data: data}, nil
	}

	objectName := fmt.Sprintf("uploads/%s/%s", uuid.NewString(), filepath.Base(path))
	bucket := c.storageClient.Bucket(c.config.StagingBucket)
	if err := UploadFile(ctx, bucket, path, objectName, mimeType); err != nil {
		return nil, fmt.Errorf("failed to stage %s: %w", path, err)
	}
	if _, err := WaitForObject(ctx, bucket.Object(objectName), c.config.PollInterval); err != nil {
		return nil, fmt.Errorf("staged upload %s never became ready: %w", objectName, err)
	}

	uri := fmt.Sprintf("gs://%s/%s", c.config.StagingBucket, objectName)
	slog.Debug("Staged file for model.", "path", path, "gcsUri", uri)
	return &llm.File{Name: objectName, URI: uri, MIMEType: mimeType}, nil
}

// GenerateText sends the files followed by the prompt and returns the text of
// the first candidate.
func (c *VertexClient) GenerateText(ctx context.Context, prompt string, files ...*llm.File) (string, error) {
	parts := make([]genai.Part, 0, len(files)+1)
	for _, f := range files {
		if f.URI != "" {
			parts = append(parts, genai.FileData{MIMEType: f.MIMEType, FileURI: f.URI})
		} else {
			parts = append(parts, genai.Blob{MIMEType: f.MIMEType, Data: f.Data})
		}
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return vertexResponseText(resp), nil
}

// Release deletes a staged upload. Inline files and objects outside the
// staging bucket are left alone.
func (c *VertexClient) Release(ctx context.Context, file *llm.File) error {
	if file == nil || file.URI == "" || c.config.StagingBucket == "" {
		return nil
	}
	bucket, object, err := ParseGCSURI(file.URI)
	if err != nil || bucket != c.config.StagingBucket {
		return nil
	}
	err = c.storageClient.Bucket(bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete staged upload %s: %w", file.URI, err)
	}
	return nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// vertexResponseText concatenates the text parts of the first candidate.
func vertexResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
