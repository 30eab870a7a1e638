package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lllllllleong/documentextraction/internal/llm"
	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is an llm.Model backed by the Gemini Developer API. Uploads go
// through the Files API, which processes them asynchronously.
type GeminiClient struct {
	client       *gemini.Client
	model        *gemini.GenerativeModel
	pollInterval time.Duration
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, pollInterval time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGeminiClient: API key cannot be empty")
	}
	client, err := gemini.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &gemini.Content{
		Parts: []gemini.Part{gemini.Text(SystemPrompt)},
	}
	model.SetTemperature(0)

	return &GeminiClient{client: client, model: model, pollInterval: pollInterval}, nil
}

// UploadFile uploads the file and polls until the service reports it ACTIVE.
func (c *GeminiClient) UploadFile(ctx context.Context, path string) (*llm.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	mimeType := llm.MIMETypeFor(path)
	file, err := c.client.UploadFile(ctx, "", f, &gemini.UploadFileOptions{
		DisplayName: filepath.Base(path),
		MIMEType:    mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}

	for file.State != gemini.FileStateActive {
		if file.State == gemini.FileStateFailed {
			return nil, fmt.Errorf("uploaded file %s failed processing", file.Name)
		}
		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		file, err = c.client.GetFile(ctx, file.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to poll uploaded file: %w", err)
		}
	}

	slog.Debug("Uploaded file is active.", "path", path, "fileName", file.Name)
	return &llm.File{Name: file.Name, URI: file.URI, MIMEType: file.MIMEType}, nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string, files ...*llm.File) (string, error) {
	parts := make([]gemini.Part, 0, len(files)+1)
	for _, f := range files {
		if f.URI != "" {
			parts = append(parts, gemini.FileData{MIMEType: f.MIMEType, URI: f.URI})
		} else {
			parts = append(parts, gemini.Blob{MIMEType: f.MIMEType, Data: f.Data})
		}
	}
	parts = append(parts, gemini.Text(prompt))

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(gemini.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Release deletes the uploaded file from the Files API.
func (c *GeminiClient) Release(ctx context.Context, file *llm.File) error {
	if file == nil || file.URI == "" {
		return nil
	}
	if err := c.client.DeleteFile(ctx, file.Name); err != nil {
		return fmt.Errorf("failed to delete uploaded file %s: %w", file.Name, err)
	}
	return nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}
