// Package ocr reads the text of rendered page images through the model.
package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

// PagePrompt asks for a verbatim transcription of one page.
const PagePrompt = "Extract **all visible text** from this document page. " +
	"Return only the extracted text, no commentary."

// Reader transcribes page images one at a time.
type Reader struct {
	model llm.Model
}

func NewReader(model llm.Model) *Reader {
	return &Reader{model: model}
}

// ReadPage uploads one image and returns its text.
func (r *Reader) ReadPage(ctx context.Context, imagePath string) (string, error) {
	file, err := r.model.UploadFile(ctx, imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", imagePath, err)
	}
	defer release(ctx, r.model, file)
	text, err := r.model.GenerateText(ctx, PagePrompt, file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", imagePath, err)
	}
	if err := llm.CheckRefusal(text); err != nil {
		slog.Error("LLM refusal detected", "image", imagePath, "response", text)
		return "", fmt.Errorf("page %s: %w", imagePath, err)
	}
	if text == "" {
		slog.Warn("No text extracted from page. Treating as empty page.", "image", imagePath)
	}
	return text, nil
}

// release drops the remote copy of an uploaded page. Failures are logged only,
// since the transcription itself has already succeeded or failed.
func release(ctx context.Context, model llm.Model, file *llm.File) {
	if err := model.Release(ctx, file); err != nil {
		slog.Warn("Failed to release uploaded page.", "file", file.Name, "error", err)
	}
}

// ReadPages transcribes the images in order.
func (r *Reader) ReadPages(ctx context.Context, imagePaths []string) ([]string, error) {
	texts := make([]string, 0, len(imagePaths))
	for _, p := range imagePaths {
		text, err := r.ReadPage(ctx, p)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}
