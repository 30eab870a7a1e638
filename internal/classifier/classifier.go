// Package classifier decides which kind of document a PDF is by showing its
// first page to the model.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Lllllllleong/documentextraction/internal/llm"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/pdf"
)

// DefaultDPI is the resolution used to render the page shown to the model.
const DefaultDPI = 150

// Prompt asks for exactly one label from the fixed set.
var Prompt = "Classify the type of this document. " +
	"Choose exactly one of: " + labelList() + ". " +
	"Return only the label (no extra text)."

// Classifier maps a PDF to a models.DocumentType.
type Classifier struct {
	model      llm.Model
	rasterizer *pdf.Rasterizer
	dpi        int
}

func New(model llm.Model, rasterizer *pdf.Rasterizer, dpi int) *Classifier {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Classifier{model: model, rasterizer: rasterizer, dpi: dpi}
}

// Classify renders the first page, uploads it, and asks the model for the
// document type. An unrecognized label is returned as models.ErrUnknownDocumentType.
func (c *Classifier) Classify(ctx context.Context, pdfPath string) (models.DocumentType, error) {
	scratch, err := os.MkdirTemp("", "classify-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	images, err := c.rasterizer.RenderPages(ctx, pdfPath, scratch, c.dpi, 1)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", fmt.Errorf("no pages converted from %s: %w", pdfPath, os.ErrNotExist)
	}

	file, err := c.model.UploadFile(ctx, images[0])
	if err != nil {
		return "", fmt.Errorf("failed to upload first page: %w", err)
	}
	defer func() {
		if err := c.model.Release(ctx, file); err != nil {
			slog.Warn("Failed to release uploaded page.", "file", file.Name, "error", err)
		}
	}()

	label, err := c.model.GenerateText(ctx, Prompt, file)
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}

	docType, err := models.ParseDocumentType(label)
	if err != nil {
		return "", err
	}
	slog.Info("Classified document.", "path", pdfPath, "documentType", docType)
	return docType, nil
}

func labelList() string {
	labels := make([]string, len(models.DocumentTypes))
	for i, t := range models.DocumentTypes {
		labels[i] = string(t)
	}
	return strings.Join(labels, ", ")
}
