// Package services wires the classifier, OCR reader and extractors into the
// document pipeline and the cloud processor around it.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Lllllllleong/documentextraction/internal/classifier"
	"github.com/Lllllllleong/documentextraction/internal/extractors"
	"github.com/Lllllllleong/documentextraction/internal/llm"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/ocr"
	"github.com/Lllllllleong/documentextraction/internal/pdf"
)

const (
	defaultDPI          = classifier.DefaultDPI
	defaultMaxPages     = 2
	defaultPollInterval = 500 * time.Millisecond
)

// Pipeline classifies one PDF and runs the matching extractor over it.
type Pipeline struct {
	classifier *classifier.Classifier
	rasterizer *pdf.Rasterizer
	reader     *ocr.Reader
	registry   extractors.Registry
	config     PipelineConfig
}

// NewPipeline builds a pipeline whose every model call goes through model.
func NewPipeline(model llm.Model, rasterizer *pdf.Rasterizer, cfg PipelineConfig) *Pipeline {
	if cfg.DPI <= 0 {
		cfg.DPI = defaultDPI
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.ImagesFolder == "" {
		cfg.ImagesFolder = os.TempDir()
	}
	return &Pipeline{
		classifier: classifier.New(model, rasterizer, classifier.DefaultDPI),
		rasterizer: rasterizer,
		reader:     ocr.NewReader(model),
		registry:   extractors.NewRegistry(model, rasterizer),
		config:     cfg,
	}
}

// Process runs classify, OCR and extraction over the PDF at pdfPath. Errors
// from any stage are returned wrapped, without retry.
func (p *Pipeline) Process(ctx context.Context, pdfPath string) (*models.Extraction, error) {
	logCtx := slog.With("path", pdfPath)
	logCtx.Info("Starting document pipeline.")

	pageCount, err := p.rasterizer.PageCount(ctx, pdfPath)
	if err != nil {
		return nil, err
	}

	docType, err := p.classifier.Classify(ctx, pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to classify document: %w", err)
	}
	logCtx = logCtx.With("documentType", docType)

	extractor, err := p.registry.For(docType)
	if err != nil {
		return nil, err
	}

	in := extractors.Input{PDFPath: pdfPath}
	if extractor.Source() == extractors.SourcePages {
		pages, err := p.readPages(ctx, logCtx, pdfPath, pageCount)
		if err != nil {
			return nil, err
		}
		in.Pages = pages
	}

	data, err := extractor.Extract(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s fields: %w", docType, err)
	}
	logCtx.Info("Document pipeline complete.")
	return &models.Extraction{DocumentType: docType, PageCount: pageCount, Data: data}, nil
}

// readPages renders the leading pages into a fresh folder under ImagesFolder
// and transcribes them in page order.
func (p *Pipeline) readPages(ctx context.Context, logCtx *slog.Logger, pdfPath string, pageCount int) ([]string, error) {
	if err := os.MkdirAll(p.config.ImagesFolder, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images folder: %w", err)
	}
	outDir, err := os.MkdirTemp(p.config.ImagesFolder, "pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create page directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	images, err := p.rasterizer.RenderPages(ctx, pdfPath, outDir, p.config.DPI, min(p.config.MaxPages, pageCount))
	if err != nil {
		return nil, fmt.Errorf("failed to render pages: %w", err)
	}
	logCtx.Info("Rendered pages.", "count", len(images), "dpi", p.config.DPI)

	pages, err := p.reader.ReadPages(ctx, images)
	if err != nil {
		return nil, fmt.Errorf("failed to read pages: %w", err)
	}
	return pages, nil
}
