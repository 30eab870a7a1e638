// Command docextract classifies local PDFs and prints their extracted fields
// as JSON, one result per file in argument order.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentextraction/internal/gcp"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/pdf"
	"github.com/Lllllllleong/documentextraction/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// result is printed for each input file.
type result struct {
	File         string              `json:"file"`
	DocumentType models.DocumentType `json:"documentType,omitempty"`
	PageCount    int                 `json:"pageCount,omitempty"`
	Data         any                 `json:"data,omitempty"`
	Error        string              `json:"error,omitempty"`
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: gcp.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	concurrency := flag.Int("concurrency", 2, "number of documents processed at once")
	dpi := flag.Int("dpi", 0, "page rendering DPI (overrides PDF_IMAGE_DPI)")
	maxPages := flag.Int("max-pages", 0, "pages rendered for OCR (overrides PAGES_TO_PROCESS)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: docextract [flags] file.pdf...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flag.Args(), *concurrency, *dpi, *maxPages); err != nil {
		slog.Error("docextract failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, files []string, concurrency, dpi, maxPages int) error {
	cfg, err := services.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dpi > 0 {
		cfg.Pipeline.DPI = dpi
	}
	if maxPages > 0 {
		cfg.Pipeline.MaxPages = maxPages
	}

	var storageClient *storage.Client
	if cfg.NeedsStorage() {
		storageClient, err = storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		defer storageClient.Close()
	}
	model, err := gcp.NewModelClient(ctx, cfg.Model, storageClient)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer model.Close()

	pipeline := services.NewPipeline(model, pdf.NewRasterizer(cfg.Rasterizer), cfg.Pipeline)

	results := make([]result, len(files))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(concurrency, 1))
	for i, file := range files {
		eg.Go(func() error {
			results[i] = result{File: file}
			extraction, err := pipeline.Process(gctx, file)
			if err != nil {
				slog.Error("Document failed", "file", file, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].DocumentType = extraction.DocumentType
			results[i].PageCount = extraction.PageCount
			results[i].Data = extraction.Data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	failed := 0
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		if r.Error != "" {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(files))
	}
	return nil
}
