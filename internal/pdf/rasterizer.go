// Package pdf renders PDF pages to JPEG images and reads the PDF text layer,
// using poppler's command line tools.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Config controls the poppler binaries used for rendering.
type Config struct {
	Pdftoppm  string // defaults to "pdftoppm"
	Pdftotext string // defaults to "pdftotext"
	Pdfinfo   string // defaults to "pdfinfo"
}

// Rasterizer converts PDF pages into images. It keeps no state between calls
// and re-renders on every call.
type Rasterizer struct {
	cfg       Config
	runner    Runner
	pageCount func(path string) (int, error)
}

func NewRasterizer(cfg Config) *Rasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdfinfo == "" {
		cfg.Pdfinfo = "pdfinfo"
	}
	return &Rasterizer{cfg: cfg, runner: execRunner{}}
}

// WithRunner returns a copy of r that executes commands through runner and,
// when pageCount is non-nil, counts pages with it.
func (r *Rasterizer) WithRunner(runner Runner, pageCount func(string) (int, error)) *Rasterizer {
	cp := *r
	cp.runner = runner
	if pageCount != nil {
		cp.pageCount = pageCount
	}
	return &cp
}

// PageCount returns the number of pages of the PDF at path. pdfcpu counts
// first; files it rejects are counted by pdfinfo, since poppler may still
// render them.
func (r *Rasterizer) PageCount(ctx context.Context, path string) (int, error) {
	if err := requireFile(path); err != nil {
		return 0, err
	}
	if r.pageCount != nil {
		n, err := r.pageCount(path)
		if err != nil {
			return 0, fmt.Errorf("failed to get page count of %s: %w", path, err)
		}
		return n, nil
	}

	n, err := countPages(path)
	if err == nil {
		return n, nil
	}
	slog.Warn("pdfcpu rejected PDF, counting pages with pdfinfo.", "path", path, "error", err)
	n, infoErr := r.pdfinfoPages(ctx, path)
	if infoErr != nil {
		return 0, fmt.Errorf("failed to get page count of %s: %w", path, errors.Join(err, infoErr))
	}
	return n, nil
}

// ToImages renders up to maxPages pages of the PDF as JPEGs at dpi into
// outDir, named page_<n>.jpg, and returns their paths in page order.
func (r *Rasterizer) ToImages(ctx context.Context, pdfPath, outDir string, dpi, maxPages int) ([]string, error) {
	pageCount, err := r.PageCount(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return r.RenderPages(ctx, pdfPath, outDir, dpi, min(maxPages, pageCount))
}

// RenderPages renders pages 1 through pages without counting them first, for
// callers that already know the page count.
func (r *Rasterizer) RenderPages(ctx context.Context, pdfPath, outDir string, dpi, pages int) ([]string, error) {
	if err := requireFile(pdfPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory %s: %w", outDir, err)
	}

	images := make([]string, 0, max(pages, 0))
	for page := 1; page <= pages; page++ {
		prefix := filepath.Join(outDir, fmt.Sprintf("page_%d", page))
		p := strconv.Itoa(page)
		_, stderr, err := r.runner.Run(ctx, r.cfg.Pdftoppm,
			"-jpeg", "-r", strconv.Itoa(dpi), "-f", p, "-l", p, "-singlefile", pdfPath, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d of %s: %w (%s)", page, pdfPath, err, strings.TrimSpace(string(stderr)))
		}
		imgPath := prefix + ".jpg"
		if _, err := os.Stat(imgPath); err != nil {
			// Not wrapped: a missing output is a renderer fault, not a missing input.
			return nil, fmt.Errorf("%s rendered no image for page %d of %s: %v", r.cfg.Pdftoppm, page, pdfPath, err)
		}
		images = append(images, imgPath)
	}

	slog.Debug("Rendered PDF pages.", "path", pdfPath, "rendered", len(images), "dpi", dpi)
	return images, nil
}

// ExtractText returns the text layer of every page of the PDF.
func (r *Rasterizer) ExtractText(ctx context.Context, pdfPath string) ([]string, error) {
	if err := requireFile(pdfPath); err != nil {
		return nil, err
	}
	out, stderr, err := r.runner.Run(ctx, r.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", pdfPath, "-")
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w (%s)", pdfPath, err, strings.TrimSpace(string(stderr)))
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on its form-feed page separator.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}

func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot find PDF file %s: %w", path, err)
	}
	return nil
}

// countPages validates the file leniently before counting, so scanner output
// with minor structural defects is still accepted.
func countPages(path string) (int, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, cfg); err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	return api.PageCountFile(path)
}

var pagesLine = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

func (r *Rasterizer) pdfinfoPages(ctx context.Context, path string) (int, error) {
	out, stderr, err := r.runner.Run(ctx, r.cfg.Pdfinfo, path)
	if err != nil {
		return 0, fmt.Errorf("%s failed: %w (%s)", r.cfg.Pdfinfo, err, strings.TrimSpace(string(stderr)))
	}
	m := pagesLine.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("%s printed no page count", r.cfg.Pdfinfo)
	}
	return strconv.Atoi(string(m[1]))
}
