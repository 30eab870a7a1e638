// Package pdftest fakes the poppler tools for tests in other packages.
package pdftest

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/Lllllllleong/documentextraction/internal/pdf"
)

// Runner pretends to be pdftoppm and pdftotext: rendering writes a small
// placeholder image, text extraction returns Pages joined by form feeds.
type Runner struct {
	mu    sync.Mutex
	Pages []string
	Calls []string
}

func (r *Runner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, name+" "+strings.Join(args, " "))
	r.mu.Unlock()

	if strings.Contains(name, "pdftoppm") {
		prefix := args[len(args)-1]
		if err := os.WriteFile(prefix+".jpg", []byte{0xFF, 0xD8, 0xFF}, 0o644); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}
	return []byte(strings.Join(r.Pages, "\f") + "\f"), nil, nil
}

// NewRasterizer returns a Rasterizer that reports pageCount pages for any
// existing file and runs commands through runner.
func NewRasterizer(runner *Runner, pageCount int) *pdf.Rasterizer {
	return pdf.NewRasterizer(pdf.Config{}).WithRunner(runner, func(string) (int, error) {
		return pageCount, nil
	})
}

// WritePDF creates a placeholder PDF file at path.
func WritePDF(path string) error {
	return os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0o644)
}
