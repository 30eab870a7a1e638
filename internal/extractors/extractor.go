// Package extractors turns document text into structured fields, one strategy
// per document type.
package extractors

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lllllllleong/documentextraction/internal/llm"
	"github.com/Lllllllleong/documentextraction/internal/models"
)

// ErrNoExtractor is returned when a document type has no registered strategy.
var ErrNoExtractor = errors.New("no extractor defined")

// Source tells the pipeline what an extractor consumes.
type Source int

const (
	// SourcePages extractors receive OCR text of the rendered pages.
	SourcePages Source = iota
	// SourceDocument extractors receive the PDF itself.
	SourceDocument
)

// Input carries either per-page text or the path of the PDF, depending on the
// extractor's Source.
type Input struct {
	PDFPath string
	Pages   []string
}

// Extractor produces a field mapping (or a list of them) from one document.
type Extractor interface {
	Source() Source
	Extract(ctx context.Context, in Input) (any, error)
}

// TextReader reads the embedded text layer of a PDF, one string per page.
type TextReader interface {
	ExtractText(ctx context.Context, pdfPath string) ([]string, error)
}

// Registry maps each document type to its extractor.
type Registry map[models.DocumentType]Extractor

// NewRegistry wires the extractor for every known document type.
func NewRegistry(model llm.Model, texts TextReader) Registry {
	return Registry{
		models.NationalID:             NewNationalIDExtractor(model),
		models.CommercialRegistration: NewCommercialRegistrationExtractor(model),
		models.TaxCard:                NewTaxCardExtractor(model),
		models.FinancialSummary:       NewFinancialSummaryExtractor(model),
		models.IScoreCompany:          NewIScoreCompanyExtractor(model, texts),
		models.IScoreIndividual:       NewIScoreIndividualExtractor(model, texts),
	}
}

// For returns the extractor registered for t.
func (r Registry) For(t models.DocumentType) (Extractor, error) {
	e, ok := r[t]
	if !ok || e == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoExtractor, t)
	}
	return e, nil
}

// generate sends a text-only prompt; step names the call in errors.
func generate(ctx context.Context, model llm.Model, step, prompt string) (string, error) {
	text, err := model.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", step, err)
	}
	return text, nil
}
