package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lllllllleong/documentextraction/internal/extractors"
	"github.com/Lllllllleong/documentextraction/internal/llm/llmtest"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/ocr"
	"github.com/Lllllllleong/documentextraction/internal/pdf"
	"github.com/Lllllllleong/documentextraction/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classifyPrompt = "Classify the type of this document"

func newTestPipeline(t *testing.T, model *llmtest.StubModel, runner *pdftest.Runner, pageCount int) *Pipeline {
	t.Helper()
	return NewPipeline(model, pdftest.NewRasterizer(runner, pageCount), PipelineConfig{
		DPI:          150,
		MaxPages:     2,
		ImagesFolder: t.TempDir(),
	})
}

func newPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, pdftest.WritePDF(path))
	return path
}

func TestPipeline_NationalIDFrontAndBack(t *testing.T) {
	model := llmtest.New().
		On(classifyPrompt, "NATIONAL_ID").
		OnFile(ocr.PagePrompt, "page_1.jpg", "FRONT-OCR أحمد علي").
		OnFile(ocr.PagePrompt, "page_2.jpg", "BACK-OCR تاريخ الاصدار").
		On("Extract the following fields", "```json\n{\"full_name\":\"Ahmed Ali\",\"national_id_number\":\"29001011234567\",\"issue_date\":\"2020-01-15\"}\n```").
		On("FRONT-OCR", "FRONT").
		On("BACK-OCR", "BACK")
	runner := &pdftest.Runner{}
	p := newTestPipeline(t, model, runner, 2)

	got, err := p.Process(context.Background(), newPDF(t))
	require.NoError(t, err)

	assert.Equal(t, models.NationalID, got.DocumentType)
	assert.Equal(t, 2, got.PageCount)
	assert.Equal(t, map[string]any{
		"full_name":          "Ahmed Ali",
		"national_id_number": "29001011234567",
		"issue_date":         "2020-01-15",
		"expiration_date":    "2027-01-13",
	}, got.Data)

	extract := model.PromptsContaining("Extract the following fields")
	require.Len(t, extract, 1)
	assert.Contains(t, extract[0], "===BEGIN FRONT===\nFRONT-OCR أحمد علي\n===END FRONT===")
	assert.Contains(t, extract[0], "===BEGIN BACK===\nBACK-OCR تاريخ الاصدار\n===END BACK===")

	assert.Len(t, model.Uploaded, 3)
	assert.ElementsMatch(t, []string{"page_1.jpg", "page_1.jpg", "page_2.jpg"}, model.Released)

	entries, err := os.ReadDir(p.config.ImagesFolder)
	require.NoError(t, err)
	assert.Empty(t, entries, "rendered pages are removed after the run")
}

func TestPipeline_RendersAtMostMaxPages(t *testing.T) {
	model := llmtest.New().
		On(classifyPrompt, "TAX_CARD").
		On(ocr.PagePrompt, "page text").
		On("Tax Card document", `{"Company Name":"Nour"}`)
	runner := &pdftest.Runner{}
	counted := 0
	rasterizer := pdf.NewRasterizer(pdf.Config{}).WithRunner(runner, func(string) (int, error) {
		counted++
		return 5, nil
	})
	p := NewPipeline(model, rasterizer, PipelineConfig{DPI: 150, MaxPages: 2, ImagesFolder: t.TempDir()})

	got, err := p.Process(context.Background(), newPDF(t))
	require.NoError(t, err)
	assert.Equal(t, models.TaxCard, got.DocumentType)
	assert.Equal(t, 5, got.PageCount)
	assert.Len(t, model.PromptsContaining(ocr.PagePrompt), 2)
	assert.Len(t, runner.Calls, 3, "one render to classify, two for OCR")
	assert.Equal(t, 1, counted, "pages are counted once per document")
}

func TestPipeline_CreditReportReadsTextLayer(t *testing.T) {
	model := llmtest.New().
		On(classifyPrompt, "ISCORE_COMPANY").
		On("Here is the JSON extracted", `{"report_number":"C-9"}`).
		On("Convert these key:value lines", `{"report_number":"C-9"}`).
		On("corporate credit score report", "Report Number: C-9")
	runner := &pdftest.Runner{Pages: []string{"I-Score page 1", "I-Score page 2"}}
	p := newTestPipeline(t, model, runner, 2)

	got, err := p.Process(context.Background(), newPDF(t))
	require.NoError(t, err)
	assert.Equal(t, models.IScoreCompany, got.DocumentType)
	assert.Equal(t, map[string]any{"report_number": "C-9"}, got.Data)
	assert.Empty(t, model.PromptsContaining(ocr.PagePrompt))
	assert.Contains(t, model.PromptsContaining("corporate credit score report")[0], "I-Score page 1\n\nI-Score page 2")

	var textCalls int
	for _, c := range runner.Calls {
		if strings.HasPrefix(c, "pdftotext") {
			textCalls++
		}
	}
	assert.Equal(t, 1, textCalls)
}

func TestPipeline_UnknownLabel(t *testing.T) {
	model := llmtest.New().On(classifyPrompt, "DRIVING_LICENSE")
	p := newTestPipeline(t, model, &pdftest.Runner{}, 1)

	_, err := p.Process(context.Background(), newPDF(t))
	assert.ErrorIs(t, err, models.ErrUnknownDocumentType)
	assert.Empty(t, model.PromptsContaining(ocr.PagePrompt))
}

func TestPipeline_NoExtractor(t *testing.T) {
	model := llmtest.New().On(classifyPrompt, "TAX_CARD")
	p := newTestPipeline(t, model, &pdftest.Runner{}, 1)
	p.registry = extractors.Registry{}

	_, err := p.Process(context.Background(), newPDF(t))
	assert.ErrorIs(t, err, extractors.ErrNoExtractor)
}

func TestPipeline_MissingFile(t *testing.T) {
	model := llmtest.New()
	p := newTestPipeline(t, model, &pdftest.Runner{}, 1)

	_, err := p.Process(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Empty(t, model.Prompts)
}
