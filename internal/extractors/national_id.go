package extractors

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

const pageLabelPrompt = `You are given the OCR text from one page of an Egyptian national ID card:
%s
Classify this page as exactly one of: FRONT, BACK, or BOTH.
Return only that label, with no extra text.`

const nationalIDPrompt = `You are given combined OCR text from the FRONT and BACK of an Egyptian national ID card:
%s
Extract the following fields and return a JSON object with exactly these keys:
  full_name: the first name sits alone on its own line; join it with the family name on the next line.
  gender ('Male' or 'Female'),
  date_of_birth (YYYY-MM-DD), national_id_number (14 digits),
  issue_date (YYYY-MM-DD), expiration_date (YYYY-MM-DD),
  address, profession.

- Map Arabic 'ذكر' to 'Male' and 'انثى' to 'Female'.
- Convert all Arabic numerals to English digits.
- Leave expiration_date empty if the card does not show it.
- Ignore any machine-readable zone (MRZ) or scanner footer text.

Return only the JSON object, with no code fences or extra commentary.`

// NationalIDExtractor reads Egyptian national ID scans. A PDF may hold several
// cards in any page order, each as separate front and back pages or as a
// single page showing both sides.
type NationalIDExtractor struct {
	model llm.Model
}

func NewNationalIDExtractor(model llm.Model) *NationalIDExtractor {
	return &NationalIDExtractor{model: model}
}

func (e *NationalIDExtractor) Source() Source { return SourcePages }

// Extract returns one field mapping for a single card, or a list of mappings
// when the PDF holds several.
func (e *NationalIDExtractor) Extract(ctx context.Context, in Input) (any, error) {
	labels := make([]string, len(in.Pages))
	for i, text := range in.Pages {
		label, err := generate(ctx, e.model, fmt.Sprintf("page %d label", i+1), fmt.Sprintf(pageLabelPrompt, text))
		if err != nil {
			return nil, err
		}
		labels[i] = strings.ToUpper(strings.TrimSpace(label))
	}
	slog.Debug("Labelled national ID pages.", "labels", labels)

	type record struct{ front, back string }
	var records []record
	for _, p := range PairPages(labels) {
		records = append(records, record{front: in.Pages[p.Front], back: in.Pages[p.Back]})
	}
	if len(records) == 0 {
		combined := strings.Join(in.Pages, "\n\n")
		records = []record{{front: combined, back: combined}}
	}

	outputs := make([]map[string]any, 0, len(records))
	for i, r := range records {
		raw, err := generate(ctx, e.model, fmt.Sprintf("card %d fields", i+1), fmt.Sprintf(nationalIDPrompt, recordText(r.front, r.back)))
		if err != nil {
			return nil, err
		}
		data, err := llm.DecodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("national ID card %d: %w", i+1, err)
		}
		if BackfillExpiration(data) {
			slog.Debug("Backfilled expiration date from issue date.", "card", i+1, "expirationDate", data["expiration_date"])
		}
		outputs = append(outputs, data)
	}

	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return outputs, nil
}

func recordText(front, back string) string {
	return "===BEGIN FRONT===\n" + front + "\n===END FRONT===\n" +
		"===BEGIN BACK===\n" + back + "\n===END BACK==="
}
