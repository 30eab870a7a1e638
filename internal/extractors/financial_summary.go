package extractors

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

const financeListKey = "Finance List"

const financialRawPrompt = `Extract the following fields from the Central Bank of Egypt financial summary report, one per line in the format 'Key: Value':

Client Name:
CBE Code:
CBE Tenor: found in the header next to 'مركز مجمع العميل نهاية شهر'. It is the end of that month, e.g. 'نهاية شهر 8/2022' means "2022-08-31".
Print Date:
Governorate Code (the code printed just before the governorate name):
Governorate Name:
Industry Code (the code printed just before the industry):
Industry:
Finance List: the banks the client deals with, found in the table headed 'بنوك التعامل'. List every number in it.

Use English digits for numbers and dates. Finance List should list all numeric amounts (in thousands) separated by commas.

===BEGIN REPORT TEXT===
%s
===END REPORT TEXT===
Return only the lines of 'Key: Value'.`

const financialJSONPrompt = `Convert these key-value lines into a JSON object with exactly these keys:
Client Name, CBE Code, CBE Tenor, Print Date, Governorate Code, Governorate Name, Industry Code, Industry, Finance List.

- Use English digits and 'YYYY-MM-DD' for dates.
- Finance List should become an array of integers.
- Omit any unknown fields.

===RAW KEY-VALUE LINES===
%s
===END RAW LINES===
Return only the JSON object, no commentary.`

// FinancialSummaryExtractor reads the CBE financial summary report in two
// steps: key-value lines first, then JSON.
type FinancialSummaryExtractor struct {
	model llm.Model
}

func NewFinancialSummaryExtractor(model llm.Model) *FinancialSummaryExtractor {
	return &FinancialSummaryExtractor{model: model}
}

func (e *FinancialSummaryExtractor) Source() Source { return SourcePages }

func (e *FinancialSummaryExtractor) Extract(ctx context.Context, in Input) (any, error) {
	combined := strings.Join(in.Pages, "\n\n")

	rawLines, err := generate(ctx, e.model, "raw extraction", fmt.Sprintf(financialRawPrompt, combined))
	if err != nil {
		return nil, err
	}
	rawLines = strings.TrimSpace(rawLines)

	jsonText, err := generate(ctx, e.model, "JSON conversion", fmt.Sprintf(financialJSONPrompt, rawLines))
	if err != nil {
		return nil, err
	}
	data, err := llm.DecodeObject(jsonText)
	if err != nil {
		return nil, fmt.Errorf("financial summary: %w", err)
	}

	if v, ok := data[financeListKey]; ok {
		if _, isList := v.([]any); !isList {
			nums := integersAfter(rawLines, financeListKey+":")
			slog.Debug("Rebuilt finance list from raw lines.", "count", len(nums))
			data[financeListKey] = nums
		}
	}

	if s, ok := data["CBE Tenor"].(string); ok && s != "" {
		data["CBE Tenor"] = EndOfMonth(s)
	}
	normalizeDateFields(data, "CBE Tenor", "Print Date")
	return data, nil
}
