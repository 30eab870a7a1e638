package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

// TaxCardKeys are the fields read from a tax card.
var TaxCardKeys = []string{
	"Country",
	"Ministry",
	"Authority",
	"Tax Center",
	"Company Name",
	"Address",
	"Activity",
	"Tax ID Number",
	"Card Issuance Date",
	"Card Expiry Date",
	"Card Number",
	"Document Type",
	"Usage Restriction",
	"Lost/Found Instructions",
	"Contact for Lost/Stolen Cards",
}

const taxCardPrompt = `You are given OCR text from a Tax Card document. Extract the following fields and return a JSON object with exactly these keys (no extra keys or commentary):
%s
Card Issuance Date and Card Expiry Date use the format YYYY-MM-DD.
Use English digits for all numbers and dates. If a field is missing, set its value to an empty string.

===BEGIN TAX CARD TEXT===
%s
===END TAX CARD TEXT===
Return only the JSON object.`

// TaxCardExtractor treats the whole document as one record.
type TaxCardExtractor struct {
	model llm.Model
}

func NewTaxCardExtractor(model llm.Model) *TaxCardExtractor {
	return &TaxCardExtractor{model: model}
}

func (e *TaxCardExtractor) Source() Source { return SourcePages }

func (e *TaxCardExtractor) Extract(ctx context.Context, in Input) (any, error) {
	combined := strings.Join(in.Pages, "\n\n")
	raw, err := generate(ctx, e.model, "tax card fields", fmt.Sprintf(taxCardPrompt, numberedList(TaxCardKeys), combined))
	if err != nil {
		return nil, err
	}

	data, err := llm.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("tax card: %w", err)
	}
	fillMissing(data, TaxCardKeys)
	normalizeDateFields(data, "Card Issuance Date", "Card Expiry Date")
	return data, nil
}
