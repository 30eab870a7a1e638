package extractors

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

// CommercialRegistrationKeys are the output keys, in the order requested.
var CommercialRegistrationKeys = []string{
	"commercial register",
	"commercial name arabic",
	"Trade mark arabic",
	"Trade mark english",
	"business activity",
	"commercial establish date",
	"commencial end date",
	"term",
	"commercial expire date",
	"issued start date",
	"issued end date",
	"under law",
	"issue authorithy",
	"tax card",
	"unified register",
	"paid capital",
}

const registrationFirstPagePrompt = `You are given the OCR text of the first page of a commercial-registration document.
Extract the following fields as 'key: value' lines exactly:
1. commercial register: text after 'مستخرج سجل تجاري رقم' in the header.
2. commercial name arabic: from the second column before 'Trade mark english'.
3. Trade mark arabic: same as commercial name arabic.
4. Trade mark english: immediately after the Arabic name.
5. business activity: under point (ب) in the fourth column.
6. commercial establish date: under point (ب) in the first column.
7. commencial end date: labeled 'ساري الى' in the first column.
8. term: number next to 'المدة' in column five.
9. commercial expire date: the later date in column five.
10. issued start date: text after 'تحرر في' at the top.
11. issued end date: issued start date plus 3 years.
12. under law: text after 'قانون رقم' in the second column.
13. issue authorithy: top-right header, e.g. 'مكتب استثمار الجيزة'.
14. tax card: Arabic number after 'الرقم القومي للمنشأة'.
15. unified register: Arabic number after 'الرقم الموحد للسجل التجاري'.
Return only key-value lines, no extra commentary.
===BEGIN TEXT===
%s
===END TEXT===`

const registrationSecondPagePrompt = `You are given the OCR text of the second page of a commercial-registration document.
Extract only 'paid capital: value' by finding the text after 'مقدار راس المال'.
Return only that key-value line, no extra commentary.
===BEGIN TEXT===
%s
===END TEXT===`

const registrationAggregatePrompt = `You are given key-value lines from two pages of a commercial-registration document:
%s
Convert these into a JSON object with these keys in this exact order:
%s
If any key is missing, set its value to an empty string. Return only valid JSON.`

// CommercialRegistrationExtractor pulls the first-page fields and the paid
// capital from the second page, then merges both into one JSON object.
type CommercialRegistrationExtractor struct {
	model llm.Model
}

func NewCommercialRegistrationExtractor(model llm.Model) *CommercialRegistrationExtractor {
	return &CommercialRegistrationExtractor{model: model}
}

func (e *CommercialRegistrationExtractor) Source() Source { return SourcePages }

func (e *CommercialRegistrationExtractor) Extract(ctx context.Context, in Input) (any, error) {
	first, second := pageOrEmpty(in.Pages, 0), pageOrEmpty(in.Pages, 1)

	kv1, err := generate(ctx, e.model, "first page fields", fmt.Sprintf(registrationFirstPagePrompt, first))
	if err != nil {
		return nil, err
	}
	kv2, err := generate(ctx, e.model, "paid capital", fmt.Sprintf(registrationSecondPagePrompt, second))
	if err != nil {
		return nil, err
	}

	keys, err := llm.EncodeObject(CommercialRegistrationKeys)
	if err != nil {
		return nil, err
	}
	raw, err := generate(ctx, e.model, "aggregate fields", fmt.Sprintf(registrationAggregatePrompt, kv1+"\n"+kv2, keys))
	if err != nil {
		return nil, err
	}

	data, err := llm.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("commercial registration: %w", err)
	}
	fillMissing(data, CommercialRegistrationKeys)
	return data, nil
}

func pageOrEmpty(pages []string, i int) string {
	if i < len(pages) {
		return pages[i]
	}
	return ""
}
