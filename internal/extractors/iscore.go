package extractors

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/documentextraction/internal/llm"
)

const companyRawPrompt = `Extract these fields from the corporate credit score report, one per line in the format 'Key: Value':

Report Number:
Company Name:
Address:
Credit Score:
Corporate Profile table under 'ﺔﻴﺼﺨﺸﻟا ﻖﻴﻘﺤﺗ تﺎﻧﺎﻴﺑ':
Business Risk Summary under 'ى ﻤﻟا يﺰﻛﺮﻤﻟا ﻚﻨﺒﻟا راﺮﻘﻟ ﺎﻘﺒﻃ ةﺄﺸﻨﻤﻟا تﺎﻧﺎﻴﺑ':
Identity Data (under 'بيانات تحقيق شخصية'):
Credit Summary (under 'ملخص محتوى التقرير للتسهيلات الائتمانية'):
Facility tables 'ﻲﻧﺎﻤﺘﺋا ﻞﻴﻬﺴﺘﻟا {index}': facility_index, facility_code, facility_type, credit_limit, bank_code

Full Report Text:
%s
===END===
Return only the 'Key: Value' lines, no commentary.`

const companyJSONPrompt = `Convert these key:value lines into a JSON object with exactly these keys:
- report_number (string)
- company_profile (object parsed from Corporate Profile table)
- business_risk_summary (object parsed from Business Risk Summary table)
- profile (object with company name, address, credit_score)
- identity_data (object key:id)
- credit_summary (object with currency, number_of_facilities, total_credit_limits, total_outstanding, total_monthly_installments)
- facilities (array of objects with facility_index, facility_code, facility_type, credit_limit, bank_code)

Ensure bank_code contains only the alphanumeric code, Arabic text is preserved, numerals are English and dates are YYYY-MM-DD.
Raw Lines:
%s
===END===
Return only the JSON object, no commentary.`

const companyRefinePrompt = `Here is the JSON extracted:
%s
Please:
- Fix any garbled Arabic in company_profile and profile fields.
- Ensure 'identity_data' is a flat object {id_type: id_number}.
- Structure 'company_profile' and 'business_risk_summary' as nested objects with correct keys.
- Return only the corrected JSON object, no commentary.`

const individualRawPrompt = `Extract these fields from the personal credit score report, one per line, in 'Key: Value':
Report Number:
Name (full Arabic name as written):
Address (the Arabic address, digits included):
Credit Score:
Identity Data under 'بيانات تحقيق شخصية' as 'ID Type: Value' lines:
Credit Summary fields under 'ملخص محتوى التقرير للتسهيلات الائتمانية':
  Currency:
  Number of Facilities:
  Total Credit Limits:
  Total Outstanding:
  Total Monthly Installments:
For each facility table 'ﻲﻧﺎﻤﺘﺋا ﻞﻴﻬﺴﺘﻟا {index}', list 'facility_index, facility_code, facility_type, credit_limit, bank_code'; facility_type is required.

Full Report Text:
%s
===END===
Return only the 'Key: Value' lines, no commentary.`

const individualJSONPrompt = `Convert these key:value lines into a JSON object with exactly these keys:
- report_number (string)
- profile (object with name, address, credit_score)
- identity_data (object with id_type: id_number)
- credit_summary (object with currency, number_of_facilities, total_credit_limits, total_outstanding, total_monthly_installments)
- facilities (array of objects, each with facility_index, facility_code, facility_type, credit_limit, bank_code)

Ensure:
- Identity data becomes a single object, not an array.
- Arabic text is preserved correctly.
- bank_code contains only the alphanumeric code.
- All Arabic numerals and dates use English digits; dates are YYYY-MM-DD.

Raw Lines:
%s
===END===
Return only the JSON object, no commentary.`

const individualRefinePrompt = `Here is the JSON extracted:
%s

Please:
- Correct any garbled Arabic in profile.name and address.
- Ensure identity_data is a flat object: {id_type: id_number}.
- Confirm credit_summary has separate fields.
- Return only the corrected JSON object, no commentary.`

// creditReport runs the three-call chain shared by both I-Score reports:
// key-value lines, JSON conversion, then a repair pass over the JSON.
type creditReport struct {
	name   string
	model  llm.Model
	texts  TextReader
	raw    string
	json   string
	refine string
}

func (c *creditReport) Source() Source { return SourceDocument }

func (c *creditReport) Extract(ctx context.Context, in Input) (any, error) {
	pages, err := c.texts.ExtractText(ctx, in.PDFPath)
	if err != nil {
		return nil, err
	}
	fullReport := strings.Join(pages, "\n\n")

	rawLines, err := generate(ctx, c.model, c.name+" raw extraction", fmt.Sprintf(c.raw, fullReport))
	if err != nil {
		return nil, err
	}
	jsonText, err := generate(ctx, c.model, c.name+" JSON conversion", fmt.Sprintf(c.json, strings.TrimSpace(rawLines)))
	if err != nil {
		return nil, err
	}
	data, err := llm.DecodeObject(jsonText)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	extracted, err := llm.EncodeObject(data)
	if err != nil {
		return nil, err
	}
	refinedText, err := generate(ctx, c.model, c.name+" refinement", fmt.Sprintf(c.refine, extracted))
	if err != nil {
		return nil, err
	}
	refined, err := llm.DecodeObject(refinedText)
	if err != nil {
		return nil, fmt.Errorf("%s refinement: %w", c.name, err)
	}
	return refined, nil
}

// IScoreCompanyExtractor reads a corporate I-Score credit report.
type IScoreCompanyExtractor struct{ creditReport }

func NewIScoreCompanyExtractor(model llm.Model, texts TextReader) *IScoreCompanyExtractor {
	return &IScoreCompanyExtractor{creditReport{
		name:   "company credit report",
		model:  model,
		texts:  texts,
		raw:    companyRawPrompt,
		json:   companyJSONPrompt,
		refine: companyRefinePrompt,
	}}
}

// IScoreIndividualExtractor reads a personal I-Score credit report.
type IScoreIndividualExtractor struct{ creditReport }

func NewIScoreIndividualExtractor(model llm.Model, texts TextReader) *IScoreIndividualExtractor {
	return &IScoreIndividualExtractor{creditReport{
		name:   "personal credit report",
		model:  model,
		texts:  texts,
		raw:    individualRawPrompt,
		json:   individualJSONPrompt,
		refine: individualRefinePrompt,
	}}
}
