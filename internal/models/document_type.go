package models

import (
	"errors"
	"fmt"
	"strings"
)

// DocumentType is the category assigned to a PDF by the classifier. It selects
// the extraction strategy and never changes once assigned.
type DocumentType string

const (
	NationalID             DocumentType = "NATIONAL_ID"
	CommercialRegistration DocumentType = "COMMERCIAL_REGISTRATION"
	TaxCard                DocumentType = "TAX_CARD"
	FinancialSummary       DocumentType = "FINANCIAL_SUMMARY"
	IScoreCompany          DocumentType = "ISCORE_COMPANY"
	IScoreIndividual       DocumentType = "ISCORE_INDIVIDUAL"
)

// ErrUnknownDocumentType is returned for a label outside the fixed set.
var ErrUnknownDocumentType = errors.New("unrecognized document type")

// DocumentTypes lists every known type in declaration order.
var DocumentTypes = []DocumentType{
	NationalID,
	CommercialRegistration,
	TaxCard,
	FinancialSummary,
	IScoreCompany,
	IScoreIndividual,
}

// ParseDocumentType maps a model label to a DocumentType by exact name after
// trimming whitespace and upper-casing.
func ParseDocumentType(label string) (DocumentType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	for _, t := range DocumentTypes {
		if string(t) == normalized {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w from model: '%s'", ErrUnknownDocumentType, normalized)
}

func (t DocumentType) String() string {
	return string(t)
}
