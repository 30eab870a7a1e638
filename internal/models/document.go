package models

import "time"

// Run statuses recorded on a Document.
const (
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Document is the Firestore record for one extraction run over a PDF.
type Document struct {
	FileHash            string    `firestore:"fileHash,omitempty"`
	OriginalFilename    string    `firestore:"originalFilename,omitempty"`
	SourceURI           string    `firestore:"sourceUri,omitempty"`
	Status              string    `firestore:"status,omitempty"`
	DocumentType        string    `firestore:"documentType,omitempty"`
	ErrorDetails        string    `firestore:"errorDetails,omitempty"`
	PageCount           int       `firestore:"pageCount,omitempty"`
	ResultGCSUri        string    `firestore:"resultGcsUri,omitempty"`
	WorkflowExecutionID string    `firestore:"workflowExecutionId,omitempty"`
	CreatedAt           time.Time `firestore:"createdAt,omitempty"`
	CompletedAt         time.Time `firestore:"completedAt,omitempty"`
}

// Extraction is the pipeline's output for one PDF. Data is a field mapping, or
// a list of mappings when one PDF holds several records.
type Extraction struct {
	DocumentType DocumentType `json:"documentType"`
	PageCount    int          `json:"pageCount,omitempty"`
	Data         any          `json:"data"`
}
