package models

// These structs define the JSON payloads of the extraction HTTP function.

// ExtractDocumentRequest names a PDF already stored in GCS. Uploads are sent
// as multipart form data instead.
type ExtractDocumentRequest struct {
	GCSUri string `json:"gcsUri"`
}

// ExtractDocumentResponse is returned for a processed document.
type ExtractDocumentResponse struct {
	DocumentID   string       `json:"documentId,omitempty"`
	DocumentType DocumentType `json:"documentType"`
	Data         any          `json:"data"`
	ResultGCSUri string       `json:"resultGcsUri,omitempty"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StorageObjectEvent is the data of a GCS object finalize CloudEvent.
type StorageObjectEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}
