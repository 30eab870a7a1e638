package services

import (
	"errors"
	"io/fs"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/documentextraction/internal/extractors"
	"github.com/Lllllllleong/documentextraction/internal/llm"
	"github.com/Lllllllleong/documentextraction/internal/models"
)

// StatusForError maps a processing error to an HTTP status code: missing or
// malformed input is 400, content the model could not handle is 422, and
// everything else is 500.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, storage.ErrObjectNotExist):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnknownDocumentType),
		errors.Is(err, extractors.ErrNoExtractor),
		errors.Is(err, llm.ErrInvalidJSON),
		errors.Is(err, llm.ErrRefusal):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsPermanent reports whether retrying err on the same input cannot succeed.
func IsPermanent(err error) bool {
	status := StatusForError(err)
	return status >= 400 && status < 500
}
