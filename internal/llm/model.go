// Package llm defines the narrow surface the pipeline needs from a generative model
// and the helpers that turn its free-form text into structured data.
package llm

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
)

// File is an uploaded asset the model can read. Remote assets carry a URI;
// inline assets carry their bytes.
type File struct {
	Name     string
	URI      string
	MIMEType string
	Data     []byte
}

// Model is the external generative model. UploadFile returns only once the
// asset is ready to be referenced from a prompt. Release deletes a remote
// copy made by UploadFile; it is a no-op for inline files.
type Model interface {
	UploadFile(ctx context.Context, path string) (*File, error)
	GenerateText(ctx context.Context, prompt string, files ...*File) (string, error)
	Release(ctx context.Context, file *File) error
}

// MIMETypeFor guesses the content type of a local file from its extension.
func MIMETypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
