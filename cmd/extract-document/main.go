package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentextraction/internal/gcp"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/services"
)

const maxUploadBytes = 32 << 20

var (
	processorInstance *services.DocumentProcessor
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: gcp.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	functions.HTTP("HandleExtractDocument", handleExtractDocument)
}

// main is required by the Go Functions Framework.
func main() {}

// handleExtractDocument accepts a PDF as multipart field "file" or a JSON body
// naming a gs:// object, and returns its type and extracted fields.
func handleExtractDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "only POST is supported")
		return
	}

	once.Do(func() {
		processorInstance, initErr = services.NewDocumentProcessor(context.Background())
	})
	if initErr != nil {
		slog.Error("CRITICAL: Document processor initialization failed", "error", initErr)
		writeError(w, http.StatusInternalServerError, "failed to initialize service")
		return
	}

	res, err := process(r)
	if err != nil {
		status := services.StatusForError(err)
		slog.Error("Request failed", "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func process(r *http.Request) (*models.ExtractDocumentResponse, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("%w: could not parse multipart form: %v", services.ErrInvalidRequest, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, fmt.Errorf("%w: missing form field \"file\"", services.ErrInvalidRequest)
			}
			return nil, fmt.Errorf("%w: %v", services.ErrInvalidRequest, err)
		}
		defer file.Close()
		return processorInstance.ProcessUpload(r.Context(), file, header.Filename)
	}

	var req models.ExtractDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: could not parse JSON: %v", services.ErrInvalidRequest, err)
	}
	if req.GCSUri == "" {
		return nil, fmt.Errorf("%w: gcsUri is required", services.ErrInvalidRequest)
	}
	return processorInstance.ProcessGCSURI(r.Context(), req.GCSUri)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Error: message}); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
