package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentextraction/internal/gcp"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

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

	functions.CloudEvent("ExtractOnUpload", extractOnUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// extractOnUpload runs the extraction for every PDF finalized in the watched bucket.
func extractOnUpload(ctx context.Context, e cloudevents.Event) error {
	var event models.StorageObjectEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	if !strings.EqualFold(path.Ext(event.Name), ".pdf") {
		slog.Info("Ignoring non-PDF object.", "gcsBucket", event.Bucket, "gcsObject", event.Name, "contentType", event.ContentType)
		return nil
	}

	once.Do(func() {
		processorInstance, initErr = services.NewDocumentProcessor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	res, err := processorInstance.ProcessStorageEvent(ctx, event)
	if err != nil {
		if services.IsPermanent(err) {
			// The run is already marked FAILED; a redelivery would fail the same way.
			slog.Error("Document cannot be processed. Not retrying.", "gcsBucket", event.Bucket, "gcsObject", event.Name, "error", err)
			return nil
		}
		// Already logged with context; returning it marks the invocation failed.
		return err
	}
	if res != nil {
		slog.Info("Upload processed.", "documentId", res.DocumentID, "documentType", res.DocumentType, "resultGcsUri", res.ResultGCSUri)
	}
	return nil
}

