package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/documentextraction/internal/gcp"
	"github.com/Lllllllleong/documentextraction/internal/models"
	"github.com/Lllllllleong/documentextraction/internal/pdf"
	"github.com/google/uuid"
)

// ErrInvalidRequest marks input that cannot name a document.
var ErrInvalidRequest = errors.New("invalid request")

// DocumentProcessor runs the pipeline for one PDF and records the run: a
// Firestore status record, the result JSON in GCS and an optional workflow
// hand-off. Nil clients switch the matching step off.
type DocumentProcessor struct {
	pipeline         *Pipeline
	model            gcp.ModelClient
	storageClient    *storage.Client
	firestoreClient  *firestore.Client
	executionsClient *executions.Client
	config           Config
}

// NewDocumentProcessor creates the clients required by the configuration.
func NewDocumentProcessor(ctx context.Context) (*DocumentProcessor, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	p := &DocumentProcessor{config: *config}
	// GCS URIs may arrive at any time, so the functions always hold a storage client.
	p.storageClient, err = storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if config.CollectionName != "" {
		p.firestoreClient, err = gcp.NewFirestoreClient(ctx, config.Model.ProjectID)
		if err != nil {
			return nil, err
		}
	}
	if config.WorkflowID != "" {
		p.executionsClient, err = executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
	}

	p.model, err = gcp.NewModelClient(ctx, config.Model, p.storageClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	p.pipeline = NewPipeline(p.model, pdf.NewRasterizer(config.Rasterizer), config.Pipeline)

	slog.Info("Document processor initialized.",
		"backend", config.Model.Backend,
		"model", config.Model.ModelName,
		"resultsBucket", config.ResultsBucket,
		"collection", config.CollectionName,
		"workflowId", config.WorkflowID,
	)
	return p, nil
}

// Close releases the clients.
func (p *DocumentProcessor) Close() error {
	var errs []error
	if p.model != nil {
		errs = append(errs, p.model.Close())
	}
	if p.storageClient != nil {
		errs = append(errs, p.storageClient.Close())
	}
	if p.firestoreClient != nil {
		errs = append(errs, p.firestoreClient.Close())
	}
	if p.executionsClient != nil {
		errs = append(errs, p.executionsClient.Close())
	}
	return errors.Join(errs...)
}

// ProcessUpload stores an uploaded PDF in a temp dir and processes it.
func (p *DocumentProcessor) ProcessUpload(ctx context.Context, r io.Reader, filename string) (*models.ExtractDocumentResponse, error) {
	tempDir, err := os.MkdirTemp("", "extract-upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, "source.pdf")
	out, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file at %s: %w", localPath, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	return p.ProcessFile(ctx, localPath, filename, "")
}

// ProcessGCSURI downloads gs://bucket/object and processes it.
func (p *DocumentProcessor) ProcessGCSURI(ctx context.Context, uri string) (*models.ExtractDocumentResponse, error) {
	bucket, object, err := gcp.ParseGCSURI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return p.ProcessGCSObject(ctx, bucket, object)
}

// ProcessGCSObject downloads one object and processes it.
func (p *DocumentProcessor) ProcessGCSObject(ctx context.Context, bucket, object string) (*models.ExtractDocumentResponse, error) {
	return p.processGCSObject(ctx, bucket, object, false)
}

// ProcessStorageEvent handles a finalized upload. A file whose hash already
// has a completed run is skipped, returning nil for both values.
func (p *DocumentProcessor) ProcessStorageEvent(ctx context.Context, e models.StorageObjectEvent) (*models.ExtractDocumentResponse, error) {
	slog.Info("Processing new GCS object.", "gcsBucket", e.Bucket, "gcsObject", e.Name)
	return p.processGCSObject(ctx, e.Bucket, e.Name, true)
}

func (p *DocumentProcessor) processGCSObject(ctx context.Context, bucket, object string, skipDuplicates bool) (*models.ExtractDocumentResponse, error) {
	if p.storageClient == nil {
		return nil, fmt.Errorf("%w: no storage client configured for gs://%s/%s", ErrInvalidRequest, bucket, object)
	}
	logCtx := slog.With("gcsBucket", bucket, "gcsObject", object)

	tempDir, err := os.MkdirTemp("", "extract-gcs-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	localPath := filepath.Join(tempDir, "source.pdf")
	if err := gcp.DownloadObject(ctx, p.storageClient, bucket, object, localPath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return nil, err
	}
	return p.process(ctx, localPath, filepath.Base(object), fmt.Sprintf("gs://%s/%s", bucket, object), skipDuplicates)
}

// ProcessFile runs the pipeline over a local PDF and records the run.
func (p *DocumentProcessor) ProcessFile(ctx context.Context, pdfPath, filename, sourceURI string) (*models.ExtractDocumentResponse, error) {
	return p.process(ctx, pdfPath, filename, sourceURI, false)
}

func (p *DocumentProcessor) process(ctx context.Context, pdfPath, filename, sourceURI string, skipDuplicates bool) (*models.ExtractDocumentResponse, error) {
	logCtx := slog.With("path", pdfPath, "filename", filename)

	fileHash, err := calculateFileHash(pdfPath)
	if err != nil {
		logCtx.Error("Failed to calculate file hash", "error", err)
		return nil, fmt.Errorf("failed to calculate file hash: %w", err)
	}
	logCtx = logCtx.With("fileHash", fileHash)

	if skipDuplicates {
		existingID, err := p.findCompleted(ctx, fileHash)
		if err != nil {
			logCtx.Error("Failed to check for duplicate", "error", err)
			return nil, err
		}
		if existingID != "" {
			logCtx.Info("Duplicate file detected. Skipping.", "existingDocId", existingID)
			return nil, nil
		}
	}

	docRef, err := p.createRecord(ctx, fileHash, filename, sourceURI)
	if err != nil {
		logCtx.Error("Failed to create Firestore record", "error", err)
		return nil, err
	}
	documentID := uuid.NewString()
	if docRef != nil {
		documentID = docRef.ID
	}
	logCtx = logCtx.With("documentId", documentID)
	logCtx.Info("Starting extraction.")

	extraction, err := p.pipeline.Process(ctx, pdfPath)
	if err != nil {
		return nil, p.handleError(ctx, logCtx, docRef, "extraction failed", err)
	}

	resultURI, err := p.saveResult(ctx, documentID, extraction)
	if err != nil {
		return nil, p.handleError(ctx, logCtx, docRef, "failed to save result", err)
	}

	executionName, err := p.triggerWorkflow(ctx, logCtx, documentID, extraction.DocumentType, resultURI)
	if err != nil {
		return nil, p.handleError(ctx, logCtx, docRef, "failed to trigger workflow execution", err)
	}

	if docRef != nil {
		fields := map[string]any{
			"documentType": string(extraction.DocumentType),
			"pageCount":    extraction.PageCount,
			"completedAt":  time.Now(),
		}
		if resultURI != "" {
			fields["resultGcsUri"] = resultURI
		}
		if executionName != "" {
			fields["workflowExecutionId"] = executionName
		}
		if err := gcp.UpdateDocumentStatus(ctx, docRef, models.StatusCompleted, fields); err != nil {
			return nil, p.handleError(ctx, logCtx, docRef, "failed to update status to COMPLETED", err)
		}
	}

	logCtx.Info("Extraction complete.", "documentType", extraction.DocumentType, "resultGcsUri", resultURI)
	return &models.ExtractDocumentResponse{
		DocumentID:   documentID,
		DocumentType: extraction.DocumentType,
		Data:         extraction.Data,
		ResultGCSUri: resultURI,
	}, nil
}

// findCompleted returns the id of a completed run over the same file, or "".
func (p *DocumentProcessor) findCompleted(ctx context.Context, fileHash string) (string, error) {
	if p.firestoreClient == nil {
		return "", nil
	}
	docs, err := p.firestoreClient.Collection(p.config.CollectionName).Where("fileHash", "==", fileHash).Documents(ctx).GetAll()
	if err != nil {
		return "", fmt.Errorf("failed to query for duplicates: %w", err)
	}
	for _, doc := range docs {
		if status, _ := doc.Data()["status"].(string); status == models.StatusCompleted {
			return doc.Ref.ID, nil
		}
	}
	return "", nil
}

func (p *DocumentProcessor) createRecord(ctx context.Context, fileHash, filename, sourceURI string) (*firestore.DocumentRef, error) {
	if p.firestoreClient == nil {
		return nil, nil
	}
	return gcp.CreateDocumentRecord(ctx, p.firestoreClient, p.config.CollectionName, models.Document{
		FileHash:         fileHash,
		OriginalFilename: filename,
		SourceURI:        sourceURI,
		Status:           models.StatusProcessing,
		CreatedAt:        time.Now(),
	})
}

// saveResult writes <documentId>/result.json once and returns its gs:// URI.
func (p *DocumentProcessor) saveResult(ctx context.Context, documentID string, extraction *models.Extraction) (string, error) {
	if p.storageClient == nil || p.config.ResultsBucket == "" {
		return "", nil
	}
	content, err := json.MarshalIndent(extraction, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	objectName := fmt.Sprintf("%s/result.json", documentID)
	bucket := p.storageClient.Bucket(p.config.ResultsBucket)
	if err := gcp.SaveToGCSAtomically(ctx, bucket, objectName, "application/json", content); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", p.config.ResultsBucket, objectName), nil
}

func (p *DocumentProcessor) triggerWorkflow(ctx context.Context, logCtx *slog.Logger, documentID string, docType models.DocumentType, resultURI string) (string, error) {
	if p.executionsClient == nil {
		return "", nil
	}
	logCtx.Info("Triggering workflow.")
	payloadBytes, err := json.Marshal(map[string]any{
		"documentId":   documentID,
		"documentType": docType,
		"resultGcsUri": resultURI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", p.config.Model.ProjectID, p.config.WorkflowLocation, p.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	execution, err := p.executionsClient.CreateExecution(ctx, req)
	if err != nil {
		return "", err
	}
	return execution.GetName(), nil
}

// handleError logs, marks the run FAILED and returns the wrapped error.
func (p *DocumentProcessor) handleError(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, message string, originalErr error) error {
	wrapped := fmt.Errorf("%s: %w", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	if docRef != nil {
		fields := map[string]any{"errorDetails": wrapped.Error(), "completedAt": time.Now()}
		if err := gcp.UpdateDocumentStatus(ctx, docRef, models.StatusFailed, fields); err != nil {
			logCtx.Error("CRITICAL: Failed to update Firestore status to FAILED after a processing error.", "updateError", err)
		}
	}
	return wrapped
}

func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
