package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/documentextraction/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// CreateDocumentRecord adds a run record to the collection.
func CreateDocumentRecord(ctx context.Context, client *firestore.Client, collection string, doc models.Document) (*firestore.DocumentRef, error) {
	docRef, _, err := client.Collection(collection).Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	return docRef, nil
}

// UpdateDocumentStatus sets the status of a run record plus any extra fields.
func UpdateDocumentStatus(ctx context.Context, docRef *firestore.DocumentRef, status string, fields map[string]any) error {
	updates := []firestore.Update{{Path: "status", Value: status}}
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := docRef.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update status to %s: %w", status, err)
	}
	return nil
}
