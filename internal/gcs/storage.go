// Package gcs stores raw uploaded statement files in Google Cloud
// Storage. Objects live under "{userID}/{filename}" so one user's
// statements can be listed with a prefix scan.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// StatementStore is the blob-storage collaborator used by the ingestion
// pipeline and the upload handler. The interface keeps the core free of
// network access and lets tests substitute an in-memory store.
type StatementStore interface {
	// Upload writes a statement's raw bytes under the user's prefix and
	// returns the object path.
	Upload(ctx context.Context, userID, filename string, content []byte) (string, error)

	// List returns the object paths of every statement the user has
	// uploaded.
	List(ctx context.Context, userID string) ([]string, error)

	// Download fetches a statement's raw bytes by object path.
	Download(ctx context.Context, objectPath string) ([]byte, error)
}

// Store is the GCS-backed StatementStore. It assumes Application Default
// Credentials are configured.
type Store struct {
	bucket string
}

// NewStore creates a store writing to the given bucket.
func NewStore(bucket string) *Store {
	return &Store{bucket: bucket}
}

// Upload implements StatementStore.
func (s *Store) Upload(ctx context.Context, userID, filename string, content []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("Upload: create storage client: %w", err)
	}
	defer client.Close()

	objectPath := path.Join(userID, filename)
	w := client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(content)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Upload: writing object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Upload: finalize object %s: %w", objectPath, err)
	}

	return objectPath, nil
}

// List implements StatementStore.
func (s *Store) List(ctx context.Context, userID string) ([]string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: create storage client: %w", err)
	}
	defer client.Close()

	var paths []string
	it := client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: userID + "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iterating objects for %s: %w", userID, err)
		}
		paths = append(paths, attrs.Name)
	}
	return paths, nil
}

// Download implements StatementStore.
func (s *Store) Download(ctx context.Context, objectPath string) ([]byte, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(s.bucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Download: opening object %s: %w", objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Download: reading object %s: %w", objectPath, err)
	}
	return data, nil
}

// Filename extracts the statement filename from an object path, e.g.
// "user-1/november.pdf" -> "november.pdf".
func Filename(objectPath string) string {
	return path.Base(objectPath)
}
