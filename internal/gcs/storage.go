package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// StorageService provides an interface for cloud storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// FetchObject downloads file bytes from the given gs:// URI.
	FetchObject(ctx context.Context, gcsURI string) ([]byte, error)

	// UploadObject writes data to a bucket under the given object name.
	UploadObject(ctx context.Context, bucketName, objectName string, data []byte) error
}

// Client is the concrete StorageService backed by Google Cloud Storage.
// It assumes Application Default Credentials are configured.
type Client struct{}

// NewClient creates a new GCS-backed storage service.
func NewClient() *Client {
	return &Client{}
}

// FetchObject downloads the object bytes behind a "gs://bucket/path" URI.
func (c *Client) FetchObject(ctx context.Context, gcsURI string) ([]byte, error) {
	bucket, object, err := splitGCSURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: open reader for %s: %w", gcsURI, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("FetchObject: read %s: %w", gcsURI, err)
	}

	return data, nil
}

// UploadObject writes data to the bucket, e.g. a generated audit report.
func (c *Client) UploadObject(ctx context.Context, bucketName, objectName string, data []byte) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("UploadObject: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("UploadObject: write %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadObject: finalize %s: %w", objectName, err)
	}

	return nil
}

// ObjectName extracts the final path element from a gs:// URI,
// e.g. "gs://bucket/folder/ledger.csv" -> "ledger.csv".
func ObjectName(uri string) string {
	_, object, err := splitGCSURI(uri)
	if err != nil {
		return uri
	}
	return path.Base(object)
}

func splitGCSURI(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed gs:// URI: %q", uri)
	}
	return parts[0], parts[1], nil
}
