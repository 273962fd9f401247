package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"report-service/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrArchivalDisabled is returned when object storage is not configured.
var ErrArchivalDisabled = errors.New("report archival is not configured")

// Archiver writes rendered reports to object storage as JSON documents,
// keyed <prefix>/<rootId>/<timestamp>.json.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string

	// now is swappable for tests.
	now func() time.Time
}

// NewArchiver creates an archiver writing into the given bucket.
func NewArchiver(client storage.Client, bucket, prefix string) *Archiver {
	if prefix == "" {
		prefix = "reports"
	}
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
	}
}

// Store serializes the report and uploads it, creating the bucket on first
// use. Returns the object key.
func (a *Archiver) Store(ctx context.Context, report *Report) (string, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s.json", a.prefix, report.RootID, a.now().UTC().Format("20060102T150405Z"))
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}
	return key, nil
}

// List returns the archive object keys stored for a root.
func (a *Archiver) List(ctx context.Context, rootID string) ([]string, error) {
	prefix := fmt.Sprintf("%s/%s/", a.prefix, rootID)
	var keys []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list archives under %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
