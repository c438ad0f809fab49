package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
)

// Archiver writes one JSON object per reconciliation run to object storage.
// Archival is best-effort: the orchestrator logs a failed Store call but
// never fails the run because of it.
type Archiver struct {
	client Client
	bucket string
	prefix string
}

// NewArchiver creates an Archiver over the given storage client.
func NewArchiver(client Client, bucket, prefix string) *Archiver {
	return &Archiver{client: client, bucket: bucket, prefix: prefix}
}

// Store serializes the report and uploads it under
// <prefix>/<processedAt RFC3339>.json. It returns the object key.
func (a *Archiver) Store(ctx context.Context, processedAt time.Time, report any) (string, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("archive bucket %s does not exist", a.bucket)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	key := fmt.Sprintf("%s/%s.json", a.prefix, processedAt.UTC().Format(time.RFC3339))

	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	return key, nil
}
