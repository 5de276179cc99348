package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cmdb-sync/core/reconcile"
	"cmdb-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Store archives full run reports as JSON objects in a bucket.
type Store struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewStore wraps a storage client for the given bucket.
func NewStore(client storage.Client, bucket string, logger *zap.Logger) *Store {
	return &Store{client: client, bucket: bucket, logger: logger}
}

// ObjectName returns the archive object name for a report. Reports are
// laid out by start date so buckets stay browsable.
func ObjectName(report *reconcile.RunReport) string {
	return fmt.Sprintf("reports/%s/run-%s.json", report.StartedAt.UTC().Format("2006/01/02"), report.RunID)
}

// EnsureBucket creates the archive bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created archive bucket", zap.String("bucket", s.bucket))
	return nil
}

// Upload stores the report and returns the object name it was written
// under.
func (s *Store) Upload(ctx context.Context, report *reconcile.RunReport) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	name := ObjectName(report)
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}

	s.logger.Debug("report archived", zap.String("object", name), zap.Int("bytes", len(payload)))
	return name, nil
}

// Fetch loads an archived report by object name.
func (s *Store) Fetch(ctx context.Context, objectName string) (*reconcile.RunReport, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report %s: %w", objectName, err)
	}
	defer obj.Close()

	payload, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", objectName, err)
	}

	var report reconcile.RunReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", objectName, err)
	}
	return &report, nil
}
