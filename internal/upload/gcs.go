// Package upload pushes exported dashboard artifacts to a Google Cloud
// Storage bucket. Individual object failures are collected and reported;
// one bad object never aborts the rest of the batch.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"retailpulse/internal/config"
)

// Failure records one object that could not be uploaded.
type Failure struct {
	Object string `json:"object"`
	Reason string `json:"reason"`
}

// Result summarizes one upload batch.
type Result struct {
	Bucket   string    `json:"bucket"`
	Uploaded []string  `json:"uploaded"`
	Failures []Failure `json:"failures,omitempty"`
}

// Uploader writes local files into a GCS bucket.
type Uploader struct {
	cfg    config.UploadConfig
	logger *slog.Logger
}

// NewUploader creates an uploader for the configured bucket.
func NewUploader(cfg config.UploadConfig, logger *slog.Logger) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "uploader")),
	}
}

// Enabled reports whether uploads are configured.
func (u *Uploader) Enabled() bool {
	return u.cfg.Enabled && u.cfg.Bucket != ""
}

// UploadFiles uploads each local file to the bucket under prefix, keyed by
// base name. The returned result lists successes and per-object failures.
func (u *Uploader) UploadFiles(ctx context.Context, prefix string, paths []string) (*Result, error) {
	if !u.Enabled() {
		return nil, fmt.Errorf("upload is not configured")
	}

	var opts []option.ClientOption
	if u.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(u.cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	defer client.Close()

	bucket := client.Bucket(u.cfg.Bucket)
	result := &Result{Bucket: u.cfg.Bucket}

	for _, path := range paths {
		object := filepath.Base(path)
		if prefix != "" {
			object = prefix + "/" + object
		}

		if err := u.uploadOne(ctx, bucket, object, path); err != nil {
			u.logger.ErrorContext(ctx, "object upload failed",
				slog.String("object", object),
				slog.String("error", err.Error()))
			result.Failures = append(result.Failures, Failure{
				Object: object,
				Reason: err.Error(),
			})
			continue
		}

		u.logger.InfoContext(ctx, "object uploaded",
			slog.String("bucket", u.cfg.Bucket),
			slog.String("object", object))
		result.Uploaded = append(result.Uploaded, object)
	}

	return result, nil
}

func (u *Uploader) uploadOne(ctx context.Context, bucket *storage.BucketHandle, object, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	w := bucket.Object(object).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object: %w", err)
	}
	return nil
}
