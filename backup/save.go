// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Save writes data to target, a local path or a gs://bucket/object URL.
// Existing targets are never overwritten: written is false when the target
// was already there.
func Save(ctx context.Context, target string, data []byte, opts ...option.ClientOption) (written bool, err error) {
	if strings.HasPrefix(target, "gs://") {
		bucket, object, err := parseGCS(target)
		if err != nil {
			return false, err
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return false, fmt.Errorf("failed to create storage client: %w", err)
		}
		defer client.Close()
		return saveGCS(ctx, client.Bucket(bucket), object, data)
	}
	return saveFile(target, data)
}

func parseGCS(target string) (bucket, object string, err error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", "", fmt.Errorf("invalid gcs url: %w", err)
	}
	object = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || object == "" {
		return "", "", fmt.Errorf("gcs url must be gs://bucket/object, got %q", target)
	}
	return u.Host, object, nil
}

// saveGCS uploads only if the object does not exist yet.
func saveGCS(ctx context.Context, bucket *storage.BucketHandle, object string, data []byte) (bool, error) {
	w := bucket.Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = "application/json"
	if strings.HasSuffix(object, ".gz") {
		w.ContentType = "application/gzip"
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		if isPreconditionFailed(err) {
			slog.Info("backup object already exists", "object", object)
			return false, nil
		}
		return false, fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("backup object already exists", "object", object)
			return false, nil
		}
		return false, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return true, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func saveFile(path string, data []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		slog.Info("backup file already exists", "path", path)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create backup file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close backup file: %w", err)
	}
	return true, nil
}
