// Package archive keeps the original receipt images in a GCS bucket
// for later audit. The spreadsheet stays the only system of record for
// expense data; archival is best effort and never blocks an upload.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes receipt images into one bucket, keyed by upload date.
type Uploader struct {
	bucket string
}

// NewUploader creates an Uploader for the given bucket.
func NewUploader(bucket string) *Uploader {
	return &Uploader{bucket: bucket}
}

// Store uploads the image under receipts/YYYY/MM/DD/<uuid><ext> and
// returns the gs:// URI of the created object.
func (u *Uploader) Store(ctx context.Context, image []byte, mimeType string) (string, error) {
	objectName := fmt.Sprintf("receipts/%s/%s%s",
		time.Now().Format("2006/01/02"), uuid.NewString(), extensionFor(mimeType))

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(u.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = mimeType

	if _, err := io.Copy(w, bytes.NewReader(image)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy image to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", u.bucket, objectName), nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/heic", "image/heif":
		return ".heic"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
