package helpers

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient opens a read-write Storage client. An empty credsPath falls
// back to Application Default Credentials.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	return storage.NewClient(ctx, opts...)
}

// UploadOptions are the object attributes set on upload.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// UploadObject streams r into bucket/objectPath, overwriting any previous
// object, and returns its public URL.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath string, r io.Reader, opts UploadOptions) (string, error) {
	w := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl
	if w.CacheControl == "" {
		w.CacheControl = "public, max-age=3600"
	}
	w.Metadata = opts.Metadata
	w.ChunkSize = 0 // single request; objects here are small
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, objectPath, err)
	}
	return PublicURL(bucket, objectPath), nil
}

// PublicURL assumes the bucket grants public read.
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
