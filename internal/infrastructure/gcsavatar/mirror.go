package gcsavatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

const (
	fetchTimeout = 10 * time.Second
	maxAvatar    = 5 << 20
)

var ErrNotImage = errors.New("avatar source is not an image")

// Uploader stores an object and returns its public URL.
type Uploader func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)

// Mirror copies provider profile images to avatars/<user id> in a bucket.
type Mirror struct {
	HTTP   *http.Client
	Upload Uploader
}

func NewMirror(client *storage.Client, bucket string) *Mirror {
	return &Mirror{
		HTTP: &http.Client{Timeout: fetchTimeout},
		Upload: func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
			return helpers.UploadObject(ctx, client, bucket, objectPath, r, helpers.UploadOptions{
				ContentType: contentType,
				Metadata:    map[string]string{"source": "identity-provider"},
			})
		},
	}
}

func (m *Mirror) Mirror(ctx context.Context, userID, srcURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := m.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch avatar: %s", resp.Status)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}
	return m.Upload(ctx, "avatars/"+userID, ct, io.LimitReader(resp.Body, maxAvatar))
}

var _ application.AvatarMirror = (*Mirror)(nil)
