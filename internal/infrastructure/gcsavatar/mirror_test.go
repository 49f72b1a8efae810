package gcsavatar

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirror_CopiesImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	var gotPath, gotType string
	var gotBody bytes.Buffer
	m := &Mirror{HTTP: srv.Client(), Upload: func(_ context.Context, p, ct string, r io.Reader) (string, error) {
		gotPath, gotType = p, ct
		_, _ = io.Copy(&gotBody, r)
		return "https://storage.googleapis.com/b/" + p, nil
	}}

	url, err := m.Mirror(context.Background(), "u1", srv.URL+"/a.png")
	require.NoError(t, err)

	assert.Equal(t, "https://storage.googleapis.com/b/avatars/u1", url)
	assert.Equal(t, "avatars/u1", gotPath)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", gotBody.String())
}

func TestMirror_RejectsNonImagesAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	m := &Mirror{HTTP: srv.Client(), Upload: func(context.Context, string, string, io.Reader) (string, error) {
		t.Fatal("upload must not be called")
		return "", nil
	}}

	_, err := m.Mirror(context.Background(), "u1", srv.URL+"/page")
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = m.Mirror(context.Background(), "u1", srv.URL+"/missing")
	assert.Error(t, err)
}
