package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPathSanitizesFilename(t *testing.T) {
	got := ObjectPath("groups/g1", `..\..\minha foto!.png`, "image/png")
	require.True(t, strings.HasPrefix(got, "groups/g1/"), got)

	name := strings.TrimPrefix(got, "groups/g1/")
	require.Len(t, strings.SplitN(name, "-", 2)[0], 8)
	assert.True(t, strings.HasSuffix(name, "-minha_foto_.png"), name)
}

func TestObjectPathAddsExtensionFromType(t *testing.T) {
	got := ObjectPath("profiles/u1", "", "image/jpeg")
	assert.True(t, strings.HasSuffix(got, "-avatar.jpg"), got)
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("image/png", 10))
	assert.Error(t, ValidateImage("text/html", 10))
	assert.Error(t, ValidateImage("image/png", 0))
	assert.Error(t, ValidateImage("image/png", MaxUploadBytes+1))
}

func TestWithCacheBuster(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "https://cdn.example.com/a.png?t=1700000000123", WithCacheBuster("https://cdn.example.com/a.png", now))
	assert.Equal(t, "https://cdn.example.com/a.png?t=1700000000123&v=2", WithCacheBuster("https://cdn.example.com/a.png?t=1&v=2", now))
}

func TestSupabaseStoreUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/storage/v1/object/avatars/groups/g1/abc-photo.png", r.URL.Path)
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		assert.Equal(t, "true", r.Header.Get("x-upsert"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "png-bytes", string(body))
		_, _ = w.Write([]byte(`{"Key":"avatars/groups/g1/abc-photo.png"}`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "key", "avatars", time.Second)
	publicURL, err := store.Upload(context.Background(), "groups/g1/abc-photo.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/storage/v1/object/public/avatars/groups/g1/abc-photo.png", publicURL)
}

func TestSupabaseStoreUploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"new row violates row-level security policy"}`))
	}))
	defer server.Close()

	store := NewSupabaseStore(server.URL, "key", "avatars", time.Second)
	_, err := store.Upload(context.Background(), "a.png", "image/png", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row-level security")
}

func TestLocalStoreUploadStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root, "http://localhost:8080/media/")

	publicURL, err := store.Upload(context.Background(), "../../etc/groups/g1/a.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/etc/groups/g1/a.png", publicURL)

	data, err := os.ReadFile(filepath.Join(root, "etc", "groups", "g1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
