// Package storage uploads binary objects (avatars) and returns public URLs.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	allowedTypes    = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
)

const MaxUploadBytes = 5 << 20

// ObjectPath builds "<prefix>/<8 char id>-<sanitized filename>".
func ObjectPath(prefix, filename, contentType string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "avatar"
	}
	if path.Ext(base) == "" {
		base += allowedTypes[contentType]
	}
	return strings.Trim(prefix, "/") + "/" + uuid.New().String()[:8] + "-" + base
}

// ValidateImage checks the content type and size of an avatar upload.
func ValidateImage(contentType string, size int) error {
	if _, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]; !ok {
		return fmt.Errorf("unsupported content type %q", contentType)
	}
	if size == 0 {
		return fmt.Errorf("empty upload")
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("upload exceeds %d bytes", MaxUploadBytes)
	}
	return nil
}

// WithCacheBuster appends t=<unix millis> so clients refetch a replaced
// image stored under a stable URL.
func WithCacheBuster(rawURL string, now time.Time) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
	}
	query := parsed.Query()
	query.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
