package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseStore uploads into a public Supabase Storage bucket.
type SupabaseStore struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

func NewSupabaseStore(baseURL, apiKey, bucket string, timeout time.Duration) *SupabaseStore {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	escaped := escapePath(objectPath)
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), escaped)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		message := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &payload) == nil && (payload.Message != "" || payload.Error != "") {
			message = strings.TrimSpace(payload.Error + " " + payload.Message)
		}
		return "", fmt.Errorf("upload %s: status %d: %s", objectPath, resp.StatusCode, message)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), escaped), nil
}

func escapePath(objectPath string) string {
	parts := strings.Split(strings.Trim(objectPath, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
