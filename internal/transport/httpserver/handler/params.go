package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"alianca-go/internal/storage"
	"alianca-go/pkg/calendar"
)

const uploadField = "file"

// parseDateParam defaults to today in the handler's zone when empty.
func (h *Handlers) parseDateParam(value string) (calendar.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return calendar.Today(h.now(), h.loc), nil
	}
	return calendar.Parse(value)
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

func parseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

type upload struct {
	filename    string
	contentType string
	data        []byte
}

// readUpload reads the multipart "file" field, capped slightly above the
// storage limit so oversized files are reported instead of truncated.
func readUpload(w http.ResponseWriter, r *http.Request) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(storage.MaxUploadBytes + 1<<20); err != nil {
		return upload{}, err
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return upload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes+1))
	if err != nil {
		return upload{}, err
	}
	if len(data) == 0 {
		return upload{}, errors.New("empty upload")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return upload{filename: header.Filename, contentType: contentType, data: data}, nil
}
