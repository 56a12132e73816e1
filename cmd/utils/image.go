package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageRule validates and stores one category of uploaded image.
// Profile images and post images carry different extension allowlists,
// content types and size caps, so each service owns its own rule.
type ImageRule struct {
	Dir          string
	URLPrefix    string
	MaxSize      int64
	Extensions   []string
	ContentTypes []string
}

// Save buffers the upload fully in memory, validates it and writes it
// under a unique filename. Returns the public URL path of the stored
// file.
func (r ImageRule) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !contains(r.Extensions, ext) {
		return "", Validation(fmt.Sprintf("invalid file type: only %s allowed", strings.Join(r.Extensions, ", ")))
	}

	contentType := header.Header.Get("Content-Type")
	if !contains(r.ContentTypes, contentType) {
		return "", Validation(fmt.Sprintf("invalid content type: only %s allowed", strings.Join(r.ContentTypes, ", ")))
	}

	contents, err := io.ReadAll(file)
	if err != nil {
		return "", Storage("failed to read uploaded file", err)
	}
	if int64(len(contents)) > r.MaxSize {
		return "", Validation(fmt.Sprintf("file size exceeds maximum of %d MB", r.MaxSize/(1<<20)))
	}

	if err := os.MkdirAll(r.Dir, 0755); err != nil {
		return "", Storage("failed to create upload directory", err)
	}

	filename := fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102"),
		uuid.New().String(),
		ext,
	)
	if err := os.WriteFile(filepath.Join(r.Dir, filename), contents, 0644); err != nil {
		return "", Storage("failed to save file", err)
	}

	return r.URLPrefix + "/" + filename, nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
