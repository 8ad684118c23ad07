// Package storage is the attachment/image upload collaborator used by the
// admin forms. Files land under the configured upload directory and are
// served back as public URLs.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadFolder rejects folder hints that would escape the upload directory.
var ErrBadFolder = errors.New("invalid upload folder")

type Uploader struct {
	dir     string
	baseURL string
}

func NewUploader(dir, baseURL string) *Uploader {
	return &Uploader{dir: dir, baseURL: baseURL}
}

// Save writes data under a folder hint with a random name and returns the
// public URL. The original filename only contributes its extension. The
// folder hint must be a single path element; separators and dot segments
// are rejected so a caller cannot write outside the upload directory.
func (u *Uploader) Save(data []byte, folder, filename string) (string, error) {
	if !validFolder(folder) {
		return "", ErrBadFolder
	}
	name := uuid.NewString() + filepath.Ext(filename)
	dir := filepath.Join(u.dir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s/%s", u.baseURL, folder, name), nil
}

func validFolder(folder string) bool {
	if folder == "" || folder == "." || folder == ".." {
		return false
	}
	return !strings.ContainsAny(folder, `/\`)
}
