// Package storage resolves opaque image blob references for the KYC pipeline.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded KYC images on local disk and resolves blob
// references back to readable file paths. References are opaque to callers;
// only this package knows they are paths relative to the base directory.
type ImageStore struct {
	baseDir string
}

// NewImageStore creates an image store rooted at baseDir, creating it if needed.
// The base directory is resolved to an absolute path once so that relative
// configuration values compare correctly against joined (cleaned) paths.
func NewImageStore(baseDir string) (*ImageStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve image store dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image store dir: %w", err)
	}
	return &ImageStore{baseDir: abs}, nil
}

// Save writes the content of r under kind/ (e.g. "front", "back", "selfie")
// and returns the opaque blob reference.
func (s *ImageStore) Save(kind, originalName string, r io.Reader) (string, error) {
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".jpg"
	}
	ref := filepath.Join(kind, uuid.NewString()+ext)

	full := filepath.Join(s.baseDir, ref)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s dir: %w", kind, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return ref, nil
}

// Resolve maps a blob reference to a readable file path. Fails when the
// reference is unset, escapes the base directory, or the file is missing.
func (s *ImageStore) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("image reference not set")
	}
	full := filepath.Join(s.baseDir, filepath.Clean(ref))
	if !strings.HasPrefix(full, s.baseDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid image reference %q", ref)
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("image %q not readable: %w", ref, err)
	}
	return full, nil
}
