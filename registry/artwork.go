// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: registry/artwork.go
// Summary: Artwork directory management and image copying.
// Usage: Registry.AssignArtwork copies user images through an ArtworkStore.

package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArtworkError reports a failed artwork assignment.
type ArtworkError struct {
	Index  int
	Source string
	Dest   string
	Err    error
}

func (e *ArtworkError) Error() string {
	if e.Dest == "" {
		return fmt.Sprintf("assign artwork to tile %d from %s: %v", e.Index, e.Source, e.Err)
	}
	return fmt.Sprintf("assign artwork to tile %d from %s to %s: %v", e.Index, e.Source, e.Dest, e.Err)
}

func (e *ArtworkError) Unwrap() error { return e.Err }

// ArtworkStore owns the directory that holds copied artwork.
type ArtworkStore struct {
	dir string
}

// NewArtworkStore returns a store rooted at dir. The directory is not
// created until EnsureDir or Copy is called.
func NewArtworkStore(dir string) *ArtworkStore {
	return &ArtworkStore{dir: dir}
}

// Dir returns the artwork directory.
func (s *ArtworkStore) Dir() string {
	return s.dir
}

// EnsureDir creates the artwork directory if it does not exist.
func (s *ArtworkStore) EnsureDir() error {
	if s.dir == "" {
		return errors.New("artwork directory not configured")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artwork directory: %w", err)
	}
	return nil
}

// FileName returns the artwork file name for an entry. The ".jpg" extension
// is fixed; the copied bytes keep whatever encoding the source had.
func FileName(name string, index int) string {
	return fmt.Sprintf("%s-%d.jpg", name, index)
}

// PathFor returns the destination path for an entry's artwork.
func (s *ArtworkStore) PathFor(name string, index int) string {
	return filepath.Join(s.dir, FileName(name, index))
}

// Copy copies source into the artwork directory under the name derived from
// (name, index) and returns the destination path. The data is written to a
// temporary file first and renamed into place, so a failed copy leaves any
// previous artwork file untouched.
func (s *ArtworkStore) Copy(source, name string, index int) (string, error) {
	dest := s.PathFor(name, index)

	src, err := os.Open(source)
	if err != nil {
		return dest, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return dest, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return dest, fmt.Errorf("source is a directory")
	}

	if err := s.EnsureDir(); err != nil {
		return dest, err
	}

	tmp, err := os.CreateTemp(s.dir, ".artwork-*")
	if err != nil {
		return dest, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return dest, fmt.Errorf("copy data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return dest, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return dest, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return dest, fmt.Errorf("move into place: %w", err)
	}
	return dest, nil
}
