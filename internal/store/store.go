// internal/store/store.go
// Package store persists transcripts as plain text files under one output
// directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// TranscriptStore writes transcript files into a single directory on fs.
type TranscriptStore struct {
	fs  afero.Fs
	dir string
}

// New returns a store rooted at dir on fs.
func New(fs afero.Fs, dir string) *TranscriptStore {
	return &TranscriptStore{fs: fs, dir: dir}
}

// Dir returns the output directory.
func (s *TranscriptStore) Dir() string { return s.dir }

// Path returns the full path a file named name would be written to.
func (s *TranscriptStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// EnsureDir creates the output directory and any missing parents. It is a
// no-op when the directory already exists.
func (s *TranscriptStore) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}
	return nil
}

// Put writes text to name, replacing any existing file. The content goes to
// a temp file in the same directory first and is renamed into place.
func (s *TranscriptStore) Put(name, text string) (string, error) {
	fullPath := s.Path(name)

	tempFile, err := afero.TempFile(s.fs, s.dir, ".chat-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := tempFile.WriteString(text); err != nil {
		tempFile.Close()
		s.fs.Remove(tempName)
		return "", fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		s.fs.Remove(tempName)
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		s.fs.Remove(tempName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := s.fs.Chmod(tempName, 0o644); err != nil {
		s.fs.Remove(tempName)
		return "", fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := s.fs.Rename(tempName, fullPath); err != nil {
		s.fs.Remove(tempName)
		return "", fmt.Errorf("failed to rename temp file to %s: %w", fullPath, err)
	}
	return fullPath, nil
}

// Get returns the content of name.
func (s *TranscriptStore) Get(name string) (string, error) {
	b, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("transcript %s not found", name)
		}
		return "", fmt.Errorf("failed to read transcript %s: %w", name, err)
	}
	return string(b), nil
}

// List returns the sorted names of the transcript files in the directory.
func (s *TranscriptStore) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") || !strings.HasSuffix(info.Name(), ".txt") {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}
