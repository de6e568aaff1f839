// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package storage defines the narrow document store the engine
// consumes, and a file-backed implementation over a workspace
// directory. The engine depends only on the Store interface; nothing
// above this package knows about files.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/petar-djukic/docpatch/internal/document"
	"github.com/petar-djukic/docpatch/pkg/types"
)

// ErrStale is returned by Write when the expected fingerprint no
// longer matches the stored content.
var ErrStale = errors.New("stale document fingerprint")

// ErrNotFound is returned by Read for documents that do not exist yet.
var ErrNotFound = errors.New("document not found")

// Store is the persistence contract the engine consumes. Write must
// be conditional: it rejects with ErrStale unless the stored content
// still hashes to expectedFingerprint.
type Store interface {
	Read(id string) (content, fingerprint string, err error)
	Write(id, content, expectedFingerprint string) error
}

// manifestName is the optional per-workspace file mapping document ids
// to filenames.
const manifestName = ".docpatch.yaml"

// defaultFiles maps the built-in document ids to their filenames.
var defaultFiles = map[string]string{
	types.FileSpec.String():  "spec.md",
	types.FileNotes.String(): "notes.md",
	types.FileTasks.String(): "tasks.md",
}

// manifest is the on-disk shape of .docpatch.yaml.
type manifest struct {
	Files map[string]string `yaml:"files"`
}

// FileStore keeps each document as one file in a workspace directory.
type FileStore struct {
	root  string
	files map[string]string
}

// NewFileStore opens a workspace directory, honoring a .docpatch.yaml
// manifest when present.
func NewFileStore(root string) (*FileStore, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace %q is not a directory", root)
	}

	files := make(map[string]string, len(defaultFiles))
	for id, name := range defaultFiles {
		files[id] = name
	}

	data, err := os.ReadFile(filepath.Join(root, manifestName))
	if err == nil {
		var m manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", manifestName, err)
		}
		for id, name := range m.Files {
			files[id] = name
		}
	}

	return &FileStore{root: root, files: files}, nil
}

// Path returns the absolute path of a document id.
func (s *FileStore) Path(id string) (string, error) {
	name, ok := s.files[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return filepath.Join(s.root, name), nil
}

// Read returns the document content and its fingerprint. A mapped but
// missing file reads as an empty document, so reads and section
// listings work before the file exists.
func (s *FileStore) Read(id string) (string, string, error) {
	path, err := s.Path(id)
	if err != nil {
		return "", "", err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", document.Fingerprint(""), nil
	}
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}

	content := string(data)
	return content, document.Fingerprint(content), nil
}

// Write replaces the document content, but only if the stored bytes
// still hash to expectedFingerprint. The write itself is atomic:
// temp file in the same directory, then rename.
func (s *FileStore) Write(id, content, expectedFingerprint string) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}

	_, currentFP, err := s.Read(id)
	if err != nil {
		return err
	}
	if currentFP != expectedFingerprint {
		return fmt.Errorf("%w: document %q changed since it was read", ErrStale, id)
	}

	if err := atomicWrite(path, []byte(content)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// atomicWrite writes data to a temp file in the same directory, then
// renames it to the target path. This prevents partial writes from
// corrupting documents.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Preserve original file permissions if the file exists.
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.CreateTemp(dir, ".docpatch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
