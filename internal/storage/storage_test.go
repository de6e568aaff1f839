// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/docpatch/internal/document"
)

func newStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestFileStore_ReadWrite(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.md"), []byte("## Tasks\n"), 0o644))

	content, fp, err := s.Read("tasks")
	require.NoError(t, err)
	assert.Equal(t, "## Tasks\n", content)
	assert.Equal(t, document.Fingerprint("## Tasks\n"), fp)

	require.NoError(t, s.Write("tasks", "## Tasks\n- [ ] x\n", fp))

	got, err := os.ReadFile(filepath.Join(dir, "tasks.md"))
	require.NoError(t, err)
	assert.Equal(t, "## Tasks\n- [ ] x\n", string(got))
}

func TestFileStore_MissingFileReadsEmpty(t *testing.T) {
	s, _ := newStore(t)

	content, fp, err := s.Read("notes")
	require.NoError(t, err)
	assert.Empty(t, content)
	assert.Equal(t, document.Fingerprint(""), fp)
}

func TestFileStore_StaleWriteRejected(t *testing.T) {
	s, dir := newStore(t)
	path := filepath.Join(dir, "spec.md")
	require.NoError(t, os.WriteFile(path, []byte("v1\n"), 0o644))

	_, fp, err := s.Read("spec")
	require.NoError(t, err)

	// Concurrent modification behind the store's back.
	require.NoError(t, os.WriteFile(path, []byte("v2\n"), 0o644))

	err = s.Write("spec", "v3\n", fp)
	assert.ErrorIs(t, err, ErrStale)

	// The stored content is untouched.
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(got))
}

func TestFileStore_UnknownID(t *testing.T) {
	s, _ := newStore(t)
	_, _, err := s.Read("journal")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_Manifest(t *testing.T) {
	dir := t.TempDir()
	manifest := "files:\n  tasks: TODO.md\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".docpatch.yaml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TODO.md"), []byte("- item\n"), 0o644))

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	content, _, err := s.Read("tasks")
	require.NoError(t, err)
	assert.Equal(t, "- item\n", content)

	// Unmapped ids keep their defaults.
	path, err := s.Path("spec")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "spec.md"), path)
}

func TestFileStore_NotADirectory(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestAtomicWrite_PreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	require.NoError(t, atomicWrite(path, []byte("new")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
