// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package gitjournal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_NotARepo(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNoGit)
}

func TestRecordAndUndo(t *testing.T) {
	dir := initTestRepo(t)
	j, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.md"), []byte("## Tasks\n- [x] done\n"), 0o644))
	require.NoError(t, j.Record("tasks.md", "replace", "tasks"))

	ours, err := j.isJournalCommit()
	require.NoError(t, err)
	assert.True(t, ours)

	require.NoError(t, j.Undo())

	ours, err = j.isJournalCommit()
	require.NoError(t, err)
	assert.False(t, ours)
}

func TestUndo_RefusesForeignCommit(t *testing.T) {
	dir := initTestRepo(t)
	j, err := Open(dir)
	require.NoError(t, err)

	// HEAD is the human-made initial commit.
	err = j.Undo()
	assert.ErrorIs(t, err, ErrNotJournalCommit)
}

func TestRecord_MessageCarriesOperation(t *testing.T) {
	dir := initTestRepo(t)
	j, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("note\n"), 0o644))
	require.NoError(t, j.Record("notes.md", "insert", "notes"))

	head, err := j.repo.Head()
	require.NoError(t, err)
	commit, err := j.repo.CommitObject(head.Hash())
	require.NoError(t, err)

	assert.Contains(t, commit.Message, "insert in notes")
	assert.Contains(t, commit.Message, trailer)
}

// initTestRepo creates a temp dir with a git repo holding one
// human-made initial commit.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	r, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := r.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.md"), []byte("## Tasks\n"), 0o644))
	_, err = wt.Add("tasks.md")
	require.NoError(t, err)

	_, err = wt.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@test.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir
}
