// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package patcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/docpatch/pkg/types"
)

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{WorkDir: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{WorkDir: t.TempDir(), TieMargin: 1.5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPatcher_ApplyAndRollback(t *testing.T) {
	dir := t.TempDir()
	original := "## Notes\n- keep me\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte(original), 0o644))

	p, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)

	res, err := p.Apply(context.Background(), types.FileNotes, types.ContextPatch{
		Operation:     types.OpInsert,
		BeforeContext: []string{"- keep me"},
		Content:       "- and me",
	})
	require.NoError(t, err)
	assert.Equal(t, types.FileNotes, res.FileType)

	content, fp, err := p.Read(types.FileNotes)
	require.NoError(t, err)
	assert.Equal(t, "## Notes\n- keep me\n- and me\n", content)
	assert.Equal(t, res.Fingerprint, fp)

	require.NoError(t, p.Rollback(res.OperationID))

	content, _, err = p.Read(types.FileNotes)
	require.NoError(t, err)
	assert.Equal(t, original, content)

	assert.ErrorIs(t, p.Rollback(res.OperationID), ErrUnknownOperation)
}

func TestPatcher_RollbackSentinels(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.md"), []byte("- a\n- b\n"), 0o644))

	p, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)

	first, err := p.Apply(context.Background(), types.FileTasks, types.ContextPatch{
		Operation:     types.OpDelete,
		BeforeContext: []string{"- a"},
	})
	require.NoError(t, err)

	_, err = p.Apply(context.Background(), types.FileTasks, types.ContextPatch{
		Operation:     types.OpDelete,
		BeforeContext: []string{"- b"},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, p.Rollback(first.OperationID), ErrSuperseded)
	assert.ErrorIs(t, p.Rollback("bogus"), ErrUnknownOperation)
}

func TestPatcher_MetricsExposed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spec.md"), []byte("# Spec\nbody\n"), 0o644))

	p, err := New(Config{WorkDir: dir, NoGit: true})
	require.NoError(t, err)

	_, err = p.Apply(context.Background(), types.FileSpec, types.ContextPatch{
		Operation:     types.OpReplace,
		BeforeContext: []string{"body"},
		Content:       "new body",
	})
	require.NoError(t, err)

	stats := p.Metrics()
	assert.Equal(t, 1, stats.Operations)
	assert.Equal(t, 1, stats.ByOutcome["applied"])
}
