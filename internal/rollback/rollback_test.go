// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package rollback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotAndTake(t *testing.T) {
	m := NewManager()
	snap := NewSnapshot("tasks", "old content\n", "fp-old")
	require.NotEmpty(t, snap.OperationID)

	m.Commit(snap)
	assert.Equal(t, snap.OperationID, m.Latest("tasks"))

	got, err := m.Take(snap.OperationID)
	require.NoError(t, err)
	assert.Equal(t, "old content\n", got.Content)
	assert.Equal(t, "fp-old", got.Fingerprint)

	// Taking twice fails: the snapshot was consumed.
	_, err = m.Take(snap.OperationID)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestTake_SupersededByLaterCommit(t *testing.T) {
	m := NewManager()
	first := NewSnapshot("tasks", "v1\n", "fp1")
	m.Commit(first)

	second := NewSnapshot("tasks", "v2\n", "fp2")
	m.Commit(second)

	// Only the last writer can be rolled back.
	_, err := m.Take(first.OperationID)
	assert.ErrorIs(t, err, ErrSuperseded)

	got, err := m.Take(second.OperationID)
	require.NoError(t, err)
	assert.Equal(t, "v2\n", got.Content)
}

func TestTake_UnknownOperation(t *testing.T) {
	m := NewManager()
	_, err := m.Take("no-such-id")
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestSnapshots_IndependentPerDocument(t *testing.T) {
	m := NewManager()
	tasks := NewSnapshot("tasks", "t\n", "fpt")
	notes := NewSnapshot("notes", "n\n", "fpn")
	m.Commit(tasks)
	m.Commit(notes)

	// A commit on one document does not supersede the other's snapshot.
	got, err := m.Take(tasks.OperationID)
	require.NoError(t, err)
	assert.Equal(t, "tasks", got.DocID)

	got, err = m.Take(notes.OperationID)
	require.NoError(t, err)
	assert.Equal(t, "notes", got.DocID)
}

func TestDiscard(t *testing.T) {
	m := NewManager()
	snap := NewSnapshot("tasks", "v\n", "fp")
	m.Commit(snap)

	m.Discard("tasks")
	assert.Empty(t, m.Latest("tasks"))
	_, err := m.Take(snap.OperationID)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}
