// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rollback retains the pre-image of the most recent operation
// on each document. This is deliberately last-writer-only, not an undo
// stack: one snapshot per document bounds memory, and a rollback is
// honored only while its operation is still the latest.
package rollback

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSuperseded is returned when a later operation on the same
// document has committed since the snapshot was taken.
var ErrSuperseded = errors.New("operation superseded by a later edit")

// ErrUnknownOperation is returned for operation ids that are not the
// retained snapshot of any document.
var ErrUnknownOperation = errors.New("unknown or discarded operation id")

// Snapshot is a document pre-image bound to one operation.
type Snapshot struct {
	OperationID string
	DocID       string
	Content     string // Document content before the operation
	Fingerprint string // Fingerprint of Content
	TakenAt     time.Time
}

// Superseded-id memory is bounded; beyond this the oldest knowledge
// is dropped and those ids report as unknown instead.
const maxSuperseded = 1024

// Manager owns the per-document snapshots.
type Manager struct {
	mu         sync.Mutex
	latest     map[string]*Snapshot // docID → snapshot of the last committed operation
	superseded map[string]struct{}  // operation ids displaced by a later commit
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		latest:     make(map[string]*Snapshot),
		superseded: make(map[string]struct{}),
	}
}

// NewSnapshot builds a pre-image snapshot with a fresh operation id.
// The snapshot is not retained until Commit is called; a failed apply
// simply drops it.
func NewSnapshot(docID, content, fingerprint string) *Snapshot {
	return &Snapshot{
		OperationID: uuid.NewString(),
		DocID:       docID,
		Content:     content,
		Fingerprint: fingerprint,
		TakenAt:     time.Now(),
	}
}

// Commit retains snap as the rollback point for its document,
// implicitly discarding the previous operation's snapshot.
func (m *Manager) Commit(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.latest[snap.DocID]; ok {
		if len(m.superseded) >= maxSuperseded {
			m.superseded = make(map[string]struct{})
		}
		m.superseded[prev.OperationID] = struct{}{}
	}
	m.latest[snap.DocID] = snap
}

// Take returns the snapshot for opID and removes it, but only if no
// later operation on the same document has committed since.
func (m *Manager) Take(opID string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for docID, snap := range m.latest {
		if snap.OperationID == opID {
			delete(m.latest, docID)
			return snap, nil
		}
	}
	if _, ok := m.superseded[opID]; ok {
		return nil, ErrSuperseded
	}
	return nil, ErrUnknownOperation
}

// Latest returns the operation id currently retained for a document,
// or the empty string.
func (m *Manager) Latest(docID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.latest[docID]; ok {
		return snap.OperationID
	}
	return ""
}

// Discard drops the retained snapshot for a document, if any.
func (m *Manager) Discard(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.latest, docID)
}
