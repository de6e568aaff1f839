// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package patcher defines the public interface for docpatch, a
// context-anchored document patching library.
package patcher

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/petar-djukic/docpatch/pkg/types"
)

// Error types for the Patcher API.
var (
	ErrInvalidConfig = errors.New("invalid config")

	// ErrSuperseded reports a rollback refused because a later edit on
	// the same document has committed since.
	ErrSuperseded = errors.New("operation superseded by a later edit")

	// ErrUnknownOperation reports a rollback of an id that is not the
	// retained operation of any document.
	ErrUnknownOperation = errors.New("unknown or discarded operation id")
)

// Config configures a Patcher instance.
type Config struct {
	WorkDir        string         // Workspace directory holding the documents (required)
	MatchTimeout   time.Duration  // Budget for one match cascade (default 2s)
	TieMargin      float64        // Confidence gap under which candidates tie (default 0.02)
	ExcerptContext int            // Lines of context around a confirmation excerpt (default 3)
	NoGit          bool           // Disable the git journal even inside a repository
	Logger         *logrus.Logger // Optional; silent when nil
}

// Stats is an aggregate view of the operations a Patcher has served.
type Stats struct {
	Operations   int
	ByTier       map[string]int
	ByOutcome    map[string]int
	CacheHits    int
	CacheMisses  int
	TotalElapsed time.Duration
}

// Patcher applies context patches to the workspace documents.
type Patcher interface {
	// Apply runs one patch against a document. On success the document
	// is updated on disk and the result carries a rollback handle; on
	// failure the document is untouched and the error is a
	// *types.PatchError for every anticipated failure mode.
	Apply(ctx context.Context, file types.FileType, patch types.ContextPatch) (*types.PatchResult, error)

	// ApplyBatch applies patches in order against one document, each
	// seeing the previous results, and commits them with a single
	// write. Any failure discards the whole batch.
	ApplyBatch(ctx context.Context, file types.FileType, patches []types.ContextPatch) ([]*types.PatchResult, error)

	// Rollback restores the pre-image of an operation, provided it is
	// still the latest on its document.
	Rollback(operationID string) error

	// Read returns a document's current content and fingerprint.
	Read(file types.FileType) (content, fingerprint string, err error)

	// Sections lists a document's section tree in document order.
	Sections(file types.FileType) ([]types.SectionInfo, error)

	// Metrics returns the aggregate operation statistics.
	Metrics() Stats
}
