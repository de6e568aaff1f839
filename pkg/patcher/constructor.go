// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package patcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petar-djukic/docpatch/internal/engine"
	"github.com/petar-djukic/docpatch/internal/gitjournal"
	"github.com/petar-djukic/docpatch/internal/rollback"
	"github.com/petar-djukic/docpatch/internal/storage"
	"github.com/petar-djukic/docpatch/pkg/types"
)

// New validates the config and returns a ready-to-use Patcher. When the
// workspace is a git repository and NoGit is unset, applied operations
// are additionally journaled as commits.
func New(cfg Config) (Patcher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	store, err := storage.NewFileStore(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var journal engine.Journal
	if !cfg.NoGit {
		if j, jerr := gitjournal.Open(cfg.WorkDir); jerr == nil {
			journal = &journalAdapter{journal: j, store: store, workDir: cfg.WorkDir}
		}
	}

	eng := engine.New(store, engine.Config{
		TieMargin:      cfg.TieMargin,
		MatchTimeout:   cfg.MatchTimeout,
		ExcerptContext: cfg.ExcerptContext,
		Journal:        journal,
		Logger:         cfg.Logger,
	})

	return &patcherAdapter{engine: eng}, nil
}

// patcherAdapter adapts internal/engine.Engine to the public Patcher
// interface.
type patcherAdapter struct {
	engine *engine.Engine
}

func (a *patcherAdapter) Apply(ctx context.Context, file types.FileType, patch types.ContextPatch) (*types.PatchResult, error) {
	return a.engine.Apply(ctx, file.String(), patch)
}

func (a *patcherAdapter) ApplyBatch(ctx context.Context, file types.FileType, patches []types.ContextPatch) ([]*types.PatchResult, error) {
	return a.engine.ApplyBatch(ctx, file.String(), patches)
}

func (a *patcherAdapter) Rollback(operationID string) error {
	err := a.engine.Rollback(operationID)
	switch {
	case errors.Is(err, rollback.ErrSuperseded):
		return ErrSuperseded
	case errors.Is(err, rollback.ErrUnknownOperation):
		return ErrUnknownOperation
	default:
		return err
	}
}

func (a *patcherAdapter) Read(file types.FileType) (string, string, error) {
	return a.engine.Read(file.String())
}

func (a *patcherAdapter) Sections(file types.FileType) ([]types.SectionInfo, error) {
	return a.engine.Sections(file.String())
}

func (a *patcherAdapter) Metrics() Stats {
	s := a.engine.Metrics()
	return Stats{
		Operations:   s.Operations,
		ByTier:       s.ByTier,
		ByOutcome:    s.ByOutcome,
		CacheHits:    s.CacheHits,
		CacheMisses:  s.CacheMisses,
		TotalElapsed: s.TotalElapsed,
	}
}

// journalAdapter resolves a document id to its workspace-relative path
// before recording, which is the form git staging expects.
type journalAdapter struct {
	journal *gitjournal.Journal
	store   *storage.FileStore
	workDir string
}

func (j *journalAdapter) Record(docID, operation string) error {
	path, err := j.store.Path(docID)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(j.workDir, path)
	if err != nil {
		return err
	}
	return j.journal.Record(rel, operation, docID)
}

// validateConfig checks that required fields are present.
func validateConfig(cfg Config) error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("WorkDir is required")
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("WorkDir %q does not exist or is not a directory", cfg.WorkDir)
	}
	if cfg.TieMargin < 0 || cfg.TieMargin >= 1 {
		return fmt.Errorf("TieMargin must be in [0, 1)")
	}
	return nil
}
