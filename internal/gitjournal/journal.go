// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gitjournal records applied patches as git commits when the
// workspace is a repository, and can revert the most recent docpatch
// commit. Journaling is best-effort: a workspace without git simply
// runs without a journal.
package gitjournal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	authorName  = "docpatch"
	authorEmail = "noreply@docpatch"
	trailer     = "Journaled-By: docpatch <noreply@docpatch>"
)

// ErrNotJournalCommit is returned when undo targets a commit that was
// not written by the journal.
var ErrNotJournalCommit = errors.New("not a docpatch commit")

// ErrNoGit is returned when the workspace is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// Journal wraps a go-git repository for the operations we need.
type Journal struct {
	repo *gogit.Repository
	dir  string
}

// Open opens the git repository at dir. Returns ErrNoGit when dir is
// not a repository.
func Open(dir string) (*Journal, error) {
	r, err := gogit.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Journal{repo: r, dir: dir}, nil
}

// Record stages the edited file and commits it with a message derived
// from the operation.
func (j *Journal) Record(file, operation, docID string) error {
	wt, err := j.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	if _, err := wt.Add(file); err != nil {
		return fmt.Errorf("staging %s: %w", file, err)
	}

	msg := fmt.Sprintf("docpatch: %s in %s\n\n%s", operation, docID, trailer)
	_, err = wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// isJournalCommit checks whether the HEAD commit carries the journal
// trailer.
func (j *Journal) isJournalCommit() (bool, error) {
	head, err := j.repo.Head()
	if err != nil {
		return false, fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := j.repo.CommitObject(head.Hash())
	if err != nil {
		return false, fmt.Errorf("getting commit: %w", err)
	}
	return strings.Contains(commit.Message, trailer), nil
}

// Undo reverts the last commit if the journal wrote it. A soft reset
// keeps the reverted content staged in the working tree.
func (j *Journal) Undo() error {
	ours, err := j.isJournalCommit()
	if err != nil {
		return err
	}
	if !ours {
		return ErrNotJournalCommit
	}

	head, err := j.repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}
	commit, err := j.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting commit: %w", err)
	}
	if commit.NumParents() == 0 {
		return fmt.Errorf("cannot undo: HEAD is the initial commit")
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return fmt.Errorf("getting parent commit: %w", err)
	}

	wt, err := j.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if err := wt.Reset(&gogit.ResetOptions{Commit: parent.Hash, Mode: gogit.SoftReset}); err != nil {
		return fmt.Errorf("resetting to parent: %w", err)
	}
	return nil
}
