// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cache memoizes parsed documents and match results, keyed by
// content fingerprint. Entries are immutable once stored: a changed
// document gets a new fingerprint and simply never hits the old keys,
// which is the whole invalidation story. Correctness never depends on
// this cache, only latency.
package cache

import (
	"strings"
	"sync"

	"github.com/petar-djukic/docpatch/internal/document"
	"github.com/petar-djukic/docpatch/pkg/types"
)

// Entry counts above these caps clear the respective map wholesale.
// Documents are small and batches short, so eviction precision is not
// worth the bookkeeping.
const (
	maxDocuments = 64
	maxMatches   = 256
)

// Cache stores parsed section trees and recent match results.
type Cache struct {
	mu      sync.RWMutex
	docs    map[string]*document.Document
	matches map[string][]types.MatchCandidate
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{
		docs:    make(map[string]*document.Document),
		matches: make(map[string][]types.MatchCandidate),
	}
}

// Document returns the parsed document for a fingerprint, if cached.
func (c *Cache) Document(fingerprint string) (*document.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.docs[fingerprint]
	return d, ok
}

// PutDocument stores a parsed document under its own fingerprint.
func (c *Cache) PutDocument(d *document.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.docs) >= maxDocuments {
		c.docs = make(map[string]*document.Document)
	}
	c.docs[d.Fingerprint()] = d
}

// Matches returns cached candidates for a (fingerprint, patch) pair.
func (c *Cache) Matches(fingerprint string, patch types.ContextPatch) ([]types.MatchCandidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cands, ok := c.matches[matchKey(fingerprint, patch)]
	return cands, ok
}

// PutMatches stores match candidates for a (fingerprint, patch) pair.
func (c *Cache) PutMatches(fingerprint string, patch types.ContextPatch, cands []types.MatchCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.matches) >= maxMatches {
		c.matches = make(map[string][]types.MatchCandidate)
	}
	c.matches[matchKey(fingerprint, patch)] = cands
}

// matchKey serializes the match-relevant patch fields. Content is
// excluded: it does not influence where the anchor lands, only what is
// written there.
func matchKey(fingerprint string, patch types.ContextPatch) string {
	var b strings.Builder
	b.WriteString(fingerprint)
	b.WriteByte('|')
	b.WriteString(patch.Operation.String())
	b.WriteByte('|')
	b.WriteString(patch.SectionContext)
	b.WriteByte('|')
	for _, line := range patch.BeforeContext {
		b.WriteString(line)
		b.WriteByte('\x00')
	}
	b.WriteByte('|')
	for _, line := range patch.AfterContext {
		b.WriteString(line)
		b.WriteByte('\x00')
	}
	return b.String()
}
