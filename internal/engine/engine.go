// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine orchestrates the patch lifecycle: validate, read,
// detect staleness, match, resolve, apply, snapshot, write. Operations
// on one document are serialized; different documents proceed in
// parallel.
package engine

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/petar-djukic/docpatch/internal/applier"
	"github.com/petar-djukic/docpatch/internal/cache"
	"github.com/petar-djukic/docpatch/internal/document"
	"github.com/petar-djukic/docpatch/internal/matcher"
	"github.com/petar-djukic/docpatch/internal/metrics"
	"github.com/petar-djukic/docpatch/internal/resolver"
	"github.com/petar-djukic/docpatch/internal/rollback"
	"github.com/petar-djukic/docpatch/internal/storage"
	"github.com/petar-djukic/docpatch/internal/suggest"
	"github.com/petar-djukic/docpatch/pkg/types"
)

const defaultMatchTimeout = 2 * time.Second

// Journal records applied operations outside the engine, typically as
// git commits. Failures are logged, never fatal.
type Journal interface {
	Record(docID, operation string) error
}

// Config tunes the engine. Zero values select defaults.
type Config struct {
	Matcher        matcher.Config
	TieMargin      float64
	MatchTimeout   time.Duration
	ExcerptContext int
	Journal        Journal        // Optional
	Logger         *logrus.Logger // Optional; silent when nil
}

// Engine applies context patches against a document store.
type Engine struct {
	store    storage.Store
	matcher  *matcher.Matcher
	resolver *resolver.Resolver
	cache    *cache.Cache
	rollback *rollback.Manager
	metrics  *metrics.Collector
	journal  Journal
	log      *logrus.Logger

	timeout        time.Duration
	excerptContext int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine over a store.
func New(store storage.Store, cfg Config) *Engine {
	timeout := cfg.MatchTimeout
	if timeout == 0 {
		timeout = defaultMatchTimeout
	}
	excerptContext := cfg.ExcerptContext
	if excerptContext == 0 {
		excerptContext = applier.DefaultExcerptContext
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	return &Engine{
		store:          store,
		matcher:        matcher.New(cfg.Matcher),
		resolver:       resolver.New(cfg.TieMargin),
		cache:          cache.New(),
		rollback:       rollback.NewManager(),
		metrics:        metrics.NewCollector(),
		journal:        cfg.Journal,
		log:            log,
		timeout:        timeout,
		excerptContext: excerptContext,
		locks:          make(map[string]*sync.Mutex),
	}
}

// Apply runs one patch against a document, end to end. On success the
// new content is committed to the store and the pre-image retained for
// rollback. On failure the stored content is untouched.
func (e *Engine) Apply(ctx context.Context, docID string, patch types.ContextPatch) (*types.PatchResult, error) {
	started := time.Now()

	if err := patch.Validate(); err != nil {
		return nil, e.fail(docID, started, false, types.NewPatchError(types.ErrInvalidInput, "%v", err))
	}

	lock := e.lockFor(docID)
	lock.Lock()
	defer lock.Unlock()

	content, fingerprint, err := e.store.Read(docID)
	if err != nil {
		return nil, err
	}
	if patch.BaseFingerprint != "" && patch.BaseFingerprint != fingerprint {
		return nil, e.fail(docID, started, false, types.NewPatchError(types.ErrStaleDocument,
			"document %q changed since fingerprint %.12s", docID, patch.BaseFingerprint))
	}

	doc, cacheHit := e.parse(content, fingerprint)

	resolved, err := e.resolve(ctx, doc, patch)
	if err != nil {
		return nil, e.fail(docID, started, cacheHit, err)
	}

	newLines, region, err := applier.Apply(doc.Lines(), patch, resolved)
	if err != nil {
		return nil, e.fail(docID, started, cacheHit, err)
	}
	newDoc := doc.FromLines(newLines)

	snap := rollback.NewSnapshot(docID, content, fingerprint)
	if err := e.write(docID, newDoc, fingerprint); err != nil {
		return nil, e.fail(docID, started, cacheHit, err)
	}
	e.commit(snap, newDoc, patch.Operation)

	e.metrics.Observe(metrics.Record{
		Tier:     resolved.Tier,
		Outcome:  "applied",
		Elapsed:  time.Since(started),
		CacheHit: cacheHit,
	})
	e.log.WithFields(logrus.Fields{
		"document":   docID,
		"operation":  patch.Operation.String(),
		"tier":       resolved.Tier.String(),
		"confidence": resolved.Confidence,
		"elapsed":    time.Since(started),
	}).Info("patch applied")

	excerpt, firstLine := applier.Excerpt(newLines, region, e.excerptContext)
	return &types.PatchResult{
		OperationID: snap.OperationID,
		FileType:    fileTypeOf(docID),
		Tier:        resolved.Tier,
		Confidence:  resolved.Confidence,
		Excerpt:     excerpt,
		ExcerptLine: firstLine,
		Fingerprint: newDoc.Fingerprint(),
	}, nil
}

// ApplyBatch applies patches sequentially against one in-memory
// document, each seeing the previous results, and commits all of them
// with a single write. Any failure discards the whole batch.
func (e *Engine) ApplyBatch(ctx context.Context, docID string, patches []types.ContextPatch) ([]*types.PatchResult, error) {
	started := time.Now()

	if len(patches) == 0 {
		return nil, e.fail(docID, started, false, types.NewPatchError(types.ErrInvalidInput, "batch must contain at least one patch"))
	}
	for _, patch := range patches {
		if err := patch.Validate(); err != nil {
			return nil, e.fail(docID, started, false, types.NewPatchError(types.ErrInvalidInput, "%v", err))
		}
	}

	lock := e.lockFor(docID)
	lock.Lock()
	defer lock.Unlock()

	content, fingerprint, err := e.store.Read(docID)
	if err != nil {
		return nil, err
	}

	doc, cacheHit := e.parse(content, fingerprint)
	snap := rollback.NewSnapshot(docID, content, fingerprint)

	results := make([]*types.PatchResult, 0, len(patches))
	for _, patch := range patches {
		// Base fingerprints in a batch refer to the document as the
		// caller last read it, before any patch in this batch ran.
		if patch.BaseFingerprint != "" && patch.BaseFingerprint != fingerprint {
			return nil, e.fail(docID, started, cacheHit, types.NewPatchError(types.ErrStaleDocument,
				"document %q changed since fingerprint %.12s", docID, patch.BaseFingerprint))
		}

		resolved, rerr := e.resolveOn(ctx, doc, patch)
		if rerr != nil {
			return nil, e.fail(docID, started, cacheHit, rerr)
		}

		newLines, region, aerr := applier.Apply(doc.Lines(), patch, resolved)
		if aerr != nil {
			return nil, e.fail(docID, started, cacheHit, aerr)
		}
		doc = doc.FromLines(newLines)

		excerpt, firstLine := applier.Excerpt(newLines, region, e.excerptContext)
		results = append(results, &types.PatchResult{
			OperationID: snap.OperationID,
			FileType:    fileTypeOf(docID),
			Tier:        resolved.Tier,
			Confidence:  resolved.Confidence,
			Excerpt:     excerpt,
			ExcerptLine: firstLine,
			Fingerprint: doc.Fingerprint(),
		})
	}

	if err := e.write(docID, doc, fingerprint); err != nil {
		return nil, e.fail(docID, started, cacheHit, err)
	}
	e.commit(snap, doc, patches[0].Operation)

	e.metrics.Observe(metrics.Record{
		Tier:     results[len(results)-1].Tier,
		Outcome:  "applied",
		Elapsed:  time.Since(started),
		CacheHit: cacheHit,
	})
	e.log.WithFields(logrus.Fields{
		"document": docID,
		"patches":  len(patches),
		"elapsed":  time.Since(started),
	}).Info("batch applied")

	return results, nil
}

// Rollback restores the pre-image of an operation, provided no later
// operation on the same document has committed since.
func (e *Engine) Rollback(opID string) error {
	snap, err := e.rollback.Take(opID)
	if err != nil {
		return err
	}

	lock := e.lockFor(snap.DocID)
	lock.Lock()
	defer lock.Unlock()

	_, currentFP, err := e.store.Read(snap.DocID)
	if err != nil {
		e.rollback.Commit(snap)
		return err
	}
	if err := e.store.Write(snap.DocID, snap.Content, currentFP); err != nil {
		e.rollback.Commit(snap)
		return mapStorageErr(err)
	}

	if e.journal != nil {
		if jerr := e.journal.Record(snap.DocID, "rollback"); jerr != nil {
			e.log.WithError(jerr).Warn("journal record failed")
		}
	}
	e.log.WithFields(logrus.Fields{
		"document":  snap.DocID,
		"operation": opID,
	}).Info("operation rolled back")
	return nil
}

// Read returns a document's content and fingerprint.
func (e *Engine) Read(docID string) (string, string, error) {
	return e.store.Read(docID)
}

// Sections lists the section tree of a document, flattened in
// document order.
func (e *Engine) Sections(docID string) ([]types.SectionInfo, error) {
	content, fingerprint, err := e.store.Read(docID)
	if err != nil {
		return nil, err
	}
	doc, _ := e.parse(content, fingerprint)

	out := make([]types.SectionInfo, 0, len(doc.Sections()))
	for _, sec := range doc.Sections() {
		out = append(out, types.SectionInfo{
			Title:     sec.Title,
			Level:     sec.Level,
			StartLine: sec.Start + 1,
			EndLine:   sec.End,
		})
	}
	return out, nil
}

// Metrics returns a snapshot of the aggregate metrics.
func (e *Engine) Metrics() metrics.Stats {
	return e.metrics.Snapshot()
}

// resolve matches and disambiguates, consulting the match cache.
func (e *Engine) resolve(ctx context.Context, doc *document.Document, patch types.ContextPatch) (types.MatchCandidate, error) {
	cands, ok := e.cache.Matches(doc.Fingerprint(), patch)
	if !ok {
		var err error
		cands, err = e.match(ctx, doc, patch)
		if err != nil {
			return types.MatchCandidate{}, err
		}
		e.cache.PutMatches(doc.Fingerprint(), patch, cands)
	}
	return e.classify(doc, patch, cands)
}

// resolveOn is resolve without the match cache, for in-memory batch
// intermediates whose fingerprints are transient.
func (e *Engine) resolveOn(ctx context.Context, doc *document.Document, patch types.ContextPatch) (types.MatchCandidate, error) {
	cands, err := e.match(ctx, doc, patch)
	if err != nil {
		return types.MatchCandidate{}, err
	}
	return e.classify(doc, patch, cands)
}

// match scopes the search and runs the tier cascade under the match
// budget.
func (e *Engine) match(ctx context.Context, doc *document.Document, patch types.ContextPatch) ([]types.MatchCandidate, error) {
	scopeStart, scopeEnd := 0, doc.LineCount()
	if patch.SectionContext != "" {
		sec := doc.FindSection(patch.SectionContext)
		if sec == nil {
			return nil, types.NewPatchError(types.ErrAnchorNotFound, "section %q not found", patch.SectionContext)
		}
		scopeStart, scopeEnd = sec.Scope()
	}

	mctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.matcher.Match(mctx, doc.Lines(), scopeStart, scopeEnd, patch)
}

// classify applies the tie-break rule and attaches suggestions to
// failures.
func (e *Engine) classify(doc *document.Document, patch types.ContextPatch, cands []types.MatchCandidate) (types.MatchCandidate, error) {
	res := e.resolver.Resolve(cands)
	switch res.Kind {
	case types.MatchUnique:
		return res.Candidates[0], nil
	case types.MatchAmbiguous:
		perr := types.NewPatchError(types.ErrAmbiguousMatch, "%d candidates tied for the anchor", len(res.Candidates))
		perr.Suggestions = suggest.ForAmbiguous(doc.Lines(), res.Candidates)
		return types.MatchCandidate{}, perr
	default:
		perr := types.NewPatchError(types.ErrAnchorNotFound, "no tier matched the supplied context")
		perr.Suggestions = suggest.ForNotFound(doc.Lines(), patch)
		return types.MatchCandidate{}, perr
	}
}

// parse returns the cached parse for a fingerprint or parses fresh.
func (e *Engine) parse(content, fingerprint string) (*document.Document, bool) {
	if doc, ok := e.cache.Document(fingerprint); ok {
		return doc, true
	}
	doc := document.Parse(content)
	e.cache.PutDocument(doc)
	return doc, false
}

// write commits new content, mapping storage staleness to the typed
// error.
func (e *Engine) write(docID string, doc *document.Document, expectedFingerprint string) error {
	if err := e.store.Write(docID, doc.Content(), expectedFingerprint); err != nil {
		return mapStorageErr(err)
	}
	return nil
}

// commit retains the snapshot, warms the cache with the new parse, and
// journals the operation.
func (e *Engine) commit(snap *rollback.Snapshot, newDoc *document.Document, op types.Operation) {
	e.rollback.Commit(snap)
	e.cache.PutDocument(newDoc)
	if e.journal != nil {
		if err := e.journal.Record(snap.DocID, op.String()); err != nil {
			e.log.WithError(err).Warn("journal record failed")
		}
	}
}

// fail records a failed operation and returns its error unchanged.
func (e *Engine) fail(docID string, started time.Time, cacheHit bool, err error) error {
	outcome := "internal_error"
	if kind, ok := types.KindOf(err); ok {
		outcome = kind.String()
	}
	e.metrics.Observe(metrics.Record{
		Tier:     types.TierNone,
		Outcome:  outcome,
		Elapsed:  time.Since(started),
		CacheHit: cacheHit,
	})
	e.log.WithFields(logrus.Fields{
		"document": docID,
		"outcome":  outcome,
	}).Warn("patch failed")
	return err
}

// mapStorageErr converts the store's staleness sentinel into the
// engine's typed error; everything else passes through.
func mapStorageErr(err error) error {
	if errors.Is(err, storage.ErrStale) {
		return types.NewPatchError(types.ErrStaleDocument, "%v", err)
	}
	return err
}

// fileTypeOf maps a built-in document id to its FileType. Ids added by
// a workspace manifest report as the zero value.
func fileTypeOf(docID string) types.FileType {
	ft, err := types.ParseFileType(docID)
	if err != nil {
		return 0
	}
	return ft
}

// lockFor returns the mutex serializing operations on one document.
func (e *Engine) lockFor(docID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[docID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[docID] = lock
	}
	return lock
}
