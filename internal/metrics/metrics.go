// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package metrics aggregates per-operation observations: resolving
// tier, latency, cache behavior, and outcome. Purely in-memory and
// never part of document state.
package metrics

import (
	"sync"
	"time"

	"github.com/petar-djukic/docpatch/pkg/types"
)

// Record is one operation's observation.
type Record struct {
	Tier     types.MatchTier // Resolving tier, TierNone when unresolved
	Outcome  string          // "applied" or an ErrorKind string
	Elapsed  time.Duration
	CacheHit bool
}

// Stats is an aggregate snapshot.
type Stats struct {
	Operations   int
	ByTier       map[string]int
	ByOutcome    map[string]int
	CacheHits    int
	CacheMisses  int
	TotalElapsed time.Duration
}

// Collector accumulates records behind a mutex. The zero value is not
// usable; call NewCollector.
type Collector struct {
	mu           sync.Mutex
	operations   int
	byTier       map[string]int
	byOutcome    map[string]int
	cacheHits    int
	cacheMisses  int
	totalElapsed time.Duration
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		byTier:    make(map[string]int),
		byOutcome: make(map[string]int),
	}
}

// Observe folds one record into the aggregates.
func (c *Collector) Observe(r Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.operations++
	c.byTier[r.Tier.String()]++
	c.byOutcome[r.Outcome]++
	if r.CacheHit {
		c.cacheHits++
	} else {
		c.cacheMisses++
	}
	c.totalElapsed += r.Elapsed
}

// Snapshot returns a copy of the current aggregates.
func (c *Collector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Operations:   c.operations,
		ByTier:       make(map[string]int, len(c.byTier)),
		ByOutcome:    make(map[string]int, len(c.byOutcome)),
		CacheHits:    c.cacheHits,
		CacheMisses:  c.cacheMisses,
		TotalElapsed: c.totalElapsed,
	}
	for k, v := range c.byTier {
		s.ByTier[k] = v
	}
	for k, v := range c.byOutcome {
		s.ByOutcome[k] = v
	}
	return s
}
