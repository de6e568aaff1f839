// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petar-djukic/docpatch/pkg/types"
)

func TestCollector_Aggregates(t *testing.T) {
	c := NewCollector()

	c.Observe(Record{Tier: types.TierExact, Outcome: "applied", Elapsed: 2 * time.Millisecond, CacheHit: false})
	c.Observe(Record{Tier: types.TierExact, Outcome: "applied", Elapsed: 1 * time.Millisecond, CacheHit: true})
	c.Observe(Record{Tier: types.TierNone, Outcome: "anchor_not_found", Elapsed: 3 * time.Millisecond})

	s := c.Snapshot()
	assert.Equal(t, 3, s.Operations)
	assert.Equal(t, 2, s.ByTier["exact"])
	assert.Equal(t, 1, s.ByTier["none"])
	assert.Equal(t, 2, s.ByOutcome["applied"])
	assert.Equal(t, 1, s.ByOutcome["anchor_not_found"])
	assert.Equal(t, 1, s.CacheHits)
	assert.Equal(t, 2, s.CacheMisses)
	assert.Equal(t, 6*time.Millisecond, s.TotalElapsed)
}

func TestCollector_SnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.Observe(Record{Tier: types.TierRatio, Outcome: "applied"})

	s := c.Snapshot()
	s.ByTier["ratio"] = 99

	assert.Equal(t, 1, c.Snapshot().ByTier["ratio"])
}

func TestCollector_ConcurrentObserve(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Observe(Record{Tier: types.TierToken, Outcome: "applied"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, c.Snapshot().Operations)
}
