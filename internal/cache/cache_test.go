// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/docpatch/internal/document"
	"github.com/petar-djukic/docpatch/pkg/types"
)

func TestCache_Document(t *testing.T) {
	c := New()
	d := document.Parse("# Title\nbody\n")

	_, ok := c.Document(d.Fingerprint())
	assert.False(t, ok)

	c.PutDocument(d)
	got, ok := c.Document(d.Fingerprint())
	require.True(t, ok)
	assert.Same(t, d, got)
}

func TestCache_ChangedContentMisses(t *testing.T) {
	c := New()
	d := document.Parse("a\n")
	c.PutDocument(d)

	// An edited document has a different fingerprint and never hits
	// the stale entry.
	edited := document.Parse("a\nb\n")
	_, ok := c.Document(edited.Fingerprint())
	assert.False(t, ok)
}

func TestCache_Matches(t *testing.T) {
	c := New()
	patch := types.ContextPatch{
		Operation:     types.OpInsert,
		BeforeContext: []string{"a"},
	}
	cands := []types.MatchCandidate{{Anchor: 1, Confidence: 1.0}}

	_, ok := c.Matches("fp", patch)
	assert.False(t, ok)

	c.PutMatches("fp", patch, cands)
	got, ok := c.Matches("fp", patch)
	require.True(t, ok)
	assert.Equal(t, cands, got)

	// Same patch, different fingerprint: miss.
	_, ok = c.Matches("other", patch)
	assert.False(t, ok)

	// Same fingerprint, different context: miss.
	other := patch
	other.BeforeContext = []string{"b"}
	_, ok = c.Matches("fp", other)
	assert.False(t, ok)
}

func TestCache_ContentDoesNotAffectMatchKey(t *testing.T) {
	c := New()
	patch := types.ContextPatch{
		Operation:     types.OpReplace,
		BeforeContext: []string{"a"},
		Content:       "one",
	}
	c.PutMatches("fp", patch, []types.MatchCandidate{{Anchor: 1}})

	patch.Content = "two"
	_, ok := c.Matches("fp", patch)
	assert.True(t, ok)
}

func TestCache_DocumentCap(t *testing.T) {
	c := New()
	for i := 0; i < maxDocuments+1; i++ {
		c.PutDocument(document.Parse(string(rune('a'+i%26)) + string(rune('0'+i/26)) + "\n"))
	}
	// The map was cleared at the cap, never exceeding it.
	assert.LessOrEqual(t, len(c.docs), maxDocuments)
}
