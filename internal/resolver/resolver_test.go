// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/docpatch/pkg/types"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		cands    []types.MatchCandidate
		wantKind types.MatchKind
		wantLen  int
	}{
		{
			name:     "no candidates",
			cands:    nil,
			wantKind: types.MatchNotFound,
		},
		{
			name:     "single candidate is unique",
			cands:    []types.MatchCandidate{{Anchor: 3, Confidence: 0.9}},
			wantKind: types.MatchUnique,
			wantLen:  1,
		},
		{
			name: "clear winner is unique",
			cands: []types.MatchCandidate{
				{Anchor: 3, Confidence: 0.95},
				{Anchor: 8, Confidence: 0.86},
			},
			wantKind: types.MatchUnique,
			wantLen:  1,
		},
		{
			name: "identical scores are ambiguous",
			cands: []types.MatchCandidate{
				{Anchor: 3, Confidence: 1.0},
				{Anchor: 8, Confidence: 1.0},
			},
			wantKind: types.MatchAmbiguous,
			wantLen:  2,
		},
		{
			name: "rival inside the tie margin is ambiguous",
			cands: []types.MatchCandidate{
				{Anchor: 3, Confidence: 0.90},
				{Anchor: 8, Confidence: 0.885},
			},
			wantKind: types.MatchAmbiguous,
			wantLen:  2,
		},
		{
			name: "rival just outside the tie margin is unique",
			cands: []types.MatchCandidate{
				{Anchor: 3, Confidence: 0.90},
				{Anchor: 8, Confidence: 0.87},
			},
			wantKind: types.MatchUnique,
			wantLen:  1,
		},
	}

	r := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.cands)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Len(t, got.Candidates, tt.wantLen)
		})
	}
}

func TestResolve_RankedOrder(t *testing.T) {
	got := New(0.1).Resolve([]types.MatchCandidate{
		{Anchor: 8, Confidence: 0.91},
		{Anchor: 3, Confidence: 0.95},
		{Anchor: 12, Confidence: 0.93},
	})

	require.Equal(t, types.MatchAmbiguous, got.Kind)
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, 3, got.Candidates[0].Anchor)
	assert.Equal(t, 12, got.Candidates[1].Anchor)
	assert.Equal(t, 8, got.Candidates[2].Anchor)
}
