// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolver turns the matcher's candidate list into a verdict:
// exactly one anchor, a tie that needs narrowing, or nothing usable.
package resolver

import (
	"sort"

	"github.com/petar-djukic/docpatch/pkg/types"
)

// DefaultTieMargin is how close a rival's confidence must be to the
// top candidate's before the result is declared ambiguous.
const DefaultTieMargin = 0.02

// Resolver classifies match candidates.
type Resolver struct {
	tieMargin float64
}

// New creates a Resolver. A zero margin selects DefaultTieMargin.
func New(tieMargin float64) *Resolver {
	if tieMargin == 0 {
		tieMargin = DefaultTieMargin
	}
	return &Resolver{tieMargin: tieMargin}
}

// Resolve ranks candidates by confidence and applies the tie-break
// rule. Candidates below any tier threshold never reach this point;
// the matcher already filtered them.
func (r *Resolver) Resolve(cands []types.MatchCandidate) types.MatchResult {
	if len(cands) == 0 {
		return types.MatchResult{Kind: types.MatchNotFound}
	}

	ranked := make([]types.MatchCandidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Anchor < ranked[j].Anchor
	})

	top := ranked[0]
	tied := []types.MatchCandidate{top}
	for _, c := range ranked[1:] {
		if top.Confidence-c.Confidence <= r.tieMargin {
			tied = append(tied, c)
		}
	}

	if len(tied) > 1 {
		return types.MatchResult{Kind: types.MatchAmbiguous, Candidates: tied}
	}
	return types.MatchResult{Kind: types.MatchUnique, Candidates: []types.MatchCandidate{top}}
}
