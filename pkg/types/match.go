// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// MatchTier identifies which matching strategy produced a candidate.
// Tiers are ordered from strictest to most tolerant; the matcher stops
// at the first tier that yields an acceptable candidate.
type MatchTier int

const (
	TierExact         MatchTier = iota // Literal line-for-line match
	TierNormalized                     // Trimmed, blank-line-insensitive match
	TierRatio                          // Per-line edit-distance similarity
	TierToken                          // Word-overlap similarity
	TierTransposition                  // Transposition-tolerant similarity
	TierNone                           // No tier matched
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierRatio:
		return "ratio"
	case TierToken:
		return "token"
	case TierTransposition:
		return "transposition"
	case TierNone:
		return "none"
	default:
		return "unknown"
	}
}

// MatchCandidate is one possible anchor for a patch. Line indexes are
// zero-based and relative to the whole document, not the section scope.
//
// Anchor is the insertion point: the index of the first line after the
// before-match (equivalently, the first line of the after-match). For
// replace and delete the target line is Anchor-1 when the before
// context is non-empty, or Anchor when only the after context matched.
type MatchCandidate struct {
	Anchor      int       // Insertion point between the two windows
	BeforeStart int       // Start of the before-match span (== Anchor if empty)
	AfterEnd    int       // End of the after-match span, exclusive (== Anchor if empty)
	BeforeEmpty bool      // True when the patch carried no before context
	AfterEmpty  bool      // True when the patch carried no after context
	Tier        MatchTier // Strategy that produced this candidate
	Confidence  float64   // Aggregate similarity in [0,1]
}

// MatchKind classifies the outcome of candidate resolution.
type MatchKind int

const (
	MatchUnique MatchKind = iota
	MatchAmbiguous
	MatchNotFound
)

func (k MatchKind) String() string {
	switch k {
	case MatchUnique:
		return "unique"
	case MatchAmbiguous:
		return "ambiguous"
	case MatchNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// MatchResult is the resolver's verdict over the matcher's candidates.
// Candidates is the single winner for MatchUnique and the ranked tie
// set for MatchAmbiguous; it is empty for MatchNotFound.
type MatchResult struct {
	Kind       MatchKind
	Candidates []MatchCandidate
}
