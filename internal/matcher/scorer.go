// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package matcher locates anchor candidates for a context patch by
// cascading through matching tiers, from literal comparison to
// increasingly tolerant fuzzy strategies.
package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/petar-djukic/docpatch/pkg/types"
)

// Default per-tier acceptance thresholds.
const (
	defaultRatioThreshold         = 0.85
	defaultTokenThreshold         = 0.80
	defaultTranspositionThreshold = 0.75

	// Confidence reported for normalized matches: certain about the
	// location, but the compared text was not literal.
	normalizedConfidence = 0.97
)

// Scorer is one interchangeable matching strategy. Score compares a
// document window against a context window of the same length and
// returns an aggregate similarity in [0,1].
type Scorer interface {
	Tier() types.MatchTier
	Threshold() float64
	Score(window, context []string) float64
}

// exactScorer accepts only literal, case-sensitive, line-for-line
// equality.
type exactScorer struct{}

func (exactScorer) Tier() types.MatchTier { return types.TierExact }
func (exactScorer) Threshold() float64    { return 1.0 }

func (exactScorer) Score(window, context []string) float64 {
	for i := range context {
		if window[i] != context[i] {
			return 0.0
		}
	}
	return 1.0
}

// ratioScorer scores each line pair by normalized Levenshtein
// similarity computed through go-diff, averaged across the window.
type ratioScorer struct {
	threshold float64
	dmp       *diffmatchpatch.DiffMatchPatch
}

func newRatioScorer(threshold float64) *ratioScorer {
	return &ratioScorer{threshold: threshold, dmp: diffmatchpatch.New()}
}

func (s *ratioScorer) Tier() types.MatchTier { return types.TierRatio }
func (s *ratioScorer) Threshold() float64    { return s.threshold }

func (s *ratioScorer) Score(window, context []string) float64 {
	total := 0.0
	for i := range context {
		total += s.lineSimilarity(window[i], context[i])
	}
	return total / float64(len(context))
}

func (s *ratioScorer) lineSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	diffs := s.dmp.DiffMain(a, b, false)
	distance := s.dmp.DiffLevenshtein(diffs)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}

// LineSimilarity computes the normalized edit-distance similarity of
// two single lines. Shared with the suggestion engine.
func LineSimilarity(a, b string) float64 {
	return newRatioScorer(0).lineSimilarity(a, b)
}

// tokenScorer tolerates word reordering and partial overlap: each
// context word is scored against its best counterpart in the document
// line, so paraphrased lines with shared vocabulary still match.
type tokenScorer struct {
	threshold float64
}

func (s *tokenScorer) Tier() types.MatchTier { return types.TierToken }
func (s *tokenScorer) Threshold() float64    { return s.threshold }

func (s *tokenScorer) Score(window, context []string) float64 {
	total := 0.0
	for i := range context {
		total += tokenLineSimilarity(window[i], context[i])
	}
	return total / float64(len(context))
}

func tokenLineSimilarity(a, b string) float64 {
	aTokens := tokenize(a)
	bTokens := tokenize(b)
	if len(aTokens) == 0 && len(bTokens) == 0 {
		return 1.0
	}
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0.0
	}

	// Average each side's best-counterpart similarity so that extra
	// words on either side cost proportionally.
	return (directionalTokenScore(aTokens, bTokens) + directionalTokenScore(bTokens, aTokens)) / 2.0
}

func directionalTokenScore(from, to []string) float64 {
	total := 0.0
	for _, tok := range from {
		best := 0.0
		for _, other := range to {
			sim := tokenSimilarity(tok, other)
			if sim > best {
				best = sim
			}
			if best == 1.0 {
				break
			}
		}
		total += best
	}
	return total / float64(len(from))
}

func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	dist := levenshtein.ComputeDistance(a, b)
	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0.0
	}
	return sim
}

func tokenize(s string) []string {
	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(strings.Trim(f, ".,;:!?()[]{}\"'`")))
	}
	return tokens
}

// transpositionScorer scores lines by optimal string alignment
// distance, which counts an adjacent-character swap as one edit. This
// is the most tolerant tier, aimed at short typo-heavy lines.
type transpositionScorer struct {
	threshold float64
}

func (s *transpositionScorer) Tier() types.MatchTier { return types.TierTransposition }
func (s *transpositionScorer) Threshold() float64    { return s.threshold }

func (s *transpositionScorer) Score(window, context []string) float64 {
	total := 0.0
	for i := range context {
		total += transpositionSimilarity(window[i], context[i])
	}
	return total / float64(len(context))
}

func transpositionSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	dist := osaDistance([]rune(a), []rune(b))
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	sim := 1.0 - float64(dist)/float64(maxLen)
	if sim < 0 {
		return 0.0
	}
	return sim
}

// osaDistance computes the optimal string alignment distance between
// two rune slices: Levenshtein plus adjacent transpositions, without
// substring moves.
func osaDistance(a, b []rune) int {
	rows := len(a) + 1
	cols := len(b) + 1
	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 0; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				if swap := d[i-2][j-2] + 1; swap < min {
					min = swap
				}
			}
			d[i][j] = min
		}
	}
	return d[rows-1][cols-1]
}

// isBlank reports whether a line is empty after trimming.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
