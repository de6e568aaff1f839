// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package matcher

import (
	"context"
	"errors"
	"strings"

	"github.com/petar-djukic/docpatch/pkg/types"
)

// How many windows to scan between context cancellation checks.
const cancelCheckStride = 256

// Config tunes the fuzzy tier thresholds. Zero values select the
// defaults.
type Config struct {
	RatioThreshold         float64
	TokenThreshold         float64
	TranspositionThreshold float64
}

// Matcher runs the tier cascade over a scoped document. It is a pure
// function of its inputs and holds no per-document state, so one
// Matcher is safe for concurrent use.
type Matcher struct {
	fuzzyScorers []Scorer
}

// New creates a Matcher with the configured thresholds.
func New(cfg Config) *Matcher {
	ratio := cfg.RatioThreshold
	if ratio == 0 {
		ratio = defaultRatioThreshold
	}
	token := cfg.TokenThreshold
	if token == 0 {
		token = defaultTokenThreshold
	}
	transposition := cfg.TranspositionThreshold
	if transposition == 0 {
		transposition = defaultTranspositionThreshold
	}

	return &Matcher{
		fuzzyScorers: []Scorer{
			newRatioScorer(ratio),
			&tokenScorer{threshold: token},
			&transpositionScorer{threshold: transposition},
		},
	}
}

// window is a contiguous [start, end) span of document lines that
// matched one context array at some score.
type window struct {
	start int
	end   int
	score float64
}

// Match runs the cascade over lines[scopeStart:scopeEnd] and returns
// the candidates from the first tier that produced any. Candidates use
// absolute line indexes. An empty result means no tier matched.
//
// The only error condition is cancellation: a context deadline set by
// the caller bounds the total matching cost.
func (m *Matcher) Match(ctx context.Context, lines []string, scopeStart, scopeEnd int, patch types.ContextPatch) ([]types.MatchCandidate, error) {
	// Tier 1: exact.
	cands, err := m.runTier(ctx, lines, scopeStart, scopeEnd, patch, exactScorer{}, false)
	if err != nil || len(cands) > 0 {
		return cands, err
	}

	// Tier 2: normalized (trimmed lines, blank lines ignored).
	cands, err = m.runNormalizedTier(ctx, lines, scopeStart, scopeEnd, patch)
	if err != nil || len(cands) > 0 {
		return cands, err
	}

	// Tiers 3-5: fuzzy, most strict first.
	for _, scorer := range m.fuzzyScorers {
		cands, err = m.runTier(ctx, lines, scopeStart, scopeEnd, patch, scorer, true)
		if err != nil || len(cands) > 0 {
			return cands, err
		}
	}

	return nil, nil
}

// runTier matches both context windows with one scorer and pairs them.
// blankGap allows the gap between the windows to consist of blank
// lines, which keeps the tolerant tiers tolerant of spacing drift.
func (m *Matcher) runTier(ctx context.Context, lines []string, scopeStart, scopeEnd int, patch types.ContextPatch, scorer Scorer, blankGap bool) ([]types.MatchCandidate, error) {
	before, err := m.scanWindows(ctx, lines, scopeStart, scopeEnd, patch.BeforeContext, scorer)
	if err != nil {
		return nil, err
	}
	after, err := m.scanWindows(ctx, lines, scopeStart, scopeEnd, patch.AfterContext, scorer)
	if err != nil {
		return nil, err
	}
	return pairWindows(lines, before, after, patch, scorer.Tier(), blankGap, 0), nil
}

// scanWindows slides a len(context) window across the scope and keeps
// every position scoring at or above the scorer's threshold.
func (m *Matcher) scanWindows(ctx context.Context, lines []string, scopeStart, scopeEnd int, ctxLines []string, scorer Scorer) ([]window, error) {
	if len(ctxLines) == 0 {
		return nil, nil
	}
	size := len(ctxLines)
	var out []window
	for i := scopeStart; i+size <= scopeEnd; i++ {
		if (i-scopeStart)%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, budgetErr(err, scorer.Tier())
			}
		}
		score := scorer.Score(lines[i:i+size], ctxLines)
		if score >= scorer.Threshold() {
			out = append(out, window{start: i, end: i + size, score: score})
		}
	}
	return out, nil
}

// runNormalizedTier matches the trimmed, non-blank context lines
// against consecutive non-blank document lines, then maps the match
// back to real line positions. This is how a context that omits a
// blank line present in the document still anchors correctly.
func (m *Matcher) runNormalizedTier(ctx context.Context, lines []string, scopeStart, scopeEnd int, patch types.ContextPatch) ([]types.MatchCandidate, error) {
	// Indexes of non-blank lines within scope, with their trimmed text.
	var idx []int
	var trimmed []string
	for i := scopeStart; i < scopeEnd; i++ {
		if !isBlank(lines[i]) {
			idx = append(idx, i)
			trimmed = append(trimmed, strings.TrimSpace(lines[i]))
		}
	}

	before, err := scanNormalized(ctx, idx, trimmed, patch.BeforeContext)
	if err != nil {
		return nil, err
	}
	after, err := scanNormalized(ctx, idx, trimmed, patch.AfterContext)
	if err != nil {
		return nil, err
	}
	return pairWindows(lines, before, after, patch, types.TierNormalized, true, normalizedConfidence), nil
}

// scanNormalized finds every run of non-blank document lines whose
// trimmed text equals the trimmed, blank-stripped context.
func scanNormalized(ctx context.Context, idx []int, trimmed []string, ctxLines []string) ([]window, error) {
	if len(ctxLines) == 0 {
		return nil, nil
	}
	var normCtx []string
	for _, line := range ctxLines {
		if !isBlank(line) {
			normCtx = append(normCtx, strings.TrimSpace(line))
		}
	}
	if len(normCtx) == 0 {
		return nil, nil
	}

	size := len(normCtx)
	var out []window
	for i := 0; i+size <= len(trimmed); i++ {
		if i%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, budgetErr(err, types.TierNormalized)
			}
		}
		match := true
		for j := 0; j < size; j++ {
			if trimmed[i+j] != normCtx[j] {
				match = false
				break
			}
		}
		if match {
			out = append(out, window{start: idx[i], end: idx[i+size-1] + 1, score: 1.0})
		}
	}
	return out, nil
}

// pairWindows combines before and after windows into anchor
// candidates. The after window must start where the before window
// ends; tiers with blankGap set also accept a gap of blank lines
// between them. Candidates are deduplicated by anchor, keeping the
// highest confidence.
func pairWindows(lines []string, before, after []window, patch types.ContextPatch, tier types.MatchTier, blankGap bool, fixedConfidence float64) []types.MatchCandidate {
	confidence := func(score float64) float64 {
		if fixedConfidence > 0 {
			return fixedConfidence
		}
		return score
	}

	var cands []types.MatchCandidate
	switch {
	case len(patch.BeforeContext) == 0:
		// The anchor is the start of the after-match.
		for _, a := range after {
			cands = append(cands, types.MatchCandidate{
				Anchor:      a.start,
				BeforeStart: a.start,
				AfterEnd:    a.end,
				BeforeEmpty: true,
				Tier:        tier,
				Confidence:  confidence(a.score),
			})
		}
	case len(patch.AfterContext) == 0:
		// The anchor is the end of the before-match.
		for _, b := range before {
			cands = append(cands, types.MatchCandidate{
				Anchor:      b.end,
				BeforeStart: b.start,
				AfterEnd:    b.end,
				AfterEmpty:  true,
				Tier:        tier,
				Confidence:  confidence(b.score),
			})
		}
	default:
		for _, b := range before {
			for _, a := range after {
				if a.start < b.end {
					continue
				}
				if a.start != b.end && !(blankGap && allBlank(lines[b.end:a.start])) {
					continue
				}
				cands = append(cands, types.MatchCandidate{
					Anchor:      b.end,
					BeforeStart: b.start,
					AfterEnd:    a.end,
					Tier:        tier,
					Confidence:  confidence((b.score + a.score) / 2.0),
				})
			}
		}
	}

	return dedupe(cands)
}

// budgetErr types an elapsed deadline as the match-timeout failure.
// Caller-initiated cancellation passes through untouched.
func budgetErr(err error, tier types.MatchTier) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewPatchError(types.ErrMatchTimeout, "matching exceeded its budget at tier %s", tier)
	}
	return err
}

func allBlank(lines []string) bool {
	for _, line := range lines {
		if !isBlank(line) {
			return false
		}
	}
	return true
}

func dedupe(cands []types.MatchCandidate) []types.MatchCandidate {
	if len(cands) < 2 {
		return cands
	}
	byAnchor := make(map[int]types.MatchCandidate, len(cands))
	var order []int
	for _, c := range cands {
		prev, seen := byAnchor[c.Anchor]
		if !seen {
			order = append(order, c.Anchor)
			byAnchor[c.Anchor] = c
			continue
		}
		if c.Confidence > prev.Confidence {
			byAnchor[c.Anchor] = c
		}
	}
	out := make([]types.MatchCandidate, 0, len(order))
	for _, anchor := range order {
		out = append(out, byAnchor[anchor])
	}
	return out
}
