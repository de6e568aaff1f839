// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package suggest produces best-effort hints when matching fails: the
// closest near-miss window for a failed anchor, or the tied windows of
// an ambiguous one.
package suggest

import (
	"fmt"

	"github.com/petar-djukic/docpatch/internal/matcher"
	"github.com/petar-djukic/docpatch/pkg/types"
)

const (
	// Near-miss windows below this similarity are noise, not hints.
	minSuggestionScore = 0.4

	// Lines of surrounding document shown with each ambiguous site.
	ambiguousContextLines = 2
)

// ForNotFound runs a wide, unscoped, low-threshold scan for the window
// closest to the failed context and wraps it in a hint. Returns nil
// when nothing clears the floor.
func ForNotFound(lines []string, patch types.ContextPatch) []types.Suggestion {
	probe := patch.BeforeContext
	if len(probe) == 0 {
		probe = patch.AfterContext
	}
	if len(probe) == 0 || len(probe) > len(lines) {
		return nil
	}

	bestScore := 0.0
	bestStart := -1
	size := len(probe)
	for i := 0; i+size <= len(lines); i++ {
		total := 0.0
		for j := 0; j < size; j++ {
			total += matcher.LineSimilarity(lines[i+j], probe[j])
		}
		score := total / float64(size)
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	if bestStart < 0 || bestScore < minSuggestionScore {
		return nil
	}

	win := make([]string, size)
	copy(win, lines[bestStart:bestStart+size])
	return []types.Suggestion{{
		Lines:      win,
		StartLine:  bestStart + 1,
		Confidence: bestScore,
		Hint: fmt.Sprintf("closest match at line %d (similarity %.2f); add section_context or provide more context lines",
			bestStart+1, bestScore),
	}}
}

// ForAmbiguous describes each tied candidate with its surrounding
// lines so the caller can tell the sites apart.
func ForAmbiguous(lines []string, cands []types.MatchCandidate) []types.Suggestion {
	out := make([]types.Suggestion, 0, len(cands))
	for _, c := range cands {
		start := c.BeforeStart - ambiguousContextLines
		if start < 0 {
			start = 0
		}
		end := c.AfterEnd + ambiguousContextLines
		if end > len(lines) {
			end = len(lines)
		}
		win := make([]string, end-start)
		copy(win, lines[start:end])
		out = append(out, types.Suggestion{
			Lines:      win,
			StartLine:  start + 1,
			Confidence: c.Confidence,
			Hint: fmt.Sprintf("candidate at line %d (tier %s, confidence %.2f); narrow with section_context or longer context",
				c.Anchor+1, c.Tier, c.Confidence),
		})
	}
	return out
}
