// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package applier computes the edited line sequence for a resolved
// patch. It is a pure function of its inputs: failures return the
// original lines untouched.
package applier

import (
	"strings"

	"github.com/petar-djukic/docpatch/pkg/types"
)

// DefaultExcerptContext is how many lines around the changed region a
// confirmation excerpt includes.
const DefaultExcerptContext = 3

// Region is the [Start, End) span of lines changed by an apply, in the
// coordinates of the NEW document.
type Region struct {
	Start int
	End   int
}

// Apply performs the patch operation at the unique candidate's anchor
// and returns the new line sequence plus the changed region. Lines
// outside the anchor region are never altered.
func Apply(lines []string, patch types.ContextPatch, cand types.MatchCandidate) ([]string, Region, error) {
	switch patch.Operation {
	case types.OpInsert:
		return applyInsert(lines, patch, cand)
	case types.OpReplace:
		return applyReplace(lines, patch, cand)
	case types.OpDelete:
		return applyDelete(lines, cand)
	default:
		return lines, Region{}, types.NewPatchError(types.ErrInvalidInput, "unknown operation %d", int(patch.Operation))
	}
}

// applyInsert places the content lines strictly between the end of the
// before-match and the start of the after-match. With an empty before
// context the anchor is the start of the after-match; with an empty
// after context it is the end of the before-match.
func applyInsert(lines []string, patch types.ContextPatch, cand types.MatchCandidate) ([]string, Region, error) {
	content := splitContent(patch.Content)
	at := cand.Anchor

	out := make([]string, 0, len(lines)+len(content))
	out = append(out, lines[:at]...)
	out = append(out, content...)
	out = append(out, lines[at:]...)
	return out, Region{Start: at, End: at + len(content)}, nil
}

// applyReplace substitutes the target line with the content, which may
// span multiple lines.
func applyReplace(lines []string, patch types.ContextPatch, cand types.MatchCandidate) ([]string, Region, error) {
	target, err := targetLine(lines, cand)
	if err != nil {
		return lines, Region{}, err
	}

	content := patch.Content
	var contentLines []string
	if content == "" {
		contentLines = []string{""}
	} else {
		contentLines = splitContent(content)
	}

	out := make([]string, 0, len(lines)-1+len(contentLines))
	out = append(out, lines[:target]...)
	out = append(out, contentLines...)
	out = append(out, lines[target+1:]...)
	return out, Region{Start: target, End: target + len(contentLines)}, nil
}

// applyDelete removes the target line. Content emptiness was validated
// at the boundary.
func applyDelete(lines []string, cand types.MatchCandidate) ([]string, Region, error) {
	target, err := targetLine(lines, cand)
	if err != nil {
		return lines, Region{}, err
	}

	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:target]...)
	out = append(out, lines[target+1:]...)
	return out, Region{Start: target, End: target}, nil
}

// targetLine locates the single line a replace or delete acts on: the
// last line of the before-match, or the first line of the after-match
// when the before context is empty.
func targetLine(lines []string, cand types.MatchCandidate) (int, error) {
	var target int
	if cand.BeforeEmpty {
		target = cand.Anchor
	} else {
		target = cand.Anchor - 1
	}
	if target < 0 || target >= len(lines) {
		return 0, types.NewPatchError(types.ErrAnchorNotFound, "target line %d out of range", target)
	}
	return target, nil
}

// Excerpt extracts the changed region plus surrounding lines from the
// new document, for the confirmation payload. Returns the lines and
// the 1-based number of the first one.
func Excerpt(lines []string, region Region, contextLines int) ([]string, int) {
	if contextLines <= 0 {
		contextLines = DefaultExcerptContext
	}
	start := region.Start - contextLines
	if start < 0 {
		start = 0
	}
	end := region.End + contextLines
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return nil, start + 1
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out, start + 1
}

// splitContent splits patch content into lines, tolerating either line
// ending convention and a trailing newline. Empty content contributes
// no lines.
func splitContent(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
