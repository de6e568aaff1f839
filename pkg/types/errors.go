// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind enumerates the failure modes a patch can report. Every
// engine failure maps to exactly one kind; callers branch on the kind,
// never on error text.
type ErrorKind int

const (
	ErrInvalidInput   ErrorKind = iota // Malformed request, rejected before matching
	ErrAnchorNotFound                  // No tier produced an acceptable candidate
	ErrAmbiguousMatch                  // Tied top candidates, caller must narrow
	ErrStaleDocument                   // Fingerprint mismatch at apply time
	ErrMatchTimeout                    // Matching exceeded its budget
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidInput:
		return "invalid_input"
	case ErrAnchorNotFound:
		return "anchor_not_found"
	case ErrAmbiguousMatch:
		return "ambiguous_match"
	case ErrStaleDocument:
		return "stale_document"
	case ErrMatchTimeout:
		return "match_timeout"
	default:
		return "unknown"
	}
}

// Suggestion is a best-effort pointer toward a usable anchor, produced
// when matching fails or ties.
type Suggestion struct {
	Lines      []string // Document lines of the near-match window
	StartLine  int      // 1-based first line of the window
	Confidence float64  // Similarity of the window to the failed context
	Hint       string   // Human-readable advice for the caller
}

// PatchError is the structured error returned for every engine failure.
// It carries the kind plus any suggestions the suggestion engine could
// produce; stored content is guaranteed untouched.
type PatchError struct {
	Kind        ErrorKind
	Detail      string
	Suggestions []Suggestion
}

func (e *PatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Detail)
	for _, s := range e.Suggestions {
		if s.Hint != "" {
			b.WriteString("; ")
			b.WriteString(s.Hint)
		}
	}
	return b.String()
}

// NewPatchError builds a PatchError with no suggestions.
func NewPatchError(kind ErrorKind, format string, args ...any) *PatchError {
	return &PatchError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind from err. Returns ok=false when err is
// not a PatchError (an internal failure such as storage I/O).
func KindOf(err error) (ErrorKind, bool) {
	var pe *PatchError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
