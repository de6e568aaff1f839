// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package document models a text document as an ordered line sequence
// with a heading-derived section tree and a content fingerprint.
package document

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Document is an immutable parse of one text document. Line endings and
// trailing-newline presence are preserved so that Content reassembles
// the original bytes exactly.
type Document struct {
	lines           []string
	ending          string // "\n" or "\r\n"
	trailingNewline bool
	fingerprint     string
	sections        []*Section
}

// Parse splits text into lines and builds the section tree. The line
// ending convention is taken from the first line break found; documents
// with no line break default to "\n".
func Parse(text string) *Document {
	d := &Document{
		ending:      "\n",
		fingerprint: Fingerprint(text),
	}
	if strings.Contains(text, "\r\n") {
		d.ending = "\r\n"
	}

	if text == "" {
		d.lines = []string{}
	} else {
		d.trailingNewline = strings.HasSuffix(text, "\n")
		body := text
		if d.trailingNewline {
			body = strings.TrimSuffix(body, d.ending)
		}
		raw := strings.Split(body, "\n")
		d.lines = make([]string, len(raw))
		for i, line := range raw {
			d.lines[i] = strings.TrimSuffix(line, "\r")
		}
	}

	d.sections = buildSections(d.lines)
	return d
}

// FromLines builds a Document from edited lines, keeping the formatting
// conventions of the original. The fingerprint is recomputed.
func (d *Document) FromLines(lines []string) *Document {
	nd := &Document{
		lines:           lines,
		ending:          d.ending,
		trailingNewline: d.trailingNewline,
	}
	if len(lines) == 0 {
		nd.trailingNewline = false
	}
	nd.fingerprint = Fingerprint(nd.Content())
	nd.sections = buildSections(lines)
	return nd
}

// Lines returns the document's lines. Callers must not mutate the
// returned slice.
func (d *Document) Lines() []string { return d.lines }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Content reassembles the document text.
func (d *Document) Content() string {
	if len(d.lines) == 0 {
		return ""
	}
	s := strings.Join(d.lines, d.ending)
	if d.trailingNewline {
		s += d.ending
	}
	return s
}

// Fingerprint returns the document's content fingerprint.
func (d *Document) Fingerprint() string { return d.fingerprint }

// Sections returns the parsed section list in document order.
func (d *Document) Sections() []*Section { return d.sections }

// Fingerprint computes the deterministic content fingerprint used for
// change detection: hex-encoded BLAKE3-256 of the exact bytes.
func Fingerprint(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
