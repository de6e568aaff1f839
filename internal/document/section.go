// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package document

import "strings"

// Section is a heading-bounded region of a document. Sections are
// derived fresh from each parse and carry no identity across edits.
type Section struct {
	Title  string // Trimmed heading text, without the leading '#' run
	Level  int    // ATX heading level, 1-6
	Start  int    // Line index of the heading itself
	End    int    // Exclusive end: next heading of equal-or-higher level or EOF
	Parent *Section
}

// Scope returns the [start, end) line bounds used to restrict matching.
func (s *Section) Scope() (start, end int) { return s.Start, s.End }

// buildSections scans lines for ATX headings and computes each
// section's span. A section runs from its heading line to the next
// heading of equal-or-higher level, or to the end of the document.
func buildSections(lines []string) []*Section {
	var sections []*Section
	for i, line := range lines {
		level, title, ok := parseHeading(line)
		if !ok {
			continue
		}
		sections = append(sections, &Section{
			Title: title,
			Level: level,
			Start: i,
			End:   len(lines),
		})
	}

	// Close spans and link parents using a stack of open sections.
	var stack []*Section
	for _, sec := range sections {
		for len(stack) > 0 && stack[len(stack)-1].Level >= sec.Level {
			stack[len(stack)-1].End = sec.Start
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			sec.Parent = stack[len(stack)-1]
		}
		stack = append(stack, sec)
	}

	return sections
}

// parseHeading recognizes an ATX heading: 1-6 '#' characters followed
// by at least one space or tab. Setext headings are out of scope.
func parseHeading(line string) (level int, title string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i == 0 || i > 6 || i == len(trimmed) {
		return 0, "", false
	}
	if trimmed[i] != ' ' && trimmed[i] != '\t' {
		return 0, "", false
	}
	return i, strings.TrimSpace(trimmed[i:]), true
}

// FindSection returns the first section whose trimmed title exactly
// matches title, case-sensitively. Duplicate titles resolve to the
// first occurrence in document order.
func (d *Document) FindSection(title string) *Section {
	want := strings.TrimSpace(title)
	for _, sec := range d.sections {
		if sec.Title == want {
			return sec
		}
	}
	return nil
}
