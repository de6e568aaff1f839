// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

// PatchResult describes a successfully applied patch.
type PatchResult struct {
	OperationID string    // Rollback handle for this apply
	FileType    FileType  // Document the patch landed in
	Tier        MatchTier // Tier that resolved the anchor
	Confidence  float64   // Confidence of the winning candidate
	Excerpt     []string  // Edited lines around the anchor
	ExcerptLine int       // 1-based line number of the first excerpt line
	Fingerprint string    // Fingerprint of the document after the edit
}

// SectionInfo is a flattened view of one node in a document's section
// tree, for callers that need to pick a section_context.
type SectionInfo struct {
	Title     string // Trimmed heading text
	Level     int    // ATX heading level, 1-6
	StartLine int    // 1-based heading line
	EndLine   int    // 1-based last line of the section span
}
