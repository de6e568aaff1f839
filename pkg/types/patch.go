// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the closed request/response types shared by the
// docpatch engine, the public library surface, and the MCP server.
package types

import "fmt"

// Operation identifies what a ContextPatch does at its anchor.
type Operation int

const (
	OpInsert  Operation = iota // Place new lines between the context windows
	OpReplace                  // Replace the target line with new content
	OpDelete                   // Remove the target line
)

func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpReplace:
		return "replace"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ParseOperation decodes the wire form of an operation. Unknown values
// are an input error, not a silent default.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "insert":
		return OpInsert, nil
	case "replace":
		return OpReplace, nil
	case "delete":
		return OpDelete, nil
	default:
		return 0, fmt.Errorf("unknown operation %q", s)
	}
}

// FileType selects which workspace document a patch targets.
type FileType int

const (
	FileSpec FileType = iota
	FileNotes
	FileTasks
)

func (f FileType) String() string {
	switch f {
	case FileSpec:
		return "spec"
	case FileNotes:
		return "notes"
	case FileTasks:
		return "tasks"
	default:
		return "unknown"
	}
}

// ParseFileType decodes the wire form of a file type.
func ParseFileType(s string) (FileType, error) {
	switch s {
	case "spec":
		return FileSpec, nil
	case "notes":
		return FileNotes, nil
	case "tasks":
		return FileTasks, nil
	default:
		return 0, fmt.Errorf("unknown file_type %q", s)
	}
}

// ContextPatch describes one edit located by landmark lines instead of
// line numbers. Either context window may be empty, but not both.
type ContextPatch struct {
	Operation       Operation // What to do at the anchor
	SectionContext  string    // Optional heading text scoping the search
	BeforeContext   []string  // Lines expected immediately before the anchor
	AfterContext    []string  // Lines expected immediately after the anchor
	Content         string    // New text; must be empty for delete
	BaseFingerprint string    // Fingerprint the caller last observed (optional)
}

// Validate checks the structural rules that hold regardless of document
// content. All boundary validation is concentrated here; the engine
// assumes a validated patch.
func (p ContextPatch) Validate() error {
	if len(p.BeforeContext) == 0 && len(p.AfterContext) == 0 {
		return fmt.Errorf("before_context and after_context cannot both be empty")
	}
	if p.Operation == OpDelete && p.Content != "" {
		return fmt.Errorf("content must be empty for delete")
	}
	if p.Operation != OpInsert && p.Operation != OpReplace && p.Operation != OpDelete {
		return fmt.Errorf("unknown operation %d", int(p.Operation))
	}
	return nil
}
