// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package mcpserver exposes the patcher over the Model Context
// Protocol. This is the composition root: it wires the tools to a
// Patcher and registers them; no patching logic lives here.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/petar-djukic/docpatch/pkg/patcher"
)

// New creates the MCP server with all docpatch tools registered.
func New(p patcher.Patcher, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"docpatch",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	edit := &editTool{patcher: p}
	s.AddTool(edit.Definition(), edit.Handle)

	batch := &batchTool{patcher: p}
	s.AddTool(batch.Definition(), batch.Handle)

	read := &readTool{patcher: p}
	s.AddTool(read.Definition(), read.Handle)

	sections := &sectionsTool{patcher: p}
	s.AddTool(sections.Definition(), sections.Handle)

	undo := &rollbackTool{patcher: p}
	s.AddTool(undo.Definition(), undo.Handle)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client
// disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// serverInstructions tells the client how to drive the tools.
func serverInstructions() string {
	return `You have access to docpatch, a context-anchored document editor.

docpatch edits the workspace documents (spec, notes, tasks) without line
numbers: you describe WHERE an edit goes with the lines around it, and
docpatch finds the spot even when the document has drifted since you
read it.

## Workflow

1. Read the document with read_document. Note the fingerprint.
2. Build a patch:
   - operation: insert, replace, or delete
   - before_context: the lines immediately before the edit point
   - after_context: the lines immediately after it
   - content: the new text (insert/replace only)
   - section_context: a heading title to narrow the search (optional)
   - base_fingerprint: the fingerprint you read (optional but recommended)
3. Call edit_document. The response confirms with an excerpt of the
   edited region and a fresh fingerprint.
4. For several edits to one document, use edit_document_batch: all
   patches commit together or not at all.
5. To revert the latest edit on a document, call rollback_edit with the
   operation_id from the edit response.

## When an edit fails

- anchor_not_found: the context did not match anywhere. The error
  carries the closest near-match; adjust your context lines to the
  document's actual text, or add section_context.
- ambiguous_match: the context matched several places. The error lists
  each site; add more context lines or section_context to pick one.
- stale_document: the document changed since your base_fingerprint.
  Re-read it and rebuild the patch.

Never guess line numbers; always anchor with real document lines.
Prefer short contexts (1-3 lines) around the exact edit point.`
}
