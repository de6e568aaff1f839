// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/petar-djukic/docpatch/pkg/patcher"
	"github.com/petar-djukic/docpatch/pkg/types"
)

// patchRequest is the wire shape of one patch, shared by edit_document
// arguments and the edit_document_batch patches array.
type patchRequest struct {
	Operation       string `json:"operation"`
	SectionContext  string `json:"section_context,omitempty"`
	BeforeContext   string `json:"before_context,omitempty"`
	AfterContext    string `json:"after_context,omitempty"`
	Content         string `json:"content,omitempty"`
	BaseFingerprint string `json:"base_fingerprint,omitempty"`
}

// editResponse is the wire shape of a successful edit.
type editResponse struct {
	OperationID string   `json:"operation_id"`
	FileType    string   `json:"file_type"`
	Tier        string   `json:"tier"`
	Confidence  float64  `json:"confidence"`
	Excerpt     []string `json:"excerpt"`
	ExcerptLine int      `json:"excerpt_line"`
	Fingerprint string   `json:"fingerprint"`
}

// errorResponse is the wire shape of a failed edit, including any
// suggestions the engine produced.
type errorResponse struct {
	Kind        string               `json:"kind"`
	Detail      string               `json:"detail"`
	Suggestions []suggestionResponse `json:"suggestions,omitempty"`
}

type suggestionResponse struct {
	Lines      []string `json:"lines"`
	StartLine  int      `json:"start_line"`
	Confidence float64  `json:"confidence"`
	Hint       string   `json:"hint"`
}

// sectionResponse is the wire shape of one section listing entry.
type sectionResponse struct {
	Title     string `json:"title"`
	Level     int    `json:"level"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// --- edit_document ---

type editTool struct {
	patcher patcher.Patcher
}

func (t *editTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"edit_document",
		mcp.WithDescription("Apply one context-anchored edit to a workspace document. "+
			"The edit point is located by the lines around it, not by line numbers, "+
			"so it survives document drift."),
		mcp.WithString("file_type",
			mcp.Required(),
			mcp.Description("Target document: spec, notes, or tasks"),
		),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("insert, replace, or delete"),
		),
		mcp.WithString("before_context",
			mcp.Description("Lines expected immediately before the edit point, newline-separated"),
		),
		mcp.WithString("after_context",
			mcp.Description("Lines expected immediately after the edit point, newline-separated"),
		),
		mcp.WithString("content",
			mcp.Description("New text for insert/replace; must be empty for delete"),
		),
		mcp.WithString("section_context",
			mcp.Description("Optional heading title that scopes the search to one section"),
		),
		mcp.WithString("base_fingerprint",
			mcp.Description("Fingerprint from the last read_document; rejects the edit if the document changed since"),
		),
	)
}

func (t *editTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	file, err := fileTypeArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patch, err := patchFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := t.patcher.Apply(ctx, file, patch)
	if err != nil {
		return patchErrorResult(err), nil
	}
	return jsonResult(toEditResponse(res))
}

// --- edit_document_batch ---

type batchTool struct {
	patcher patcher.Patcher
}

func (t *batchTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"edit_document_batch",
		mcp.WithDescription("Apply several context-anchored edits to one document atomically: "+
			"either every patch lands or none does. Patches apply in order, each seeing "+
			"the previous results."),
		mcp.WithString("file_type",
			mcp.Required(),
			mcp.Description("Target document: spec, notes, or tasks"),
		),
		mcp.WithString("patches",
			mcp.Required(),
			mcp.Description(`JSON array of patches, each with operation, before_context, `+
				`after_context, content, section_context, base_fingerprint (all contexts newline-separated)`),
		),
	)
}

func (t *batchTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	file, err := fileTypeArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, _ := args["patches"].(string)
	if raw == "" {
		return mcp.NewToolResultError("missing required parameter: patches"), nil
	}
	var reqs []patchRequest
	if err := json.Unmarshal([]byte(raw), &reqs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parsing patches: %v", err)), nil
	}
	if len(reqs) == 0 {
		return mcp.NewToolResultError("patches must not be empty"), nil
	}

	patches := make([]types.ContextPatch, 0, len(reqs))
	for i, pr := range reqs {
		patch, perr := toPatch(pr)
		if perr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("patch %d: %v", i, perr)), nil
		}
		patches = append(patches, patch)
	}

	results, err := t.patcher.ApplyBatch(ctx, file, patches)
	if err != nil {
		return patchErrorResult(err), nil
	}

	out := make([]editResponse, 0, len(results))
	for _, res := range results {
		out = append(out, toEditResponse(res))
	}
	return jsonResult(out)
}

// --- read_document ---

type readTool struct {
	patcher patcher.Patcher
}

func (t *readTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"read_document",
		mcp.WithDescription("Read a workspace document's current content and fingerprint. "+
			"Pass the fingerprint as base_fingerprint on subsequent edits to detect drift."),
		mcp.WithString("file_type",
			mcp.Required(),
			mcp.Description("Target document: spec, notes, or tasks"),
		),
	)
}

func (t *readTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := fileTypeArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, fingerprint, err := t.patcher.Read(file)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]string{
		"file_type":   file.String(),
		"content":     content,
		"fingerprint": fingerprint,
	})
}

// --- list_sections ---

type sectionsTool struct {
	patcher patcher.Patcher
}

func (t *sectionsTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"list_sections",
		mcp.WithDescription("List a document's heading sections in document order, "+
			"for choosing a section_context that narrows an edit."),
		mcp.WithString("file_type",
			mcp.Required(),
			mcp.Description("Target document: spec, notes, or tasks"),
		),
	)
}

func (t *sectionsTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file, err := fileTypeArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sections, err := t.patcher.Sections(file)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]sectionResponse, 0, len(sections))
	for _, sec := range sections {
		out = append(out, sectionResponse{
			Title:     sec.Title,
			Level:     sec.Level,
			StartLine: sec.StartLine,
			EndLine:   sec.EndLine,
		})
	}
	return jsonResult(out)
}

// --- rollback_edit ---

type rollbackTool struct {
	patcher patcher.Patcher
}

func (t *rollbackTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"rollback_edit",
		mcp.WithDescription("Revert an applied edit by its operation_id. Only the most "+
			"recent edit on a document can be reverted; a later edit supersedes earlier ones."),
		mcp.WithString("operation_id",
			mcp.Required(),
			mcp.Description("The operation_id returned by edit_document or edit_document_batch"),
		),
	)
}

func (t *rollbackTool) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opID, _ := request.GetArguments()["operation_id"].(string)
	if opID == "" {
		return mcp.NewToolResultError("missing required parameter: operation_id"), nil
	}

	if err := t.patcher.Rollback(opID); err != nil {
		switch {
		case errors.Is(err, patcher.ErrSuperseded):
			return mcp.NewToolResultError("a later edit has superseded this operation; it can no longer be rolled back"), nil
		case errors.Is(err, patcher.ErrUnknownOperation):
			return mcp.NewToolResultError(fmt.Sprintf("unknown operation_id %q", opID)), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return jsonResult(map[string]string{"status": "rolled_back", "operation_id": opID})
}

// --- shared helpers ---

// fileTypeArg extracts and parses the required file_type argument.
func fileTypeArg(args map[string]any) (types.FileType, error) {
	raw, ok := args["file_type"].(string)
	if !ok || raw == "" {
		return 0, fmt.Errorf("missing required parameter: file_type")
	}
	return types.ParseFileType(raw)
}

// patchFromArgs builds a ContextPatch from flat tool arguments.
func patchFromArgs(args map[string]any) (types.ContextPatch, error) {
	str := func(key string) string {
		s, _ := args[key].(string)
		return s
	}
	return toPatch(patchRequest{
		Operation:       str("operation"),
		SectionContext:  str("section_context"),
		BeforeContext:   str("before_context"),
		AfterContext:    str("after_context"),
		Content:         str("content"),
		BaseFingerprint: str("base_fingerprint"),
	})
}

// toPatch converts the wire shape to the engine's patch type. Context
// strings split on newlines; empty strings contribute no lines.
func toPatch(pr patchRequest) (types.ContextPatch, error) {
	if pr.Operation == "" {
		return types.ContextPatch{}, fmt.Errorf("missing required parameter: operation")
	}
	op, err := types.ParseOperation(pr.Operation)
	if err != nil {
		return types.ContextPatch{}, err
	}
	return types.ContextPatch{
		Operation:       op,
		SectionContext:  pr.SectionContext,
		BeforeContext:   splitContextLines(pr.BeforeContext),
		AfterContext:    splitContextLines(pr.AfterContext),
		Content:         pr.Content,
		BaseFingerprint: pr.BaseFingerprint,
	}, nil
}

// splitContextLines splits a newline-separated context string into
// lines, tolerating either ending convention and a trailing newline.
func splitContextLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

func toEditResponse(res *types.PatchResult) editResponse {
	return editResponse{
		OperationID: res.OperationID,
		FileType:    res.FileType.String(),
		Tier:        res.Tier.String(),
		Confidence:  res.Confidence,
		Excerpt:     res.Excerpt,
		ExcerptLine: res.ExcerptLine,
		Fingerprint: res.Fingerprint,
	}
}

// patchErrorResult serializes an engine failure, keeping the kind and
// suggestions structured so the client can branch on them.
func patchErrorResult(err error) *mcp.CallToolResult {
	var perr *types.PatchError
	if !errors.As(err, &perr) {
		return mcp.NewToolResultError(err.Error())
	}

	resp := errorResponse{
		Kind:   perr.Kind.String(),
		Detail: perr.Detail,
	}
	for _, s := range perr.Suggestions {
		resp.Suggestions = append(resp.Suggestions, suggestionResponse{
			Lines:      s.Lines,
			StartLine:  s.StartLine,
			Confidence: s.Confidence,
			Hint:       s.Hint,
		})
	}

	data, merr := json.MarshalIndent(resp, "", "  ")
	if merr != nil {
		return mcp.NewToolResultError(perr.Error())
	}
	return mcp.NewToolResultError(string(data))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
