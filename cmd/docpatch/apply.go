// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/docpatch/pkg/patcher"
	"github.com/petar-djukic/docpatch/pkg/types"
)

// patchFile is the JSON shape "apply" reads from a file or stdin. A
// single object applies one patch; an array applies a batch.
type patchFile struct {
	Operation       string   `json:"operation"`
	SectionContext  string   `json:"section_context,omitempty"`
	BeforeContext   []string `json:"before_context,omitempty"`
	AfterContext    []string `json:"after_context,omitempty"`
	Content         string   `json:"content,omitempty"`
	BaseFingerprint string   `json:"base_fingerprint,omitempty"`
}

// applyOutput is the JSON written to stdout for each applied patch.
type applyOutput struct {
	OperationID string   `json:"operation_id"`
	FileType    string   `json:"file_type"`
	Tier        string   `json:"tier"`
	Confidence  float64  `json:"confidence"`
	Excerpt     []string `json:"excerpt"`
	ExcerptLine int      `json:"excerpt_line"`
	Fingerprint string   `json:"fingerprint"`
}

// newApplyCmd creates the "apply" command.
func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply context patches to a document",
		Long:  "Apply reads one patch (JSON object) or a batch (JSON array) from a file or stdin and applies it to the target document. A batch commits atomically.",
		RunE:  runApply,
	}

	cmd.Flags().StringP("file", "f", "", "Target document: spec, notes, or tasks (required)")
	cmd.MarkFlagRequired("file")
	cmd.Flags().StringP("patch", "i", "-", "Patch JSON path, or '-' for stdin")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	fileArg, _ := cmd.Flags().GetString("file")
	file, err := types.ParseFileType(fileArg)
	if err != nil {
		return err
	}

	patches, err := readPatches(cmd)
	if err != nil {
		return err
	}

	p, err := newPatcher()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var results []*types.PatchResult
	if len(patches) == 1 {
		res, aerr := p.Apply(ctx, file, patches[0])
		if aerr != nil {
			return reportPatchError(aerr)
		}
		results = []*types.PatchResult{res}
	} else {
		results, err = p.ApplyBatch(ctx, file, patches)
		if err != nil {
			return reportPatchError(err)
		}
	}

	printResults(results)
	return nil
}

// readPatches decodes the patch input, accepting a single object or an
// array.
func readPatches(cmd *cobra.Command) ([]types.ContextPatch, error) {
	path, _ := cmd.Flags().GetString("patch")

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading patch input: %w", err)
	}

	var raw []patchFile
	if err := json.Unmarshal(data, &raw); err != nil {
		var one patchFile
		if oerr := json.Unmarshal(data, &one); oerr != nil {
			return nil, fmt.Errorf("parsing patch input: %w", err)
		}
		raw = []patchFile{one}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("patch input is empty")
	}

	patches := make([]types.ContextPatch, 0, len(raw))
	for i, pf := range raw {
		op, perr := types.ParseOperation(pf.Operation)
		if perr != nil {
			return nil, fmt.Errorf("patch %d: %w", i, perr)
		}
		patches = append(patches, types.ContextPatch{
			Operation:       op,
			SectionContext:  pf.SectionContext,
			BeforeContext:   pf.BeforeContext,
			AfterContext:    pf.AfterContext,
			Content:         pf.Content,
			BaseFingerprint: pf.BaseFingerprint,
		})
	}
	return patches, nil
}

// printResults outputs the results as JSON to stdout.
func printResults(results []*types.PatchResult) {
	outs := make([]applyOutput, 0, len(results))
	for _, res := range results {
		outs = append(outs, applyOutput{
			OperationID: res.OperationID,
			FileType:    res.FileType.String(),
			Tier:        res.Tier.String(),
			Confidence:  res.Confidence,
			Excerpt:     res.Excerpt,
			ExcerptLine: res.ExcerptLine,
			Fingerprint: res.Fingerprint,
		})
	}

	var v any = outs
	if len(outs) == 1 {
		v = outs[0]
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling result: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// reportPatchError prints an engine failure with its suggestions to
// stderr, keeping stdout clean for results.
func reportPatchError(err error) error {
	var perr *types.PatchError
	if !errors.As(err, &perr) {
		return err
	}

	fmt.Fprintf(os.Stderr, "Error: %s: %s\n", perr.Kind, perr.Detail)
	for _, s := range perr.Suggestions {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", s.Hint)
		for i, line := range s.Lines {
			fmt.Fprintf(os.Stderr, "    %4d | %s\n", s.StartLine+i, line)
		}
	}
	return err
}

// newSectionsCmd creates the "sections" command.
func newSectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List a document's heading sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			fileArg, _ := cmd.Flags().GetString("file")
			file, err := types.ParseFileType(fileArg)
			if err != nil {
				return err
			}

			p, err := newPatcher()
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			sections, err := p.Sections(file)
			if err != nil {
				return err
			}
			for _, sec := range sections {
				fmt.Printf("%s%s  (lines %d-%d)\n",
					indent(sec.Level), sec.Title, sec.StartLine, sec.EndLine)
			}
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Target document: spec, notes, or tasks (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func indent(level int) string {
	out := ""
	for i := 1; i < level; i++ {
		out += "  "
	}
	return out
}

// newUndoCmd creates the "undo" command.
func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <operation-id>",
		Short: "Revert an applied patch",
		Long:  "Undo restores a document to its state before the given operation, provided no later patch has landed on it since.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPatcher()
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			if err := p.Rollback(args[0]); err != nil {
				switch {
				case errors.Is(err, patcher.ErrSuperseded):
					return fmt.Errorf("a later edit has superseded this operation")
				case errors.Is(err, patcher.ErrUnknownOperation):
					return fmt.Errorf("unknown operation id %q", args[0])
				default:
					return fmt.Errorf("undo failed: %w", err)
				}
			}

			fmt.Println("Successfully reverted the operation.")
			return nil
		},
	}
}
