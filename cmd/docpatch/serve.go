// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/docpatch/internal/mcpserver"
)

// newServeCmd creates the "serve" command.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the patcher over MCP on stdio",
		Long:  "Serve exposes the edit, read, sections, and rollback tools to an MCP client over stdin/stdout. The process runs until the client disconnects.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPatcher()
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}

			s := mcpserver.New(p, version)
			if err := mcpserver.ServeStdio(s); err != nil {
				return fmt.Errorf("serving: %w", err)
			}
			return nil
		},
	}
}
