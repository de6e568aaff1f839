// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command docpatch edits workspace documents with context-anchored
// patches, either as a one-shot CLI or as an MCP server over stdio.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/docpatch/pkg/patcher"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docpatch",
		Short: "Context-anchored document patching",
		Long:  "docpatch applies edits located by surrounding lines instead of line numbers, so patches keep working after the document drifts.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("workdir", ".", "Workspace directory holding the documents")
	rootCmd.PersistentFlags().Duration("match-timeout", 2*time.Second, "Budget for one match cascade")
	rootCmd.PersistentFlags().Float64("tie-margin", 0.02, "Confidence gap under which match candidates tie")
	rootCmd.PersistentFlags().Bool("no-git", false, "Disable the git journal")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log each operation to stderr")

	// Bind flags to viper.
	viper.BindPFlag("workdir", rootCmd.PersistentFlags().Lookup("workdir"))
	viper.BindPFlag("match-timeout", rootCmd.PersistentFlags().Lookup("match-timeout"))
	viper.BindPFlag("tie-margin", rootCmd.PersistentFlags().Lookup("tie-margin"))
	viper.BindPFlag("no-git", rootCmd.PersistentFlags().Lookup("no-git"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Env vars: DOCPATCH_WORKDIR, DOCPATCH_NO_GIT, etc.
	viper.SetEnvPrefix("DOCPATCH")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".docpatch")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newSectionsCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newPatcher builds a Patcher from the viper-resolved settings.
func newPatcher() (patcher.Patcher, error) {
	var logger *logrus.Logger
	if viper.GetBool("verbose") {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
	}

	return patcher.New(patcher.Config{
		WorkDir:      viper.GetString("workdir"),
		MatchTimeout: viper.GetDuration("match-timeout"),
		TieMargin:    viper.GetFloat64("tie-margin"),
		NoGit:        viper.GetBool("no-git"),
		Logger:       logger,
	})
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print docpatch version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docpatch %s\n", version)
		},
	}
}
