//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package cli implements the knowledge-grader command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klaviyo/knowledge-grader/config"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader/markdown"
	"github.com/klaviyo/knowledge-grader/log"

	// Register the remaining document formats.
	_ "github.com/klaviyo/knowledge-grader/knowledge/document/reader/docx"
	_ "github.com/klaviyo/knowledge-grader/knowledge/document/reader/pdf"
	_ "github.com/klaviyo/knowledge-grader/knowledge/document/reader/text"
)

// app carries the flags and configuration shared by every command.
type app struct {
	cfgFile       string
	envFile       string
	logLevel      string
	jsonOutput    bool
	noColor       bool
	stripMarkdown bool

	cfg *config.Config

	// newGrader is replaced in tests.
	newGrader func(ctx context.Context, cfg *config.Config) (documentGrader, error)
}

// NewRootCommand creates the root command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{newGrader: newGrader}
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "knowledge-grader",
		Short: "Grade knowledge-base articles for AI retrieval",
		Long: `knowledge-grader predicts how a retrieval system will chunk a help-center
article and asks a language model to grade how well each chunk stands on its own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override: debug | info | warn | error")
	flags.BoolVar(&a.jsonOutput, "json", false, "output as machine-readable JSON")
	flags.BoolVar(&a.noColor, "no-color", false, "disable ANSI color output")
	flags.BoolVar(&a.stripMarkdown, "strip-markdown", false, "read .md files as plain text instead of raw markdown")

	root.AddCommand(a.serveCommand())
	root.AddCommand(a.previewCommand())
	root.AddCommand(a.gradeCommand())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	opts := []config.LoadOption{config.WithEnvFile(a.envFile)}
	if a.cfgFile != "" {
		opts = append(opts, config.WithFile(a.cfgFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	// Command output owns stdout; logs go to stderr.
	if err := log.Setup(level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}

	if a.noColor || a.jsonOutput {
		color.NoColor = true
	}
	if a.stripMarkdown {
		reader.Register(markdown.Extensions, func() reader.Reader {
			return markdown.New(markdown.WithPlainText(true))
		})
	}
	return nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
