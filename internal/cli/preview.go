//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package cli

import (
	"encoding/json"
	"fmt"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klaviyo/knowledge-grader/knowledge/chunking"
	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
)

type previewItem struct {
	Name      string              `json:"name"`
	Source    string              `json:"source,omitempty"`
	Breakdown *chunking.Breakdown `json:"breakdown"`
}

func (a *app) previewCommand() *cobra.Command {
	var (
		chunkSize int
		noTokens  bool
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "preview [file|glob...]",
		Short: "Show how documents will be chunked",
		Long: `Splits each document into sentences and groups them into chunks the way the
retrieval system does. Reads stdin when no file is given.

Examples:
  knowledge-grader preview article.md
  knowledge-grader preview --chunk-size 4 'docs/**/*.txt'
  knowledge-grader preview --out-dir chunks/ article.pdf
  cat article.txt | knowledge-grader preview --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("chunk-size") {
				chunkSize = a.cfg.Chunking.Size
			}
			if chunkSize <= 0 {
				return fmt.Errorf("--chunk-size must be positive, got %d", chunkSize)
			}

			docs, err := readInputs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			opts := []chunking.AnalyzeOption{
				chunking.WithAnalyzeChunkSize(chunkSize),
				chunking.WithMaxRetrieved(a.cfg.Chunking.MaxRetrieved),
			}
			if !noTokens {
				if counter := newTokenCounter(a.cfg); counter != nil {
					opts = append(opts, chunking.WithTokenCounter(counter))
				}
			}

			items := make([]previewItem, 0, len(docs))
			for _, doc := range docs {
				b, err := chunking.Analyze(doc.Content, opts...)
				if err != nil {
					return fmt.Errorf("preview %s: %w", doc.Name, err)
				}
				item := previewItem{Name: doc.Name, Breakdown: b}
				item.Source, _ = doc.Metadata[reader.MetaSource].(string)
				items = append(items, item)

				if outDir != "" {
					n, err := writeChunks(outDir, doc, chunkSize)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d chunk file(s) for %s to %s\n", n, doc.Name, outDir)
				}
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			for i, item := range items {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printBreakdown(out, item)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "sentences per chunk (default from chunking.size)")
	cmd.Flags().BoolVar(&noTokens, "no-tokens", false, "skip token estimates")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write each chunk to its own file in this directory")
	return cmd
}

func printBreakdown(w io.Writer, item previewItem) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	warn := color.New(color.FgYellow)

	b := item.Breakdown
	bold.Fprintf(w, "== %s ==\n", item.Name)
	fmt.Fprintf(w, "%d sentence(s) in %d chunk(s) of up to %d sentences\n",
		b.SentenceCount, len(b.Chunks), b.ChunkSize)
	if b.ExceedsRetrievalLimit {
		warn.Fprintf(w, "Only %d of %d chunks are retrieved per query; chunks must stand on their own.\n",
			b.MaxRetrieved, len(b.Chunks))
	}
	for _, c := range b.Chunks {
		fmt.Fprintln(w)
		header := fmt.Sprintf("CHUNK %d: %d sentence(s), %d chars", c.Index, c.Sentences, c.Runes)
		if c.Tokens > 0 {
			header += fmt.Sprintf(", ~%d tokens", c.Tokens)
		}
		color.New(color.FgCyan).Fprintln(w, header)
		for _, line := range strings.Split(c.Text, "\n") {
			dim.Fprint(w, "  | ")
			fmt.Fprintln(w, line)
		}
	}
}

// writeChunks stores every chunk of doc as <base>_chunk_<n>.txt under dir.
// Empty documents produce no files.
func writeChunks(dir string, doc *document.Document, chunkSize int) (int, error) {
	chunks, err := chunking.NewSentenceChunking(chunking.WithChunkSize(chunkSize)).Chunk(doc)
	if errors.Is(err, chunking.ErrEmptyDocument) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", doc.Name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	base := strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))
	for _, c := range chunks {
		name := fmt.Sprintf("%s_chunk_%d.txt", base, c.Metadata[chunking.MetaChunkIndex])
		if err := os.WriteFile(filepath.Join(dir, name), []byte(c.Content+"\n"), 0o644); err != nil {
			return 0, fmt.Errorf("write chunk: %w", err)
		}
	}
	return len(chunks), nil
}
