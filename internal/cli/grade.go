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
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/klaviyo/knowledge-grader/grader"
	"github.com/klaviyo/knowledge-grader/grader/batch"
)

func (a *app) gradeCommand() *cobra.Command {
	var (
		parallelism int
		rubricURL   string
		showDiff    bool
		failUnder   int
	)
	cmd := &cobra.Command{
		Use:   "grade [file|glob...]",
		Short: "Grade documents for AI retrieval",
		Long: `Grades each document against the rubric and prints the grade, its band and
suggested fixes. Documents are graded concurrently. Reads stdin when no file
is given. Supported formats: .txt, .md, .pdf, .docx.

Examples:
  knowledge-grader grade article.md --diff
  knowledge-grader grade 'help-center/**/*.md' --parallel 8 --json
  knowledge-grader grade docs/*.txt --fail-under 70`,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readInputs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			g, err := a.newGrader(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}

			report, err := batch.Grade(cmd.Context(), g, docs,
				batch.WithParallelism(parallelism),
				batch.WithRubricURL(rubricURL),
				batch.WithProgress(len(docs) > 1, 10),
				batch.WithStats(len(docs) > 1),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for i, item := range report.Items {
					if i > 0 {
						fmt.Fprintln(out)
					}
					printItem(out, item, showDiff)
				}
				if len(report.Items) > 1 {
					fmt.Fprintln(out)
					printSummary(out, report.Stats)
				}
			}
			return gradeOutcome(report, failUnder)
		},
	}
	cmd.Flags().IntVar(&parallelism, "parallel", batch.DefaultParallelism, "documents graded at once")
	cmd.Flags().StringVar(&rubricURL, "rubric-url", "", "rubric location (default from rubric.url)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show a unified diff of the original and rewritten document")
	cmd.Flags().IntVar(&failUnder, "fail-under", 0, "exit non-zero when any grade is below this value")
	return cmd
}

// gradeOutcome turns failures and low grades into the command error.
func gradeOutcome(report *batch.Report, failUnder int) error {
	if report.Stats.Failed > 0 {
		return fmt.Errorf("%d of %d document(s) could not be graded", report.Stats.Failed, len(report.Items))
	}
	if failUnder > 0 {
		var low []string
		for _, it := range report.Items {
			if it.Result != nil && it.Result.Grade < failUnder {
				low = append(low, fmt.Sprintf("%s (%d)", it.Name, it.Result.Grade))
			}
		}
		if len(low) > 0 {
			return fmt.Errorf("grade below %d: %s", failUnder, strings.Join(low, ", "))
		}
	}
	return nil
}

func gradeColor(grade int) *color.Color {
	switch {
	case grade >= 80:
		return color.New(color.FgGreen, color.Bold)
	case grade >= 60:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printItem(w io.Writer, item batch.Item, showDiff bool) {
	color.New(color.Bold).Fprintf(w, "== %s ==\n", item.Name)
	if item.Err != nil {
		color.New(color.FgRed).Fprintf(w, "Failed: %s\n", describeFailure(item.Err))
		return
	}

	r := item.Result
	band := r.Band()
	gradeColor(r.Grade).Fprintf(w, "Grade: %d/100  %s\n", r.Grade, band.Label)
	fmt.Fprintln(w, band.Message)

	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w)
		color.New(color.Bold).Fprintln(w, "Suggestions:")
		for i, s := range r.Suggestions {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, s.Category, s.Issue)
			color.New(color.FgCyan).Fprintf(w, "     Fix: %s\n", s.Fix)
		}
	}

	if showDiff {
		fmt.Fprintln(w)
		printDiff(w, item)
	}
}

// describeFailure keeps validation details and hides everything else behind
// the failure cause.
func describeFailure(err error) string {
	if details := grader.ValidationDetails(err); len(details) > 0 {
		return strings.Join(details, "; ")
	}
	return fmt.Sprintf("%s: %v", grader.FailureCause(err), err)
}

func printDiff(w io.Writer, item batch.Item) {
	name := item.Source
	if name == "" {
		name = item.Name
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(ensureNewline(item.Document.Content)),
		B:        difflib.SplitLines(ensureNewline(item.Result.RewrittenDocument)),
		FromFile: name,
		ToFile:   name + " (rewritten)",
		Context:  3,
	})
	if err != nil {
		fmt.Fprintf(w, "diff unavailable: %v\n", err)
		return
	}
	if text == "" {
		fmt.Fprintln(w, "No changes suggested.")
		return
	}

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)
	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			color.New(color.Bold).Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			added.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func printSummary(w io.Writer, s *batch.Stats) {
	color.New(color.Bold).Fprintf(w, "Graded %d document(s), %d failed, average %.1f (min %d, max %d)\n",
		s.Graded, s.Failed, s.Avg(), s.MinGrade, s.MaxGrade)
	for _, band := range grader.Bands() {
		if n := s.Bands[band.Label]; n > 0 {
			fmt.Fprintf(w, "  %-20s %d\n", band.Label, n)
		}
	}
}
