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
	"fmt"
	"io"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
)

// stdinName selects the text reader for piped input.
const stdinName = "stdin.txt"

// expandInputs resolves file arguments, including ** globs, into a
// de-duplicated list in argument order.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// readInputs reads every argument, or stdin when there are none or the only
// argument is "-".
func readInputs(args []string, stdin io.Reader) ([]*document.Document, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		doc, err := reader.Open(stdinName, stdin)
		if err != nil {
			return nil, err
		}
		doc.Name = "stdin"
		return []*document.Document{doc}, nil
	}

	files, err := expandInputs(args)
	if err != nil {
		return nil, err
	}
	docs := make([]*document.Document, 0, len(files))
	for _, f := range files {
		doc, err := reader.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
