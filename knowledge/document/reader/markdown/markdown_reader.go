//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package markdown reads markdown documents, optionally stripped to plain text.
package markdown

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader/text"
)

// Format is recorded in document metadata.
const Format = "markdown"

// Extensions handled by this reader.
var Extensions = []string{".md", ".markdown"}

func init() {
	reader.Register(Extensions, func() reader.Reader { return New() })
}

// Reader reads markdown. By default the source is kept as written, which is
// how the help center ingests pasted articles.
type Reader struct {
	plainText bool
	md        goldmark.Markdown
}

// Option configures the Reader.
type Option func(*Reader)

// WithPlainText strips markdown syntax, leaving one line per heading,
// paragraph line, list item and code line.
func WithPlainText(plain bool) Option {
	return func(r *Reader) {
		r.plainText = plain
	}
}

// New creates a markdown reader.
func New(opts ...Option) *Reader {
	r := &Reader{md: goldmark.New()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFromReader reads markdown from rd.
func (r *Reader) ReadFromReader(name string, rd io.Reader) (*document.Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.build(reader.BaseName(name), name, data)
}

// ReadFromFile reads markdown from a file path.
func (r *Reader) ReadFromFile(filePath string) (*document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return r.build(reader.BaseName(filePath), filePath, data)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "MarkdownReader"
}

func (r *Reader) build(name, source string, data []byte) (*document.Document, error) {
	doc, err := text.Decode(name, source, Format, data)
	if err != nil {
		return nil, err
	}
	if r.plainText {
		doc.Content = r.PlainText(doc.Content)
	}
	return doc, nil
}

// PlainText renders markdown as plain text.
func (r *Reader) PlainText(content string) string {
	source := []byte(content)
	root := r.md.Parser().Parse(gmtext.NewReader(source))

	var lines []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			for _, line := range strings.Split(inlineText(n, source), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			segs := n.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				line := strings.TrimRight(string(seg.Value(source)), "\r\n")
				if strings.TrimSpace(line) != "" {
					lines = append(lines, line)
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(lines, "\n")
}

// inlineText concatenates the text of n's inline children, keeping source
// line breaks.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
