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

// Package docx extracts paragraph text from Word documents.
package docx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gonfva/docxlib"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
)

// Format is recorded in document metadata.
const Format = "docx"

// Extensions handled by this reader.
var Extensions = []string{".docx"}

func init() {
	reader.Register(Extensions, func() reader.Reader { return New() })
}

// Reader emits one line per non-empty paragraph.
type Reader struct{}

// New creates a DOCX reader.
func New() *Reader {
	return &Reader{}
}

// ReadFromReader reads a DOCX document from rd.
func (r *Reader) ReadFromReader(name string, rd io.Reader) (*document.Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.read(reader.BaseName(name), name, bytes.NewReader(data), int64(len(data)))
}

// ReadFromFile reads a DOCX document from a file path.
func (r *Reader) ReadFromFile(filePath string) (*document.Document, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	return r.read(reader.BaseName(filePath), filePath, file, stat.Size())
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "DOCXReader"
}

func (r *Reader) read(name, source string, ra io.ReaderAt, size int64) (*document.Document, error) {
	doc, err := docxlib.Parse(ra, size)
	if err != nil {
		return nil, fmt.Errorf("parse DOCX: %w", err)
	}
	return reader.NewDocument(name, extractText(doc), source, Format), nil
}

// extractText joins run and hyperlink text within a paragraph. Word splits
// runs mid-word, so runs are concatenated without separators.
func extractText(doc *docxlib.DocxLib) string {
	var lines []string
	for _, paragraph := range doc.Paragraphs() {
		var b strings.Builder
		for _, child := range paragraph.Children() {
			if child.Run != nil && child.Run.Text != nil {
				b.WriteString(child.Run.Text.Text)
			}
			if child.Link != nil && child.Link.Run.Text != nil {
				b.WriteString(child.Link.Run.Text.Text)
			}
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
