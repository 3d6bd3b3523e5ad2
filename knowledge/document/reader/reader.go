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

// Package reader turns document files into grading input.
//
// Format packages register themselves for their file extensions on import:
//
//	import (
//		_ "github.com/klaviyo/knowledge-grader/knowledge/document/reader/docx"
//		_ "github.com/klaviyo/knowledge-grader/knowledge/document/reader/pdf"
//		_ "github.com/klaviyo/knowledge-grader/knowledge/document/reader/text"
//	)
package reader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
)

// Metadata keys set by readers.
const (
	MetaSource   = "source"
	MetaFormat   = "format"
	MetaEncoding = "encoding"
	MetaPages    = "pages"
)

// ErrUnsupportedFormat is returned when no reader handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Reader extracts the text of a single document.
type Reader interface {
	// ReadFromReader reads content from r. The name identifies the source,
	// e.g. a file name.
	ReadFromReader(name string, r io.Reader) (*document.Document, error)

	// ReadFromFile reads content from a file path.
	ReadFromFile(filePath string) (*document.Document, error)

	// Name returns the name of this reader.
	Name() string
}

// ReadFile reads filePath with the reader registered for its extension.
func ReadFile(filePath string) (*document.Document, error) {
	ext := filepath.Ext(filePath)
	r, ok := Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, filePath)
	}
	doc, err := r.ReadFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Name(), err)
	}
	return doc, nil
}

// Open is ReadFile for callers that already hold the content, e.g. stdin.
// The extension of name selects the reader.
func Open(name string, r io.Reader) (*document.Document, error) {
	ext := filepath.Ext(name)
	rd, ok := Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, ext, name)
	}
	return rd.ReadFromReader(name, r)
}

// BaseName strips the directory and extension from a path.
func BaseName(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

// NewDocument creates a document and records its source and format.
func NewDocument(name, content, source, format string) *document.Document {
	doc := document.New(name, content)
	if source != "" {
		doc.Metadata[MetaSource] = source
	}
	doc.Metadata[MetaFormat] = format
	return doc
}
