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

// Package text reads plain text documents.
package text

import (
	"fmt"
	"io"
	"os"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
	"github.com/klaviyo/knowledge-grader/knowledge/internal/encoding"
)

// Format is recorded in document metadata.
const Format = "text"

// Extensions handled by this reader.
var Extensions = []string{".txt", ".text"}

func init() {
	reader.Register(Extensions, func() reader.Reader { return New() })
}

// Reader reads UTF-8, UTF-16 (with BOM) and Windows-1252 text.
type Reader struct{}

// New creates a text reader.
func New() *Reader {
	return &Reader{}
}

// ReadFromReader reads text from r.
func (r *Reader) ReadFromReader(name string, rd io.Reader) (*document.Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return Decode(reader.BaseName(name), name, Format, data)
}

// ReadFromFile reads text from a file path.
func (r *Reader) ReadFromFile(filePath string) (*document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Decode(reader.BaseName(filePath), filePath, Format, data)
}

// Name returns the name of this reader.
func (r *Reader) Name() string {
	return "TextReader"
}

// Decode builds a document from raw bytes, converting them to UTF-8 and
// normalizing line endings.
func Decode(name, source, format string, data []byte) (*document.Document, error) {
	content, enc, err := encoding.Decode(data)
	if err != nil {
		return nil, err
	}
	doc := reader.NewDocument(name, encoding.NormalizeNewlines(content), source, format)
	doc.Metadata[reader.MetaEncoding] = string(enc)
	return doc, nil
}
