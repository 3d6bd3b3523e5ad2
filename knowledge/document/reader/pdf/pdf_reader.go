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

// Package pdf extracts the text layer of PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
	"github.com/klaviyo/knowledge-grader/log"
)

// Format is recorded in document metadata.
const Format = "pdf"

// Extensions handled by this reader.
var Extensions = []string{".pdf"}

func init() {
	reader.Register(Extensions, func() reader.Reader { return New() })
}

// Reader extracts plain text page by page. Scanned pages without a text
// layer produce no text.
type Reader struct{}

// New creates a PDF reader.
func New() *Reader {
	return &Reader{}
}

// ReadFromReader reads a PDF from rd.
func (r *Reader) ReadFromReader(name string, rd io.Reader) (*document.Document, error) {
	readerAt, size, err := toReaderAt(rd)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return r.read(reader.BaseName(name), name, readerAt, size)
}

// ReadFromFile reads a PDF from a file path.
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
	return "PDFReader"
}

func (r *Reader) read(name, source string, ra io.ReaderAt, size int64) (*document.Document, error) {
	pdfReader, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("parse PDF: %w", err)
	}

	var pages []string
	total := pdfReader.NumPage()
	for i := 1; i <= total; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warnf("pdf %s: skip page %d: %v", source, i, err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	doc := reader.NewDocument(name, strings.Join(pages, "\n"), source, Format)
	doc.Metadata[reader.MetaPages] = total
	return doc, nil
}

// toReaderAt buffers rd unless it already supports random access.
func toReaderAt(rd io.Reader) (io.ReaderAt, int64, error) {
	if ra, ok := rd.(io.ReaderAt); ok {
		if rs, ok := rd.(io.Seeker); ok {
			size, err := rs.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, 0, err
			}
			return ra, size, nil
		}
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(data), int64(len(data)), nil
}
