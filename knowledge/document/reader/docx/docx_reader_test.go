//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package docx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	godocx "github.com/gomutex/godocx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	doc, err := godocx.NewDocument()
	require.NoError(t, err)
	for _, p := range paragraphs {
		doc.AddParagraph(p)
	}
	var buf bytes.Buffer
	_, err = doc.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReader_ReadFromReader(t *testing.T) {
	tests := []struct {
		name       string
		paragraphs []string
		want       string
	}{
		{
			name:       "one line per paragraph",
			paragraphs: []string{"Ground Shipping", "Cost is $15.99."},
			want:       "Ground Shipping\nCost is $15.99.",
		},
		{
			name:       "blank paragraphs dropped",
			paragraphs: []string{"Returns", "", "   ", "Within 30 days."},
			want:       "Returns\nWithin 30 days.",
		},
		{
			name:       "surrounding space trimmed",
			paragraphs: []string{"  Tracking is included.  "},
			want:       "Tracking is included.",
		},
		{
			name: "empty document",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := New().ReadFromReader("help/shipping.docx", bytes.NewReader(buildDocx(t, tt.paragraphs...)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Content)
			assert.Equal(t, "shipping", doc.Name)
			assert.Equal(t, "help/shipping.docx", doc.Metadata[reader.MetaSource])
			assert.Equal(t, Format, doc.Metadata[reader.MetaFormat])
		})
	}
}

func TestReader_ReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Returns Policy.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, "Refunds post in 5 days."), 0o600))

	doc, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Returns Policy", doc.Name)
	assert.Equal(t, "Refunds post in 5 days.", doc.Content)
	assert.Equal(t, path, doc.Metadata[reader.MetaSource])
}

func TestReader_Errors(t *testing.T) {
	_, err := New().ReadFromReader("bad.docx", strings.NewReader("PK not really a zip"))
	assert.ErrorContains(t, err, "parse DOCX")

	_, err = New().ReadFromFile(filepath.Join(t.TempDir(), "missing.docx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReader_Registered(t *testing.T) {
	for _, ext := range []string{".docx", "DOCX"} {
		r, ok := reader.Lookup(ext)
		require.True(t, ok, ext)
		assert.Equal(t, "DOCXReader", r.Name())
	}
}
