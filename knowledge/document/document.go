//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package document defines the knowledge-base document handled by the grader.
package document

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is a knowledge-base article submitted for grading, or one of the
// chunks derived from it.
type Document struct {
	// ID uniquely identifies the document.
	ID string `json:"id"`

	// Name is the file name or title of the document.
	Name string `json:"name,omitempty"`

	// Content is the raw text of the document.
	Content string `json:"content"`

	// Metadata contains additional information such as the source path or
	// chunk position.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is the creation timestamp of the document.
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// New creates a document with a generated ID.
func New(name, content string) *Document {
	return &Document{
		ID:        GenerateID(name),
		Name:      name,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now().UTC(),
	}
}

// GenerateID derives a readable unique ID from the document name.
func GenerateID(name string) string {
	id := uuid.NewString()[:8]
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		return "doc_" + id
	}
	return name + "_" + id
}

// IsEmpty reports whether the document has no content.
func (d *Document) IsEmpty() bool {
	return d == nil || strings.TrimSpace(d.Content) == ""
}

// Clone copies the document and its metadata map. Metadata values are
// shared.
func (d *Document) Clone() *Document {
	clone := *d
	clone.Metadata = maps.Clone(d.Metadata)
	return &clone
}
