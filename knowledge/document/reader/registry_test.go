//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package reader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
)

// dummyReader records calls instead of parsing anything.
type dummyReader struct {
	name     string
	lastFrom string
}

func (d *dummyReader) ReadFromReader(name string, r io.Reader) (*document.Document, error) {
	if r == nil {
		return nil, errors.New("nil reader")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	d.lastFrom = "reader"
	return NewDocument(BaseName(name), string(data), name, d.name), nil
}

func (d *dummyReader) ReadFromFile(filePath string) (*document.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	d.lastFrom = "file"
	return NewDocument(BaseName(filePath), string(data), filePath, d.name), nil
}

func (d *dummyReader) Name() string { return d.name }

func TestRegistry_RegisterAndList(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	r := &dummyReader{name: "dummy"}
	Register([]string{".TXT", "Md"}, func() Reader { return r })

	assert.Equal(t, []string{".md", ".txt"}, Extensions())

	got, ok := Lookup(".txt")
	require.True(t, ok)
	assert.Same(t, r, got)
	got, ok = Lookup("MD")
	require.True(t, ok)
	assert.Same(t, r, got)

	_, ok = Lookup(".pdf")
	assert.False(t, ok)
}

func TestRegistry_CachesInstances(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	calls := 0
	var mu sync.Mutex
	Register([]string{".txt"}, func() Reader {
		mu.Lock()
		calls++
		mu.Unlock()
		return &dummyReader{name: "dummy"}
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := Lookup(".txt")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)

	// Re-registering drops the cached instance.
	replacement := &dummyReader{name: "replacement"}
	Register([]string{".txt"}, func() Reader { return replacement })
	got, ok := Lookup(".txt")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestReadFileAndOpen(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	r := &dummyReader{name: "dummy"}
	Register([]string{".txt"}, func() Reader { return r })

	path := filepath.Join(t.TempDir(), "Shipping Policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("Ground shipping."), 0o600))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file", r.lastFrom)
	assert.Equal(t, "Shipping Policy", doc.Name)
	assert.Equal(t, "Ground shipping.", doc.Content)
	assert.Equal(t, path, doc.Metadata[MetaSource])
	assert.Equal(t, "dummy", doc.Metadata[MetaFormat])

	doc, err = Open("notes.TXT", strings.NewReader("From stdin."))
	require.NoError(t, err)
	assert.Equal(t, "reader", r.lastFrom)
	assert.Equal(t, "From stdin.", doc.Content)

	_, err = ReadFile(filepath.Join(t.TempDir(), "slides.pptx"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Open("noext", strings.NewReader(""))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dummy")
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "guide", BaseName("/docs/guide.md"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
	assert.Equal(t, "README", BaseName("README"))
}
