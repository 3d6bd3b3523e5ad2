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
	"maps"
	"slices"
	"strings"
	"sync"
)

// Constructor creates a Reader.
type Constructor func() Reader

// entry builds its reader at most once.
type entry struct {
	get func() Reader
}

func newEntry(c Constructor) *entry {
	return &entry{get: sync.OnceValue(func() Reader { return c() })}
}

var (
	mu      sync.RWMutex
	entries = map[string]*entry{}
)

// Register binds a constructor to file extensions such as ".pdf" or "md".
// Matching ignores case. A later registration for the same extension wins.
func Register(extensions []string, c Constructor) {
	mu.Lock()
	defer mu.Unlock()
	for _, ext := range extensions {
		entries[normalizeExt(ext)] = newEntry(c)
	}
}

// Lookup returns the reader for extension, constructing it on first use.
func Lookup(extension string) (Reader, bool) {
	mu.RLock()
	e, ok := entries[normalizeExt(extension)]
	mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.get(), true
}

// Extensions lists the registered extensions in sorted order.
func Extensions() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(entries))
}

// Reset drops every registration.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	clear(entries)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
