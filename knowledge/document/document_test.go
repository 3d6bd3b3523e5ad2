//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	doc := New("shipping  policy", "Ground Shipping")
	assert.Regexp(t, `^shipping_policy_[0-9a-f]{8}$`, doc.ID)
	assert.Equal(t, "shipping  policy", doc.Name)
	assert.Equal(t, "Ground Shipping", doc.Content)
	assert.NotNil(t, doc.Metadata)
	assert.WithinDuration(t, time.Now(), doc.CreatedAt, time.Minute)

	assert.NotEqual(t, doc.ID, New("shipping  policy", "").ID)
}

func TestGenerateID_Unnamed(t *testing.T) {
	for _, name := range []string{"", "  ", "\t\n"} {
		assert.Regexp(t, `^doc_[0-9a-f]{8}$`, GenerateID(name))
	}
}

func TestDocument_IsEmpty(t *testing.T) {
	var nilDoc *Document
	assert.True(t, nilDoc.IsEmpty())
	assert.True(t, (&Document{}).IsEmpty())
	assert.True(t, (&Document{Content: " \n\t "}).IsEmpty())
	assert.False(t, (&Document{Content: "Return Policy"}).IsEmpty())
}

func TestDocument_Clone(t *testing.T) {
	original := New("faq", "Tracking is included.")
	original.Metadata["source"] = "faq.md"

	clone := original.Clone()
	require.NotSame(t, original, clone)
	assert.Equal(t, original, clone)

	clone.Metadata["source"] = "other.md"
	clone.Content = "changed"
	assert.Equal(t, "faq.md", original.Metadata["source"])
	assert.Equal(t, "Tracking is included.", original.Content)

	bare := (&Document{ID: "x"}).Clone()
	assert.Nil(t, bare.Metadata)
}
