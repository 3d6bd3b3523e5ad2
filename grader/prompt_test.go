//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package grader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_Defaults(t *testing.T) {
	breakdown := "CHUNK 1:\nGround Shipping\nCost is $15.99.\n---"
	p, err := BuildPrompt(6, 5, breakdown, "RUBRIC TEXT", "Ground Shipping\nCost is $15.99.")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p.System, "You are a knowledge-base evaluator"))
	assert.Contains(t, p.System, `1. Split on: (?<=[.!?])\s+(?=[A-Z]) (punctuation + space + capital letter) OR \n+ (one or more newlines)`)
	assert.Contains(t, p.System, "3. Group into chunks of exactly 6 sentences (no overlap)")
	assert.Contains(t, p.System, "- A header on its own line + 5 content lines = 1 chunk (GOOD)")
	assert.Contains(t, p.System, "followed by 6+ content lines")
	assert.Contains(t, p.System, "Only 5 chunks are retrieved per query - if info spans 10+ chunks")
	assert.True(t, strings.HasSuffix(p.System, "return structured JSON feedback."))

	assert.True(t, strings.HasPrefix(p.User, "Evaluate this document against the rubric below"))
	assert.Contains(t, p.User, "ACTUAL CHUNK BREAKDOWN (how the AI Agent system will split this document):\n"+breakdown+"\n\nANALYZE THE CHUNKS ABOVE:")
	assert.Contains(t, p.User, "**CRITICAL: Only 5 chunks are retrieved from database per query**")
	assert.Contains(t, p.User, "RUBRIC (from Klaviyo Help):\nRUBRIC TEXT\n\nDOCUMENT TO EVALUATE:\n")
	assert.True(t, strings.HasSuffix(p.User, "DOCUMENT TO EVALUATE:\nGround Shipping\nCost is $15.99."))

	for _, s := range []string{p.System, p.User} {
		assert.NotContains(t, s, "{{")
		assert.NotContains(t, s, "<no value>")
	}
}

func TestBuildPrompt_CustomSizes(t *testing.T) {
	p, err := BuildPrompt(4, 3, "", "r", "d")
	require.NoError(t, err)
	assert.Contains(t, p.System, "exactly 4 sentences")
	assert.Contains(t, p.System, "+ 3 content lines")
	assert.Contains(t, p.System, "Only 3 chunks are retrieved per query - if info spans 6+ chunks")
	assert.Contains(t, p.User, "within 3-fragment limit")
}

func TestBuildPrompt_TemplateSyntaxInDocumentIsLiteral(t *testing.T) {
	doc := "Use {{.Rubric}} as a placeholder."
	p, err := BuildPrompt(6, 5, "", "RUBRIC", doc)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p.User, doc))
}
