//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"strings"
	"unicode/utf8"
)

// SplitSentences breaks text into the sentence units used by the retrieval
// system. A boundary is either
//
//   - a whitespace run preceded by '.', '!' or '?' and followed by an ASCII
//     capital letter, or
//   - a run of '\n' characters.
//
// Both runs are dropped, so the punctuation stays with the preceding sentence
// and the next sentence starts at the capital letter. Every segment is trimmed
// and blank segments are discarded. Abbreviations, decimals and non-Latin
// scripts get no special treatment.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	var prev rune
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])

		if isTerminal(prev) && isSpace(r) {
			if end := skipSpace(text, i); end < len(text) && isUpper(text[end]) {
				sentences = appendSentence(sentences, text[start:i])
				start, i, prev = end, end, ' '
				continue
			}
		}

		if r == '\n' {
			end := i
			for end < len(text) && text[end] == '\n' {
				end++
			}
			sentences = appendSentence(sentences, text[start:i])
			start, i, prev = end, end, '\n'
			continue
		}

		prev = r
		i += size
	}
	return appendSentence(sentences, text[start:])
}

func appendSentence(sentences []string, segment string) []string {
	if s := strings.TrimFunc(segment, isSpace); s != "" {
		return append(sentences, s)
	}
	return sentences
}

// skipSpace returns the index of the first non-whitespace rune at or after i.
func skipSpace(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isSpace(r) {
			break
		}
		i += size
	}
	return i
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// isSpace matches the ECMAScript whitespace class the retrieval system uses.
// It differs from unicode.IsSpace: U+FEFF is whitespace, U+0085 is not.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
