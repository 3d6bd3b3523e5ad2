//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package grader

// Band is a named grade range shown next to a score.
type Band struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

var bands = []struct {
	min  int
	band Band
}{
	{90, Band{Label: "Outstanding Quality", Message: "Your content is optimized for AI retrieval"}},
	{80, Band{Label: "Excellent", Message: "Minor improvements recommended"}},
	{70, Band{Label: "Good", Message: "Some optimizations recommended"}},
	{60, Band{Label: "Fair", Message: "Several improvements needed"}},
}

var lowest = Band{Label: "Needs Improvement", Message: "Significant improvements needed"}

// Bands lists every band from highest to lowest.
func Bands() []Band {
	out := make([]Band, 0, len(bands)+1)
	for _, b := range bands {
		out = append(out, b.band)
	}
	return append(out, lowest)
}

// BandFor maps a grade to its band.
func BandFor(grade int) Band {
	for _, b := range bands {
		if grade >= b.min {
			return b.band
		}
	}
	return lowest
}
