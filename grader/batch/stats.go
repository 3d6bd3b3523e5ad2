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

package batch

import (
	"github.com/klaviyo/knowledge-grader/grader"
	"github.com/klaviyo/knowledge-grader/log"
)

// Stats summarizes the grades of a batch.
type Stats struct {
	Graded   int            `json:"graded"`
	Failed   int            `json:"failed"`
	MinGrade int            `json:"minGrade"`
	MaxGrade int            `json:"maxGrade"`
	Sum      int            `json:"-"`
	Bands    map[string]int `json:"bands"`
}

func newStats() *Stats {
	return &Stats{Bands: make(map[string]int)}
}

// Add records one grade.
func (s *Stats) Add(grade int) {
	if s.Graded == 0 || grade < s.MinGrade {
		s.MinGrade = grade
	}
	if grade > s.MaxGrade {
		s.MaxGrade = grade
	}
	s.Graded++
	s.Sum += grade
	s.Bands[grader.BandFor(grade).Label]++
}

// Avg returns the mean grade, or 0 when nothing was graded.
func (s *Stats) Avg() float64 {
	if s.Graded == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Graded)
}

// Log outputs the collected statistics.
func (s *Stats) Log() {
	log.Infof("Grade statistics - graded: %d, failed: %d, avg: %.1f, min: %d, max: %d",
		s.Graded, s.Failed, s.Avg(), s.MinGrade, s.MaxGrade)
	for _, band := range grader.Bands() {
		if n := s.Bands[band.Label]; n > 0 {
			log.Infof("  %s: %d document(s)", band.Label, n)
		}
	}
}
