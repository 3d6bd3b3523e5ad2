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
	"time"

	"github.com/klaviyo/knowledge-grader/log"
)

const (
	// chanBufferSize is the default buffer size for the event channel.
	chanBufferSize = 1024
	// heartbeatInterval defines how often a heartbeat message is emitted
	// while documents are still being graded.
	heartbeatInterval = 30 * time.Second
)

// event is emitted every time a document finishes.
type event struct {
	name  string
	grade int
	err   error
}

// aggregator owns the batch statistics so workers only send events.
type aggregator struct {
	events chan event
	done   chan struct{}
	stats  *Stats
}

func newAggregator(total int, showProgress bool, step int) *aggregator {
	ag := &aggregator{
		events: make(chan event, chanBufferSize),
		done:   make(chan struct{}),
		stats:  newStats(),
	}
	if step <= 0 {
		step = 1
	}

	go func() {
		defer close(ag.done)

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		processed := 0
		for {
			select {
			case ev, ok := <-ag.events:
				if !ok {
					return
				}
				processed++
				if ev.err != nil {
					ag.stats.Failed++
					log.Warnf("Failed to grade %s: %v", ev.name, ev.err)
				} else {
					ag.stats.Add(ev.grade)
				}
				if showProgress && (processed%step == 0 || processed == total) {
					log.Infof("Graded %d/%d document(s)", processed, total)
				}
			case <-ticker.C:
				if showProgress {
					log.Infof("Batch is still running, waiting for the oracle")
				}
			}
		}
	}()
	return ag
}

// Close blocks until every event is consumed and returns the statistics.
func (a *aggregator) Close() *Stats {
	close(a.events)
	<-a.done
	return a.stats
}
