// Copyright 2025 VitalPatch Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package watchdog detects a stalled measurement loop. A device that
// silently stops sampling is worse than one that crashes, so a loop that
// has not completed a cycle within the threshold is reported loudly.
package watchdog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/constants"
	"github.com/vitalpatch/cgm-core/pkg/logger"
	"github.com/vitalpatch/cgm-core/pkg/metrics"
	"github.com/vitalpatch/cgm-core/pkg/sentry"
)

// CycleWatchdog monitors the time since the last completed measurement
// cycle from a background goroutine.
type CycleWatchdog struct {
	// threshold is the stall duration after which the loop is reported.
	threshold time.Duration

	// checkInterval is how often the background goroutine checks.
	checkInterval time.Duration

	// lastCycleTime holds the UnixNano of the last completed cycle.
	lastCycleTime atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.SugaredLogger
}

// NewCycleWatchdog creates and starts a watchdog. The first check window
// starts at creation time.
func NewCycleWatchdog(ctx context.Context) *CycleWatchdog {
	w := &CycleWatchdog{
		threshold:     constants.WatchdogThreshold,
		checkInterval: constants.WatchdogCheckInterval,
		log:           logger.For(logger.ComponentWatchdog),
	}

	w.lastCycleTime.Store(time.Now().UnixNano())

	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run(ctx)

	return w
}

// UpdateLastCycleTime marks the completion of a measurement cycle.
func (w *CycleWatchdog) UpdateLastCycleTime() {
	w.lastCycleTime.Store(time.Now().UnixNano())
}

// Stop terminates the background goroutine and waits for it to exit.
func (w *CycleWatchdog) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *CycleWatchdog) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *CycleWatchdog) check() {
	last := time.Unix(0, w.lastCycleTime.Load())

	stalled := time.Since(last)
	if stalled <= w.threshold {
		return
	}

	metrics.AddStarvationTime(w.checkInterval.Seconds())

	sentry.ReportIssuef(sentry.IssueTypeWarning, w.log,
		"Measurement loop has not completed a cycle for %s (threshold %s)",
		stalled.Round(time.Second), w.threshold)
}
