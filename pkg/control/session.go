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

package control

import (
	"time"

	"github.com/tiendc/go-deepcopy"
)

// Session is the mutable per-wear state of the monitor. It lives for one
// sensor session, from insertion to removal, and is owned exclusively by
// the control loop; other components read it via SessionSnapshot.
type Session struct {
	// ID identifies this wear session in logs and status output.
	ID string

	// SamplingInterval is the current cadence between measurement cycles.
	SamplingInterval time.Duration

	// NextWakeTick is the device tick (ms) of the next scheduled cycle.
	NextWakeTick int64

	// WarmupDeadlineTick is the device tick (ms) before which readings are
	// discarded as chemically invalid.
	WarmupDeadlineTick int64

	// LastSampleTick is the tick of the last accepted sample, used for
	// rate of change computation across cycles.
	LastSampleTick int64

	// LastSmoothed and PrevSmoothed are the two most recent smoothed
	// values, nil until produced.
	LastSmoothed *float64
	PrevSmoothed *float64

	// LastBattery is the battery level observed in the last cycle.
	LastBattery uint8

	// CyclesRun counts completed measurement cycles.
	CyclesRun uint64
}

// Snapshot returns a deep copy of the session for readers outside the
// loop goroutine.
func (s *Session) Snapshot() Session {
	var snap Session
	if err := deepcopy.Copy(&snap, s); err != nil {
		// Session is a tree of plain values and pointers to floats;
		// copying cannot fail.
		return *s
	}

	return snap
}
