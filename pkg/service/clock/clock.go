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

// Package clock abstracts the device tick source so that cycle scheduling
// and record timestamps can be driven deterministically in tests.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock provides the monotonic device tick in milliseconds.
type Clock interface {
	// NowTick returns the current device tick in milliseconds. Ticks are
	// monotonic and start near zero at device boot.
	NowTick() int64
}

// SystemClock derives ticks from the process monotonic clock.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock creates a clock whose tick zero is the moment of creation.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

func (c *SystemClock) NowTick() int64 {
	return time.Since(c.epoch).Milliseconds()
}

// MockClock is an advanceable tick source for tests.
type MockClock struct {
	tick atomic.Int64
}

// NewMockClock creates a mock clock starting at the given tick.
func NewMockClock(startTick int64) *MockClock {
	c := &MockClock{}
	c.tick.Store(startTick)

	return c
}

func (c *MockClock) NowTick() int64 {
	return c.tick.Load()
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.tick.Add(d.Milliseconds())
}

// SetTick pins the clock to an absolute tick.
func (c *MockClock) SetTick(tick int64) {
	c.tick.Store(tick)
}
