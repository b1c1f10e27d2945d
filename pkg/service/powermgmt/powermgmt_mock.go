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

package powermgmt

import (
	"context"
	"sync"
	"time"
)

// MockPowerService is a scriptable power unit for tests. Sleep returns
// immediately and records the requested durations so scheduling decisions
// can be asserted without waiting.
type MockPowerService struct {
	mu sync.Mutex

	// Level is the battery charge returned by BatteryLevel.
	Level uint8

	// Critical controls CriticalVoltage.
	Critical bool

	// SleepError, when set, is returned by every Sleep call.
	SleepError error

	// BlockSleep makes Sleep block until the context is cancelled, so tests
	// can observe the loop while it is parked.
	BlockSleep bool

	// SleepDurations records every requested sleep.
	SleepDurations []time.Duration

	EmergencyHaltCalled int
}

// NewMockPowerService creates a mock with a full battery.
func NewMockPowerService() *MockPowerService {
	return &MockPowerService{Level: 100}
}

func (m *MockPowerService) BatteryLevel() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Level
}

func (m *MockPowerService) CriticalVoltage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Critical
}

func (m *MockPowerService) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	m.SleepDurations = append(m.SleepDurations, d)
	sleepErr := m.SleepError
	block := m.BlockSleep
	m.mu.Unlock()

	if sleepErr != nil {
		return sleepErr
	}

	if block {
		<-ctx.Done()
	}

	return ctx.Err()
}

func (m *MockPowerService) EnterEmergencyHalt() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EmergencyHaltCalled++
}
