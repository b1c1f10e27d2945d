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

package sensor

import (
	"context"
	"sync"
)

// MockSensorService is a scriptable sensor for tests. Readings are consumed
// from the queue in order; when the queue is empty the last reading repeats.
type MockSensorService struct {
	mu sync.Mutex

	// Readings is the scripted queue of readings to return.
	Readings []Reading

	// ReadError, when set, is returned by every Read call.
	ReadError error

	// ReadHook, when set, runs at the start of every Read call. Tests use it
	// to inject mid-cycle events such as context cancellation.
	ReadHook func()

	// WarmupError, when set, is returned by StartWarmup.
	WarmupError error

	// Calibrated controls IsCalibrated.
	Calibrated bool

	// Serial is the reported hardware serial.
	Serial string

	// Call counters.
	ReadCalled        int
	StartWarmupCalled int

	last Reading
}

// NewMockSensorService creates a calibrated mock with no scripted readings.
func NewMockSensorService() *MockSensorService {
	return &MockSensorService{
		Calibrated: true,
		Serial:     "MOCK-0001",
	}
}

func (m *MockSensorService) Read(ctx context.Context) (Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadCalled++

	if m.ReadHook != nil {
		m.ReadHook()
	}

	if m.ReadError != nil {
		return Reading{}, m.ReadError
	}

	if len(m.Readings) > 0 {
		m.last = m.Readings[0]
		m.Readings = m.Readings[1:]
	}

	return m.last, nil
}

func (m *MockSensorService) StartWarmup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartWarmupCalled++

	return m.WarmupError
}

func (m *MockSensorService) IsCalibrated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Calibrated
}

func (m *MockSensorService) SerialID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Serial
}
