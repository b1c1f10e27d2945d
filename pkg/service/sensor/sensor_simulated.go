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
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimulatedSensor produces a plausible glucose trace without hardware. The
// raw signal follows a slow sinusoid around a mid-range baseline with a
// little noise on top, which is enough to exercise smoothing, alerting and
// cadence switching end to end.
type SimulatedSensor struct {
	mu         sync.Mutex
	start      time.Time
	serial     string
	calibrated bool
	rng        *rand.Rand
}

// NewSimulatedSensor creates a calibrated simulated sensing element.
func NewSimulatedSensor(serial string) *SimulatedSensor {
	return &SimulatedSensor{
		start:      time.Now(),
		serial:     serial,
		calibrated: true,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimulatedSensor) Read(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Roughly a two hour period around 120 mg/dL equivalent raw counts.
	elapsed := time.Since(s.start).Seconds()
	base := 820.0 + 240.0*math.Sin(2*math.Pi*elapsed/7200.0)
	noise := s.rng.Float64()*20.0 - 10.0

	raw := base + noise
	if raw < 0 {
		raw = 0
	}

	return Reading{
		Raw:          uint16(raw),
		TemperatureC: 33.5 + s.rng.Float64()*1.5,
	}, nil
}

func (s *SimulatedSensor) StartWarmup(ctx context.Context) error {
	return ctx.Err()
}

func (s *SimulatedSensor) IsCalibrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calibrated
}

func (s *SimulatedSensor) SerialID() string {
	return s.serial
}
