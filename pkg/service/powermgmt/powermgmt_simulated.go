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

	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/logger"
)

// SimulatedPower models a slowly draining battery. Sleep is a plain timer
// wait; EnterEmergencyHalt only logs, since there is no hardware to park.
type SimulatedPower struct {
	mu    sync.Mutex
	start time.Time

	// drainPerHour is the simulated discharge rate in percent per hour.
	drainPerHour float64

	log *zap.SugaredLogger
}

// NewSimulatedPower creates a full battery draining at the given rate.
func NewSimulatedPower(drainPerHour float64) *SimulatedPower {
	return &SimulatedPower{
		start:        time.Now(),
		drainPerHour: drainPerHour,
		log:          logger.For(logger.ComponentPower),
	}
}

func (p *SimulatedPower) BatteryLevel() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()

	drained := time.Since(p.start).Hours() * p.drainPerHour

	level := 100.0 - drained
	if level < 0 {
		level = 0
	}

	return uint8(level)
}

func (p *SimulatedPower) CriticalVoltage() bool {
	return p.BatteryLevel() == 0
}

func (p *SimulatedPower) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *SimulatedPower) EnterEmergencyHalt() {
	p.log.Error("Emergency halt requested, powering down")
}
