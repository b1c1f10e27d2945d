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

// Package device implements the power state machine of the monitor. The
// device alternates between an active measurement phase and a low power
// waiting phase; unrecoverable faults move it into a terminal emergency
// state.
package device

import (
	"context"

	"github.com/looplab/fsm"

	internalfsm "github.com/vitalpatch/cgm-core/internal/fsm"
	"github.com/vitalpatch/cgm-core/pkg/logger"
)

// Device states.
const (
	// StateActive is the measurement phase: acquire, evaluate, transmit.
	StateActive = "active"

	// StateWaiting is the low power phase between measurement cycles.
	StateWaiting = "waiting"

	// StateEmergency is the terminal fault state. No transitions leave it.
	StateEmergency = "emergency"
)

// Device events.
const (
	// EventCycleStart wakes the device for a measurement cycle.
	EventCycleStart = "cycle_start"

	// EventCycleDone parks the device until the next wake time.
	EventCycleDone = "cycle_done"

	// EventCriticalFault moves the device into the emergency state.
	EventCriticalFault = "critical_fault"
)

// DeviceFSM tracks the power state of the monitor.
type DeviceFSM struct {
	base *internalfsm.BaseFSMInstance
}

// NewDeviceFSM creates the device power state machine, starting in the
// waiting state.
func NewDeviceFSM(id string) *DeviceFSM {
	log := logger.For(logger.ComponentDeviceFSM)

	base := internalfsm.NewBaseFSMInstance(internalfsm.BaseFSMInstanceConfig{
		ID:           id,
		InitialState: StateWaiting,
		Transitions: []fsm.EventDesc{
			{Name: EventCycleStart, Src: []string{StateWaiting}, Dst: StateActive},
			{Name: EventCycleDone, Src: []string{StateActive}, Dst: StateWaiting},
			{Name: EventCriticalFault, Src: []string{StateActive, StateWaiting}, Dst: StateEmergency},
		},
	}, log)

	d := &DeviceFSM{base: base}
	d.registerCallbacks()

	return d
}

// BeginCycle transitions waiting -> active.
func (d *DeviceFSM) BeginCycle(ctx context.Context) error {
	return d.base.SendEvent(ctx, EventCycleStart)
}

// FinishCycle transitions active -> waiting.
func (d *DeviceFSM) FinishCycle(ctx context.Context) error {
	return d.base.SendEvent(ctx, EventCycleDone)
}

// Fault moves the device into the terminal emergency state.
func (d *DeviceFSM) Fault(ctx context.Context) error {
	return d.base.SendEvent(ctx, EventCriticalFault)
}

// Current returns the current device state.
func (d *DeviceFSM) Current() string {
	return d.base.GetCurrentFSMState()
}

// InEmergency reports whether the device has reached the terminal state.
func (d *DeviceFSM) InEmergency() bool {
	return d.base.GetCurrentFSMState() == StateEmergency
}

// SetError records a transition error; returns true on permanent failure.
func (d *DeviceFSM) SetError(err error, tick uint64) bool {
	return d.base.SetError(err, tick)
}

// ClearError resets the error and backoff state after a clean cycle.
func (d *DeviceFSM) ClearError() {
	d.base.ClearError()
}
