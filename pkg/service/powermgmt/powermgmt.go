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

// Package powermgmt provides battery monitoring and low power sleep. On
// real hardware Sleep drops the SoC into a low power state; here it maps
// onto an interruptible timer so the control loop behaves identically.
package powermgmt

import (
	"context"
	"time"
)

// IPowerService is the interface for the power management unit.
type IPowerService interface {
	// BatteryLevel returns the current charge in percent.
	BatteryLevel() uint8

	// CriticalVoltage reports whether the supply voltage is below the
	// level at which continued operation risks data corruption.
	CriticalVoltage() bool

	// Sleep parks the device until the duration elapses or the context is
	// cancelled, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error

	// EnterEmergencyHalt powers down everything except the fault beacon.
	// It does not return an error because at this point there is nothing
	// left to recover.
	EnterEmergencyHalt()
}
