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

package constants

import "time"

const (
	// MinProcessingSlice is the lower clamp on the computed sleep duration.
	// Sleeping for at least this long guarantees the loop never busy-spins,
	// while keeping a due measurement from being missed.
	MinProcessingSlice = 100 * time.Millisecond

	// WatchdogThreshold defines when to consider the control loop starved.
	// If no cycle has completed for this duration, the watchdog logs warnings
	// and records metrics. Three baseline intervals of headroom.
	WatchdogThreshold = 15 * time.Minute

	// WatchdogCheckInterval is how often the background watchdog wakes up to
	// compare the last cycle timestamp against the threshold.
	WatchdogCheckInterval = 10 * time.Second

	// PairingPollInterval is how often the wake watcher checks the radio for
	// a pending pairing request while the loop is asleep.
	PairingPollInterval = 1 * time.Second

	// ExpectedMaxP95ExecutionTimePerEvent bounds a single FSM transition.
	// SendEvent refuses to start a transition with less context lifetime than
	// this, to avoid leaving the machine mid-transition on expiry.
	ExpectedMaxP95ExecutionTimePerEvent = 10 * time.Millisecond

	// DefaultInstanceName is the default name for the device FSM instance.
	DefaultInstanceName = "Core"

	// DefaultMetricsPort is the port the /metrics endpoint listens on.
	DefaultMetricsPort = 8080

	// DefaultStatusPort is the port the read-only status API listens on.
	DefaultStatusPort = 8081

	// DefaultConfigPath is where the device configuration file lives.
	DefaultConfigPath = "/data/config.yaml"

	// DefaultAppVersion is the version reported when the binary was not built
	// with version ldflags (local development builds).
	DefaultAppVersion = "0.0.0-dev"

	// DefaultDevelopmentEnvironment and DefaultProductionEnvironment name the
	// fault-reporting environments.
	DefaultDevelopmentEnvironment = "development"
	DefaultProductionEnvironment  = "production"
)
