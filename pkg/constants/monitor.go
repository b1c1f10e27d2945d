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
	// DefaultBaselineInterval is the normal time between glucose measurements.
	DefaultBaselineInterval = 5 * time.Minute

	// DefaultAcceleratedInterval is the shortened sampling period used after a
	// low-glucose alert, when readings are time-critical.
	DefaultAcceleratedInterval = 30 * time.Second

	// DefaultWarmupDuration is how long the electrochemical sensor needs after
	// power-on before readings are usable.
	DefaultWarmupDuration = 60 * time.Second

	// DefaultHistoryCapacity is the number of records the on-device ring holds.
	// 1440 records is 24 hours of data at one measurement per minute.
	DefaultHistoryCapacity = 1440

	// DefaultSmoothingWindow is the number of raw glucose values averaged into
	// one smoothed reading.
	DefaultSmoothingWindow = 3

	// DefaultTransmitBatchSize is the maximum number of records sent per cycle
	// while the link is up.
	DefaultTransmitBatchSize = 10

	// DefaultLowGlucoseMgDl is the hypoglycemia alert threshold.
	DefaultLowGlucoseMgDl = 70.0

	// DefaultHighGlucoseMgDl is the hyperglycemia alert threshold.
	DefaultHighGlucoseMgDl = 250.0

	// DefaultRateMgDlPerMin is the rapid-change alert threshold. The check is
	// strict: a rate of exactly this value does not fire.
	DefaultRateMgDlPerMin = 3.0

	// DefaultGlucoseMinMgDl and DefaultGlucoseMaxMgDl bound the plausible
	// concentration band; readings outside are discarded as invalid.
	DefaultGlucoseMinMgDl = 20.0
	DefaultGlucoseMaxMgDl = 600.0

	// DefaultLowBatteryPercent is the battery level at or below which a
	// LowBattery alert is raised.
	DefaultLowBatteryPercent = 15
)
