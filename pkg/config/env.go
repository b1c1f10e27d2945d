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

package config

import (
	"github.com/vitalpatch/cgm-core/pkg/env"
)

// ApplyEnvOverrides layers CGM_* environment variables on top of the file
// configuration. Unset or unparseable variables leave the file value
// untouched; none of the lookups are required, so they cannot error.
func ApplyEnvOverrides(cfg FullConfig) FullConfig {
	cfg.Device.MetricsPort, _ = env.GetAsInt("CGM_METRICS_PORT", false, cfg.Device.MetricsPort)
	cfg.Device.StatusPort, _ = env.GetAsInt("CGM_STATUS_PORT", false, cfg.Device.StatusPort)
	cfg.Device.StatusAPIEnabled, _ = env.GetAsBool("CGM_STATUS_API_ENABLED", false, cfg.Device.StatusAPIEnabled)

	cfg.Monitor.BaselineInterval.Duration, _ = env.GetAsDuration("CGM_BASELINE_INTERVAL", false, cfg.Monitor.BaselineInterval.Duration)
	cfg.Monitor.AcceleratedInterval.Duration, _ = env.GetAsDuration("CGM_ACCELERATED_INTERVAL", false, cfg.Monitor.AcceleratedInterval.Duration)
	cfg.Monitor.WarmupDuration.Duration, _ = env.GetAsDuration("CGM_WARMUP_DURATION", false, cfg.Monitor.WarmupDuration.Duration)
	cfg.Monitor.SmoothingWindow, _ = env.GetAsInt("CGM_SMOOTHING_WINDOW", false, cfg.Monitor.SmoothingWindow)
	cfg.Monitor.HistoryCapacity, _ = env.GetAsInt("CGM_HISTORY_CAPACITY", false, cfg.Monitor.HistoryCapacity)

	cfg.Alerts.LowGlucoseMgDl, _ = env.GetAsFloat("CGM_LOW_GLUCOSE_MG_DL", false, cfg.Alerts.LowGlucoseMgDl)
	cfg.Alerts.HighGlucoseMgDl, _ = env.GetAsFloat("CGM_HIGH_GLUCOSE_MG_DL", false, cfg.Alerts.HighGlucoseMgDl)
	cfg.Alerts.RateMgDlPerMin, _ = env.GetAsFloat("CGM_RATE_MG_DL_PER_MIN", false, cfg.Alerts.RateMgDlPerMin)

	cfg.Transmit.BatchSize, _ = env.GetAsInt("CGM_TRANSMIT_BATCH_SIZE", false, cfg.Transmit.BatchSize)

	return cfg
}
