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
	"fmt"
	"time"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"

	"github.com/vitalpatch/cgm-core/pkg/constants"
)

// Duration wraps time.Duration so config files can say "5m" or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	d.Duration = parsed

	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// FullConfig is the complete device configuration.
type FullConfig struct {
	Device   DeviceConfig   `yaml:"device"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Transmit TransmitConfig `yaml:"transmit"`
}

// DeviceConfig holds settings for the device shell around the loop.
type DeviceConfig struct {
	// MetricsPort is where prometheus metrics are exposed.
	MetricsPort int `yaml:"metricsPort"`

	// StatusPort is where the read-only status API listens.
	StatusPort int `yaml:"statusPort"`

	// StatusAPIEnabled toggles the status API entirely.
	StatusAPIEnabled bool `yaml:"statusApiEnabled"`
}

// MonitorConfig holds the measurement loop settings.
type MonitorConfig struct {
	// BaselineInterval is the sampling cadence under normal readings.
	BaselineInterval Duration `yaml:"baselineInterval"`

	// AcceleratedInterval is the sampling cadence while glucose is low.
	AcceleratedInterval Duration `yaml:"acceleratedInterval"`

	// WarmupDuration is how long after startup readings are discarded.
	WarmupDuration Duration `yaml:"warmupDuration"`

	// SmoothingWindow is the rolling mean window size in samples.
	SmoothingWindow int `yaml:"smoothingWindow"`

	// HistoryCapacity is the number of records the history store retains.
	HistoryCapacity int `yaml:"historyCapacity"`

	// GlucoseMinMgDl and GlucoseMaxMgDl bound physiologically plausible
	// readings. Values outside are discarded as sensor faults.
	GlucoseMinMgDl float64 `yaml:"glucoseMinMgDl"`
	GlucoseMaxMgDl float64 `yaml:"glucoseMaxMgDl"`
}

// AlertsConfig holds the clinical alert thresholds.
type AlertsConfig struct {
	// LowGlucoseMgDl triggers a low glucose alert when readings fall below.
	LowGlucoseMgDl float64 `yaml:"lowGlucoseMgDl"`

	// HighGlucoseMgDl triggers a high glucose alert when readings exceed.
	HighGlucoseMgDl float64 `yaml:"highGlucoseMgDl"`

	// RateMgDlPerMin triggers a rapid change alert when the absolute rate
	// of change strictly exceeds this value.
	RateMgDlPerMin float64 `yaml:"rateMgDlPerMin"`

	// LowBatteryPercent triggers a low battery alert at or below.
	LowBatteryPercent uint8 `yaml:"lowBatteryPercent"`
}

// TransmitConfig holds the transmission settings.
type TransmitConfig struct {
	// BatchSize is the maximum number of records sent per cycle.
	BatchSize int `yaml:"batchSize"`
}

// DefaultConfig returns the factory configuration.
func DefaultConfig() FullConfig {
	return FullConfig{
		Device: DeviceConfig{
			MetricsPort:      constants.DefaultMetricsPort,
			StatusPort:       constants.DefaultStatusPort,
			StatusAPIEnabled: true,
		},
		Monitor: MonitorConfig{
			BaselineInterval:    Duration{constants.DefaultBaselineInterval},
			AcceleratedInterval: Duration{constants.DefaultAcceleratedInterval},
			WarmupDuration:      Duration{constants.DefaultWarmupDuration},
			SmoothingWindow:     constants.DefaultSmoothingWindow,
			HistoryCapacity:     constants.DefaultHistoryCapacity,
			GlucoseMinMgDl:      constants.DefaultGlucoseMinMgDl,
			GlucoseMaxMgDl:      constants.DefaultGlucoseMaxMgDl,
		},
		Alerts: AlertsConfig{
			LowGlucoseMgDl:    constants.DefaultLowGlucoseMgDl,
			HighGlucoseMgDl:   constants.DefaultHighGlucoseMgDl,
			RateMgDlPerMin:    constants.DefaultRateMgDlPerMin,
			LowBatteryPercent: constants.DefaultLowBatteryPercent,
		},
		Transmit: TransmitConfig{
			BatchSize: constants.DefaultTransmitBatchSize,
		},
	}
}

// Clone returns a deep copy of the config so callers can mutate their copy
// without racing the manager's cached version.
func (c FullConfig) Clone() FullConfig {
	var clone FullConfig
	if err := deepcopy.Copy(&clone, &c); err != nil {
		// The config is a tree of plain values; copying cannot fail.
		return c
	}

	return clone
}

// Validate checks the configuration for values the loop cannot run with.
func (c FullConfig) Validate() error {
	if c.Monitor.BaselineInterval.Duration <= 0 {
		return fmt.Errorf("baseline interval must be positive, got %s", c.Monitor.BaselineInterval)
	}

	if c.Monitor.AcceleratedInterval.Duration <= 0 {
		return fmt.Errorf("accelerated interval must be positive, got %s", c.Monitor.AcceleratedInterval)
	}

	if c.Monitor.AcceleratedInterval.Duration > c.Monitor.BaselineInterval.Duration {
		return fmt.Errorf("accelerated interval %s must not exceed baseline interval %s",
			c.Monitor.AcceleratedInterval, c.Monitor.BaselineInterval)
	}

	if c.Monitor.SmoothingWindow < 1 {
		return fmt.Errorf("smoothing window must be at least 1, got %d", c.Monitor.SmoothingWindow)
	}

	if c.Monitor.HistoryCapacity < 1 {
		return fmt.Errorf("history capacity must be at least 1, got %d", c.Monitor.HistoryCapacity)
	}

	if c.Monitor.GlucoseMinMgDl >= c.Monitor.GlucoseMaxMgDl {
		return fmt.Errorf("glucose range [%f, %f] is empty",
			c.Monitor.GlucoseMinMgDl, c.Monitor.GlucoseMaxMgDl)
	}

	if c.Alerts.LowGlucoseMgDl >= c.Alerts.HighGlucoseMgDl {
		return fmt.Errorf("low glucose threshold %f must be below high threshold %f",
			c.Alerts.LowGlucoseMgDl, c.Alerts.HighGlucoseMgDl)
	}

	if c.Alerts.RateMgDlPerMin <= 0 {
		return fmt.Errorf("rate threshold must be positive, got %f", c.Alerts.RateMgDlPerMin)
	}

	if c.Transmit.BatchSize < 1 {
		return fmt.Errorf("transmit batch size must be at least 1, got %d", c.Transmit.BatchSize)
	}

	return nil
}

// ParseConfig unmarshals a YAML document into a FullConfig on top of the
// factory defaults, so partial config files only override what they name.
func ParseConfig(data []byte) (FullConfig, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FullConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return FullConfig{}, err
	}

	return cfg, nil
}
