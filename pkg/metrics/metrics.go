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

package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/logger"
)

const (
	// Component labels.
	ComponentControlLoop = "control_loop"
	ComponentDeviceFSM   = "device_fsm"
	ComponentAcquisition = "acquisition"
	ComponentTransmitter = "transmitter"
	ComponentWatchdog    = "watchdog"
	ComponentConfig      = "config_manager"

	// Skip reasons for the transmit path.
	SkipReasonChecksum   = "checksum"
	SkipReasonEncode     = "encode"
	SkipReasonEncryption = "encryption"
	SkipReasonSend       = "send"

	// Failure reasons for the acquisition path.
	FailureReasonSensorFault   = "sensor_fault"
	FailureReasonOutOfRange    = "out_of_range"
	FailureReasonNotCalibrated = "not_calibrated"
)

var (
	// Namespace and subsystem for all metrics.
	namespace = "cgm"
	subsystem = "core"

	// Error counters.
	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "instance"},
	)

	// Cycle timing.
	cycleTime = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycle_duration_milliseconds",
			Help:      "Time taken to run one measurement cycle (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01, // 50th percentile with 1% error
				0.9:  0.01, // 90th percentile with 1% error
				0.95: 0.01, // 95th percentile with 1% error
				0.99: 0.01, // 99th percentile with 1% error
			},
		},
		[]string{"component", "instance"},
	)

	// Starvation timer.
	starvationSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycle_starved_total_seconds",
			Help:      "Total seconds the measurement loop was starved",
		},
	)

	// Alert counters by kind.
	alertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alerts_total",
			Help:      "Total number of clinical alerts emitted by kind",
		},
		[]string{"kind"},
	)

	// Acquisition failures by reason.
	acquisitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "acquisition_failures_total",
			Help:      "Total number of discarded samples by validation failure reason",
		},
		[]string{"reason"},
	)

	// Transmission accounting.
	recordsTransmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_transmitted_total",
			Help:      "Total number of records encrypted and sent successfully",
		},
	)

	recordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "records_skipped_total",
			Help:      "Total number of records skipped during transmission by reason",
		},
		[]string{"reason"},
	)

	// Gauges for the current physiological and device state.
	glucoseGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "glucose_mg_dl",
			Help:      "Last smoothed glucose concentration in mg/dL",
		},
	)

	batteryGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "battery_percent",
			Help:      "Last observed battery level in percent",
		},
	)

	historyOccupancy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_records",
			Help:      "Number of records currently held in the history store",
		},
	)

	samplingInterval = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sampling_interval_seconds",
			Help:      "Current sampling interval in seconds",
		},
	)
)

// SetupMetricsEndpoint starts an HTTP server to expose metrics
// This should be called once at application startup.
func SetupMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.For(logger.ComponentMetrics).Errorf("Metrics server failed: %v", err)
		}
	}()

	return server
}

// IncErrorCountAndLog increments the error counter for a component and logs a debug message if a logger is provided.
func IncErrorCountAndLog(component, instance string, err error, log *zap.SugaredLogger) {
	IncErrorCount(component, instance)

	if log != nil {
		log.Debugf("Component %s instance %s failed: %v", component, instance, err)
	}
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Inc()
}

// InitErrorCounter initializes the error counter for a component.
func InitErrorCounter(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Add(0)
}

// ObserveCycleTime records the time taken for one measurement cycle.
func ObserveCycleTime(component, instance string, duration time.Duration) {
	cycleTime.WithLabelValues(component, instance).Observe(float64(duration.Milliseconds()))
}

// AddStarvationTime increases the starvation counter by the specified seconds.
func AddStarvationTime(seconds float64) {
	starvationSeconds.Add(seconds)
}

// RecordAlert counts an emitted alert by kind.
func RecordAlert(kind string) {
	alertsTotal.WithLabelValues(kind).Inc()
}

// RecordAcquisitionFailure counts a discarded sample by reason.
func RecordAcquisitionFailure(reason string) {
	acquisitionFailures.WithLabelValues(reason).Inc()
}

// AddTransmittedRecords counts records that were encrypted and sent successfully.
func AddTransmittedRecords(n int) {
	recordsTransmitted.Add(float64(n))
}

// RecordSkippedRecord counts a record dropped from a transmit batch by reason.
func RecordSkippedRecord(reason string) {
	recordsSkipped.WithLabelValues(reason).Inc()
}

// SetGlucose updates the last smoothed glucose gauge.
func SetGlucose(mgDl float64) {
	glucoseGauge.Set(mgDl)
}

// SetBattery updates the battery level gauge.
func SetBattery(percent uint8) {
	batteryGauge.Set(float64(percent))
}

// SetHistoryOccupancy updates the history store occupancy gauge.
func SetHistoryOccupancy(records int) {
	historyOccupancy.Set(float64(records))
}

// SetSamplingInterval updates the sampling cadence gauge.
func SetSamplingInterval(interval time.Duration) {
	samplingInterval.Set(interval.Seconds())
}
