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

// Package acquisition turns raw sensor readings into validated glucose
// values. A sample that fails any stage is discarded for the cycle; the
// loop carries on with the previous state.
package acquisition

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitalpatch/cgm-core/pkg/metrics"
	"github.com/vitalpatch/cgm-core/pkg/service/sensor"
)

var (
	// ErrNotCalibrated indicates the sensor has no valid calibration yet.
	ErrNotCalibrated = errors.New("sensor not calibrated")

	// ErrOutOfRange indicates a converted value outside the plausible
	// physiological range.
	ErrOutOfRange = errors.New("reading out of plausible range")
)

// Conversion coefficients from raw ADC counts to mg/dL. The scale maps the
// 12-bit ADC range onto 0..600 mg/dL; the temperature term corrects the
// electrochemical sensitivity drift around the 25C calibration point.
const (
	rawScale        = 600.0 / 4095.0
	tempCoefficient = 0.002
	tempReferenceC  = 25.0
)

// Sample is one validated acquisition, carrying both the converted glucose
// value and the raw inputs it came from.
type Sample struct {
	Raw          uint16
	GlucoseMgDl  float64
	TemperatureC float64
}

// Acquirer reads and validates one sample per measurement cycle.
type Acquirer struct {
	sensor sensor.ISensorService

	// Plausibility bounds for converted values, in mg/dL.
	minMgDl float64
	maxMgDl float64
}

// NewAcquirer creates an acquirer with the given plausibility bounds.
func NewAcquirer(sns sensor.ISensorService, minMgDl, maxMgDl float64) *Acquirer {
	return &Acquirer{
		sensor:  sns,
		minMgDl: minMgDl,
		maxMgDl: maxMgDl,
	}
}

// Acquire reads the sensor once and validates the result. The returned
// error wraps one of ErrNotCalibrated, ErrOutOfRange or
// sensor.ErrSensorFault so callers can classify the discard.
func (a *Acquirer) Acquire(ctx context.Context) (Sample, error) {
	if !a.sensor.IsCalibrated() {
		metrics.RecordAcquisitionFailure(metrics.FailureReasonNotCalibrated)

		return Sample{}, ErrNotCalibrated
	}

	reading, err := a.sensor.Read(ctx)
	if err != nil {
		metrics.RecordAcquisitionFailure(metrics.FailureReasonSensorFault)

		return Sample{}, fmt.Errorf("%w: %s", sensor.ErrSensorFault, err)
	}

	glucose := ConvertToGlucose(reading.Raw, reading.TemperatureC)

	if glucose < a.minMgDl || glucose > a.maxMgDl {
		metrics.RecordAcquisitionFailure(metrics.FailureReasonOutOfRange)

		return Sample{}, fmt.Errorf("%w: %.1f mg/dL", ErrOutOfRange, glucose)
	}

	return Sample{
		Raw:          reading.Raw,
		GlucoseMgDl:  glucose,
		TemperatureC: reading.TemperatureC,
	}, nil
}

// ConvertToGlucose maps a raw ADC reading to mg/dL with temperature
// compensation.
func ConvertToGlucose(raw uint16, temperatureC float64) float64 {
	compensation := 1.0 + tempCoefficient*(temperatureC-tempReferenceC)

	return float64(raw) * rawScale * compensation
}
