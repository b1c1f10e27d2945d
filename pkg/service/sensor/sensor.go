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

// Package sensor provides access to the glucose sensing element. The real
// device talks to an electrochemical sensor over an ADC; everything above
// this package only ever sees raw counts plus the die temperature.
package sensor

import (
	"context"
	"errors"
)

// ErrSensorFault indicates the sensing element returned an unusable reading
// or did not respond at all.
var ErrSensorFault = errors.New("sensor fault")

// Reading is one raw acquisition from the sensing element.
type Reading struct {
	// Raw is the uncompensated ADC value.
	Raw uint16

	// TemperatureC is the die temperature at sampling time, used for
	// temperature compensation during conversion.
	TemperatureC float64
}

// ISensorService is the interface for the glucose sensing element.
type ISensorService interface {
	// Read samples the sensing element once.
	Read(ctx context.Context) (Reading, error)

	// StartWarmup begins the sensor chemistry warmup phase. Readings taken
	// before the warmup deadline are not clinically valid.
	StartWarmup(ctx context.Context) error

	// IsCalibrated reports whether the sensor has a valid calibration.
	IsCalibrated() bool

	// SerialID returns the immutable hardware serial of the sensing element.
	SerialID() string
}
