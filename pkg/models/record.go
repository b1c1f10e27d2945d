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

package models

import (
	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

// MeasurementRecord is one validated, smoothed glucose sample together with
// the device vitals captured in the same cycle. Records are value types; the
// history store copies them on the way in and on the way out.
type MeasurementRecord struct {
	// Timestamp is the monotonic device tick, in milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Raw is the uncompensated ADC reading the glucose value was derived from.
	Raw uint16 `json:"raw"`

	// GlucoseMgDl is the smoothed glucose concentration in mg/dL.
	GlucoseMgDl float64 `json:"glucoseMgDl"`

	// TemperatureC is the sensor temperature used for compensation.
	TemperatureC float64 `json:"temperatureC"`

	// BatteryLevel is the battery charge in percent at capture time.
	BatteryLevel uint8 `json:"batteryLevel"`

	// Checksum is an integrity tag over the canonical encoding of the record
	// with this field zeroed. Records failing verification are never sent.
	Checksum uint64 `json:"checksum"`
}

// ComputeChecksum returns the integrity tag for the record contents,
// ignoring the current Checksum field.
func (r MeasurementRecord) ComputeChecksum() uint64 {
	r.Checksum = 0

	data, err := json.Marshal(r)
	if err != nil {
		// Marshalling a flat struct of scalars cannot fail.
		return 0
	}

	return xxhash.Sum64(data)
}

// Seal stamps the record with its integrity tag. Must be called after the
// last field mutation and before the record enters the history store.
func (r *MeasurementRecord) Seal() {
	r.Checksum = r.ComputeChecksum()
}

// Verify reports whether the record still matches its integrity tag.
func (r MeasurementRecord) Verify() bool {
	return r.Checksum == r.ComputeChecksum()
}

// Encode renders the record as its canonical wire form, ready for
// encryption.
func (r MeasurementRecord) Encode() ([]byte, error) {
	return json.Marshal(r)
}
