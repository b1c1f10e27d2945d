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
	"github.com/goccy/go-json"
)

// AlertKind identifies the clinical or device condition behind an alert.
type AlertKind string

const (
	AlertLowGlucose  AlertKind = "low_glucose"
	AlertHighGlucose AlertKind = "high_glucose"
	AlertRapidChange AlertKind = "rapid_change"
	AlertLowBattery  AlertKind = "low_battery"
)

// Alert is a single condition raised during a measurement cycle. Value
// carries the observed quantity that triggered the alert: glucose in mg/dL
// for the glucose kinds, the signed rate in mg/dL per minute for
// rapid_change, and percent charge for low_battery.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	Value     float64   `json:"value"`
	Timestamp int64     `json:"timestamp"`
}

// Encode renders the alert as its wire form for best-effort push delivery.
func (a Alert) Encode() ([]byte, error) {
	return json.Marshal(a)
}
