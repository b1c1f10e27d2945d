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

// Package alerts evaluates each smoothed reading against the clinical
// thresholds and decides the sampling cadence for the next cycle.
package alerts

import (
	"math"
	"time"

	"github.com/vitalpatch/cgm-core/pkg/config"
	"github.com/vitalpatch/cgm-core/pkg/models"
)

// CadenceDecision is the sampling cadence requested by alert evaluation.
type CadenceDecision int

const (
	// CadenceUnchanged keeps the current sampling interval.
	CadenceUnchanged CadenceDecision = iota

	// CadenceAccelerate switches to the accelerated interval.
	CadenceAccelerate

	// CadenceBaseline restores the baseline interval.
	CadenceBaseline
)

func (d CadenceDecision) String() string {
	switch d {
	case CadenceAccelerate:
		return "accelerate"
	case CadenceBaseline:
		return "baseline"
	default:
		return "unchanged"
	}
}

// Evaluator applies the configured thresholds to smoothed readings.
type Evaluator struct {
	cfg config.AlertsConfig
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(cfg config.AlertsConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate checks one smoothed reading. previous is the smoothed value of
// the prior cycle, nil on the first sample; interSample is the time between
// the two samples, used to express the rate in mg/dL per minute.
//
// Low glucose accelerates sampling. High glucose raises an alert but keeps
// the cadence, since hyperglycemia develops slowly enough that faster
// sampling adds battery cost without clinical benefit. Readings inside the
// band restore the baseline cadence. The rapid change alert fires only when
// the absolute rate strictly exceeds the threshold and never affects
// cadence on its own.
func (e *Evaluator) Evaluate(smoothed float64, previous *float64, interSample time.Duration, nowTick int64) ([]models.Alert, CadenceDecision) {
	var raised []models.Alert

	decision := CadenceBaseline

	switch {
	case smoothed < e.cfg.LowGlucoseMgDl:
		raised = append(raised, models.Alert{
			Kind:      models.AlertLowGlucose,
			Value:     smoothed,
			Timestamp: nowTick,
		})
		decision = CadenceAccelerate
	case smoothed > e.cfg.HighGlucoseMgDl:
		raised = append(raised, models.Alert{
			Kind:      models.AlertHighGlucose,
			Value:     smoothed,
			Timestamp: nowTick,
		})
		decision = CadenceUnchanged
	}

	if previous != nil && interSample > 0 {
		rate := (smoothed - *previous) / interSample.Minutes()
		if math.Abs(rate) > e.cfg.RateMgDlPerMin {
			raised = append(raised, models.Alert{
				Kind:      models.AlertRapidChange,
				Value:     rate,
				Timestamp: nowTick,
			})
		}
	}

	return raised, decision
}

// EvaluateBattery checks the battery level against the low battery
// threshold. Returns nil when the level is fine.
func (e *Evaluator) EvaluateBattery(level uint8, nowTick int64) *models.Alert {
	if level > e.cfg.LowBatteryPercent {
		return nil
	}

	return &models.Alert{
		Kind:      models.AlertLowBattery,
		Value:     float64(level),
		Timestamp: nowTick,
	}
}
