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

// Package smoothing implements the rolling mean filter applied to validated
// glucose readings before they enter the history store.
package smoothing

// Filter is a rolling mean over the most recent window of samples. Until
// the window fills, the mean is taken over the samples seen so far, so the
// first output equals the first input. Not safe for concurrent use; the
// measurement loop is the only writer.
type Filter struct {
	window []float64
	next   int
	count  int
	sum    float64
}

// NewFilter creates a rolling mean filter over the given window size.
// Sizes below 1 are clamped to 1, which makes the filter a pass-through.
func NewFilter(size int) *Filter {
	if size < 1 {
		size = 1
	}

	return &Filter{window: make([]float64, size)}
}

// Push adds a sample and returns the mean over the current window.
func (f *Filter) Push(sample float64) float64 {
	if f.count == len(f.window) {
		f.sum -= f.window[f.next]
	} else {
		f.count++
	}

	f.window[f.next] = sample
	f.sum += sample
	f.next = (f.next + 1) % len(f.window)

	return f.sum / float64(f.count)
}

// Count returns the number of samples currently in the window.
func (f *Filter) Count() int {
	return f.count
}

// Reset empties the window, for use when the sensor is recalibrated and
// prior samples are no longer comparable.
func (f *Filter) Reset() {
	f.next = 0
	f.count = 0
	f.sum = 0
}
