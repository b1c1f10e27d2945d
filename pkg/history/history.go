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

// Package history implements the fixed-capacity measurement record store.
// When full, each append overwrites the oldest record, so the store always
// holds the most recent capacity records in insertion order.
package history

import (
	"sync"

	"github.com/vitalpatch/cgm-core/pkg/models"
)

// Store is a fixed-capacity ring of measurement records. Append is the
// only mutating operation; records are never removed individually. Safe
// for concurrent use, with the measurement loop as the only writer and
// the transmitter and status API as readers.
type Store struct {
	mu    sync.RWMutex
	slots []models.MeasurementRecord
	head  int
	count int
}

// NewStore creates an empty store with the given capacity. Capacities
// below 1 are clamped to 1.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}

	return &Store{slots: make([]models.MeasurementRecord, capacity)}
}

// Append adds a record, overwriting the oldest one when the store is full.
func (s *Store) Append(record models.MeasurementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[s.head] = record
	s.head = (s.head + 1) % len(s.slots)

	if s.count < len(s.slots) {
		s.count++
	}
}

// SnapshotRecent returns copies of up to m records, newest first. The
// store is unchanged; mutating the returned slice has no effect on it.
func (s *Store) SnapshotRecent(m int) []models.MeasurementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m > s.count {
		m = s.count
	}
	if m <= 0 {
		return nil
	}

	out := make([]models.MeasurementRecord, m)
	for i := 0; i < m; i++ {
		// head points at the slot the next append will take, so head-1 is
		// the newest record.
		idx := (s.head - 1 - i + len(s.slots)) % len(s.slots)
		out[i] = s.slots[idx]
	}

	return out
}

// Len returns the number of records currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.count
}

// Capacity returns the fixed capacity of the store.
func (s *Store) Capacity() int {
	return len(s.slots)
}
