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

package backoff

import (
	"fmt"
	"math"
	"sync"
	"time"

	expbackoff "github.com/cenkalti/backoff"
	"go.uber.org/zap"
)

// Config holds parameters for a BackoffManager.
type Config struct {
	// ID names the owning component for logging.
	ID string

	// TickDuration converts the exponential schedule into loop ticks.
	TickDuration time.Duration

	// InitialInterval and MaxInterval shape the exponential schedule.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxRetries is the number of consecutive transient failures tolerated
	// before the manager declares permanent failure.
	MaxRetries uint64

	Logger *zap.SugaredLogger
}

// DefaultConfig returns a sensible backoff configuration for a component.
func DefaultConfig(id string, logger *zap.SugaredLogger) Config {
	return Config{
		ID:              id,
		TickDuration:    time.Second,
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		MaxRetries:      5,
		Logger:          logger,
	}
}

// BackoffManager handles exponential backoff for repeated transient errors,
// culminating in a permanent failure once max retries are exceeded. All
// bookkeeping is in loop ticks so callers never block; they simply skip the
// operation until the tick budget has elapsed.
type BackoffManager struct {
	cfg Config

	mu                sync.Mutex
	exp               *expbackoff.ExponentialBackOff
	lastError         error
	failures          uint64
	suspendedUntil    uint64
	permanentlyFailed bool
}

// NewBackoffManager creates a manager with the given configuration.
func NewBackoffManager(cfg Config) *BackoffManager {
	if cfg.TickDuration <= 0 {
		cfg.TickDuration = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	exp := expbackoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialInterval
	exp.MaxInterval = cfg.MaxInterval
	// The manager decides termination itself via MaxRetries.
	exp.MaxElapsedTime = 0

	return &BackoffManager{cfg: cfg, exp: exp}
}

// SetError records a transient failure observed at the given tick and returns
// true if the failure budget is now exhausted (permanent failure). Permanent
// categorized errors short-circuit the budget.
func (m *BackoffManager) SetError(err error, tick uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = err

	if IsPermanentError(err) {
		m.permanentlyFailed = true
		return true
	}

	m.failures++
	if m.cfg.MaxRetries > 0 && m.failures > m.cfg.MaxRetries {
		m.permanentlyFailed = true
		return true
	}

	delay := m.exp.NextBackOff()
	skipTicks := uint64(math.Ceil(float64(delay) / float64(m.cfg.TickDuration)))
	if skipTicks == 0 {
		skipTicks = 1
	}
	m.suspendedUntil = tick + skipTicks

	m.cfg.Logger.Debugf("%s: backing off for %d ticks after failure %d: %v",
		m.cfg.ID, skipTicks, m.failures, err)

	return false
}

// ShouldSkipOperation returns true if the operation is suspended at this tick,
// either because the backoff period has not yet elapsed or because the
// manager has permanently failed.
func (m *BackoffManager) ShouldSkipOperation(tick uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.permanentlyFailed {
		return true
	}

	return tick < m.suspendedUntil
}

// GetBackoffError returns a structured error describing the current backoff
// state: a permanent failure error once the budget is exhausted, or a
// temporary backoff error while suspended. Returns nil when operation may
// proceed.
func (m *BackoffManager) GetBackoffError(tick uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.permanentlyFailed {
		return fmt.Errorf("%s for %s after %d attempts: %w",
			PermanentFailureError, m.cfg.ID, m.failures, m.lastError)
	}

	if tick < m.suspendedUntil {
		return fmt.Errorf("%s for %s until tick %d: %w",
			TemporaryBackoffError, m.cfg.ID, m.suspendedUntil, m.lastError)
	}

	return nil
}

// Reset clears the error state and backoff schedule after a success.
func (m *BackoffManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = nil
	m.failures = 0
	m.suspendedUntil = 0
	m.permanentlyFailed = false
	m.exp.Reset()
}

// GetLastError returns the most recent error handed to SetError.
func (m *BackoffManager) GetLastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastError
}

// IsPermanentlyFailed returns true once the retry budget has been exceeded.
func (m *BackoffManager) IsPermanentlyFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.permanentlyFailed
}
