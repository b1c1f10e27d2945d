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

package fsm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/backoff"
	"github.com/vitalpatch/cgm-core/pkg/constants"
	"github.com/vitalpatch/cgm-core/pkg/sentry"
)

// BaseFSMInstance implements the shared logic for FSM-backed components.
// Concrete machines (the device power FSM) wrap this and add their domain
// transitions.
type BaseFSMInstance struct {
	cfg BaseFSMInstanceConfig

	// mu protects concurrent access to the machine and config.
	mu sync.RWMutex

	// fsm is the finite state machine that manages the component state.
	fsm *fsm.FSM

	// Registered "enter_state" callbacks, purely for logging or minor side effects.
	callbacks map[string]fsm.Callback

	// Handles exponential backoff for repeated transient errors,
	// culminating in a "permanent failure" if max retries are exceeded.
	backoffManager *backoff.BackoffManager

	logger *zap.SugaredLogger
}

// BaseFSMInstanceConfig holds parameters for setting up the base FSM.
type BaseFSMInstanceConfig struct {
	ID string

	// InitialState is the state the machine starts in.
	InitialState string

	// Transitions are the allowed state transitions.
	Transitions []fsm.EventDesc
}

// NewBaseFSMInstance sets up a new FSM with the supplied transitions.
func NewBaseFSMInstance(cfg BaseFSMInstanceConfig, logger *zap.SugaredLogger) *BaseFSMInstance {
	baseInstance := &BaseFSMInstance{
		cfg:       cfg,
		callbacks: make(map[string]fsm.Callback),
		logger:    logger,
	}

	// Create a default backoff manager (exponential) with limited retries.
	backoffConfig := backoff.DefaultConfig(cfg.ID, logger)
	baseInstance.backoffManager = backoff.NewBackoffManager(backoffConfig)

	baseInstance.fsm = fsm.NewFSM(
		cfg.InitialState,
		fsm.Events(cfg.Transitions),
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				// Call registered callback for this state if exists
				if cb, ok := baseInstance.callbacks["enter_"+e.Dst]; ok {
					cb(ctx, e)
				}
			},
		},
	)

	return baseInstance
}

// AddCallback adds a callback for a given event name.
func (s *BaseFSMInstance) AddCallback(eventName string, callback fsm.Callback) {
	s.callbacks[eventName] = callback
}

// GetError returns the last error that occurred during a transition.
func (s *BaseFSMInstance) GetError() error {
	return s.backoffManager.GetLastError()
}

// SetError sets the last error that occurred during a transition
// and returns true if the error is considered a permanent failure.
func (s *BaseFSMInstance) SetError(err error, tick uint64) bool {
	isPermanent := s.backoffManager.SetError(err, tick)
	if isPermanent {
		sentry.ReportFSMErrorf(s.logger, s.cfg.ID, "BaseFSM", "permanent_failure", "FSM has reached permanent failure state: %v", err)
	}

	return isPermanent
}

// GetCurrentFSMState returns the current state of the FSM.
func (s *BaseFSMInstance) GetCurrentFSMState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fsm.Current()
}

// SetCurrentFSMState sets the current state of the FSM.
// This should only be called in tests.
func (s *BaseFSMInstance) SetCurrentFSMState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fsm.SetState(state)
}

// SendEvent sends an event to the FSM and returns whether the event was processed.
//
// Context expiration during a transition leaves the machine's internal
// transition flag set, after which every future event fails with "previous
// transition did not complete". To avoid that deadlock, events are rejected
// up front when the context is already cancelled or has too little time
// remaining to finish the transition.
func (s *BaseFSMInstance) SendEvent(ctx context.Context, eventName string, args ...interface{}) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) < constants.ExpectedMaxP95ExecutionTimePerEvent {
			return fmt.Errorf("context deadline exceeded")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fsm.Event(ctx, eventName, args...)
}

// Can reports whether the named event is valid from the current state.
func (s *BaseFSMInstance) Can(eventName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fsm.Can(eventName)
}

// ClearError clears any error state and resets the backoff.
func (s *BaseFSMInstance) ClearError() {
	s.backoffManager.Reset()
}

// ShouldSkipOperationBecauseOfError returns true if the operation should be
// skipped because of an error that occurred previously and the backoff
// period has not yet elapsed, or if the FSM is in permanent failure state.
func (s *BaseFSMInstance) ShouldSkipOperationBecauseOfError(tick uint64) bool {
	return s.backoffManager.ShouldSkipOperation(tick)
}

// IsPermanentlyFailed returns true if the FSM has reached a permanent
// failure state after exceeding the maximum retry attempts.
func (s *BaseFSMInstance) IsPermanentlyFailed() bool {
	return s.backoffManager.IsPermanentlyFailed()
}

// GetBackoffError returns a structured error that includes backoff
// information, either a permanent failure error or a temporary backoff
// error depending on the current state.
func (s *BaseFSMInstance) GetBackoffError(tick uint64) error {
	return s.backoffManager.GetBackoffError(tick)
}

func (s *BaseFSMInstance) GetID() string {
	return s.cfg.ID
}

func (s *BaseFSMInstance) GetLogger() *zap.SugaredLogger {
	return s.logger
}

func (s *BaseFSMInstance) GetLastError() error {
	return s.backoffManager.GetLastError()
}
