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

package wireless

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/logger"
)

// SimulatedWireless is a loopback radio that starts paired and connected
// and simply logs what it would have sent. It lets the full transmit path
// run without a receiver on the bench.
type SimulatedWireless struct {
	mu               sync.Mutex
	connected        bool
	paired           bool
	pairingRequested bool
	log              *zap.SugaredLogger
}

// NewSimulatedWireless creates a loopback radio, already paired and
// connected.
func NewSimulatedWireless() *SimulatedWireless {
	return &SimulatedWireless{
		connected: true,
		paired:    true,
		log:       logger.For(logger.ComponentWireless),
	}
}

func (w *SimulatedWireless) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.connected
}

func (w *SimulatedWireless) IsPaired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.paired
}

func (w *SimulatedWireless) PairingRequested() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.pairingRequested
}

func (w *SimulatedWireless) CompletePairing(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pairingRequested = false
	w.paired = true

	w.log.Info("Pairing completed")

	return nil
}

func (w *SimulatedWireless) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.paired {
		return ErrNotPaired
	}

	w.log.Debugf("Sent %d bytes to receiver", len(payload))

	return nil
}

func (w *SimulatedWireless) SendAlert(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.paired {
		return ErrNotPaired
	}

	w.log.Infof("Alert pushed to receiver: %s", string(payload))

	return nil
}

// RequestPairing flags a pending pairing request, as a receiver would.
func (w *SimulatedWireless) RequestPairing() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pairingRequested = true
}

// SetConnected toggles the link state for bench scenarios.
func (w *SimulatedWireless) SetConnected(connected bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.connected = connected
}
