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
)

// MockWirelessService is a scriptable radio for tests. Sent payloads are
// retained for assertions.
type MockWirelessService struct {
	mu sync.Mutex

	// State flags returned by the query methods.
	Connected bool
	Paired    bool
	Pairing   bool

	// SendError, when set, is returned by every Send call.
	SendError error

	// SendAlertError, when set, is returned by every SendAlert call.
	SendAlertError error

	// CompletePairingError, when set, is returned by CompletePairing.
	CompletePairingError error

	// SendFailAfter, when > 0, makes Send fail once that many payloads
	// have been accepted.
	SendFailAfter int

	// Captured payloads.
	SentPayloads  [][]byte
	AlertPayloads [][]byte

	CompletePairingCalled int
}

// NewMockWirelessService creates a paired, connected mock.
func NewMockWirelessService() *MockWirelessService {
	return &MockWirelessService{
		Connected: true,
		Paired:    true,
	}
}

func (m *MockWirelessService) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Connected
}

func (m *MockWirelessService) IsPaired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Paired
}

func (m *MockWirelessService) PairingRequested() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Pairing
}

func (m *MockWirelessService) CompletePairing(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompletePairingCalled++

	if m.CompletePairingError != nil {
		return m.CompletePairingError
	}

	m.Pairing = false
	m.Paired = true

	return nil
}

func (m *MockWirelessService) Send(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendError != nil {
		return m.SendError
	}

	if m.SendFailAfter > 0 && len(m.SentPayloads) >= m.SendFailAfter {
		return ErrSendFailure
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.SentPayloads = append(m.SentPayloads, cp)

	return nil
}

func (m *MockWirelessService) SendAlert(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendAlertError != nil {
		return m.SendAlertError
	}

	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.AlertPayloads = append(m.AlertPayloads, cp)

	return nil
}
