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

package securelink

import (
	"sync"
)

// MockSecureLinkService is a scriptable encryption layer for tests. By
// default it passes payloads through unchanged; individual calls can be
// made to fail via FailOnCall.
type MockSecureLinkService struct {
	mu sync.Mutex

	// EncryptError, when set, is returned by every Encrypt call.
	EncryptError error

	// FailOnCall makes the nth Encrypt call (1-based) fail with
	// ErrEncryptionFailure. Zero disables injection.
	FailOnCall int

	EncryptCalled int
}

// NewMockSecureLinkService creates a pass-through mock.
func NewMockSecureLinkService() *MockSecureLinkService {
	return &MockSecureLinkService{}
}

func (m *MockSecureLinkService) Encrypt(plaintext []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EncryptCalled++

	if m.EncryptError != nil {
		return nil, m.EncryptError
	}

	if m.FailOnCall > 0 && m.EncryptCalled == m.FailOnCall {
		return nil, ErrEncryptionFailure
	}

	out := make([]byte, len(plaintext))
	copy(out, plaintext)

	return out, nil
}
