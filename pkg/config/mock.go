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

package config

import (
	"context"
	"sync"
)

// MockConfigManager serves a fixed configuration for tests.
type MockConfigManager struct {
	mu sync.Mutex

	// Config is the configuration returned by GetConfig.
	Config FullConfig

	// GetConfigError, when set, is returned alongside the config.
	GetConfigError error

	GetConfigCalled int
}

// NewMockConfigManager creates a mock serving the factory defaults.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{Config: DefaultConfig()}
}

func (m *MockConfigManager) GetConfig(ctx context.Context, tick uint64) (FullConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetConfigCalled++

	return m.Config.Clone(), m.GetConfigError
}

// WithConfig replaces the served configuration.
func (m *MockConfigManager) WithConfig(cfg FullConfig) *MockConfigManager {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Config = cfg

	return m
}
