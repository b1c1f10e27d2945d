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
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/backoff"
	"github.com/vitalpatch/cgm-core/pkg/logger"
)

// ConfigManager provides the current device configuration to the loop.
type ConfigManager interface {
	// GetConfig returns the configuration for the given loop tick. On read
	// or parse failures the last known good configuration is returned along
	// with a backoff-wrapped error.
	GetConfig(ctx context.Context, tick uint64) (FullConfig, error)
}

// FileConfigManager reads the configuration from a YAML file, caching the
// parsed result and rereading only when the file changes on disk. Read or
// parse failures fall back to the cached config under exponential backoff.
type FileConfigManager struct {
	path string

	mu          sync.Mutex
	cache       FullConfig
	cacheValid  bool
	lastModTime int64
	lastSize    int64

	backoffManager *backoff.BackoffManager
	logger         *zap.SugaredLogger
}

// NewFileConfigManager creates a manager for the config file at path.
func NewFileConfigManager(path string) *FileConfigManager {
	log := logger.For(logger.ComponentConfigManager)

	return &FileConfigManager{
		path:           path,
		backoffManager: backoff.NewBackoffManager(backoff.DefaultConfig("config-manager", log)),
		logger:         log,
	}
}

func (m *FileConfigManager) GetConfig(ctx context.Context, tick uint64) (FullConfig, error) {
	if err := ctx.Err(); err != nil {
		return FullConfig{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backoffManager.ShouldSkipOperation(tick) {
		return m.fallback(m.backoffManager.GetBackoffError(tick))
	}

	info, err := os.Stat(m.path)
	if err != nil {
		if os.IsNotExist(err) && !m.cacheValid {
			// A missing file on first load means run on factory defaults.
			m.logger.Infof("No config file at %s, using defaults", m.path)
			m.cache = ApplyEnvOverrides(DefaultConfig())
			m.cacheValid = true

			return m.cache.Clone(), nil
		}

		m.backoffManager.SetError(err, tick)

		return m.fallback(fmt.Errorf("failed to stat config file: %w", err))
	}

	if m.cacheValid && info.ModTime().UnixNano() == m.lastModTime && info.Size() == m.lastSize {
		return m.cache.Clone(), nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		m.backoffManager.SetError(err, tick)

		return m.fallback(fmt.Errorf("failed to read config file: %w", err))
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		m.backoffManager.SetError(err, tick)

		return m.fallback(err)
	}

	m.backoffManager.Reset()

	m.cache = ApplyEnvOverrides(cfg)
	m.cacheValid = true
	m.lastModTime = info.ModTime().UnixNano()
	m.lastSize = info.Size()

	return m.cache.Clone(), nil
}

// fallback returns the cached config with the triggering error, or only the
// error if no config was ever loaded.
func (m *FileConfigManager) fallback(err error) (FullConfig, error) {
	if m.cacheValid {
		return m.cache.Clone(), err
	}

	return FullConfig{}, err
}
