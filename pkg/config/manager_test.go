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

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/config"
)

var _ = Describe("FileConfigManager", func() {
	var (
		dir  string
		path string
		ctx  context.Context
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "config.yaml")
		ctx = context.Background()
	})

	writeConfig := func(content string) {
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	}

	Context("with no config file", func() {
		It("falls back to factory defaults", func() {
			manager := config.NewFileConfigManager(path)

			cfg, err := manager.GetConfig(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Monitor.BaselineInterval.Duration).To(Equal(5 * time.Minute))
		})
	})

	Context("with a valid config file", func() {
		It("serves the parsed configuration", func() {
			writeConfig("monitor:\n  baselineInterval: 90s\n")

			manager := config.NewFileConfigManager(path)

			cfg, err := manager.GetConfig(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Monitor.BaselineInterval.Duration).To(Equal(90 * time.Second))
		})
	})

	Context("when the file turns invalid after a good load", func() {
		It("keeps serving the last good configuration", func() {
			writeConfig("monitor:\n  baselineInterval: 90s\n")

			manager := config.NewFileConfigManager(path)

			_, err := manager.GetConfig(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			// Force a different mtime so the manager rereads.
			time.Sleep(10 * time.Millisecond)
			writeConfig("monitor:\n  baselineInterval: not-a-duration\n")

			cfg, err := manager.GetConfig(ctx, 1)
			Expect(err).To(HaveOccurred())
			Expect(cfg.Monitor.BaselineInterval.Duration).To(Equal(90 * time.Second))
		})
	})
})
