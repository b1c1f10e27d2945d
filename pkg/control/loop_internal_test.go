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

package control

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/config"
	"github.com/vitalpatch/cgm-core/pkg/fsm/device"
	"github.com/vitalpatch/cgm-core/pkg/sentry"
	"github.com/vitalpatch/cgm-core/pkg/service/clock"
	"github.com/vitalpatch/cgm-core/pkg/service/powermgmt"
	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
	"github.com/vitalpatch/cgm-core/pkg/service/sensor"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
	"github.com/vitalpatch/cgm-core/pkg/serviceregistry"
)

var _ = Describe("cycle scheduling", func() {
	var (
		mockSensor *sensor.MockSensorService
		mockPower  *powermgmt.MockPowerService
		loop       *ControlLoop
		ctx        context.Context
		cancel     context.CancelFunc
	)

	BeforeEach(func() {
		sentry.EnableTestMode()

		mockSensor = sensor.NewMockSensorService()
		mockPower = powermgmt.NewMockPowerService()

		cfg := config.DefaultConfig()
		cfg.Monitor.WarmupDuration = config.Duration{}

		registry := serviceregistry.NewRegistry(
			clock.NewMockClock(0),
			mockSensor,
			wireless.NewMockWirelessService(),
			mockPower,
			securelink.NewMockSecureLinkService(),
		)
		loop = NewControlLoop(config.NewMockConfigManager().WithConfig(cfg), registry)

		ctx, cancel = context.WithCancel(context.Background())
		Expect(loop.Initialize(ctx)).To(Succeed())
	})

	AfterEach(func() {
		cancel()
		sentry.DisableTestMode()
	})

	It("advances the next wake tick even when the closing transition fails", func() {
		mockSensor.Readings = []sensor.Reading{{Raw: 812, TemperatureC: 25}}
		// Cancelling mid-cycle makes the closing transition fail while the
		// measurement work itself completes.
		mockSensor.ReadHook = cancel

		before := loop.SessionSnapshot().NextWakeTick

		loop.tick++
		loop.runCycle(ctx)

		session := loop.SessionSnapshot()
		Expect(session.NextWakeTick).To(Equal(before + session.SamplingInterval.Milliseconds()))
		Expect(session.CyclesRun).To(Equal(uint64(1)))

		// One failed transition is transient, not an emergency.
		Expect(loop.CurrentState()).To(Equal(device.StateActive))
		Expect(mockPower.EmergencyHaltCalled).To(BeZero())
	})
})
