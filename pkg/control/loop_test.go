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

package control_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/config"
	"github.com/vitalpatch/cgm-core/pkg/control"
	"github.com/vitalpatch/cgm-core/pkg/fsm/device"
	"github.com/vitalpatch/cgm-core/pkg/sentry"
	"github.com/vitalpatch/cgm-core/pkg/service/clock"
	"github.com/vitalpatch/cgm-core/pkg/service/powermgmt"
	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
	"github.com/vitalpatch/cgm-core/pkg/service/sensor"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
	"github.com/vitalpatch/cgm-core/pkg/serviceregistry"
)

// Raw ADC values that convert to known glucose bands at 25C.
const (
	rawInBand = 812  // ~119 mg/dL
	rawLow    = 400  // ~59 mg/dL, below the low threshold
	rawHigh   = 2000 // ~293 mg/dL, above the high threshold
)

var _ = Describe("ControlLoop", func() {
	var (
		mockClock      *clock.MockClock
		mockSensor     *sensor.MockSensorService
		mockWireless   *wireless.MockWirelessService
		mockPower      *powermgmt.MockPowerService
		mockSecureLink *securelink.MockSecureLinkService
		cfgManager     *config.MockConfigManager
		loop           *control.ControlLoop
		ctx            context.Context
		cancel         context.CancelFunc
	)

	BeforeEach(func() {
		sentry.EnableTestMode()

		mockClock = clock.NewMockClock(0)
		mockSensor = sensor.NewMockSensorService()
		mockWireless = wireless.NewMockWirelessService()
		mockPower = powermgmt.NewMockPowerService()
		mockSecureLink = securelink.NewMockSecureLinkService()

		cfg := config.DefaultConfig()
		cfg.Monitor.WarmupDuration = config.Duration{}
		cfgManager = config.NewMockConfigManager().WithConfig(cfg)

		registry := serviceregistry.NewRegistry(
			mockClock, mockSensor, mockWireless, mockPower, mockSecureLink)
		loop = control.NewControlLoop(cfgManager, registry)

		ctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
		sentry.DisableTestMode()
	})

	// runLoop starts Execute in the background and returns a channel with
	// its eventual result.
	runLoop := func() <-chan error {
		done := make(chan error, 1)
		go func() {
			done <- loop.Execute(ctx)
		}()

		return done
	}

	waitForCycles := func(n uint64) {
		Eventually(func() uint64 {
			return loop.SessionSnapshot().CyclesRun
		}, 5*time.Second, time.Millisecond).Should(BeNumerically(">=", n))
	}

	Describe("Initialize", func() {
		It("sets up the session and starts warmup", func() {
			Expect(loop.Initialize(ctx)).To(Succeed())

			session := loop.SessionSnapshot()
			Expect(session.ID).NotTo(BeEmpty())
			Expect(session.SamplingInterval).To(Equal(5 * time.Minute))
			Expect(mockSensor.StartWarmupCalled).To(Equal(1))
			Expect(loop.CurrentState()).To(Equal(device.StateWaiting))
		})

		It("halts the device when warmup cannot start", func() {
			mockSensor.WarmupError = sensor.ErrSensorFault

			err := loop.Initialize(ctx)
			Expect(err).To(MatchError(control.ErrEmergency))
			Expect(mockPower.EmergencyHaltCalled).To(Equal(1))
			Expect(loop.CurrentState()).To(Equal(device.StateEmergency))
		})

		It("halts the device on critical voltage at startup", func() {
			mockPower.Critical = true

			err := loop.Initialize(ctx)
			Expect(err).To(MatchError(control.ErrEmergency))
			Expect(mockPower.EmergencyHaltCalled).To(Equal(1))
		})
	})

	Describe("Execute", func() {
		It("refuses to run uninitialized", func() {
			Expect(loop.Execute(ctx)).To(HaveOccurred())
		})

		Context("with a healthy sensor in band", func() {
			BeforeEach(func() {
				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("records and transmits measurements cycle after cycle", func() {
				done := runLoop()

				waitForCycles(3)
				cancel()
				Eventually(done).Should(Receive())

				length, capacity := loop.HistoryStats()
				Expect(length).To(BeNumerically(">=", 3))
				Expect(capacity).To(Equal(1440))
				Expect(mockWireless.SentPayloads).NotTo(BeEmpty())

				session := loop.SessionSnapshot()
				Expect(session.LastSmoothed).NotTo(BeNil())
				Expect(*session.LastSmoothed).To(BeNumerically("~", 119, 1))
				Expect(session.SamplingInterval).To(Equal(5 * time.Minute))
			})

			It("requests realistic sleep durations", func() {
				done := runLoop()

				waitForCycles(2)
				cancel()
				Eventually(done).Should(Receive())

				// Every requested sleep is clamped to at least the minimum
				// processing slice.
				for _, d := range mockPower.SleepDurations {
					Expect(d).To(BeNumerically(">=", 100*time.Millisecond))
				}
			})
		})

		Context("while parked in a long sleep", func() {
			BeforeEach(func() {
				mockPower.BlockSleep = true
				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("starts a cycle immediately on a wake request", func() {
				done := runLoop()

				Consistently(func() uint64 {
					return loop.SessionSnapshot().CyclesRun
				}, 200*time.Millisecond).Should(BeZero())

				loop.Wake()
				waitForCycles(1)

				cancel()
				Eventually(done).Should(Receive())
			})
		})

		Context("with low glucose readings", func() {
			BeforeEach(func() {
				mockSensor.Readings = []sensor.Reading{{Raw: rawLow, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("accelerates sampling and pushes a low glucose alert", func() {
				done := runLoop()

				Eventually(func() time.Duration {
					return loop.SessionSnapshot().SamplingInterval
				}, 5*time.Second, time.Millisecond).Should(Equal(30 * time.Second))

				cancel()
				Eventually(done).Should(Receive())

				Expect(mockWireless.AlertPayloads).NotTo(BeEmpty())
				Expect(string(mockWireless.AlertPayloads[0])).To(ContainSubstring("low_glucose"))
			})
		})

		Context("with high glucose readings", func() {
			BeforeEach(func() {
				mockSensor.Readings = []sensor.Reading{{Raw: rawHigh, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("alerts without accelerating sampling", func() {
				done := runLoop()

				waitForCycles(2)
				cancel()
				Eventually(done).Should(Receive())

				Expect(loop.SessionSnapshot().SamplingInterval).To(Equal(5 * time.Minute))

				Expect(mockWireless.AlertPayloads).NotTo(BeEmpty())
				Expect(string(mockWireless.AlertPayloads[0])).To(ContainSubstring("high_glucose"))
			})
		})

		Context("with a faulting sensor", func() {
			BeforeEach(func() {
				mockSensor.ReadError = sensor.ErrSensorFault
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("keeps cycling without recording anything", func() {
				done := runLoop()

				waitForCycles(3)
				cancel()
				Eventually(done).Should(Receive())

				length, _ := loop.HistoryStats()
				Expect(length).To(BeZero())
				Expect(loop.CurrentState()).NotTo(Equal(device.StateEmergency))
			})
		})

		Context("during sensor warmup", func() {
			BeforeEach(func() {
				cfg := config.DefaultConfig()
				cfg.Monitor.WarmupDuration = config.Duration{Duration: time.Hour}
				cfgManager.WithConfig(cfg)

				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("discards readings until the warmup deadline", func() {
				done := runLoop()

				waitForCycles(3)
				cancel()
				Eventually(done).Should(Receive())

				length, _ := loop.HistoryStats()
				Expect(length).To(BeZero())
			})
		})

		Context("with no paired receiver", func() {
			BeforeEach(func() {
				mockWireless.Paired = false
				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("accumulates records without transmitting", func() {
				done := runLoop()

				waitForCycles(3)
				cancel()
				Eventually(done).Should(Receive())

				length, _ := loop.HistoryStats()
				Expect(length).To(BeNumerically(">=", 3))
				Expect(mockWireless.SentPayloads).To(BeEmpty())
			})
		})

		Context("with a pending pairing request", func() {
			BeforeEach(func() {
				mockWireless.Paired = false
				mockWireless.Pairing = true
				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("completes the pairing during a cycle", func() {
				done := runLoop()

				Eventually(func() bool {
					return mockWireless.IsPaired()
				}, 5*time.Second, time.Millisecond).Should(BeTrue())

				cancel()
				Eventually(done).Should(Receive())
			})
		})

		Context("with a low battery", func() {
			BeforeEach(func() {
				mockPower.Level = 10
				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
			})

			It("pushes a low battery alert and keeps measuring", func() {
				done := runLoop()

				waitForCycles(2)
				cancel()
				Eventually(done).Should(Receive())

				Expect(mockWireless.AlertPayloads).NotTo(BeEmpty())
				Expect(string(mockWireless.AlertPayloads[0])).To(ContainSubstring("low_battery"))
				Expect(loop.SessionSnapshot().LastBattery).To(Equal(uint8(10)))
			})
		})

		Context("when the supply voltage turns critical", func() {
			BeforeEach(func() {
				mockSensor.Readings = []sensor.Reading{{Raw: rawInBand, TemperatureC: 25}}
				Expect(loop.Initialize(ctx)).To(Succeed())
				mockPower.Critical = true
			})

			It("halts the device and stops executing", func() {
				done := runLoop()

				var err error
				Eventually(done, 5*time.Second).Should(Receive(&err))

				Expect(err).To(MatchError(control.ErrEmergency))
				Expect(loop.CurrentState()).To(Equal(device.StateEmergency))
				Expect(mockPower.EmergencyHaltCalled).To(BeNumerically(">=", 1))
			})
		})
	})
})
