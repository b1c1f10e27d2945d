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

// Package control implements the cyclic measurement loop: wake, acquire,
// evaluate, transmit, sleep. The loop is single threaded; everything the
// cycle touches happens in order on one goroutine, and concurrency exists
// only at the edges (status API, watchdog, metrics).
package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/acquisition"
	"github.com/vitalpatch/cgm-core/pkg/alerts"
	"github.com/vitalpatch/cgm-core/pkg/config"
	"github.com/vitalpatch/cgm-core/pkg/constants"
	"github.com/vitalpatch/cgm-core/pkg/fsm/device"
	"github.com/vitalpatch/cgm-core/pkg/history"
	"github.com/vitalpatch/cgm-core/pkg/logger"
	"github.com/vitalpatch/cgm-core/pkg/metrics"
	"github.com/vitalpatch/cgm-core/pkg/models"
	"github.com/vitalpatch/cgm-core/pkg/sentry"
	"github.com/vitalpatch/cgm-core/pkg/serviceregistry"
	"github.com/vitalpatch/cgm-core/pkg/smoothing"
	"github.com/vitalpatch/cgm-core/pkg/transmit"
	"github.com/vitalpatch/cgm-core/pkg/watchdog"
)

// ErrEmergency is returned by Execute when the device has entered the
// terminal emergency state.
var ErrEmergency = errors.New("device in emergency state")

// ControlLoop drives the measurement cycle. Create with NewControlLoop,
// then call Initialize once and Execute on the main goroutine.
type ControlLoop struct {
	cfgManager config.ConfigManager
	services   serviceregistry.Provider

	cfg config.FullConfig

	machine     *device.DeviceFSM
	store       *history.Store
	filter      *smoothing.Filter
	acquirer    *acquisition.Acquirer
	notifier    *alerts.Notifier
	transmitter *transmit.Transmitter
	dog         *watchdog.CycleWatchdog

	// sessionMu guards session against concurrent snapshot reads. The
	// loop goroutine is the only writer.
	sessionMu sync.RWMutex
	session   Session

	// tick counts loop iterations for the backoff bookkeeping.
	tick uint64

	// wake interrupts the sleep phase for an immediate cycle.
	wake chan struct{}

	initialized bool
	log         *zap.SugaredLogger
}

// NewControlLoop creates an uninitialized loop.
func NewControlLoop(cfgManager config.ConfigManager, services serviceregistry.Provider) *ControlLoop {
	return &ControlLoop{
		cfgManager: cfgManager,
		services:   services,
		wake:       make(chan struct{}, 1),
		log:        logger.For(logger.ComponentControlLoop),
	}
}

// Initialize loads the configuration, builds the cycle components and
// starts sensor warmup. Any failure here is unrecoverable: the device
// transitions to emergency and halts, because a monitor that cannot
// complete initialization must not pretend to monitor.
func (c *ControlLoop) Initialize(ctx context.Context) error {
	cfg, err := c.cfgManager.GetConfig(ctx, 0)
	if err != nil {
		return c.emergencyShutdown(ctx, fmt.Errorf("failed to load config: %w", err))
	}

	c.cfg = cfg
	c.machine = device.NewDeviceFSM(constants.DefaultInstanceName)
	c.store = history.NewStore(cfg.Monitor.HistoryCapacity)
	c.filter = smoothing.NewFilter(cfg.Monitor.SmoothingWindow)
	c.acquirer = acquisition.NewAcquirer(c.services.GetSensor(),
		cfg.Monitor.GlucoseMinMgDl, cfg.Monitor.GlucoseMaxMgDl)
	c.notifier = alerts.NewNotifier(c.services.GetWireless())
	c.transmitter = transmit.NewTransmitter(c.store,
		c.services.GetWireless(), c.services.GetSecureLink(), cfg.Transmit.BatchSize)

	if c.services.GetPower().CriticalVoltage() {
		return c.emergencyShutdown(ctx, errors.New("critical supply voltage at startup"))
	}

	if err := c.services.GetSensor().StartWarmup(ctx); err != nil {
		return c.emergencyShutdown(ctx, fmt.Errorf("failed to start sensor warmup: %w", err))
	}

	nowTick := c.services.GetClock().NowTick()

	c.mutateSession(func(s *Session) {
		*s = Session{
			ID:                 uuid.NewString(),
			SamplingInterval:   cfg.Monitor.BaselineInterval.Duration,
			NextWakeTick:       nowTick + cfg.Monitor.WarmupDuration.Duration.Milliseconds(),
			WarmupDeadlineTick: nowTick + cfg.Monitor.WarmupDuration.Duration.Milliseconds(),
			LastBattery:        c.services.GetPower().BatteryLevel(),
		}
	})

	metrics.InitErrorCounter(metrics.ComponentControlLoop, constants.DefaultInstanceName)
	metrics.SetSamplingInterval(c.session.SamplingInterval)
	metrics.SetBattery(c.session.LastBattery)

	c.initialized = true

	c.log.Infow("Control loop initialized",
		"session", c.session.ID,
		"sensor", c.services.GetSensor().SerialID(),
		"samplingInterval", c.session.SamplingInterval,
		"warmup", cfg.Monitor.WarmupDuration.Duration,
		"historyCapacity", c.store.Capacity())

	return nil
}

// AttachWatchdog wires a stall watchdog into the loop. Optional; tests run
// without one.
func (c *ControlLoop) AttachWatchdog(dog *watchdog.CycleWatchdog) {
	c.dog = dog
}

// Execute runs measurement cycles until the context is cancelled or the
// device enters the emergency state.
func (c *ControlLoop) Execute(ctx context.Context) error {
	if !c.initialized {
		return errors.New("control loop not initialized")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if c.machine.InEmergency() {
			return ErrEmergency
		}

		if err := c.waitForNextCycle(ctx); err != nil {
			return err
		}

		c.tick++
		c.runCycle(ctx)
	}
}

// Wake interrupts the current sleep phase so the next cycle starts
// immediately. Used when a receiver initiates pairing.
func (c *ControlLoop) Wake() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// waitForNextCycle parks the device until the next wake tick, an explicit
// Wake call or context cancellation.
func (c *ControlLoop) waitForNextCycle(ctx context.Context) error {
	d := c.sleepDuration()

	sleepCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.services.GetPower().Sleep(sleepCtx, d)
	}()

	select {
	case <-ctx.Done():
		<-done

		return ctx.Err()
	case <-c.wake:
		cancel()
		<-done

		c.log.Debug("Sleep interrupted by wake request")

		return nil
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("sleep failed: %w", err)
		}

		return ctx.Err()
	}
}

// sleepDuration computes how long to sleep before the next cycle, clamped
// below so a late wake tick can never produce a busy loop.
func (c *ControlLoop) sleepDuration() time.Duration {
	nowTick := c.services.GetClock().NowTick()

	d := time.Duration(c.session.NextWakeTick-nowTick) * time.Millisecond
	if d < constants.MinProcessingSlice {
		d = constants.MinProcessingSlice
	}

	return d
}

// runCycle performs one full measurement cycle. Stage failures inside the
// cycle degrade that stage only; the cycle itself always completes and the
// next one is always scheduled.
func (c *ControlLoop) runCycle(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.ObserveCycleTime(metrics.ComponentControlLoop, constants.DefaultInstanceName, time.Since(start))
	}()

	// Pick up config changes between cycles. Thresholds and cadence apply
	// immediately; structural settings (history capacity, smoothing window)
	// stay fixed for the session.
	if cfg, err := c.cfgManager.GetConfig(ctx, c.tick); err == nil {
		c.cfg = cfg
	} else {
		c.log.Debugf("Keeping previous config: %v", err)
	}

	if c.services.GetPower().CriticalVoltage() {
		_ = c.emergencyShutdown(ctx, errors.New("critical supply voltage"))

		return
	}

	if err := c.machine.BeginCycle(ctx); err != nil {
		c.handleTransitionError(ctx, err)

		return
	}

	evaluator := alerts.NewEvaluator(c.cfg.Alerts)
	nowTick := c.services.GetClock().NowTick()

	var raised []models.Alert

	sample, err := c.acquirer.Acquire(ctx)
	switch {
	case err != nil:
		// Discard the sample for this cycle and keep the previous state.
		metrics.IncErrorCountAndLog(metrics.ComponentAcquisition, constants.DefaultInstanceName, err, c.log)
	case nowTick < c.session.WarmupDeadlineTick:
		c.log.Debugf("Discarding warmup reading at tick %d", nowTick)
	default:
		raised = c.processSample(evaluator, sample, nowTick)
	}

	battery := c.services.GetPower().BatteryLevel()
	c.mutateSession(func(s *Session) {
		s.LastBattery = battery
	})
	metrics.SetBattery(battery)

	if batteryAlert := evaluator.EvaluateBattery(battery, nowTick); batteryAlert != nil {
		raised = append(raised, *batteryAlert)
	}

	c.notifier.Push(ctx, raised)

	c.transmitter.Transmit(ctx)

	c.handlePairing(ctx)

	// The next wake is scheduled unconditionally once the measurement work
	// is done; a failed closing transition retries on the normal cadence
	// instead of the clamp floor.
	c.mutateSession(func(s *Session) {
		s.NextWakeTick = nowTick + s.SamplingInterval.Milliseconds()
		s.CyclesRun++
	})

	if c.dog != nil {
		c.dog.UpdateLastCycleTime()
	}

	if err := c.machine.FinishCycle(ctx); err != nil {
		c.handleTransitionError(ctx, err)

		return
	}

	c.machine.ClearError()
}

// processSample smooths a validated sample, records it and evaluates the
// clinical alerts. Returns the alerts raised by this sample.
func (c *ControlLoop) processSample(evaluator *alerts.Evaluator, sample acquisition.Sample, nowTick int64) []models.Alert {
	smoothed := c.filter.Push(sample.GlucoseMgDl)

	record := models.MeasurementRecord{
		Timestamp:    nowTick,
		Raw:          sample.Raw,
		GlucoseMgDl:  smoothed,
		TemperatureC: sample.TemperatureC,
		BatteryLevel: c.session.LastBattery,
	}
	record.Seal()

	c.store.Append(record)

	metrics.SetGlucose(smoothed)
	metrics.SetHistoryOccupancy(c.store.Len())

	var interSample time.Duration
	if c.session.LastSampleTick > 0 {
		interSample = time.Duration(nowTick-c.session.LastSampleTick) * time.Millisecond
	}

	raised, decision := evaluator.Evaluate(smoothed, c.session.LastSmoothed, interSample, nowTick)

	switch decision {
	case alerts.CadenceAccelerate:
		c.setSamplingInterval(c.cfg.Monitor.AcceleratedInterval.Duration)
	case alerts.CadenceBaseline:
		c.setSamplingInterval(c.cfg.Monitor.BaselineInterval.Duration)
	case alerts.CadenceUnchanged:
	}

	c.mutateSession(func(s *Session) {
		s.PrevSmoothed = s.LastSmoothed
		s.LastSmoothed = &smoothed
		s.LastSampleTick = nowTick
	})

	return raised
}

func (c *ControlLoop) setSamplingInterval(interval time.Duration) {
	if c.session.SamplingInterval == interval {
		return
	}

	c.log.Infof("Sampling interval changed from %s to %s", c.session.SamplingInterval, interval)
	c.mutateSession(func(s *Session) {
		s.SamplingInterval = interval
	})
	metrics.SetSamplingInterval(interval)
}

// handlePairing completes a pending pairing request from a receiver.
func (c *ControlLoop) handlePairing(ctx context.Context) {
	wls := c.services.GetWireless()

	if !wls.PairingRequested() {
		return
	}

	if err := wls.CompletePairing(ctx); err != nil {
		c.log.Warnf("Failed to complete pairing: %v", err)

		return
	}

	c.log.Infof("Receiver paired for session %s", c.session.ID)
}

// handleTransitionError records an FSM transition failure. Transient
// failures back off and retry on later cycles; permanent ones fault the
// device.
func (c *ControlLoop) handleTransitionError(ctx context.Context, err error) {
	metrics.IncErrorCountAndLog(metrics.ComponentDeviceFSM, constants.DefaultInstanceName, err, c.log)

	if c.machine.SetError(err, c.tick) {
		_ = c.emergencyShutdown(ctx, fmt.Errorf("device state machine failed permanently: %w", err))
	}
}

// emergencyShutdown moves the device into the terminal emergency state and
// halts the hardware. Always returns a non-nil error wrapping cause.
func (c *ControlLoop) emergencyShutdown(ctx context.Context, cause error) error {
	sentry.ReportIssuef(sentry.IssueTypeFatal, c.log, "Emergency shutdown: %v", cause)

	if c.machine != nil {
		if err := c.machine.Fault(ctx); err != nil && !c.machine.InEmergency() {
			c.log.Errorf("Failed to enter emergency state: %v", err)
		}
	}

	c.services.GetPower().EnterEmergencyHalt()

	return fmt.Errorf("%w: %s", ErrEmergency, cause)
}
