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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vitalpatch/cgm-core/pkg/api"
	"github.com/vitalpatch/cgm-core/pkg/config"
	"github.com/vitalpatch/cgm-core/pkg/constants"
	"github.com/vitalpatch/cgm-core/pkg/control"
	"github.com/vitalpatch/cgm-core/pkg/env"
	"github.com/vitalpatch/cgm-core/pkg/logger"
	"github.com/vitalpatch/cgm-core/pkg/metrics"
	"github.com/vitalpatch/cgm-core/pkg/sentry"
	"github.com/vitalpatch/cgm-core/pkg/serviceregistry"
	"github.com/vitalpatch/cgm-core/pkg/version"
	"github.com/vitalpatch/cgm-core/pkg/watchdog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger.Initialize()
	defer logger.Sync()

	log := logger.For(logger.ComponentCore)

	sentry.InitSentry(version.GetAppVersion(), true)

	log.Infof("Starting cgm-core %s", version.GetAppVersion())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath, _ := env.GetAsString("CGM_CONFIG_PATH", false, constants.DefaultConfigPath)
	cfgManager := config.NewFileConfigManager(configPath)

	cfg, err := cfgManager.GetConfig(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}

	metricsServer := metrics.SetupMetricsEndpoint(fmt.Sprintf(":%d", cfg.Device.MetricsPort))

	services, err := serviceregistry.NewSimulatedRegistry()
	if err != nil {
		return fmt.Errorf("failed to build service registry: %w", err)
	}

	loop := control.NewControlLoop(cfgManager, services)
	if err := loop.Initialize(ctx); err != nil {
		return err
	}

	dog := watchdog.NewCycleWatchdog(ctx)
	defer dog.Stop()

	loop.AttachWatchdog(dog)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Execute(gctx)
	})

	// A receiver can request pairing while the loop is parked in a long
	// baseline sleep. Watch the radio and wake the loop early so the
	// handshake does not wait out the full interval.
	g.Go(func() error {
		ticker := time.NewTicker(constants.PairingPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if services.GetWireless().PairingRequested() {
					loop.Wake()
				}
			}
		}
	})

	var statusServer *api.StatusServer
	if cfg.Device.StatusAPIEnabled {
		statusServer = api.NewStatusServer(loop, cfg.Device.StatusPort)

		g.Go(func() error {
			return statusServer.ListenAndServe()
		})
	}

	// Shut the HTTP surfaces down once the loop or a signal ends the run.
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if statusServer != nil {
			if err := statusServer.Shutdown(shutdownCtx); err != nil {
				log.Warnf("Status server shutdown: %v", err)
			}
		}

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}

		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("Shutdown complete")

		return nil
	}

	return err
}
