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

// Package serviceregistry bundles the hardware capability services so the
// control loop receives them as one dependency and tests can swap in mocks
// wholesale.
package serviceregistry

import (
	"crypto/rand"
	"fmt"

	"github.com/vitalpatch/cgm-core/pkg/service/clock"
	"github.com/vitalpatch/cgm-core/pkg/service/powermgmt"
	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
	"github.com/vitalpatch/cgm-core/pkg/service/sensor"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
)

// Provider grants access to the device capability services.
type Provider interface {
	GetClock() clock.Clock
	GetSensor() sensor.ISensorService
	GetWireless() wireless.IWirelessService
	GetPower() powermgmt.IPowerService
	GetSecureLink() securelink.ISecureLinkService
}

// Registry is the default Provider implementation.
type Registry struct {
	clock      clock.Clock
	sensor     sensor.ISensorService
	wireless   wireless.IWirelessService
	power      powermgmt.IPowerService
	secureLink securelink.ISecureLinkService
}

// NewRegistry creates a registry from explicit service implementations.
func NewRegistry(
	clk clock.Clock,
	sns sensor.ISensorService,
	wls wireless.IWirelessService,
	pwr powermgmt.IPowerService,
	sec securelink.ISecureLinkService,
) *Registry {
	return &Registry{
		clock:      clk,
		sensor:     sns,
		wireless:   wls,
		power:      pwr,
		secureLink: sec,
	}
}

// NewSimulatedRegistry wires up the bench implementations of every
// capability: a sinusoidal sensor, a loopback radio, a draining battery
// and AES-GCM encryption under a random session key.
func NewSimulatedRegistry() (*Registry, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}

	sec, err := securelink.NewAESSecureLink(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secure link: %w", err)
	}

	return NewRegistry(
		clock.NewSystemClock(),
		sensor.NewSimulatedSensor("SIM-0001"),
		wireless.NewSimulatedWireless(),
		powermgmt.NewSimulatedPower(0.2),
		sec,
	), nil
}

func (r *Registry) GetClock() clock.Clock {
	return r.clock
}

func (r *Registry) GetSensor() sensor.ISensorService {
	return r.sensor
}

func (r *Registry) GetWireless() wireless.IWirelessService {
	return r.wireless
}

func (r *Registry) GetPower() powermgmt.IPowerService {
	return r.power
}

func (r *Registry) GetSecureLink() securelink.ISecureLinkService {
	return r.secureLink
}
