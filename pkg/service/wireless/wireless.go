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

// Package wireless provides the radio link to the paired receiver. The
// link carries encrypted measurement records and best-effort alert pushes.
package wireless

import (
	"context"
	"errors"
)

// ErrSendFailure indicates the radio accepted the payload but delivery
// to the receiver failed.
var ErrSendFailure = errors.New("wireless send failure")

// ErrNotPaired indicates an operation that requires a paired receiver was
// attempted without one.
var ErrNotPaired = errors.New("no paired receiver")

// IWirelessService is the interface for the radio link.
type IWirelessService interface {
	// IsConnected reports whether the radio currently has a live link.
	IsConnected() bool

	// IsPaired reports whether a receiver has completed pairing.
	IsPaired() bool

	// PairingRequested reports whether a receiver has asked to pair since
	// the last CompletePairing call.
	PairingRequested() bool

	// CompletePairing finalizes a pending pairing request.
	CompletePairing(ctx context.Context) error

	// Send transmits one encrypted payload to the paired receiver.
	Send(ctx context.Context, payload []byte) error

	// SendAlert pushes one alert payload to the paired receiver. Alert
	// delivery is best effort and never blocks the measurement cycle.
	SendAlert(ctx context.Context, payload []byte) error
}
