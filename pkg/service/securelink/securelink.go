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

// Package securelink encrypts payloads before they leave the device.
// Plaintext measurement data never reaches the radio.
package securelink

import (
	"errors"
)

// ErrEncryptionFailure indicates a payload could not be encrypted. The
// caller must drop the payload rather than send it in the clear.
var ErrEncryptionFailure = errors.New("encryption failure")

// ISecureLinkService is the interface for the payload encryption layer.
type ISecureLinkService interface {
	// Encrypt seals a plaintext payload for the paired receiver.
	Encrypt(plaintext []byte) ([]byte, error)
}
