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

package securelink

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// AESSecureLink seals payloads with AES-256-GCM under a session key
// established during pairing. The nonce is prepended to the ciphertext.
type AESSecureLink struct {
	aead cipher.AEAD
}

// NewAESSecureLink creates a secure link from a 32-byte session key.
func NewAESSecureLink(key []byte) (*AESSecureLink, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AEAD: %w", err)
	}

	return &AESSecureLink{aead: aead}, nil
}

func (s *AESSecureLink) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEncryptionFailure, err)
	}

	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}
