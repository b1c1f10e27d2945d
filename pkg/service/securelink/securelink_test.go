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

package securelink_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
)

var _ = Describe("AESSecureLink", func() {
	key := bytes.Repeat([]byte{0x42}, 32)

	It("rejects keys of the wrong length", func() {
		_, err := securelink.NewAESSecureLink([]byte("short"))
		Expect(err).To(HaveOccurred())
	})

	It("produces ciphertext that differs from the plaintext", func() {
		link, err := securelink.NewAESSecureLink(key)
		Expect(err).NotTo(HaveOccurred())

		plaintext := []byte(`{"glucoseMgDl":118.4}`)

		ciphertext, err := link.Encrypt(plaintext)
		Expect(err).NotTo(HaveOccurred())

		Expect(string(ciphertext)).NotTo(ContainSubstring(string(plaintext)))
		// Nonce plus ciphertext plus tag is strictly longer than the input.
		Expect(len(ciphertext)).To(BeNumerically(">", len(plaintext)))
	})

	It("never produces the same ciphertext twice", func() {
		link, err := securelink.NewAESSecureLink(key)
		Expect(err).NotTo(HaveOccurred())

		plaintext := []byte("same payload")

		first, err := link.Encrypt(plaintext)
		Expect(err).NotTo(HaveOccurred())

		second, err := link.Encrypt(plaintext)
		Expect(err).NotTo(HaveOccurred())

		Expect(first).NotTo(Equal(second))
	})
})

var _ = Describe("MockSecureLinkService", func() {
	It("fails only the scripted call", func() {
		mock := securelink.NewMockSecureLinkService()
		mock.FailOnCall = 2

		_, err := mock.Encrypt([]byte("one"))
		Expect(err).NotTo(HaveOccurred())

		_, err = mock.Encrypt([]byte("two"))
		Expect(err).To(MatchError(securelink.ErrEncryptionFailure))

		_, err = mock.Encrypt([]byte("three"))
		Expect(err).NotTo(HaveOccurred())
	})
})
