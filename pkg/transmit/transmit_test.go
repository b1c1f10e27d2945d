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

package transmit_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/history"
	"github.com/vitalpatch/cgm-core/pkg/models"
	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
	"github.com/vitalpatch/cgm-core/pkg/transmit"
)

func sealedRecord(tick int64, glucose float64) models.MeasurementRecord {
	r := models.MeasurementRecord{
		Timestamp:   tick,
		GlucoseMgDl: glucose,
	}
	r.Seal()

	return r
}

var _ = Describe("Gate", func() {
	var mockWireless *wireless.MockWirelessService

	BeforeEach(func() {
		mockWireless = wireless.NewMockWirelessService()
	})

	It("is open only when paired and connected", func() {
		gate := transmit.NewGate(mockWireless)

		Expect(gate.IsOpen()).To(BeTrue())

		mockWireless.Connected = false
		Expect(gate.IsOpen()).To(BeFalse())

		mockWireless.Connected = true
		mockWireless.Paired = false
		Expect(gate.IsOpen()).To(BeFalse())
	})
})

var _ = Describe("Transmitter", func() {
	var (
		store          *history.Store
		mockWireless   *wireless.MockWirelessService
		mockSecureLink *securelink.MockSecureLinkService
		transmitter    *transmit.Transmitter
		ctx            context.Context
	)

	BeforeEach(func() {
		store = history.NewStore(1440)
		mockWireless = wireless.NewMockWirelessService()
		mockSecureLink = securelink.NewMockSecureLinkService()
		transmitter = transmit.NewTransmitter(store, mockWireless, mockSecureLink, 10)
		ctx = context.Background()
	})

	fill := func(n int) {
		for i := 1; i <= n; i++ {
			store.Append(sealedRecord(int64(i*1000), 100+float64(i)))
		}
	}

	Context("with the gate closed", func() {
		It("sends nothing and leaves the store intact", func() {
			fill(5)
			mockWireless.Paired = false

			Expect(transmitter.Transmit(ctx)).To(Equal(0))
			Expect(mockWireless.SentPayloads).To(BeEmpty())
			Expect(store.Len()).To(Equal(5))
		})
	})

	Context("with fewer records than the batch size", func() {
		It("sends all of them", func() {
			fill(4)

			Expect(transmitter.Transmit(ctx)).To(Equal(4))
			Expect(mockWireless.SentPayloads).To(HaveLen(4))
		})
	})

	Context("with more records than the batch size", func() {
		BeforeEach(func() {
			fill(15)
		})

		It("sends only the newest batch, newest first", func() {
			Expect(transmitter.Transmit(ctx)).To(Equal(10))

			Expect(mockWireless.SentPayloads).To(HaveLen(10))
			// Records 15 down to 6, newest first.
			Expect(string(mockWireless.SentPayloads[0])).To(ContainSubstring(`"timestamp":15000`))
			Expect(string(mockWireless.SentPayloads[9])).To(ContainSubstring(`"timestamp":6000`))
		})

		It("leaves the store untouched", func() {
			transmitter.Transmit(ctx)

			Expect(store.Len()).To(Equal(15))
		})
	})

	Context("when encryption fails for one record", func() {
		It("skips that record and sends the rest", func() {
			fill(15)
			mockSecureLink.FailOnCall = 3

			Expect(transmitter.Transmit(ctx)).To(Equal(9))
			Expect(mockWireless.SentPayloads).To(HaveLen(9))
		})
	})

	Context("when sending fails for one record", func() {
		It("skips that record and carries on", func() {
			fill(5)
			mockWireless.SendFailAfter = 2

			// The mock accepts two payloads and rejects everything after.
			Expect(transmitter.Transmit(ctx)).To(Equal(2))
		})
	})

	Context("when a record fails verification", func() {
		It("never sends it", func() {
			tampered := sealedRecord(1000, 120)
			tampered.GlucoseMgDl = 480
			store.Append(tampered)
			store.Append(sealedRecord(2000, 130))

			Expect(transmitter.Transmit(ctx)).To(Equal(1))
			Expect(string(mockWireless.SentPayloads[0])).To(ContainSubstring(`"timestamp":2000`))
		})
	})

	Context("with an empty store", func() {
		It("sends nothing", func() {
			Expect(transmitter.Transmit(ctx)).To(Equal(0))
		})
	})
})
