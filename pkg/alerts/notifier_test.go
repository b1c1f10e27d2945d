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

package alerts_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/alerts"
	"github.com/vitalpatch/cgm-core/pkg/models"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
)

var _ = Describe("Notifier", func() {
	var (
		mockWireless *wireless.MockWirelessService
		notifier     *alerts.Notifier
		ctx          context.Context
	)

	raised := []models.Alert{
		{Kind: models.AlertLowGlucose, Value: 65, Timestamp: 1000},
		{Kind: models.AlertRapidChange, Value: -4.2, Timestamp: 1000},
	}

	BeforeEach(func() {
		mockWireless = wireless.NewMockWirelessService()
		notifier = alerts.NewNotifier(mockWireless)
		ctx = context.Background()
	})

	It("pushes every alert to a paired receiver", func() {
		notifier.Push(ctx, raised)

		Expect(mockWireless.AlertPayloads).To(HaveLen(2))
		Expect(string(mockWireless.AlertPayloads[0])).To(ContainSubstring("low_glucose"))
		Expect(string(mockWireless.AlertPayloads[1])).To(ContainSubstring("rapid_change"))
	})

	It("skips delivery when no receiver is paired", func() {
		mockWireless.Paired = false

		notifier.Push(ctx, raised)

		Expect(mockWireless.AlertPayloads).To(BeEmpty())
	})

	It("skips delivery while the link is down", func() {
		mockWireless.Connected = false

		notifier.Push(ctx, raised)

		Expect(mockWireless.AlertPayloads).To(BeEmpty())
	})

	It("swallows delivery failures", func() {
		mockWireless.SendAlertError = wireless.ErrSendFailure

		Expect(func() {
			notifier.Push(ctx, raised)
		}).NotTo(Panic())
	})
})
