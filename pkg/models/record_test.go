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

package models_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/models"
)

var _ = Describe("MeasurementRecord", func() {
	newRecord := func() models.MeasurementRecord {
		return models.MeasurementRecord{
			Timestamp:    60000,
			Raw:          812,
			GlucoseMgDl:  118.4,
			TemperatureC: 34.1,
			BatteryLevel: 87,
		}
	}

	Describe("Seal and Verify", func() {
		It("verifies an untouched sealed record", func() {
			record := newRecord()
			record.Seal()

			Expect(record.Checksum).NotTo(BeZero())
			Expect(record.Verify()).To(BeTrue())
		})

		It("detects a tampered glucose value", func() {
			record := newRecord()
			record.Seal()

			record.GlucoseMgDl = 480

			Expect(record.Verify()).To(BeFalse())
		})

		It("detects a tampered timestamp", func() {
			record := newRecord()
			record.Seal()

			record.Timestamp++

			Expect(record.Verify()).To(BeFalse())
		})

		It("rejects an unsealed record", func() {
			Expect(newRecord().Verify()).To(BeFalse())
		})

		It("produces a stable checksum for identical contents", func() {
			a := newRecord()
			b := newRecord()
			a.Seal()
			b.Seal()

			Expect(a.Checksum).To(Equal(b.Checksum))
		})
	})

	Describe("Encode", func() {
		It("renders every field", func() {
			record := newRecord()
			record.Seal()

			data, err := record.Encode()
			Expect(err).NotTo(HaveOccurred())

			payload := string(data)
			Expect(payload).To(ContainSubstring(`"timestamp":60000`))
			Expect(payload).To(ContainSubstring(`"raw":812`))
			Expect(payload).To(ContainSubstring(`"glucoseMgDl":118.4`))
			Expect(payload).To(ContainSubstring(`"batteryLevel":87`))
			Expect(payload).To(ContainSubstring(`"checksum"`))
		})
	})
})

var _ = Describe("Alert", func() {
	It("encodes its kind and value", func() {
		alert := models.Alert{
			Kind:      models.AlertLowGlucose,
			Value:     64.5,
			Timestamp: 120000,
		}

		data, err := alert.Encode()
		Expect(err).NotTo(HaveOccurred())

		payload := string(data)
		Expect(payload).To(ContainSubstring(`"kind":"low_glucose"`))
		Expect(payload).To(ContainSubstring(`"value":64.5`))
	})
})
