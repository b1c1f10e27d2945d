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

package smoothing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/smoothing"
)

var _ = Describe("Filter", func() {
	Context("with a window of three", func() {
		var filter *smoothing.Filter

		BeforeEach(func() {
			filter = smoothing.NewFilter(3)
		})

		It("averages over the partial window until it fills", func() {
			Expect(filter.Push(80)).To(Equal(80.0))
			Expect(filter.Push(90)).To(Equal(85.0))
			Expect(filter.Push(100)).To(Equal(90.0))
			Expect(filter.Push(110)).To(Equal(100.0))
		})

		It("evicts the oldest sample once full", func() {
			for _, v := range []float64{80, 90, 100} {
				filter.Push(v)
			}

			// Window is now [90, 100, 200].
			Expect(filter.Push(200)).To(Equal(130.0))
		})

		It("tracks the sample count up to the window size", func() {
			Expect(filter.Count()).To(Equal(0))

			filter.Push(100)
			Expect(filter.Count()).To(Equal(1))

			for _, v := range []float64{100, 100, 100, 100} {
				filter.Push(v)
			}
			Expect(filter.Count()).To(Equal(3))
		})

		It("starts over after a reset", func() {
			filter.Push(80)
			filter.Push(90)
			filter.Reset()

			Expect(filter.Count()).To(Equal(0))
			Expect(filter.Push(120)).To(Equal(120.0))
		})
	})

	Context("with a window of one", func() {
		It("passes samples through unchanged", func() {
			filter := smoothing.NewFilter(1)

			Expect(filter.Push(75)).To(Equal(75.0))
			Expect(filter.Push(260)).To(Equal(260.0))
		})
	})

	Describe("NewFilter", func() {
		It("clamps non-positive window sizes to one", func() {
			filter := smoothing.NewFilter(0)

			Expect(filter.Push(100)).To(Equal(100.0))
			Expect(filter.Push(50)).To(Equal(50.0))
		})
	})
})
