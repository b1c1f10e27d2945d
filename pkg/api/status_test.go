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

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalpatch/cgm-core/pkg/api"
	"github.com/vitalpatch/cgm-core/pkg/config"
	"github.com/vitalpatch/cgm-core/pkg/control"
	"github.com/vitalpatch/cgm-core/pkg/service/clock"
	"github.com/vitalpatch/cgm-core/pkg/service/powermgmt"
	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
	"github.com/vitalpatch/cgm-core/pkg/service/sensor"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
	"github.com/vitalpatch/cgm-core/pkg/serviceregistry"
)

var _ = Describe("StatusServer", func() {
	var server *api.StatusServer

	BeforeEach(func() {
		registry := serviceregistry.NewRegistry(
			clock.NewMockClock(0),
			sensor.NewMockSensorService(),
			wireless.NewMockWirelessService(),
			powermgmt.NewMockPowerService(),
			securelink.NewMockSecureLinkService(),
		)

		loop := control.NewControlLoop(config.NewMockConfigManager(), registry)
		Expect(loop.Initialize(context.Background())).To(Succeed())

		server = api.NewStatusServer(loop, 0)
	})

	get := func(path string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, path, nil)
		server.Handler().ServeHTTP(recorder, request)

		return recorder
	}

	Describe("GET /status", func() {
		It("reports the device state and session", func() {
			response := get("/status")

			Expect(response.Code).To(Equal(http.StatusOK))

			body := response.Body.String()
			Expect(body).To(ContainSubstring(`"state":"waiting"`))
			Expect(body).To(ContainSubstring(`"sessionId"`))
			Expect(body).To(ContainSubstring(`"historyCapacity":1440`))
		})
	})

	Describe("GET /healthz", func() {
		It("responds ok", func() {
			response := get("/healthz")

			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.String()).To(Equal("ok"))
		})
	})
})
