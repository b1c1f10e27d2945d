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

// Package api exposes a read-only status endpoint for bench diagnostics.
// It never mutates loop state and is not part of the clinical data path.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vitalpatch/cgm-core/pkg/control"
	"github.com/vitalpatch/cgm-core/pkg/logger"
	"github.com/vitalpatch/cgm-core/pkg/version"
)

// StatusServer serves the device status over HTTP.
type StatusServer struct {
	loop   *control.ControlLoop
	server *http.Server
}

// statusResponse is the JSON shape of GET /status.
type statusResponse struct {
	Version          string   `json:"version"`
	State            string   `json:"state"`
	SessionID        string   `json:"sessionId"`
	SamplingInterval string   `json:"samplingInterval"`
	CyclesRun        uint64   `json:"cyclesRun"`
	LastGlucoseMgDl  *float64 `json:"lastGlucoseMgDl"`
	BatteryPercent   uint8    `json:"batteryPercent"`
	HistoryLength    int      `json:"historyLength"`
	HistoryCapacity  int      `json:"historyCapacity"`
}

// NewStatusServer creates a status server for the given loop.
func NewStatusServer(loop *control.ControlLoop, port int) *StatusServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &StatusServer{
		loop: loop,
		server: &http.Server{
			Addr:        fmt.Sprintf(":%d", port),
			Handler:     router,
			ReadTimeout: 5 * time.Second,
		},
	}

	router.GET("/status", s.handleStatus)
	router.GET("/healthz", s.handleHealthz)

	return s
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *StatusServer) ListenAndServe() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown stops the server gracefully.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for in-process testing.
func (s *StatusServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *StatusServer) handleStatus(c *gin.Context) {
	session := s.loop.SessionSnapshot()
	length, capacity := s.loop.HistoryStats()

	c.JSON(http.StatusOK, statusResponse{
		Version:          version.GetAppVersion(),
		State:            s.loop.CurrentState(),
		SessionID:        session.ID,
		SamplingInterval: session.SamplingInterval.String(),
		CyclesRun:        session.CyclesRun,
		LastGlucoseMgDl:  session.LastSmoothed,
		BatteryPercent:   session.LastBattery,
		HistoryLength:    length,
		HistoryCapacity:  capacity,
	})
}

func (s *StatusServer) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func init() {
	// gin writes its own startup banner to stdout; keep device logs clean.
	gin.DefaultWriter = ginLogWriter{}
}

type ginLogWriter struct{}

func (ginLogWriter) Write(p []byte) (int, error) {
	logger.For(logger.ComponentStatusAPI).Debug(string(p))

	return len(p), nil
}
