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

package sentry

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/constants"
)

var (
	// enabled tracks whether sentry was successfully initialized.
	enabled bool

	// Package-level state for debouncing repeated errors.
	shouldDebounceErrors = true
	debounceMu           sync.Mutex
	lastReported         = map[string]time.Time{}
)

// debounceWindow is the minimum time between reports of the same message.
const debounceWindow = time.Hour

// EnableTestMode disables debouncing for testing.
func EnableTestMode() {
	shouldDebounceErrors = false
}

// DisableTestMode restores normal debouncing behavior.
func DisableTestMode() {
	shouldDebounceErrors = true
}

// InitSentry initializes fault reporting with the given app version.
// If debounceErrors is true, repeated errors are debounced to avoid spamming.
//
// Reporting stays disabled for local development builds (default version) and
// when no SENTRY_DSN is configured; ReportIssue then degrades to logging only.
func InitSentry(appVersion string, debounceErrors bool) {
	shouldDebounceErrors = debounceErrors

	if appVersion == "" || appVersion == constants.DefaultAppVersion {
		zap.S().Debug("Fault reporting disabled for local development build")

		return
	}

	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		zap.S().Debug("Fault reporting disabled: SENTRY_DSN not set")

		return
	}

	environment := constants.DefaultDevelopmentEnvironment

	version, err := semver.NewVersion(appVersion)
	if err != nil {
		zap.S().Errorf("Failed to parse app version, using default environment (development): %s", err)
	} else if version.Prerelease() == "" {
		environment = constants.DefaultProductionEnvironment
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:           dsn,
		Environment:   environment,
		Release:       "cgmcore@" + appVersion,
		EnableTracing: false,
	})
	if err != nil {
		zap.S().Errorf("Failed to initialize fault reporting: %s", err)

		return
	}

	enabled = true
}

// shouldReport applies the debounce window to a message.
func shouldReport(message string) bool {
	if !shouldDebounceErrors {
		return true
	}

	debounceMu.Lock()
	defer debounceMu.Unlock()

	if last, ok := lastReported[message]; ok && time.Since(last) < debounceWindow {
		return false
	}

	lastReported[message] = time.Now()

	return true
}

func getMeaningfulErrorTitle(err error) string {
	message := err.Error()

	// Extract the first sentence or phrase (until period, comma or a colon)
	idx := strings.IndexAny(message, ".,:")
	if idx > 0 {
		message = message[:idx]
	}

	// Limit length of the event title
	if len(message) > 100 {
		message = message[:97] + "..."
	}

	return message
}

func createSentryEvent(level sentry.Level, err error) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = level
	event.Message = err.Error()

	exception := &sentry.Exception{
		Type:       getMeaningfulErrorTitle(err),
		Value:      err.Error(),
		Stacktrace: sentry.ExtractStacktrace(err),
	}
	event.Exception = []sentry.Exception{*exception}

	return event
}

// sendSentryEvent ships an event on a cloned hub so concurrent reporters
// cannot clobber each other's scope.
func sendSentryEvent(event *sentry.Event) {
	if !enabled {
		return
	}

	localHub := sentry.CurrentHub().Clone()
	localHub.CaptureEvent(event)
}
