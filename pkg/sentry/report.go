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
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type IssueType string

const (
	IssueTypeWarning IssueType = "warning"
	IssueTypeError   IssueType = "error"
	IssueTypeFatal   IssueType = "fatal"
)

// ReportIssue logs the error at the matching zap level and, when fault
// reporting is enabled, forwards it upstream. Logging always happens even
// when the upstream report is debounced or disabled.
func ReportIssue(err error, issueType IssueType, log *zap.SugaredLogger) {
	if log == nil {
		// If logger initialization failed somehow, create a no-op logger to avoid nil panics
		log = zap.NewNop().Sugar()
	}

	switch issueType {
	case IssueTypeFatal:
		log.Errorf("FATAL: %v", err)
		capture(sentry.LevelFatal, err)
	case IssueTypeError:
		log.Errorf("%v", err)
		capture(sentry.LevelError, err)
	case IssueTypeWarning:
		log.Warnf("%v", err)
		capture(sentry.LevelWarning, err)
	}
}

// ReportIssuef formats an error message and reports it.
func ReportIssuef(issueType IssueType, log *zap.SugaredLogger, template string, args ...interface{}) {
	ReportIssue(fmt.Errorf(template, args...), issueType, log)
}

// ReportFSMErrorf reports a device FSM transition error with identifying context.
func ReportFSMErrorf(log *zap.SugaredLogger, instanceID string, fsmType string, operation string, template string, args ...interface{}) {
	err := fmt.Errorf("[%s/%s] %s: %w", fsmType, instanceID, operation, fmt.Errorf(template, args...))
	ReportIssue(err, IssueTypeError, log)
}

func capture(level sentry.Level, err error) {
	if !enabled {
		return
	}

	if !shouldReport(err.Error()) {
		return
	}

	sendSentryEvent(createSentryEvent(level, err))
}
