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

package alerts

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/logger"
	"github.com/vitalpatch/cgm-core/pkg/metrics"
	"github.com/vitalpatch/cgm-core/pkg/models"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
)

// Notifier pushes alerts to the paired receiver. Delivery is best effort:
// failures are logged and counted but never interrupt the measurement
// cycle, and alerts are not queued for retransmission. The on-device alarm
// fires regardless of delivery.
type Notifier struct {
	wireless wireless.IWirelessService
	log      *zap.SugaredLogger
}

// NewNotifier creates a notifier pushing over the given radio.
func NewNotifier(wls wireless.IWirelessService) *Notifier {
	return &Notifier{
		wireless: wls,
		log:      logger.For(logger.ComponentAlertNotifier),
	}
}

// Push sends each alert to the receiver if one is paired.
func (n *Notifier) Push(ctx context.Context, raised []models.Alert) {
	for _, alert := range raised {
		metrics.RecordAlert(string(alert.Kind))

		n.log.Warnf("Alert raised: %s (value %.1f)", alert.Kind, alert.Value)

		if !n.wireless.IsPaired() || !n.wireless.IsConnected() {
			continue
		}

		payload, err := alert.Encode()
		if err != nil {
			n.log.Errorf("Failed to encode alert %s: %v", alert.Kind, err)

			continue
		}

		if err := n.wireless.SendAlert(ctx, payload); err != nil {
			n.log.Warnf("Failed to push alert %s: %v", alert.Kind, err)
		}
	}
}
