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

// Package transmit ships the most recent history records to the paired
// receiver, encrypting each record individually so one bad record never
// blocks the rest of the batch.
package transmit

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitalpatch/cgm-core/pkg/history"
	"github.com/vitalpatch/cgm-core/pkg/logger"
	"github.com/vitalpatch/cgm-core/pkg/metrics"
	"github.com/vitalpatch/cgm-core/pkg/service/securelink"
	"github.com/vitalpatch/cgm-core/pkg/service/wireless"
)

// Gate decides whether transmission may run this cycle.
type Gate struct {
	wireless wireless.IWirelessService
}

// NewGate creates a gate over the given radio.
func NewGate(wls wireless.IWirelessService) *Gate {
	return &Gate{wireless: wls}
}

// IsOpen returns true only when a receiver is paired and the link is live.
// While closed, records simply accumulate in the history store.
func (g *Gate) IsOpen() bool {
	return g.wireless.IsPaired() && g.wireless.IsConnected()
}

// Transmitter sends batches of history records over the secure link.
type Transmitter struct {
	store      *history.Store
	gate       *Gate
	wireless   wireless.IWirelessService
	secureLink securelink.ISecureLinkService

	// batchSize is the maximum number of records sent per cycle.
	batchSize int

	log *zap.SugaredLogger
}

// NewTransmitter creates a transmitter draining the given store.
func NewTransmitter(
	store *history.Store,
	wls wireless.IWirelessService,
	sec securelink.ISecureLinkService,
	batchSize int,
) *Transmitter {
	return &Transmitter{
		store:      store,
		gate:       NewGate(wls),
		wireless:   wls,
		secureLink: sec,
		batchSize:  batchSize,
		log:        logger.For(logger.ComponentTransmitter),
	}
}

// Transmit sends up to batchSize of the newest records, newest first, and
// returns the number delivered. Records stay in the history store either
// way; the receiver deduplicates by timestamp, and redundant delivery is
// preferred over gaps in the clinical record.
//
// Each record is verified, encoded and encrypted individually. A failure
// at any stage skips that record and moves on to the next.
func (t *Transmitter) Transmit(ctx context.Context) int {
	if !t.gate.IsOpen() {
		return 0
	}

	batch := t.store.SnapshotRecent(t.batchSize)

	sent := 0

	for _, record := range batch {
		if err := ctx.Err(); err != nil {
			break
		}

		if !record.Verify() {
			metrics.RecordSkippedRecord(metrics.SkipReasonChecksum)
			t.log.Warnf("Skipping record at tick %d: checksum mismatch", record.Timestamp)

			continue
		}

		plaintext, err := record.Encode()
		if err != nil {
			metrics.RecordSkippedRecord(metrics.SkipReasonEncode)
			t.log.Errorf("Skipping record at tick %d: encode failed: %v", record.Timestamp, err)

			continue
		}

		ciphertext, err := t.secureLink.Encrypt(plaintext)
		if err != nil {
			metrics.RecordSkippedRecord(metrics.SkipReasonEncryption)
			t.log.Warnf("Skipping record at tick %d: encryption failed: %v", record.Timestamp, err)

			continue
		}

		if err := t.wireless.Send(ctx, ciphertext); err != nil {
			metrics.RecordSkippedRecord(metrics.SkipReasonSend)
			t.log.Warnf("Skipping record at tick %d: send failed: %v", record.Timestamp, err)

			continue
		}

		sent++
	}

	if sent > 0 {
		metrics.AddTransmittedRecords(sent)
		t.log.Debugf("Transmitted %d of %d records", sent, len(batch))
	}

	return sent
}
