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

package device

import (
	"context"

	"github.com/looplab/fsm"
)

// registerCallbacks attaches logging side effects to state entries. The
// callbacks must not mutate loop state; the control loop owns all domain
// state.
func (d *DeviceFSM) registerCallbacks() {
	log := d.base.GetLogger()

	d.base.AddCallback("enter_"+StateActive, func(ctx context.Context, e *fsm.Event) {
		log.Debugf("Device %s entering active state", d.base.GetID())
	})

	d.base.AddCallback("enter_"+StateWaiting, func(ctx context.Context, e *fsm.Event) {
		log.Debugf("Device %s entering waiting state", d.base.GetID())
	})

	d.base.AddCallback("enter_"+StateEmergency, func(ctx context.Context, e *fsm.Event) {
		log.Errorf("Device %s entering emergency state", d.base.GetID())
	})
}
