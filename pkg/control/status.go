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

package control

// mutateSession applies a mutation under the session write lock.
func (c *ControlLoop) mutateSession(fn func(*Session)) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	fn(&c.session)
}

// SessionSnapshot returns a deep copy of the current session state for
// readers outside the loop goroutine.
func (c *ControlLoop) SessionSnapshot() Session {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()

	return c.session.Snapshot()
}

// CurrentState returns the current device power state.
func (c *ControlLoop) CurrentState() string {
	if c.machine == nil {
		return ""
	}

	return c.machine.Current()
}

// HistoryStats returns the occupancy and capacity of the history store.
func (c *ControlLoop) HistoryStats() (length, capacity int) {
	if c.store == nil {
		return 0, 0
	}

	return c.store.Len(), c.store.Capacity()
}
