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

package version

import (
	"github.com/Masterminds/semver/v3"

	"github.com/vitalpatch/cgm-core/pkg/constants"
)

// appVersion is injected at build time via
// -ldflags "-X github.com/vitalpatch/cgm-core/pkg/version.appVersion=...".
var appVersion = constants.DefaultAppVersion

// GetAppVersion returns the firmware core version.
func GetAppVersion() string {
	return appVersion
}

// IsPrerelease reports whether the running version carries a prerelease tag.
// Unparseable versions are treated as prerelease so that development builds
// never masquerade as production.
func IsPrerelease() bool {
	v, err := semver.NewVersion(appVersion)
	if err != nil {
		return true
	}

	return v.Prerelease() != ""
}
