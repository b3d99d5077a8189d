// Copyright 2025 The Brainprogress Authors
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

package runtime

import "time"

// Runtime Defaults
const (
	// DefaultTickInterval is the frame interval of live previews, about 60fps.
	DefaultTickInterval = 16 * time.Millisecond

	// DefaultTimeout bounds offline frame rendering.
	DefaultTimeout = 2 * time.Minute

	// TickIntervalMin is the smallest accepted frame interval.
	TickIntervalMin = time.Millisecond

	// TickIntervalMax is the largest accepted frame interval.
	TickIntervalMax = time.Second
)

// Environment Variables
const (
	// ManifestEnvVar overrides the default manifest path.
	ManifestEnvVar = "BRAIN_MANIFEST"

	// DebugEnvVar enables debug logging.
	DebugEnvVar = "BRAIN_DEBUG"
)

// ValidateTickInterval ensures interval is within acceptable bounds.
func ValidateTickInterval(interval time.Duration) bool {
	return interval >= TickIntervalMin && interval <= TickIntervalMax
}
