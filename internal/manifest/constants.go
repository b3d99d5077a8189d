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

// Package manifest loads, validates and writes indicator manifests.
package manifest

// File and Path Constants
const (
	// DefaultManifestPath is the default path for the indicator manifest file
	DefaultManifestPath = ".brainprogress.yaml"

	// DefaultEnvFile is the default environment file name
	DefaultEnvFile = ".env"

	// ConfigDir is the directory searched for a fallback env file
	ConfigDir = ".brainprogress"
)

// Environment Variables
const (
	// EnvVarPrefix marks OS variables that take part in substitution
	EnvVarPrefix = "BRAIN_VAR_"

	// LogLevelEnvVar is the environment variable for log level override
	LogLevelEnvVar = "BRAIN_LOG_LEVEL"
)

// Validation Constants
const (
	// MaxNameLength is the maximum allowed length for indicator names
	MaxNameLength = 63
)
