/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version carries build identification, set via -ldflags:
//
//	go build -ldflags "-X boothplan/internal/version.Version=1.2.0 -X boothplan/internal/version.Commit=abc123"
package version

import "runtime/debug"

var (
	Version = "0.1.0-dev"
	Commit  = ""
)

// String returns "Version" or "Version (commit)". Without an injected commit
// it falls back to the VCS revision recorded by the toolchain.
func String() string {
	c := Commit
	if c == "" {
		c = vcsRevision()
	}
	if c == "" {
		return Version
	}
	if len(c) > 12 {
		c = c[:12]
	}
	return Version + " (" + c + ")"
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
