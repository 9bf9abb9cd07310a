/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version exposes the build version of decalsheet.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is overridden at build time via -ldflags "-X decalsheet/internal/version.Version=...".
var Version = "0.4.0"

// Commit is the VCS revision, empty for local builds.
var Commit = ""

// Parsed returns Version as a semantic version.
func Parsed() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", Version, err)
	}
	return v, nil
}

// String returns a human readable version string such as "v0.4.0 (abc123)".
func String() string {
	s := "v" + Version
	if v, err := Parsed(); err == nil {
		s = v.Original()
		if s[0] != 'v' {
			s = "v" + s
		}
	}
	if Commit != "" {
		s += " (" + Commit + ")"
	}
	return s
}

// AtLeast reports whether the running version satisfies ">= min".
// Unparsable input yields false.
func AtLeast(min string) bool {
	c, err := semver.NewConstraint(">= " + min)
	if err != nil {
		return false
	}
	v, err := Parsed()
	if err != nil {
		return false
	}
	return c.Check(v)
}
