// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package pkginfo

import (
	"runtime"
	"sort"
	"strings"
	"testing"
)

func TestBuildVersionString(t *testing.T) {
	Version = "1.2.3"
	CommitHash = "abc123def"
	BuildDate = "2025-08-21"
	t.Cleanup(func() {
		Version = ""
		CommitHash = ""
		BuildDate = ""
	})

	got := BuildVersionString()

	for _, want := range []string{
		"hwdata 1.2.3",
		runtime.GOOS + "/" + runtime.GOARCH,
		"Commit: abc123def",
		"Build Date: 2025-08-21",
		runtime.Version(),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("version string missing %q:\n%s", want, got)
		}
	}
}

func TestBuildVersionStringUnset(t *testing.T) {
	// without ldflags the version comes from the embedded build info,
	// never an empty string
	got := BuildVersionString()

	if !strings.Contains(got, "hwdata ") {
		t.Errorf("version string missing binary name:\n%s", got)
	}
	if strings.Contains(got, "hwdata  ") {
		t.Errorf("version string has an empty version:\n%s", got)
	}
}

func TestGetDependencyList(t *testing.T) {
	deps := GetDependencyList()

	if len(deps) == 0 {
		t.Fatal("GetDependencyList returned no dependencies")
	}
	if !sort.StringsAreSorted(deps) {
		t.Error("GetDependencyList is not sorted")
	}
	for _, dep := range deps {
		if !strings.Contains(dep, "=") {
			t.Errorf("dependency %q is not formatted as package=version", dep)
		}
	}
}
