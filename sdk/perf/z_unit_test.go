// Copyright 2025 Zintix Labs
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
package perf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/gausslab/errs"
)

func withDir(t *testing.T) string {
	t.Helper()
	old := Dir
	Dir = filepath.Join(t.TempDir(), "profiling")
	t.Cleanup(func() { Dir = old })
	return Dir
}

func TestRunPProfModes(t *testing.T) {
	dir := withDir(t)
	for _, mode := range Modes() {
		calls := 0
		if err := RunPProf(func() { calls++ }, mode); err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		if calls != 1 {
			t.Fatalf("mode %q: exe called %d times", mode, calls)
		}
		if mode == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, mode+".pprof")); err != nil {
			t.Fatalf("mode %q: profile not written: %v", mode, err)
		}
	}
}

func TestRunPProfUnknownMode(t *testing.T) {
	withDir(t)
	called := false
	err := RunPProf(func() { called = true }, "trace")
	if err == nil || errs.Level(err) != errs.Warn {
		t.Fatalf("expected warn error, got %v", err)
	}
	if called {
		t.Fatalf("exe must not run for unknown mode")
	}
}
