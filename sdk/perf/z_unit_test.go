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

	"github.com/zintix-labs/randwheel/errs"
)

func busy() {
	s := 0
	for i := 0; i < 1_000_000; i++ {
		s += i % 7
	}
	_ = s
}

func TestRunWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		ran := false
		path, err := Run(mode, dir, func() { ran = true; busy() })
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !ran {
			t.Fatalf("%s: exe not called", mode)
		}
		if path != filepath.Join(dir, mode+".pprof") {
			t.Fatalf("%s: path=%s", mode, path)
		}
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() == 0 {
			t.Fatalf("%s: empty profile", mode)
		}
	}
}

func TestRunWithoutMode(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never")
	ran := false
	path, err := Run("", dir, func() { ran = true })
	if err != nil || path != "" || !ran {
		t.Fatalf("path=%q err=%v ran=%v", path, err, ran)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("dir should not be created without a mode")
	}
}

func TestRunUnknownMode(t *testing.T) {
	ran := false
	_, err := Run("mutex", t.TempDir(), func() { ran = true })
	if err == nil || errs.Level(err) != errs.Warn {
		t.Fatalf("err=%v", err)
	}
	if ran {
		t.Fatal("exe should not run for an unknown mode")
	}
}
