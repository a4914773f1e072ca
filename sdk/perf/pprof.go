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

// Package perf 在執行一段工作的前後寫出 pprof 檔，供 `randwheel sim --pprof` 分析模擬器熱點。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/randwheel/errs"
)

// DefaultDir 是 pprof 檔案寫入路徑。
const DefaultDir = "build/profiling"

// Modes 列出支援的 profile 種類，空字串代表不做 profiling。
var Modes = []string{"", "cpu", "heap", "allocs"}

// Run 根據 mode 決定用哪種 profile 包住 exe，回傳寫出的檔案路徑（mode 為空時為空字串）。
func Run(mode, dir string, exe func()) (string, error) {
	if mode == "" {
		exe()
		return "", nil
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "creating profiling dir")
	}
	path := filepath.Join(dir, mode+".pprof")
	switch mode {
	case "cpu":
		return path, CPU(path, exe)
	case "heap":
		return path, Heap(path, exe)
	case "allocs":
		return path, Allocs(path, exe)
	default:
		return "", errs.Warnf("unknown pprof mode %q (want cpu, heap or allocs)", mode)
	}
}

// CPU 在 exe 執行期間開啟 CPU profiling。
//
// 產出也可以當作 PGO 的 default.pgo：
//
//	randwheel sim --rounds 5000000 --pprof cpu
//	cp build/profiling/cpu.pprof cmd/randwheel/default.pgo
func CPU(path string, exe func()) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "creating "+path)
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "starting cpu profile")
	}
	defer pprof.StopCPUProfile()

	exe()
	return nil
}

// Heap 會在 exe() 執行完後寫出一次 Heap Snapshot（in-use memory）。
// 寫出前先 runtime.GC()，讓快照貼近存活物件。
func Heap(path string, exe func()) error {
	exe()
	runtime.GC()
	return writeProfile(path, "heap")
}

// Allocs 會在 exe() 後寫出累積配置 profile，
// 搭配 -sample_index=alloc_space 或 alloc_objects 查看分配熱點。
func Allocs(path string, exe func()) error {
	exe()
	return writeProfile(path, "allocs")
}

func writeProfile(path, name string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.NewFatal("no such profile: " + name)
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "creating "+path)
	}
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "writing "+name+" profile")
	}
	return nil
}
