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

// Package perf 包一層 runtime/pprof，讓 cmd/run 可以用一個 flag 切換 profiling。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/gausslab/errs"
)

// Dir pprof 檔案寫入路徑
var Dir = "build/profiling"

// Modes 支援的 profiling 模式（空字串表示不開啟）。
func Modes() []string {
	return []string{"", "cpu", "heap", "allocs"}
}

// RunPProf 根據 mode 決定執行哪種 Profiling；未知的 mode 回傳 Warn 且不執行 exe。
func RunPProf(exe func(), mode string) error {
	switch mode {
	case "":
		exe()
		return nil
	case "cpu":
		return PProfCPU(exe)
	case "heap":
		return PProfHeap(exe)
	case "allocs":
		return PProfAllocs(exe)
	default:
		return errs.Warnf("unsupported pprof mode: %q", mode)
	}
}

// PProfCPU 對送入的函數做 CPU profiling。
//
// 可以作性能分析，也可以拿來做構建時給pgo的優化blueprint
//
// Usage like:
//
//	go run ./cmd/run -preset 1 -p cpu
func PProfCPU(exe func()) error {
	f, err := create("cpu.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "failed to start pprof")
	}
	defer pprof.StopCPUProfile()

	exe()
	return nil
}

// PProfHeap 會在 exe() 執行完後，寫出一次 Heap Snapshot（in-use memory）。
// 寫出前呼叫一次 runtime.GC()，讓快照貼近 Live Objects。
// 輸出檔：<Dir>/heap.pprof
func PProfHeap(exe func()) error {
	exe()
	runtime.GC()

	f, err := create("heap.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errs.Wrap(err, "failed to write heap profile")
	}
	return nil
}

// PProfAllocs 會在 exe() 後寫出「累積配置」(allocs) Profile，
// 需要搭配 -alloc_space / -alloc_objects 指標查看。
// 輸出檔：<Dir>/allocs.pprof
func PProfAllocs(exe func()) error {
	exe()

	f, err := create("allocs.pprof")
	if err != nil {
		return err
	}
	defer f.Close()
	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "failed to write allocs profile")
		}
	}
	return nil
}

func create(name string) (*os.File, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "failed to create profiling dir")
	}
	f, err := os.Create(filepath.Join(Dir, name))
	if err != nil {
		return nil, errs.Wrap(err, "failed to create "+name)
	}
	return f, nil
}
