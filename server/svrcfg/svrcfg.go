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
package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/gausslab"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/server/logger"
)

const (
	// DefaultMaxDraw /v1/sample 單次回傳樣本數上限
	DefaultMaxDraw = 100_000
	// DefaultMaxSamples /v1/sim 單次模擬樣本數上限
	DefaultMaxSamples = 10_000_000
)

type SvrCfg struct {
	Addr       string // 監聽位址，空字串使用 netsvr 預設 (:5808)
	Log        *slog.Logger
	Lab        *gausslab.Lab
	MaxDraw    int // 0 表示 DefaultMaxDraw
	MaxSamples int // 0 表示 DefaultMaxSamples
	MaxWorkers int // 0 表示 runtime 不限 (仍受 spec.MaxWorkers 約束)
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 未注入時用同步 dev logger，不留下需要 Close 的背景 goroutine
		sc.Log = logger.NewDefaultLogger(logger.ModeDev)
	}
	if sc.MaxDraw <= 0 {
		sc.MaxDraw = DefaultMaxDraw
	}
	if sc.MaxSamples <= 0 {
		sc.MaxSamples = DefaultMaxSamples
	}
	if sc.MaxWorkers < 0 {
		return errs.NewFatal("max workers must be non-negative")
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}
