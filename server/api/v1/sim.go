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
package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zintix-labs/gausslab"
	"github.com/zintix-labs/gausslab/dto"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/server/httperr"
	"github.com/zintix-labs/gausslab/server/netsvr/middleware"
	"github.com/zintix-labs/gausslab/server/svrcfg"
	"github.com/zintix-labs/gausslab/spec"
)

type SimHandler struct {
	lab        *gausslab.Lab
	log        *slog.Logger
	maxSamples int
	maxWorkers int
}

func NewSimHandler(sCfg *svrcfg.SvrCfg) (*SimHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	log := sCfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	maxSamples := sCfg.MaxSamples
	if maxSamples <= 0 {
		maxSamples = svrcfg.DefaultMaxSamples
	}
	return &SimHandler{
		lab:        sCfg.Lab,
		log:        log,
		maxSamples: maxSamples,
		maxWorkers: sCfg.MaxWorkers,
	}, nil
}

// Sim 以 preset（或 POST 帶入的設定）執行一次模擬並回傳統計報表。
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	var ss *spec.SimSetting
	if req.Setting != nil {
		ss = req.Setting.Clone()
	} else {
		if _, ok := sh.lab.EntryById(req.PID); !ok {
			httperr.Errs(w, errs.NewWarn("pid not found"))
			return
		}
		if ss, err = sh.lab.Setting(req.PID); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	req.Apply(ss)
	middleware.Annotate(r,
		slog.Int("pid", int(ss.PID)),
		slog.String("method", ss.Method.String()),
		slog.String("precision", string(ss.Precision)),
		slog.Int("samples", ss.Samples),
	)

	sim, err := sh.lab.NewSimulatorBySetting(ss)
	if err != nil {
		// 這裡的錯誤是來自 gausslab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", ss.PID)))
		return
	}
	set := sim.Setting()
	if set.Samples > sh.maxSamples {
		err := dto.LimitErr("samples", sh.maxSamples, set.Samples)
		httperr.Log(sh.log, "sim rejected", err, middleware.ReqAttr(r))
		httperr.Errs(w, err)
		return
	}
	workers := set.Workers
	if sh.maxWorkers > 0 {
		workers = min(workers, sh.maxWorkers)
	}
	sim.SetLogger(sh.log.With(middleware.ReqAttr(r)))

	st, used, err := sim.SimMP(workers, false)
	if err != nil {
		// 這裡的錯誤來自 simulator 尊重錯誤分級
		httperr.Log(sh.log, "simulate err", err, middleware.ReqAttr(r))
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	st.Done()
	resp := dto.SimResult{
		Report:   st,
		UsedTime: used.Milliseconds(),
	}
	if err := httperr.JSON(w, resp); err != nil {
		httperr.Log(sh.log, "sim encode failed", err, middleware.ReqAttr(r))
	}
}

// Presets 回傳目錄中所有 preset 的摘要。
func (sh *SimHandler) Presets(w http.ResponseWriter, r *http.Request) {
	sum, err := sh.lab.Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := httperr.JSON(w, sum); err != nil {
		httperr.Log(sh.log, "presets encode failed", err)
	}
}

// Preset 回傳單一 preset 的完整設定（?pid=）。
func (sh *SimHandler) Preset(w http.ResponseWriter, r *http.Request) {
	s := r.URL.Query().Get("pid")
	if s == "" {
		httperr.Errs(w, errs.NewWarn("pid is required"))
		return
	}
	pid, err := strconv.Atoi(s)
	if err != nil {
		httperr.Errs(w, errs.NewWarn("pid must be integer"))
		return
	}
	if _, ok := sh.lab.EntryById(spec.PID(pid)); !ok {
		httperr.Errs(w, errs.NewWarn("pid not found"))
		return
	}
	ss, err := sh.lab.Setting(spec.PID(pid))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := httperr.JSON(w, ss); err != nil {
		httperr.Log(sh.log, "preset encode failed", err)
	}
}
