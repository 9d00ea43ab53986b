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
	"log/slog"
	"net/http"

	"github.com/zintix-labs/gausslab"
	"github.com/zintix-labs/gausslab/dto"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/server/httperr"
	"github.com/zintix-labs/gausslab/server/netsvr/middleware"
	"github.com/zintix-labs/gausslab/server/svrcfg"
)

// SampleHandler 直接取樣：回傳 n 個樣本與產生器前後快照。
type SampleHandler struct {
	lab     *gausslab.Lab
	log     *slog.Logger
	maxDraw int
}

func NewSampleHandler(sCfg *svrcfg.SvrCfg) (*SampleHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	log := sCfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	maxDraw := sCfg.MaxDraw
	if maxDraw <= 0 {
		maxDraw = svrcfg.DefaultMaxDraw
	}
	return &SampleHandler{lab: sCfg.Lab, log: log, maxDraw: maxDraw}, nil
}

func (h *SampleHandler) Sample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSampleRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	middleware.Annotate(r, slog.Int("n", req.N))
	ss, err := req.Setting(h.maxDraw)
	if err != nil {
		httperr.Log(h.log, "sample rejected", err, middleware.ReqAttr(r))
		httperr.Errs(w, err)
		return
	}
	middleware.Annotate(r,
		slog.String("method", ss.Method.String()),
		slog.String("precision", string(ss.Precision)),
		slog.String("generator", string(ss.Generator)),
	)
	start, err := req.StartState()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if ss.Seed == nil {
		v := core.EntropySeed()
		ss.Seed = &v
	}

	sim, err := h.lab.NewSimulatorBySetting(ss)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator err"))
		return
	}
	if start != nil {
		if err := sim.Restore(start); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	before, err := sim.Snapshot()
	if err != nil {
		httperr.Log(h.log, "snapshot failed", err)
		httperr.Errs(w, err)
		return
	}
	xs, err := sim.Draw(ss.Samples)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	after, err := sim.Snapshot()
	if err != nil {
		httperr.Log(h.log, "snapshot failed", err)
		httperr.Errs(w, err)
		return
	}

	h.log.Debug("sample",
		middleware.ReqAttr(r),
		slog.Int64("seed", sim.Seed()),
		slog.Int("n", len(xs)),
	)
	resp := dto.NewSampleResult(sim.Setting(), sim.Seed(), xs, before, after)
	if err := httperr.JSON(w, resp); err != nil {
		// mu/sigma 合法但 sigma*z+mu 溢位時會走到這裡
		httperr.Log(h.log, "sample encode failed", err, middleware.ReqAttr(r), slog.Int64("seed", sim.Seed()))
	}
}
