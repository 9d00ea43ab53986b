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
package dto

import (
	"github.com/zintix-labs/gausslab/corefmt"
	"github.com/zintix-labs/gausslab/spec"
	"github.com/zintix-labs/gausslab/stats"
)

// SampleResult /v1/sample 的回應。
type SampleResult struct {
	Mu        float64     `json:"mu"`
	Sigma     float64     `json:"sigma"`
	Method    string      `json:"method"`
	Precision string      `json:"precision"`
	Generator string      `json:"generator"`
	Seed      int64       `json:"seed"`
	N         int         `json:"n"`
	Mean      float64     `json:"mean"`
	Std       float64     `json:"std"`
	Samples   []float64   `json:"samples"`
	State     SampleState `json:"state"`
}

// SampleState 產生器在取樣前後的快照，可直接當作下一次請求的 start_b64。
type SampleState struct {
	StartB64 string `json:"start_b64"`
	AfterB64 string `json:"after_b64"`
}

// NewSampleResult 組裝回應；mean / std 以 stats.MeanStd 計算（n=1 時 std 為 0）。
func NewSampleResult(ss *spec.SimSetting, seed int64, xs []float64, start, after []byte) SampleResult {
	mean, std := stats.MeanStd(xs)
	return SampleResult{
		Mu:        ss.Mu,
		Sigma:     ss.Sigma,
		Method:    ss.Method.String(),
		Precision: string(ss.Precision),
		Generator: string(ss.Generator),
		Seed:      seed,
		N:         len(xs),
		Mean:      mean,
		Std:       std,
		Samples:   xs,
		State: SampleState{
			StartB64: corefmt.EncodeBase64(start),
			AfterB64: corefmt.EncodeBase64(after),
		},
	}
}

// SimResult /v1/sim 的回應。
type SimResult struct {
	Report   *stats.Report `json:"report"`
	UsedTime int64         `json:"used_ms"`
}
