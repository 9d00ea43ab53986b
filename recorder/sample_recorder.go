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
package recorder

import (
	"math"

	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/spec"
	"github.com/zintix-labs/gausslab/stats"
)

// SampleRecorder 取樣紀錄員
//
// SampleRecorder 負責累積樣本的動差與標準化分桶，並透過Done輸出統計報表。
// 一個 SampleRecorder 只給一個 goroutine 使用；多 worker 時各自一份，最後 Merge。
type SampleRecorder struct {
	Setting *spec.SimSetting
	Seed    int64
	Workers int
	Moments *stats.Moments
	Hist    *stats.Histogram // sigma = 0 時為 nil
	scale   float64          // 1/|sigma|
}

func NewSampleRecorder(ss *spec.SimSetting, seed int64) (*SampleRecorder, error) {
	if ss == nil {
		return nil, errs.NewFatal("sim setting required")
	}
	s := &SampleRecorder{
		Setting: ss,
		Seed:    seed,
		Workers: 1,
		Moments: &stats.Moments{},
	}
	if ss.Sigma != 0 {
		s.Hist = stats.NewHistogram(ss.Bins)
		s.scale = 1 / math.Abs(ss.Sigma)
	}
	return s, nil
}

// MergeSampleRecorder 合併多個 worker 的紀錄；設定必須一致。
func MergeSampleRecorder(r []*SampleRecorder) (*SampleRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge sample record err : empty input")
	}
	r0 := r[0]
	s, err := NewSampleRecorder(r0.Setting, r0.Seed)
	if err != nil {
		return nil, err
	}
	s.Workers = 0
	for _, v := range r {
		if v.Setting.Name != r0.Setting.Name || v.Setting.Mu != r0.Setting.Mu || v.Setting.Sigma != r0.Setting.Sigma {
			return nil, errs.NewFatal("merge sample record err : different setting")
		}
		s.Moments.Merge(v.Moments)
		if s.Hist != nil {
			if err := s.Hist.Merge(v.Hist); err != nil {
				return nil, err
			}
		}
		s.Workers += v.Workers
	}
	return s, nil
}

// Record 紀錄一個樣本
func (s *SampleRecorder) Record(x float64) {
	s.Moments.Add(x)
	if s.Hist != nil {
		s.Hist.Add((x - s.Setting.Mu) * s.scale)
	}
}

// Done 產出統計報表（已呼叫 Report.Done）
func (s *SampleRecorder) Done() *stats.Report {
	ss := s.Setting
	report := &stats.Report{
		Summary: &stats.SummaryReport{
			Name:      ss.Name,
			PID:       int(ss.PID),
			Method:    ss.Method.String(),
			Precision: string(ss.Precision),
			Generator: string(ss.Generator),
			Seed:      s.Seed,
			Workers:   s.Workers,
			Mu:        ss.Mu,
			Sigma:     ss.Sigma,
		},
		Moments: s.Moments,
	}
	if s.Hist != nil {
		report.Dist = stats.NewDistReport(s.Hist)
	}
	report.Done()
	return report
}
