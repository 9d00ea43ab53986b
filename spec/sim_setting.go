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
package spec

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/fmath"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/stats"
)

// ErrNotRepresentable 值（mu/sigma 或取樣結果）超出所選精度能表示的有限範圍。
var ErrNotRepresentable = errors.New("value not representable in precision")

// PID 預設組 (preset) 編號
type PID int

// Precision 取樣使用的浮點精度
type Precision string

const (
	Float32 Precision = "float32"
	Float64 Precision = "float64"
)

// ParsePrecision 解析精度名稱；空字串視為 float64。
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "float64", "f64", "double":
		return Float64, nil
	case "float32", "f32", "single":
		return Float32, nil
	default:
		return "", errs.Warnf("unsupported precision: %q", s)
	}
}

// Fits 回報 v 是否落在該精度的有限範圍內。
func (p Precision) Fits(v float64) bool {
	if p == Float32 {
		return fmath.Fits[float32](v)
	}
	return fmath.Fits[float64](v)
}

const (
	// DefaultSamples 未指定 samples 時的取樣數。
	DefaultSamples = 1_000_000
	// MaxWorkers workers 上限。
	MaxWorkers = 256
)

// SimSetting 一組常態取樣模擬的設定（preset）。
type SimSetting struct {
	PID       PID           `yaml:"pid"        json:"pid"`
	Name      string        `yaml:"name"       json:"name"`
	Mu        float64       `yaml:"mu"         json:"mu"`
	Sigma     float64       `yaml:"sigma"      json:"sigma"`
	Method    normal.Method `yaml:"method"     json:"method"`
	Precision Precision     `yaml:"precision"  json:"precision"`
	Generator core.Kind     `yaml:"generator"  json:"generator"`
	Samples   int           `yaml:"samples"    json:"samples"`
	Workers   int           `yaml:"workers"    json:"workers"`
	Seed      *int64        `yaml:"seed"       json:"seed,omitempty"`
	Bins      int           `yaml:"bins"       json:"bins"`
}

// Validate 補上預設值並執行基本檢查。
//
// 預設值：precision=float64、generator=pcg64、samples=DefaultSamples、
// workers=1、bins=stats.DefaultBins。method 的零值即 box-muller。
func (s *SimSetting) Validate() error {
	if s.Name == "" {
		s.Name = fmt.Sprintf("preset-%d", s.PID)
	}
	if math.IsNaN(s.Mu) || math.IsInf(s.Mu, 0) {
		return errs.Warnf("preset %q: mu must be finite, got %v", s.Name, s.Mu)
	}
	if math.IsNaN(s.Sigma) || math.IsInf(s.Sigma, 0) {
		return errs.Warnf("preset %q: sigma must be finite, got %v", s.Name, s.Sigma)
	}
	if s.Method != normal.BoxMuller && s.Method != normal.MarsagliaPolar {
		return errs.Warnf("preset %q: unknown method %s", s.Name, s.Method)
	}

	p, err := ParsePrecision(string(s.Precision))
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("preset %q", s.Name))
	}
	s.Precision = p
	if !p.Fits(s.Mu) || !p.Fits(s.Sigma) {
		return errs.WrapWarn(ErrNotRepresentable,
			fmt.Sprintf("preset %q: mu/sigma exceed %s range (mu=%v sigma=%v)", s.Name, p, s.Mu, s.Sigma))
	}

	k, err := core.ParseKind(string(s.Generator))
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("preset %q", s.Name))
	}
	s.Generator = k

	if s.Samples == 0 {
		s.Samples = DefaultSamples
	}
	if s.Samples < 1 {
		return errs.Warnf("preset %q: samples must be positive, got %d", s.Name, s.Samples)
	}
	if s.Workers == 0 {
		s.Workers = 1
	}
	if s.Workers < 1 || s.Workers > MaxWorkers {
		return errs.Warnf("preset %q: workers must be in [1,%d], got %d", s.Name, MaxWorkers, s.Workers)
	}
	if s.Bins == 0 {
		s.Bins = stats.DefaultBins
	}
	if s.Bins < 1 {
		return errs.Warnf("preset %q: bins must be positive, got %d", s.Name, s.Bins)
	}
	return nil
}

// Clone 回傳深拷貝（Seed 指標不共用）。
func (s *SimSetting) Clone() *SimSetting {
	c := *s
	if s.Seed != nil {
		v := *s.Seed
		c.Seed = &v
	}
	return &c
}
