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
package stats

import (
	"fmt"
	"math"

	"github.com/zintix-labs/gausslab/errs"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// ZLimit 標準化直方圖的範圍 [-ZLimit, ZLimit)，範圍外落入兩側尾端。
	ZLimit = 4.0
	// DefaultBins 預設內部分桶數。
	DefaultBins = 32
	// minExpected 卡方檢定每一格的最小期望次數，不足時與相鄰格合併。
	minExpected = 5.0
)

// Histogram 以標準化後的 z = (x-mu)/|sigma| 分桶。
//
// Counts 長度為 Bins+2：Counts[0] 為 z < -ZLimit，Counts[Bins+1] 為 z >= ZLimit，
// 中間為等寬的內部分桶。
type Histogram struct {
	Bins   int     `json:"Bins" yaml:"Bins"`
	Counts []int64 `json:"Counts" yaml:"Counts"`
}

// GOF 卡方適合度檢定結果。
type GOF struct {
	Stat   float64 `json:"Stat" yaml:"Stat"`
	DF     int     `json:"DF" yaml:"DF"`
	PValue float64 `json:"PValue" yaml:"PValue"`
}

// NewHistogram 建立 bins 個內部分桶的直方圖；bins < 1 時使用 DefaultBins。
func NewHistogram(bins int) *Histogram {
	if bins < 1 {
		bins = DefaultBins
	}
	return &Histogram{Bins: bins, Counts: make([]int64, bins+2)}
}

// Add 加入一個標準化值 z；NaN 不計。
func (h *Histogram) Add(z float64) {
	switch {
	case math.IsNaN(z):
		return
	case z < -ZLimit:
		h.Counts[0]++
	case z >= ZLimit:
		h.Counts[h.Bins+1]++
	default:
		i := int((z + ZLimit) / h.width())
		if i >= h.Bins {
			i = h.Bins - 1
		}
		h.Counts[i+1]++
	}
}

// Merge 合併另一個相同分桶數的直方圖。
func (h *Histogram) Merge(o *Histogram) error {
	if o == nil {
		return nil
	}
	if o.Bins != h.Bins {
		return errs.Fatalf("histogram bins mismatch: %d vs %d", h.Bins, o.Bins)
	}
	for i, c := range o.Counts {
		h.Counts[i] += c
	}
	return nil
}

// Total 總計數。
func (h *Histogram) Total() int64 {
	var t int64
	for _, c := range h.Counts {
		t += c
	}
	return t
}

// Edges 回傳 Bins+1 個內部分桶邊界。
func (h *Histogram) Edges() []float64 {
	out := make([]float64, h.Bins+1)
	w := h.width()
	for i := range out {
		out[i] = -ZLimit + float64(i)*w
	}
	return out
}

// Labels 回傳每一格 (含兩側尾端) 的區間標籤。
func (h *Histogram) Labels() []string {
	edges := h.Edges()
	out := make([]string, 0, h.Bins+2)
	out = append(out, fmt.Sprintf("(-inf,%.2f)", -ZLimit))
	for i := 0; i < h.Bins; i++ {
		out = append(out, fmt.Sprintf("[%.2f,%.2f)", edges[i], edges[i+1]))
	}
	out = append(out, fmt.Sprintf("[%.2f,+inf)", ZLimit))
	return out
}

// Probs 回傳標準常態下每一格的理論機率。
func (h *Histogram) Probs() []float64 {
	edges := h.Edges()
	out := make([]float64, h.Bins+2)
	out[0] = distuv.UnitNormal.CDF(-ZLimit)
	for i := 0; i < h.Bins; i++ {
		out[i+1] = distuv.UnitNormal.CDF(edges[i+1]) - distuv.UnitNormal.CDF(edges[i])
	}
	out[h.Bins+1] = distuv.UnitNormal.Survival(ZLimit)
	return out
}

// ChiSquare 對標準常態做卡方適合度檢定。
//
// 期望次數不足 minExpected 的格子由左至右與下一格合併，最後一組不足時併入前一組。
// 合併後少於兩格時 DF = 0、PValue = 1。
func (h *Histogram) ChiSquare() GOF {
	total := float64(h.Total())
	if total == 0 {
		return GOF{PValue: 1}
	}
	probs := h.Probs()

	type cell struct{ obs, exp float64 }
	cells := make([]cell, 0, len(probs))
	var cur cell
	for i, p := range probs {
		cur.obs += float64(h.Counts[i])
		cur.exp += p * total
		if cur.exp >= minExpected {
			cells = append(cells, cur)
			cur = cell{}
		}
	}
	if cur.exp > 0 || cur.obs > 0 {
		if len(cells) == 0 {
			cells = append(cells, cur)
		} else {
			cells[len(cells)-1].obs += cur.obs
			cells[len(cells)-1].exp += cur.exp
		}
	}
	if len(cells) < 2 {
		return GOF{PValue: 1}
	}

	stat := 0.0
	for _, c := range cells {
		d := c.obs - c.exp
		stat += d * d / c.exp
	}
	df := len(cells) - 1
	p := distuv.ChiSquared{K: float64(df)}.Survival(stat)
	return GOF{Stat: stat, DF: df, PValue: p}
}

func (h *Histogram) width() float64 {
	return 2 * ZLimit / float64(h.Bins)
}
