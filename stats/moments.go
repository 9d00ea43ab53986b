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

import "math"

// Moments 以串流方式累積前四階中心矩 (Welford / Terriberry)。
//
// 非有限值 (NaN / ±Inf) 不進入累積，只計入 NonFinite。
// 多個 worker 各自累積後可用 Merge 合併 (Pébay 公式)，結果與依序累積在數值誤差內一致。
type Moments struct {
	N         int64   `json:"N" yaml:"N"`
	Mean      float64 `json:"Mean" yaml:"Mean"`
	M2        float64 `json:"M2" yaml:"M2"`
	M3        float64 `json:"M3" yaml:"M3"`
	M4        float64 `json:"M4" yaml:"M4"`
	Min       float64 `json:"Min" yaml:"Min"`
	Max       float64 `json:"Max" yaml:"Max"`
	NonFinite int64   `json:"NonFinite" yaml:"NonFinite"`
}

// Add 加入一筆觀測值。
func (m *Moments) Add(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		m.NonFinite++
		return
	}
	if m.N == 0 {
		m.Min, m.Max = x, x
	} else {
		m.Min = min(m.Min, x)
		m.Max = max(m.Max, x)
	}
	n1 := float64(m.N)
	m.N++
	n := float64(m.N)
	delta := x - m.Mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1
	m.Mean += deltaN
	m.M4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*m.M2 - 4*deltaN*m.M3
	m.M3 += term1*deltaN*(n-2) - 3*deltaN*m.M2
	m.M2 += term1
}

// Merge 把 o 的累積合併進 m。
func (m *Moments) Merge(o *Moments) {
	if o == nil {
		return
	}
	m.NonFinite += o.NonFinite
	if o.N == 0 {
		return
	}
	if m.N == 0 {
		nf := m.NonFinite
		*m = *o
		m.NonFinite = nf
		return
	}
	na, nb := float64(m.N), float64(o.N)
	n := na + nb
	delta := o.Mean - m.Mean
	d2 := delta * delta
	d3 := d2 * delta
	d4 := d2 * d2

	mean := m.Mean + delta*nb/n
	m2 := m.M2 + o.M2 + d2*na*nb/n
	m3 := m.M3 + o.M3 + d3*na*nb*(na-nb)/(n*n) + 3*delta*(na*o.M2-nb*m.M2)/n
	m4 := m.M4 + o.M4 + d4*na*nb*(na*na-na*nb+nb*nb)/(n*n*n) +
		6*d2*(na*na*o.M2+nb*nb*m.M2)/(n*n) + 4*delta*(na*o.M3-nb*m.M3)/n

	m.N += o.N
	m.Mean, m.M2, m.M3, m.M4 = mean, m2, m3, m4
	m.Min = min(m.Min, o.Min)
	m.Max = max(m.Max, o.Max)
}

// Var 樣本變異數 (分母 n-1)；n < 2 時回傳 0。
func (m *Moments) Var() float64 {
	if m.N < 2 {
		return 0
	}
	return m.M2 / float64(m.N-1)
}

// Std 樣本標準差。
func (m *Moments) Std() float64 {
	return math.Sqrt(m.Var())
}

// Skewness 樣本偏態 g1；變異為 0 時回傳 0。
func (m *Moments) Skewness() float64 {
	if m.N < 2 || m.M2 == 0 {
		return 0
	}
	n := float64(m.N)
	return math.Sqrt(n) * m.M3 / math.Pow(m.M2, 1.5)
}

// ExcessKurtosis 樣本超額峰態 g2 (常態分布為 0)；變異為 0 時回傳 0。
func (m *Moments) ExcessKurtosis() float64 {
	if m.N < 2 || m.M2 == 0 {
		return 0
	}
	n := float64(m.N)
	return n*m.M4/(m.M2*m.M2) - 3
}
