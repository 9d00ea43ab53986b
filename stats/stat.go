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
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// Confidence 報告使用的信賴水準。
const Confidence = 0.95

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// Contains 回報 v 是否落在 [Lo, Hi]。
func (c CI) Contains(v float64) bool {
	return v >= c.Lo && v <= c.Hi
}

// Report 一次常態取樣模擬的統計報告
type Report struct {
	Summary *SummaryReport `json:"Summary" yaml:"Summary"`
	Moments *Moments       `json:"Moments" yaml:"Moments"`
	Dist    *DistReport    `json:"Dist,omitempty" yaml:"Dist,omitempty"`
	isDone  bool
}

// SummaryReport 取樣設定與主要估計量
type SummaryReport struct {
	Name           string  `json:"Name" yaml:"Name"`
	PID            int     `json:"PID" yaml:"PID"`
	Method         string  `json:"Method" yaml:"Method"`
	Precision      string  `json:"Precision" yaml:"Precision"`
	Generator      string  `json:"Generator" yaml:"Generator"`
	Seed           int64   `json:"Seed" yaml:"Seed"`
	Workers        int     `json:"Workers" yaml:"Workers"`
	Mu             float64 `json:"Mu" yaml:"Mu"`
	Sigma          float64 `json:"Sigma" yaml:"Sigma"`
	Samples        int64   `json:"Samples" yaml:"Samples"`
	Mean           float64 `json:"Mean" yaml:"Mean"`
	MeanCI         CI      `json:"MeanCI" yaml:"MeanCI"`
	Std            float64 `json:"Std" yaml:"Std"`
	StdCI          CI      `json:"StdCI" yaml:"StdCI"`
	Skewness       float64 `json:"Skewness" yaml:"Skewness"`
	ExcessKurtosis float64 `json:"ExcessKurtosis" yaml:"ExcessKurtosis"`
	MeanErr        float64 `json:"MeanErr" yaml:"MeanErr"` // |Mean - Mu|
	StdErr         float64 `json:"StdErr" yaml:"StdErr"`   // |Std - |Sigma||
	Snapshot       string  `json:"Snapshot,omitempty" yaml:"Snapshot,omitempty"`
}

// DistReport 標準化後的分桶落點與卡方適合度檢定
//
// sigma = 0 時沒有標準化可言，不產生 DistReport。
type DistReport struct {
	Labels   []string  `json:"Labels" yaml:"Labels"`
	Counts   []int64   `json:"Counts" yaml:"Counts"`
	Expected []float64 `json:"Expected" yaml:"Expected"`
	GOF      GOF       `json:"GOF" yaml:"GOF"`
	hist     *Histogram
}

// NewDistReport 由直方圖建立 DistReport (Done 時才計算期望值與檢定)。
func NewDistReport(h *Histogram) *DistReport {
	return &DistReport{hist: h}
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積的矩與分桶轉換為最終統計結果並鎖定 isDone 標記。
//
// 重複呼叫不會重算。
func (r *Report) Done() {
	if r.isDone {
		return
	}
	m := r.Moments
	if m == nil {
		m = &Moments{}
		r.Moments = m
	}
	s := r.Summary
	s.Samples = m.N
	s.Mean = m.Mean
	s.Std = m.Std()
	s.Skewness = m.Skewness()
	s.ExcessKurtosis = m.ExcessKurtosis()
	s.MeanCI = MeanCI(m)
	s.StdCI = StdCI(m)
	s.MeanErr = math.Abs(s.Mean - s.Mu)
	s.StdErr = math.Abs(s.Std - math.Abs(s.Sigma))

	if d := r.Dist; d != nil && d.hist != nil {
		total := float64(d.hist.Total())
		probs := d.hist.Probs()
		d.Labels = d.hist.Labels()
		d.Counts = append([]int64(nil), d.hist.Counts...)
		d.Expected = make([]float64, len(probs))
		for i, p := range probs {
			d.Expected[i] = p * total
		}
		d.GOF = d.hist.ChiSquare()
	}
	r.isDone = true
}

// Pass 回報樣本平均與標準差是否都落在 mu、|sigma| 的 tol 之內。
func (r *Report) Pass(tol float64) bool {
	r.Done()
	return r.Summary.Samples > 0 && r.Summary.MeanErr <= tol && r.Summary.StdErr <= tol
}

// MeanCI 平均數的常態近似信賴區間：mean ± z * s / sqrt(n)。
func MeanCI(m *Moments) CI {
	if m.N < 2 {
		return CI{Lo: m.Mean, Hi: m.Mean}
	}
	z := distuv.UnitNormal.Quantile(0.5 + Confidence/2)
	se := m.Std() / math.Sqrt(float64(m.N))
	return CI{Lo: m.Mean - z*se, Hi: m.Mean + z*se}
}

// StdCI 標準差的卡方信賴區間：sqrt((n-1)s² / χ²)。
func StdCI(m *Moments) CI {
	if m.N < 2 {
		return CI{}
	}
	k := float64(m.N - 1)
	chi := distuv.ChiSquared{K: k}
	alpha := 1 - Confidence
	hiQ := chi.Quantile(1 - alpha/2)
	loQ := chi.Quantile(alpha / 2)
	return CI{
		Lo: math.Sqrt(m.M2 / hiQ),
		Hi: math.Sqrt(m.M2 / loQ),
	}
}

// MeanStd 以 gonum stat 計算一批樣本的平均與樣本標準差（非串流場景用）。
func MeanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

func (r *Report) WriteWith(w io.Writer, rep ReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

func (r *Report) StdOut(ut time.Duration) {
	_ = r.WriteWith(os.Stdout, &TableReportRender{Used: ut})
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, samples int64) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int64(float64(samples) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nsps : %d samples/sec\n", sec, sps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nsps : %d samples/sec\n", m, s, sps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nsps : %d samples/sec\n", h, m, s, sps)
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	basic := map[string]string{
		"Name":            p.Sprintf("%s", s.Name),
		"Preset ID":       fmt.Sprintf("%d", s.PID),
		"Method":          s.Method,
		"Precision":       s.Precision,
		"Generator":       s.Generator,
		"Seed":            fmt.Sprintf("%d", s.Seed),
		"Workers":         p.Sprintf("%d", s.Workers),
		"Samples":         p.Sprintf("%d", s.Samples),
		"Target":          p.Sprintf("N(%g, %g)", s.Mu, s.Sigma),
		"Mean":            p.Sprintf("%.5f", s.Mean),
		"Mean 95% CI":     p.Sprintf("[%.5f,%.5f]", s.MeanCI.Lo, s.MeanCI.Hi),
		"Std":             p.Sprintf("%.5f", s.Std),
		"Std 95% CI":      p.Sprintf("[%.5f,%.5f]", s.StdCI.Lo, s.StdCI.Hi),
		"Skewness":        p.Sprintf("%.4f", s.Skewness),
		"Excess Kurtosis": p.Sprintf("%.4f", s.ExcessKurtosis),
	}
	keys := []string{"Name", "Preset ID", "Method", "Precision", "Generator", "Seed", "Workers", "Samples", "Target", "Mean", "Mean 95% CI", "Std", "Std 95% CI", "Skewness", "Excess Kurtosis"}
	if d := r.Dist; d != nil {
		basic["Chi-Square"] = p.Sprintf("%.2f (df=%d)", d.GOF.Stat, d.GOF.DF)
		basic["GOF p-value"] = p.Sprintf("%.4f", d.GOF.PValue)
		keys = append(keys, "Chi-Square", "GOF p-value")
	}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	sb.WriteString(divider)
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
