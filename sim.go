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
package gausslab

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/gausslab/corefmt"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/recorder"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/fmath"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/spec"
	"github.com/zintix-labs/gausslab/stats"
)

const (
	capPrepare int = 16
	// barBatch 進度條每累積多少樣本更新一次
	barBatch int = 4096
)

// Simulator 以一組 SimSetting 大量取樣並產出統計報表。
//
// 同一個 Simulator 不可併發呼叫 Sim / SimMP / Draw。
type Simulator struct {
	Name      string                     // preset 名稱
	PID       spec.PID                   // preset 編號
	ss        *spec.SimSetting           // 設定
	cf        core.PRNGFactory           // 亂數生成器
	initSeed  int64                      // 初始下的種子
	seedmaker *seedMaker                 // 種子生成器
	gBuf      []core.PRNG                // 併發產生器 (gBuf[0] 以 initSeed 建立)
	rBuf      []*recorder.SampleRecorder // 併發取樣紀錄員
	log       *slog.Logger               // 模擬起訖紀錄
}

func newSimulator(ss *spec.SimSetting, cf core.PRNGFactory) (*Simulator, error) {
	if ss.Seed != nil {
		return newSimulatorWithSeed(ss, cf, *ss.Seed)
	}
	return newSimulatorWithSeed(ss, cf, core.EntropySeed())
}

func newSimulatorWithSeed(ss *spec.SimSetting, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	if ss == nil {
		return nil, errs.NewFatal("sim setting required")
	}
	ss = ss.Clone()
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	if cf == nil {
		f, err := core.NewFactory(ss.Generator)
		if err != nil {
			return nil, err
		}
		cf = f
	}
	s := &Simulator{
		Name:      ss.Name,
		PID:       ss.PID,
		ss:        ss,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		gBuf:      make([]core.PRNG, 1, capPrepare),
		rBuf:      make([]*recorder.SampleRecorder, 0, capPrepare),
		log:       slog.New(slog.DiscardHandler),
	}
	s.gBuf[0] = cf.New(seed)
	return s, nil
}

// SetLogger 設定模擬起訖的 debug 紀錄；nil 表示不紀錄。
func (s *Simulator) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s.log = log
}

// Setting 回傳設定的拷貝。
func (s *Simulator) Setting() *spec.SimSetting {
	return s.ss.Clone()
}

// Seed 回傳初始 seed。
func (s *Simulator) Seed() int64 {
	return s.initSeed
}

// Snapshot 回傳主產生器 (gBuf[0]) 目前的狀態。
func (s *Simulator) Snapshot() ([]byte, error) {
	return s.gBuf[0].Snapshot()
}

// Restore 還原主產生器狀態；之後的 Sim / Draw 從該狀態繼續。
func (s *Simulator) Restore(state []byte) error {
	return s.gBuf[0].Restore(state)
}

// Sim 單線模擬器：以主產生器連續取樣 Samples 次，回傳統計結果與用時
func (s *Simulator) Sim(showpb bool) (*stats.Report, time.Duration, error) {
	return s.SimMP(1, showpb)
}

// SimMP 以 workers 個 goroutine 平行取樣，總計 Samples 次，合併統計結果後回傳統計結果與用時。
//
// 每個 worker 持有獨立產生器：worker 0 為主產生器，其餘由 seedMaker 依序派生。
// 樣本數平均分配 (餘數給前幾個 worker)。固定 seed 與 workers 時結果可重現。
func (s *Simulator) SimMP(workers int, showpb bool) (*stats.Report, time.Duration, error) {
	defer s.reset()
	if workers <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if workers > spec.MaxWorkers {
		return nil, 0, errs.Warnf("workers must <= %d", spec.MaxWorkers)
	}
	total := s.ss.Samples
	if workers > total {
		workers = total
	}
	for len(s.gBuf) < workers {
		s.gBuf = append(s.gBuf, s.cf.New(s.seedmaker.next()))
	}
	for len(s.rBuf) < workers {
		r, err := recorder.NewSampleRecorder(s.ss, s.initSeed)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	before, err := s.gBuf[0].Snapshot()
	if err != nil {
		return nil, 0, err
	}

	s.log.Debug("sim.start",
		slog.String("name", s.Name),
		slog.Int64("seed", s.initSeed),
		slog.Int("workers", workers),
		slog.Int("samples", total),
		slog.String("method", s.ss.Method.String()),
		slog.String("precision", string(s.ss.Precision)),
	)

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	bar := pb.StartNew(total)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	per, rem := total/workers, total%workers
	for i := 0; i < workers; i++ {
		n := per
		if i < rem {
			n++
		}
		go func(g core.RAND, rec *recorder.SampleRecorder, n int) {
			defer wg.Done()
			s.record(g, rec, n, bar)
		}(s.gBuf[i], s.rBuf[i], n)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.MergeSampleRecorder(s.rBuf[:workers])
	if err != nil {
		return nil, 0, err
	}
	result := merged.Done()
	result.Summary.Snapshot = corefmt.EncodeBase64(before)

	s.log.Debug("sim.done",
		slog.String("name", s.Name),
		slog.Int64("samples", result.Summary.Samples),
		slog.Float64("mean", result.Summary.Mean),
		slog.Float64("std", result.Summary.Std),
		slog.Duration("used", used),
	)
	return result, used, nil
}

// Draw 以主產生器取樣 n 個值（依設定的精度計算，回傳時轉為 float64）。
func (s *Simulator) Draw(n int) ([]float64, error) {
	if n < 1 {
		return nil, errs.NewWarn("n must > 0")
	}
	out := make([]float64, n)
	if s.ss.Precision == spec.Float32 {
		drawInto[float32](out, s.ss, s.gBuf[0])
	} else {
		drawInto[float64](out, s.ss, s.gBuf[0])
	}
	return out, nil
}

func (s *Simulator) record(g core.RAND, rec *recorder.SampleRecorder, n int, bar *pb.ProgressBar) {
	if s.ss.Precision == spec.Float32 {
		recordLoop[float32](g, s.ss, rec, n, bar)
		return
	}
	recordLoop[float64](g, s.ss, rec, n, bar)
}

func recordLoop[F fmath.Float](g core.RAND, ss *spec.SimSetting, rec *recorder.SampleRecorder, n int, bar *pb.ProgressBar) {
	mu, sigma := F(ss.Mu), F(ss.Sigma)
	pending := 0
	for i := 0; i < n; i++ {
		rec.Record(float64(normal.Sample(mu, sigma, g, ss.Method)))
		pending++
		if pending == barBatch {
			bar.Add(pending)
			pending = 0
		}
	}
	bar.Add(pending)
}

func drawInto[F fmath.Float](dst []float64, ss *spec.SimSetting, g core.RAND) {
	mu, sigma := F(ss.Mu), F(ss.Sigma)
	for i := range dst {
		dst[i] = float64(normal.Sample(mu, sigma, g, ss.Method))
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
