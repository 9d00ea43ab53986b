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
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/zintix-labs/gausslab"
	"github.com/zintix-labs/gausslab/corefmt"
	"github.com/zintix-labs/gausslab/presets"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/spec"
	"github.com/zintix-labs/gausslab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 狀態檔上限：任何內建產生器的狀態都遠小於此
const maxStateBytes = 1 << 20

var cfg *config = new(config)

type config struct {
	preset    int
	mu        float64
	sigma     float64
	method    string
	precision string
	gen       string
	samples   int
	worker    int
	bins      int
	seed      int64
	draw      int
	format    string
	loadState string
	saveState string
	pprofmode string

	set map[string]bool // 使用者明確指定的 flag
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.IntVar(&cfg.preset, "preset", 0, "preset id (0 = build from flags)")
	flag.Float64Var(&cfg.mu, "mu", 0, "mean")
	flag.Float64Var(&cfg.sigma, "sigma", 1, "standard deviation")
	flag.StringVar(&cfg.method, "method", "box-muller", "box-muller | marsaglia-polar")
	flag.StringVar(&cfg.precision, "precision", "float64", "float32 | float64")
	flag.StringVar(&cfg.gen, "gen", "pcg64", "generator: pcg64 | pcg32 | chacha8 | mt19937 | xoshiro256")
	flag.IntVar(&cfg.samples, "n", spec.DefaultSamples, "number of samples")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.bins, "bins", stats.DefaultBins, "histogram bins over [-4σ, 4σ)")
	flag.Int64Var(&cfg.seed, "seed", 0, "int64 seed (unset = preset seed or crypto/rand)")
	flag.IntVar(&cfg.draw, "draw", 0, "print k raw samples instead of a report")
	flag.StringVar(&cfg.format, "format", "table", "report format: table | json | yaml")
	flag.StringVar(&cfg.loadState, "load-state", "", "restore generator state from file before sampling")
	flag.StringVar(&cfg.saveState, "save-state", "", "write generator state to file after sampling")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	cfg.set = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	lab, err := gausslab.NewAuto(nil, gausslab.Configs(presets.FS))
	if err != nil {
		log.Fatal(err)
	}
	ss, err := cfg.setting(lab)
	if err != nil {
		log.Fatal(err)
	}
	sim, err := lab.NewSimulatorBySetting(ss)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.loadState != "" {
		if err := loadState(sim, cfg.loadState); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.draw > 0 {
		xs, err := sim.Draw(cfg.draw)
		if err != nil {
			log.Fatal(err)
		}
		for _, x := range xs {
			fmt.Println(x)
		}
	} else {
		runReport(sim)
	}

	if cfg.saveState != "" {
		if err := saveState(sim, cfg.saveState); err != nil {
			log.Fatal(err)
		}
	}
}

func runReport(sim *gausslab.Simulator) {
	set := sim.Setting()
	workers := set.Workers
	if cfg.set["worker"] {
		workers = cfg.worker
	}
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	table := cfg.format == "" || cfg.format == "table"
	if table {
		p.Printf("%s[PRESET:%s] [N(%g, %g²) %s %s %s] [WORKERS:%d] [SAMPLES:%d]%s\n",
			green, set.Name, set.Mu, set.Sigma, set.Method, set.Precision, set.Generator, workers, set.Samples, reset)
	}
	st, used, err := sim.SimMP(workers, table)
	if err != nil {
		log.Fatal(err)
	}
	if table {
		st.StdOut(used)
		return
	}
	render, err := stats.RenderByName(cfg.format, used)
	if err != nil {
		log.Fatal(err)
	}
	if err := st.WriteWith(os.Stdout, render); err != nil {
		log.Fatal(err)
	}
}

// setting 取得 preset（或空白設定），再以明確指定的 flag 覆寫。
func (c *config) setting(lab *gausslab.Lab) (*spec.SimSetting, error) {
	ss := &spec.SimSetting{Name: "cli", Sigma: 1}
	if c.preset != 0 {
		s, err := lab.Setting(spec.PID(c.preset))
		if err != nil {
			return nil, err
		}
		ss = s
	}
	// 沒有 preset 時，所有 flag（含預設值）都生效
	use := func(name string) bool { return c.preset == 0 || c.set[name] }

	if use("mu") {
		ss.Mu = c.mu
	}
	if use("sigma") {
		ss.Sigma = c.sigma
	}
	if use("method") {
		m, err := normal.ParseMethod(c.method)
		if err != nil {
			return nil, err
		}
		ss.Method = m
	}
	if use("precision") {
		p, err := spec.ParsePrecision(c.precision)
		if err != nil {
			return nil, err
		}
		ss.Precision = p
	}
	if use("gen") {
		k, err := core.ParseKind(c.gen)
		if err != nil {
			return nil, err
		}
		ss.Generator = k
	}
	if use("n") {
		ss.Samples = c.samples
	}
	if use("worker") {
		ss.Workers = c.worker
	}
	if use("bins") {
		ss.Bins = c.bins
	}
	if c.set["seed"] {
		v := c.seed
		ss.Seed = &v
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

func loadState(sim *gausslab.Simulator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	state, err := corefmt.ReadBlobFrame(f, maxStateBytes)
	if err != nil {
		return err
	}
	return sim.Restore(state)
}

func saveState(sim *gausslab.Simulator, path string) error {
	state, err := sim.Snapshot()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := corefmt.WriteBlobFrame(f, state); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
