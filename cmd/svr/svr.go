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
	"io/fs"
	"os"

	"github.com/zintix-labs/gausslab"
	"github.com/zintix-labs/gausslab/presets"
	"github.com/zintix-labs/gausslab/server"
	"github.com/zintix-labs/gausslab/server/logger"
	"github.com/zintix-labs/gausslab/server/svrcfg"
)

// lab server 入口：內建 presets，可再以 -presets 掛上本機目錄。
func main() {
	cfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	server.Run(cfg)
}

type config struct {
	Addr       string
	LogMode    string
	PresetDir  string
	MaxDraw    int
	MaxSamples int
	MaxWorkers int
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.StringVar(&cfg.PresetDir, "presets", "", "extra preset directory (yaml/json)")
	flag.IntVar(&cfg.MaxDraw, "max-draw", svrcfg.DefaultMaxDraw, "max samples per /v1/sample request")
	flag.IntVar(&cfg.MaxSamples, "max-samples", svrcfg.DefaultMaxSamples, "max samples per /v1/sim request")
	flag.IntVar(&cfg.MaxWorkers, "max-workers", 0, "cap workers per /v1/sim request (0 = no cap)")

	flag.Parse()

	srcs := []fs.FS{presets.FS}
	if cfg.PresetDir != "" {
		srcs = append(srcs, os.DirFS(cfg.PresetDir))
	}
	lab, err := gausslab.NewAuto(nil, gausslab.Configs(srcs...))
	if err != nil {
		return nil, nil, err
	}

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, mode)
	sCfg := &svrcfg.SvrCfg{
		Addr:       cfg.Addr,
		Log:        log,
		Lab:        lab,
		MaxDraw:    cfg.MaxDraw,
		MaxSamples: cfg.MaxSamples,
		MaxWorkers: cfg.MaxWorkers,
	}
	closeLog := func() {
		ah.Close()
		if n := ah.Dropped(); n > 0 {
			fmt.Fprintf(os.Stderr, "[gausslab] %d log records dropped\n", n)
		}
	}
	return sCfg, closeLog, nil
}
