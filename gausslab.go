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

// Package gausslab 提供常態取樣實驗室的「組裝入口」與「模擬入口」。
//
// Lab 把兩個地基組裝在一起：
//  1. Catalog：preset 目錄，定義有哪些取樣設定、各自對應的設定檔名稱（ConfigName）。
//  2. PRNGFactory（可選）：指定時覆蓋每個 preset 的 generator 設定；nil 時依 preset 的 generator 建立。
//
// Lab 不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入
// （go:embed 的 presets.FS，或本機開發時的 os.DirFS）。
//
// 取樣演算法本身在 sdk/normal；Lab 與 Simulator 只負責設定、重現性與統計。
package gausslab

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zintix-labs/gausslab/catalog"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 是 preset 目錄與模擬器的組裝器。
//
// 使用流程分成兩階段：
//   - 註冊階段：建立 catalog、註冊 preset。
//   - 執行階段：Freeze 之後依 preset ID 建立 Simulator。
type Lab struct {
	cf core.PRNGFactory

	mu  sync.RWMutex // 保護 cat / sum：server 併發讀取，Reload 整份替換
	cat *catalog.Catalog
	sum []catalog.Summary
}

// New 建立一個 Lab instance（尚未註冊任何 preset）。
//
// cfgs 至少一個；cf 可為 nil。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{cat: cata, cf: cf}, nil
}

// NewAuto 建立 Lab、註冊所有設定檔並 Freeze，直接進入執行階段。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.catalog().Register(ents...)
}

func (l *Lab) catalog() *catalog.Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cat
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）解析成
// *spec.SimSetting，並用設定檔內宣告的 pid / name 產生對應的 catalog.Entry 來批次註冊。
//
// 行為特性：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error。
//  2. 原子性：只有當全部檔案都通過檢查時，才會呼叫 Register(...) 一次性寫入。
//  3. 穩定性：fs.WalkDir 依檔名順序處理。
func (l *Lab) RegisterAll() error {
	return registerAll(l.catalog())
}

// Reload 以同一組設定檔來源重建目錄並整份替換（os.DirFS 來源會讀到磁碟上的新內容）。
//
// 只在執行階段（Freeze 之後）可用；任何設定檔有誤時保留原目錄並回傳錯誤。
// 已建立的 Simulator 不受影響。
func (l *Lab) Reload() error {
	old := l.catalog()
	if !old.IsFrozen() {
		return errs.NewFatal("catalog is not frozen yet")
	}
	cata, err := catalog.New(old.Cfg().Sources()...)
	if err != nil {
		return err
	}
	if err := registerAll(cata); err != nil {
		return errs.Wrap(err, "reload presets failed")
	}
	cata.Freeze()

	l.mu.Lock()
	l.cat, l.sum = cata, nil
	l.mu.Unlock()
	return nil
}

func registerAll(cat *catalog.Catalog) error {
	sources := cat.Cfg().Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 16)
	seenID := map[spec.PID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}
			ss, perr := catalog.ParseSimSettingByExt(base, raw)
			if perr != nil {
				return errs.Wrap(perr, fmt.Sprintf("parse sim setting failed: %s", base))
			}

			if prev, ok := seenID[ss.PID]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate preset id: %d (config=%s and %s)", ss.PID, prev, base))
			}
			if _, ok := cat.GetByID(ss.PID); ok {
				return errs.NewFatal(fmt.Sprintf("preset id already registered: %d (config=%s)", ss.PID, base))
			}
			seenID[ss.PID] = base

			nameKey := strings.ToLower(strings.TrimSpace(ss.Name))
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate preset name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := cat.GetByName(nameKey); ok {
				return errs.NewFatal(fmt.Sprintf("preset name already registered: %s (config=%s)", nameKey, base))
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{PID: ss.PID, Name: ss.Name, ConfigName: base})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	return cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.catalog().Freeze()
}

func (l *Lab) EntryById(id spec.PID) (catalog.Entry, bool) {
	return l.catalog().GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.catalog().GetByName(name)
}

func (l *Lab) IDs() []spec.PID {
	return l.catalog().IDs()
}

// Setting 回傳 preset 的設定（每次重新解析，呼叫端可自由修改）。
func (l *Lab) Setting(id spec.PID) (*spec.SimSetting, error) {
	return l.catalog().SimSettingById(id)
}

// Summary 回傳所有 preset 的摘要（Freeze 後才可呼叫，結果快取）。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		ss, err := l.cat.SimSettingById(id)
		if err != nil {
			return nil, errs.Wrap(err, "parse sim setting failed")
		}
		cs = append(cs, catalog.NewSummary(ss))
	}
	l.sum = cs
	return l.sum, nil
}

// NewSimulator 依 preset ID 建立 Simulator。
//
// seed 優先使用設定檔的 seed；未設定時由系統加密亂數池產生。
func (l *Lab) NewSimulator(id spec.PID) (*Simulator, error) {
	ss, err := l.setting(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(ss, l.cf)
}

// NewSimulatorWithSeed 與 NewSimulator 相同，但由呼叫端指定初始 seed（忽略設定檔的 seed）。
func (l *Lab) NewSimulatorWithSeed(id spec.PID, seed int64) (*Simulator, error) {
	ss, err := l.setting(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ss, l.cf, seed)
}

// NewSimulatorBySetting 以呼叫端提供的設定（不必在目錄中）建立 Simulator。
func (l *Lab) NewSimulatorBySetting(ss *spec.SimSetting) (*Simulator, error) {
	if ss == nil {
		return nil, errs.NewWarn("sim setting required")
	}
	return newSimulator(ss, l.cf)
}

func (l *Lab) setting(id spec.PID) (*spec.SimSetting, error) {
	cat := l.catalog()
	if !cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return cat.SimSettingById(id)
}
