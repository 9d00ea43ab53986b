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

// Package app 管理 gausslab server 的生命週期：啟動元件、SIGHUP 重載 preset、優雅關閉。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// App 並行啟動所有 Component，收到 SIGINT/SIGTERM 或任一 Component 結束時依序關閉。
// SIGHUP 不結束程式，而是呼叫 OnReload 註冊的 hook（例如 Lab.Reload 重讀 preset 目錄）。
type App struct {
	comps   []Component
	reloads []reloadHook
	log     *slog.Logger
}

type reloadHook struct {
	name string
	fn   func() error
}

// New 建立 App；log 為 nil 時不輸出。
func New(log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{log: log}
}

// NewWith 建立 App 並註冊 comps。
func NewWith(log *slog.Logger, comps ...Component) *App {
	a := New(log)
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnReload 註冊 SIGHUP 時要執行的 hook，依註冊順序呼叫。
func (a *App) OnReload(name string, fn func() error) {
	a.reloads = append(a.reloads, reloadHook{name: name, fn: fn})
}

// Reload 依序執行所有 reload hook；個別失敗只紀錄，不中斷後續 hook。
func (a *App) Reload() error {
	var all []error
	for _, h := range a.reloads {
		if err := h.fn(); err != nil {
			a.log.Error("app.reload failed", slog.String("hook", h.name), slog.Any("err", err))
			all = append(all, err)
			continue
		}
		a.log.Info("app.reload", slog.String("hook", h.name))
	}
	return errors.Join(all...)
}

// Run 阻塞直到收到終止信號（回傳 nil）或任一 Component.Run 返回（回傳其錯誤）。
// 兩種情況都會先執行 Shutdown。
func (a *App) Run() error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	return a.loop(quit, hup, errCh)
}

func (a *App) loop(quit, hup <-chan os.Signal, errCh <-chan error) error {
	for {
		select {
		case <-hup:
			_ = a.Reload()
		case sig := <-quit:
			a.log.Info("app.stop", slog.String("signal", sig.String()))
			a.shutdown(shutdownTimeout)
			return nil
		case err := <-errCh:
			a.shutdown(shutdownTimeout)
			return err
		}
	}
}

// shutdown 在 td 內依序呼叫 Component.Shutdown。
func (a *App) shutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Error("app.shutdown", slog.Any("err", err))
		}
	}
}
