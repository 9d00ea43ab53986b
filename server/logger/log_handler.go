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

// Package logger 組裝 gausslab server 使用的 *slog.Logger。
//
// 三種模式（ModeDev / ModeProd / ModeSilence）決定格式與等級；
// AsyncHandler 把任何 slog.Handler 包成非阻塞版本，讓 access log 與模擬進度不拖慢請求路徑。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/gausslab/errs"
)

type LogMode uint8

const (
	ModeDev     LogMode = iota // text、debug、stderr
	ModeProd                   // JSON、info、stdout，帶 app=gausslab
	ModeSilence                // 全部丟棄（測試用）
)

// ParseMode 解析 -log-mode；接受 "ModeDev" / "dev" 這類寫法，大小寫不拘。空字串為 ModeDev。
func ParseMode(s string) (LogMode, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode") {
	case "", "dev":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence", "silent":
		return ModeSilence, nil
	default:
		return ModeDev, errs.Warnf("unknown log mode: %q", s)
	}
}

// NewDefaultLogger 依 mode 建立同步 logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewAsync 依 mode 建立 logger，handler 外面包一層 AsyncHandler。
// 呼叫端負責在結束前呼叫 Close，把佇列中的紀錄寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

// AsyncHandler 非阻塞的 slog.Handler：
//   - Handle 只把 Record 放進 channel，背景 goroutine 依序寫出。
//   - channel 滿了就丟棄並計數（Dropped），延遲不會傳回請求路徑。
//   - WithAttrs / WithGroup 產生的 handler 共用同一個佇列。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan entry
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{ch: make(chan entry, buf), closed: make(chan struct{})}
	q.wg.Add(1)
	go q.run()
	return &AsyncHandler{next: next, q: q}
}

func (q *queue) run() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			_ = e.h.Handle(e.ctx, e.rec)
		case <-q.closed:
			// 寫完剩下的再離開
			for {
				select {
				case e := <-q.ch:
					_ = e.h.Handle(e.ctx, e.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

// Dropped 因佇列已滿或已 Close 而丟棄的筆數。
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並等待佇列寫完；可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.closed) })
	h.q.wg.Wait()
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.closed:
		h.q.dropped.Add(1)
		return nil
	default:
	}
	// Clone：Record 的 attrs 會跨 goroutine
	select {
	case h.q.ch <- entry{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

func buildHandler(mode LogMode) slog.Handler {
	switch mode {
	case ModeProd:
		// JSON + stdout，給 Loki / Promtail
		h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
		return h.WithAttrs([]slog.Attr{slog.String("app", "gausslab")})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
