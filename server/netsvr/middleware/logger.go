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

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

type noteKey struct{}

// note 由 handler 在請求途中填入的取樣參數（method / precision / n / pid ...）。
type note struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// Annotate 把取樣參數附加到本次請求的 access log，輸出在 "lab" 群組下。
// 請求沒有經過 AccessLog 時不做事。
func Annotate(r *http.Request, attrs ...slog.Attr) {
	n, ok := r.Context().Value(noteKey{}).(*note)
	if !ok {
		return
	}
	n.mu.Lock()
	n.attrs = append(n.attrs, attrs...)
	n.mu.Unlock()
}

// AccessLog 每個請求輸出一筆 "http.access"。
//
// 固定欄位：status / method / path / bytes / latency / req_id；
// /v1/sample 與 /v1/sim 另外帶 lab.method、lab.precision、lab.n 等取樣參數（見 Annotate）。
// log 為 nil 時不掛任何行為。
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			n := new(note)
			r = r.WithContext(context.WithValue(r.Context(), noteKey{}, n))
			rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			attrs := []slog.Attr{
				slog.Int("status", rw.status),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("bytes", rw.bytes),
				slog.Duration("latency", time.Since(start)),
				ReqAttr(r),
			}
			n.mu.Lock()
			if len(n.attrs) > 0 {
				attrs = append(attrs, slog.Attr{Key: "lab", Value: slog.GroupValue(n.attrs...)})
			}
			n.mu.Unlock()

			// 訊息固定，方便以 log 聚合指標
			log.LogAttrs(r.Context(), levelByStatus(rw.status), "http.access", attrs...)
		})
	}
}

func levelByStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
