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
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// encoder gzip.Writer 與 zstd.Encoder 的共同部分。
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
}

type codec struct {
	name string
	pool sync.Pool
}

// 依偏好排序：zstd 優先，其次 gzip。
var codecs = []*codec{
	{name: "zstd", pool: sync.Pool{New: func() any {
		zw, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1),
		)
		return zw
	}}},
	{name: "gzip", pool: sync.Pool{New: func() any {
		gw, _ := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		return gw
	}}},
}

func negotiate(accept string) *codec {
	accept = strings.ToLower(accept)
	for _, c := range codecs {
		if strings.Contains(accept, c.name) {
			return c
		}
	}
	return nil
}

// compressible 樣本陣列與統計報表都是 JSON；index 頁是純文字。
func compressible(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasPrefix(mt, "text/")
}

// compressWriter 在第一次 WriteHeader / Write 時才決定要不要壓縮：
// 無 body 的 status (1xx/204/304) 或非 JSON/文字內容直接透傳。
type compressWriter struct {
	http.ResponseWriter
	c       *codec
	enc     encoder
	decided bool
}

func (cw *compressWriter) decide(status int) {
	if cw.decided {
		return
	}
	cw.decided = true
	h := cw.Header()
	if status < 200 || status == http.StatusNoContent || status == http.StatusNotModified {
		return
	}
	if h.Get("Content-Encoding") != "" || !compressible(h.Get("Content-Type")) {
		return
	}
	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.c.name)
	h.Add("Vary", "Accept-Encoding")
	cw.enc = cw.c.pool.Get().(encoder)
	cw.enc.Reset(cw.ResponseWriter)
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.decide(code)
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.decided {
		if cw.Header().Get("Content-Type") == "" {
			cw.Header().Set("Content-Type", http.DetectContentType(b))
		}
		cw.WriteHeader(http.StatusOK)
	}
	if cw.enc == nil {
		return cw.ResponseWriter.Write(b)
	}
	return cw.enc.Write(b)
}

func (cw *compressWriter) Flush() {
	if f, ok := cw.enc.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) close() {
	if cw.enc == nil {
		return
	}
	_ = cw.enc.Close()
	cw.enc.Reset(io.Discard)
	cw.c.pool.Put(cw.enc)
	cw.enc = nil
}

// Compression 依 Accept-Encoding 以 zstd 或 gzip 壓縮 JSON / 文字回應。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := negotiate(r.Header.Get("Accept-Encoding"))
		if c == nil || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		cw := &compressWriter{ResponseWriter: w, c: c}
		defer cw.close()
		next.ServeHTTP(cw, r)
	})
}
