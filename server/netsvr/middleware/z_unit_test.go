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
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestAccessLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sample", nil))
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=400") || !strings.Contains(out, "path=/v1/sample") {
		t.Fatalf("unexpected access log: %s", out)
	}
	if strings.Contains(out, "lab.") {
		t.Fatalf("no lab attrs expected without Annotate: %s", out)
	}
	if levelByStatus(200) != slog.LevelInfo || levelByStatus(503) != slog.LevelError {
		t.Fatalf("unexpected level mapping")
	}
}

func TestAccessLogSampleAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Annotate(r, slog.String("method", "marsaglia-polar"), slog.String("precision", "float32"))
		Annotate(r, slog.Int("n", 3))
		io.WriteString(w, "[1,2,3]")
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sample?n=3", nil))
	out := buf.String()
	for _, want := range []string{"lab.method=marsaglia-polar", "lab.precision=float32", "lab.n=3", "bytes=7", "method=GET", "req_id="} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in access log: %s", want, out)
		}
	}

	// 沒有 AccessLog 時 Annotate 不做事
	Annotate(httptest.NewRequest(http.MethodGet, "/", nil), slog.Int("n", 1))
}

func TestAccessLogNilLogger(t *testing.T) {
	called := false
	h := AccessLog(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequestID(t *testing.T) {
	var attr slog.Attr
	var num string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attr = ReqAttr(r)
		num = GetReqIdNumPart(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if num == "" || strings.Contains(num, "-") || attr.Key != "req_id" || attr.Value.String() != num {
		t.Fatalf("unexpected request id %q / %v", num, attr)
	}
	if GetReqIdNumPart(httptest.NewRequest(http.MethodGet, "/", nil)) != "" {
		t.Fatalf("expected empty id without middleware")
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sim", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"level":"fatal"`) || !strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "http.panic") || !strings.Contains(buf.String(), "path=/v1/sim") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}

func TestRecoverAbortHandler(t *testing.T) {
	h := Recover(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic(http.ErrAbortHandler) }))
	defer func() {
		if rvr := recover(); rvr != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rvr)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestCompressionZstd(t *testing.T) {
	payload := strings.Repeat(`{"x":0.5}`, 100)
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, payload)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "zstd, gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("expected zstd, got %q", rec.Header().Get("Content-Encoding"))
	}
	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	raw, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != payload {
		t.Fatalf("payload mismatch")
	}
}

func TestCompressionSkipsBinary(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{0, 1, 2, 3})
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.Len() != 4 {
		t.Fatalf("binary body must pass through, got %q %d", rec.Header().Get("Content-Encoding"), rec.Body.Len())
	}
}

func TestCompressionSkipsNoContent(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("204 must have empty body, got %d bytes", rec.Body.Len())
	}
	if rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("content-encoding must be removed for 204")
	}
}
