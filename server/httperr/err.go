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

// Package httperr 是 HTTP 邊界層的錯誤出口：分級錯誤 → status code + JSON 錯誤回應。
//
// 放在 server/* 而不是 errs，核心錯誤包因此不必依賴 net/http。
package httperr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/gausslab/dto"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/spec"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 先比對 sentinel，再看分級：
//   - context.DeadlineExceeded / Canceled → 504 / 408
//   - spec.ErrNotRepresentable           → 422（mu/sigma 或樣本超出精度範圍）
//   - dto.ErrLimit                       → 413（n / samples 超過服務上限）
//   - errs.Warn                          → 400
//   - errs.Fatal 與其他錯誤               → 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, spec.ErrNotRepresentable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dto.ErrLimit):
		return http.StatusRequestEntityTooLarge
	}
	if errs.Level(err) == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Body 錯誤回應的 JSON 格式。
type Body struct {
	Status int    `json:"status"`
	Level  string `json:"level"`
	Error  string `json:"error"`
}

// Errs 寫回錯誤回應；err 為 nil 時不做事。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	b, _ := json.Marshal(Body{Status: status, Level: errs.Level(err).String(), Error: err.Error()})
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write(append(b, '\n'))
}

// JSON 先把 v 編碼進 buffer，成功才送出 200。
//
// 編碼失敗（例如樣本溢位成 ±Inf/NaN）時改寫錯誤回應，並回傳該錯誤供呼叫端紀錄。
func JSON(w http.ResponseWriter, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		var uve *json.UnsupportedValueError
		if errors.As(err, &uve) {
			err = errs.WrapWarn(spec.ErrNotRepresentable,
				fmt.Sprintf("result contains non-finite value %s", uve.Str))
		} else {
			err = errs.Wrap(err, "encode response failed")
		}
		Errs(w, err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	_, err := w.Write(buf.Bytes())
	return err
}

// Log 依 status 決定是否紀錄：5xx → Error；408/413/422 → Warn；其餘 4xx 只是參數問題，不紀錄。
func Log(log *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	attrs = append(attrs, slog.Int("status", status), slog.Any("err", err))
	switch {
	case status >= 500:
		log.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
	case status == http.StatusRequestTimeout,
		status == http.StatusRequestEntityTooLarge,
		status == http.StatusUnprocessableEntity:
		log.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
	}
}
