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
	"log/slog"
	"net/http"
	"strings"

	chimid "github.com/go-chi/chi/v5/middleware"
)

func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(next)
}

// GetReqIdNumPart 取 chi request id 的流水號部分（"host/xxxx-000012" → "000012"）。
func GetReqIdNumPart(r *http.Request) string {
	str := chimid.GetReqID(r.Context())
	if i := strings.LastIndex(str, "-"); i >= 0 && i+1 < len(str) {
		return str[i+1:]
	}
	return str
}

// ReqAttr 回傳 req_id 欄位，讓 access log、handler 與 simulator 的 log 可以對起來。
func ReqAttr(r *http.Request) slog.Attr {
	return slog.String("req_id", GetReqIdNumPart(r))
}
