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
package api

import (
	"io"
	"net/http"
)

const indexText = `gausslab: normal (Gaussian) sampling service

GET|POST /v1/sample   mu, sigma, method, precision, generator, n, seed, start_b64
GET|POST /v1/sim      pid, seed, workers, samples (POST 可帶 setting)
GET      /v1/presets  preset 摘要
GET      /v1/preset   ?pid= 單一 preset 設定
GET      /healthz
`

// IndexHandlerFn 主頁：列出可用的 endpoints。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, indexText)
}

func HealthHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}
