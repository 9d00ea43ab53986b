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
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/gausslab/corefmt"
	"github.com/zintix-labs/gausslab/errs"
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/normal"
	"github.com/zintix-labs/gausslab/spec"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

// ErrLimit 請求的 n / samples 超過服務端上限。
var ErrLimit = errors.New("request exceeds server limit")

// LimitErr 建立帶 ErrLimit 的 Warn 錯誤。
func LimitErr(field string, max, got int) error {
	return errs.WrapWarn(ErrLimit, fmt.Sprintf("%s must be at most %d, got %d", field, max, got))
}

// SampleRequest 直接取樣的請求。
type SampleRequest struct {
	Mu        *float64 `json:"mu,omitempty"`        // 平均數，缺省為 0
	Sigma     *float64 `json:"sigma,omitempty"`     // 標準差，缺省為 1
	Method    string   `json:"method,omitempty"`    // box-muller / marsaglia-polar
	Precision string   `json:"precision,omitempty"` // float32 / float64
	Generator string   `json:"generator,omitempty"` // pcg64 / pcg32 / chacha8 / mt19937 / xoshiro256
	N         int      `json:"n"`                   // 樣本數
	Seed      *int64   `json:"seed,omitempty"`      // 可選：固定 seed
	// StartB64：可選，產生器的起始快照 (base64)。
	//   - 有值時先以 seed 建立同種產生器，再以快照 Restore，忽略 seed 的起點。
	//   - 把上一次回應的 after_b64 帶回來即可接續同一條亂數流。
	StartB64 string `json:"start_b64,omitempty"`
}

// DecodeSampleRequest 會把 HTTP 請求解碼成 SampleRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（mu/sigma/method/precision/generator/n/seed/start_b64）。
//   - POST：從 JSON body 反序列化，開啟 DisallowUnknownFields()。
//
// 這裡只負責解碼與型別轉換；範圍檢查交給 Setting()。
func DecodeSampleRequest(r *http.Request) (*SampleRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SampleRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Method = q.Get("method")
		req.Precision = q.Get("precision")
		req.Generator = q.Get("generator")
		req.StartB64 = q.Get("start_b64")

		var err error
		if req.Mu, err = queryFloat(q, "mu"); err != nil {
			return nil, err
		}
		if req.Sigma, err = queryFloat(q, "sigma"); err != nil {
			return nil, err
		}
		if req.Seed, err = queryInt64(q, "seed"); err != nil {
			return nil, err
		}
		if s := q.Get("n"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid n: %v", err))
			}
			req.N = v
		}
		return req, nil

	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// Setting 把請求轉成 SimSetting 並檢查 n 是否在 [1, maxN]。
// 回傳的設定已經過 Validate，Samples 即 n。
func (sr *SampleRequest) Setting(maxN int) (*spec.SimSetting, error) {
	if sr.N < 1 {
		return nil, errs.Warnf("n must be positive, got %d", sr.N)
	}
	if sr.N > maxN {
		return nil, LimitErr("n", maxN, sr.N)
	}
	m, err := normal.ParseMethod(sr.Method)
	if err != nil {
		return nil, err
	}
	p, err := spec.ParsePrecision(sr.Precision)
	if err != nil {
		return nil, err
	}
	k, err := core.ParseKind(sr.Generator)
	if err != nil {
		return nil, err
	}
	ss := &spec.SimSetting{
		Name:      "sample",
		Mu:        0,
		Sigma:     1,
		Method:    m,
		Precision: p,
		Generator: k,
		Samples:   sr.N,
		Seed:      sr.Seed,
	}
	if sr.Mu != nil {
		ss.Mu = *sr.Mu
	}
	if sr.Sigma != nil {
		ss.Sigma = *sr.Sigma
	}
	if err := ss.Validate(); err != nil {
		return nil, err
	}
	return ss, nil
}

// StartState 解出起始快照；未提供時回傳 nil。
func (sr *SampleRequest) StartState() ([]byte, error) {
	if sr.StartB64 == "" {
		return nil, nil
	}
	b, err := corefmt.DecodeBase64(sr.StartB64)
	if err != nil {
		return nil, errs.WrapWarn(err, "start_b64 decode failed")
	}
	return b, nil
}

// SimRequest 模擬請求。
//
// 二擇一：
//   - pid：使用目錄中的 preset。
//   - setting：直接帶入一份設定（僅 POST），此時 pid 被忽略。
//
// seed / workers / samples 有值時覆寫 preset 的設定。
type SimRequest struct {
	PID     spec.PID         `json:"pid"`
	Seed    *int64           `json:"seed,omitempty"`
	Workers int              `json:"workers,omitempty"`
	Samples int              `json:"samples,omitempty"`
	Setting *spec.SimSetting `json:"setting,omitempty"`
}

// DecodeSimRequest 會把 HTTP 請求解碼成 SimRequest。
//   - GET：pid / seed / workers / samples。
//   - POST：JSON body，開啟 DisallowUnknownFields()。
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SimRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		s := q.Get("pid")
		if s == "" {
			return nil, errs.NewWarn("pid is required")
		}
		pid, err := strconv.Atoi(s)
		if err != nil {
			return nil, errs.NewWarn(fmt.Sprintf("invalid pid: %v", err))
		}
		req.PID = spec.PID(pid)
		if req.Seed, err = queryInt64(q, "seed"); err != nil {
			return nil, err
		}
		if s := q.Get("workers"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid workers: %v", err))
			}
			req.Workers = v
		}
		if s := q.Get("samples"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid samples: %v", err))
			}
			req.Samples = v
		}
		return req, nil

	case http.MethodPost:
		if err := decodeJSON(r.Body, req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// Apply 把覆寫欄位套到 ss（會修改 ss）。
func (sr *SimRequest) Apply(ss *spec.SimSetting) {
	if sr.Seed != nil {
		v := *sr.Seed
		ss.Seed = &v
	}
	if sr.Workers != 0 {
		ss.Workers = sr.Workers
	}
	if sr.Samples != 0 {
		ss.Samples = sr.Samples
	}
}

func decodeJSON(body io.Reader, v any) error {
	if body == nil {
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.WrapWarn(err, "invalid json")
	}
	return nil
}

func queryFloat(q url.Values, key string) (*float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return &v, nil
}

func queryInt64(q url.Values, key string) (*int64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return &v, nil
}
