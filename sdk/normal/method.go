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
package normal

import (
	"strconv"
	"strings"

	"github.com/zintix-labs/gausslab/errs"
)

// Method 選擇常態取樣演算法。零值為 BoxMuller。
type Method uint8

const (
	BoxMuller Method = iota
	MarsagliaPolar
)

var methodName = map[Method]string{
	BoxMuller:      "box-muller",
	MarsagliaPolar: "marsaglia-polar",
}

var methodAlias = map[string]Method{
	"box-muller":      BoxMuller,
	"boxmuller":       BoxMuller,
	"bm":              BoxMuller,
	"marsaglia-polar": MarsagliaPolar,
	"marsaglia":       MarsagliaPolar,
	"polar":           MarsagliaPolar,
	"mp":              MarsagliaPolar,
}

// String 回傳正規名稱；未知值回傳 "Method(n)"。
func (m Method) String() string {
	if s, ok := methodName[m]; ok {
		return s
	}
	return "Method(" + strconv.Itoa(int(m)) + ")"
}

// ParseMethod 解析演算法名稱（大小寫不敏感）；空字串視為 BoxMuller。
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return BoxMuller, nil
	}
	if m, ok := methodAlias[key]; ok {
		return m, nil
	}
	return BoxMuller, errs.Warnf("unknown sampling method: %q", s)
}

// MarshalText 讓 Method 在 JSON / YAML 中以名稱出現。
func (m Method) MarshalText() ([]byte, error) {
	if _, ok := methodName[m]; !ok {
		return nil, errs.Warnf("unknown sampling method: %d", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText 支援 ParseMethod 接受的所有別名。
func (m *Method) UnmarshalText(b []byte) error {
	v, err := ParseMethod(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
