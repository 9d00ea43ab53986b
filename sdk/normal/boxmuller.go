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
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/fmath"
)

// boxMuller 回傳一個標準常態 z。
//
// x 取自 [0,1)、y 取自 [0,2)，任一為 0 就整組重抽。
// x = 0 時 log 無定義，必須排除；y = 0 只是角度為 0 的合法點，這裡一併排除。
// 兩者都是機率為 2^-53（float32 為 2^-24）等級的事件，對分布的影響可忽略。
func boxMuller[F fmath.Float](r core.RAND) F {
	var x, y F
	for {
		x = core.Uniform(r, F(0), F(1))
		y = core.Uniform(r, F(0), F(2))
		if x != 0 && y != 0 {
			break
		}
	}
	return fmath.Sqrt(-2*fmath.Log(x)) * fmath.Cos(fmath.Pi[F]()*y)
}
