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

// marsagliaPolar 回傳一個標準常態 z。
//
// 在 [-1,1)^2 取點，只接受落在開單位圓內且不為原點者 (0 < s < 1)，
// 接受率 π/4。每一輪的 x, y 彼此獨立，也獨立於先前被拒絕的輪次。
func marsagliaPolar[F fmath.Float](r core.RAND) F {
	var x, y, s F
	for {
		x = core.Uniform(r, F(-1), F(1))
		y = core.Uniform(r, F(-1), F(1))
		s = x*x + y*y
		if s != 0 && s < 1 {
			break
		}
	}
	return x * fmath.Sqrt(-2*fmath.Log(s)/s)
}
