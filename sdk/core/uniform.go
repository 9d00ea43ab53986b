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
package core

import "github.com/zintix-labs/gausslab/sdk/fmath"

// Uniform 回傳 [lo, hi) 之間、精度為 F 的均勻亂數。
//
// 做法：取 r.Uint64() 的高 Bits[F]() 位（float64 取 53、float32 取 24）
// 得到 [0,1) 的格點 u，再映射成 lo + (hi-lo)*u。
// 映射後的捨入可能恰好得到 hi，這時重抽，因此結果一定落在半開區間內。
//
// lo >= hi（或任一端為 NaN）時直接回傳 lo，不消耗亂數。
func Uniform[F fmath.Float](r RAND, lo, hi F) F {
	if !(lo < hi) {
		return lo
	}
	span := hi - lo
	overflow := !fmath.IsFinite(span)
	for {
		u := Unit[F](r)
		var v F
		if overflow {
			v = lo*(1-u) + hi*u
		} else {
			v = lo + span*u
		}
		if v >= lo && v < hi {
			return v
		}
	}
}

// Unit 回傳 [0,1) 之間、精度為 F 的均勻亂數：k / 2^Bits，k 取自 Uint64 的高位。
func Unit[F fmath.Float](r RAND) F {
	b := fmath.Bits[F]()
	return fmath.FromCount[F](r.Uint64()>>(64-b)) / fmath.FromCount[F](uint64(1)<<b)
}
