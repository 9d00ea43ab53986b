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

// Package fmath 提供取樣演算法所需的泛型浮點數約束與初等函數。
//
// 目的：
//   - 讓 Box-Muller / Marsaglia 只寫一份泛型實作，同時適用 float32 與 float64
//     （以及底層型別為兩者之一的自訂型別）。
//   - 精度與型別一致：4-byte 型別走單精度函數 (math32)，不先提升到 float64 再轉回；
//     8-byte 型別走標準庫 math。
//
// 分派以 unsafe.Sizeof 判斷底層寬度，因此 `type Meter float32` 這種具名型別也會走單精度路徑。
package fmath

import (
	"math"
	"unsafe"

	"github.com/chewxy/math32"
)

// Float 定義所有底層實現為浮點數型別的集合
type Float interface {
	~float32 | ~float64
}

// Bits 回傳 F 的有效位數（含隱含位），float32 = 24，float64 = 53。
func Bits[F Float]() uint {
	if single[F]() {
		return 24
	}
	return 53
}

// Log 自然對數。
func Log[F Float](x F) F {
	if single[F]() {
		return F(math32.Log(float32(x)))
	}
	return F(math.Log(float64(x)))
}

// Cos 餘弦（弧度）。
func Cos[F Float](x F) F {
	if single[F]() {
		return F(math32.Cos(float32(x)))
	}
	return F(math.Cos(float64(x)))
}

// Sqrt 平方根。
func Sqrt[F Float](x F) F {
	if single[F]() {
		return F(math32.Sqrt(float32(x)))
	}
	return F(math.Sqrt(float64(x)))
}

// Pi 回傳 F 精度下可表示的 π。
func Pi[F Float]() F {
	if single[F]() {
		return F(float32(math32.Pi))
	}
	return F(math.Pi)
}

// FromCount 將計數轉為 F；core.Unit 以它把 Uint64 的高位組成 [0,1) 的值。
func FromCount[F Float](n uint64) F {
	return F(n)
}

// IsFinite 回報 x 不是 ±Inf 也不是 NaN。
func IsFinite[F Float](x F) bool {
	return x-x == 0
}

// Fits 回報 float64 值 v 能否以 F 的有限值表示（float32 上限約 3.4e38）。
func Fits[F Float](v float64) bool {
	if single[F]() {
		return math.Abs(v) <= math.MaxFloat32
	}
	return IsFinite(v)
}

func single[F Float]() bool {
	var z F
	return unsafe.Sizeof(z) == 4
}
