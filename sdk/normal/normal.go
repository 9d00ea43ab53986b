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

// Package normal 從常態分布 N(mu, sigma) 取樣，泛型於浮點精度與均勻亂數來源。
//
// 兩種演算法：
//   - BoxMuller：每輪消耗兩個均勻數，經 log / sqrt / cos 轉換得到一個常態數。
//   - MarsagliaPolar：在單位圓內做拒絕取樣，不需三角函數。
//
// 取樣器本身不持有狀態、不上鎖。呼叫端提供的產生器在單次呼叫期間被獨占借用，
// 若要跨 goroutine 共用同一個產生器，呼叫端需自行同步（或用 core.NewLocked）。
// 不提供 generator 的版本使用 core.Default()，可安全併發。
//
// 所有輸入都接受：sigma 可為負（分布鏡射），sigma = 0 時結果恆等於 mu；
// NaN / Inf 依 IEEE-754 規則傳遞，不會被攔截。
//
// 前提：產生器不能只輸出會被拒絕的邊界值（例如永遠為 0）。拒絕迴圈沒有次數上限，
// 對這種退化的產生器會無限迴圈；加上上限會讓輸出產生偏差，因此不做。
package normal

import (
	"github.com/zintix-labs/gausslab/sdk/core"
	"github.com/zintix-labs/gausslab/sdk/fmath"
)

// Standard 以指定演算法回傳一個標準常態 N(0,1) 樣本。未知的 method 視為 BoxMuller。
func Standard[F fmath.Float](r core.RAND, method Method) F {
	if method == MarsagliaPolar {
		return marsagliaPolar[F](r)
	}
	return boxMuller[F](r)
}

// Sample 以呼叫端提供的產生器取樣 N(mu, sigma)。
func Sample[F fmath.Float](mu, sigma F, r core.RAND, method Method) F {
	return sigma*Standard[F](r, method) + mu
}

// SampleDefault 以行程共用的預設產生器取樣 N(mu, sigma)。
func SampleDefault[F fmath.Float](mu, sigma F, method Method) F {
	return Sample(mu, sigma, core.Default(), method)
}

// Fill 以同一個產生器連續取樣，填滿 dst。結果與依序呼叫 Sample 相同。
func Fill[F fmath.Float](dst []F, mu, sigma F, r core.RAND, method Method) {
	for i := range dst {
		dst[i] = sigma*Standard[F](r, method) + mu
	}
}

// Normal 描述一個常態分布，形狀仿 gonum distuv.Normal。
// Src 為 nil 時使用 core.Default()。
type Normal[F fmath.Float] struct {
	Mu     F
	Sigma  F
	Method Method
	Src    core.RAND
}

// Rand 回傳一個樣本。
func (n Normal[F]) Rand() F {
	src := n.Src
	if src == nil {
		src = core.Default()
	}
	return Sample(n.Mu, n.Sigma, src, n.Method)
}
