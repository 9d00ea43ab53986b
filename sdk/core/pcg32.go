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

import (
	"encoding/binary"
	"math/bits"

	"github.com/zintix-labs/gausslab/errs"
)

const pcg32Multiplier = 6364136223846793005

// pcg32StateLen Snapshot 長度：state(8) + inc(8)
const pcg32StateLen = 16

// PCG32 為 64-bit 狀態、32-bit 輸出的 PCG (XSH RR) 產生器。
//
// 原生輸出只有 32 bit，Uint64 以連續兩次輸出拼接（高位先），
// 因此 float64 取樣仍能拿到完整的 53 bit 有效位數。
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 使用加密隨機來源產生 seed。
func NewPCG32() *PCG32 {
	return NewPCG32WithSeed(EntropySeed())
}

// NewPCG32WithSeed 以指定 seed 建立（stream 固定為 1）。
func NewPCG32WithSeed(seed int64) *PCG32 {
	r := &PCG32{}
	r.initWithSeed(seed, 1)
	return r
}

// Uint32 回傳一次原生輸出。
func (r *PCG32) Uint32() uint32 {
	return r.nextUint32()
}

// Uint64 回傳兩次原生輸出拼接的 uint64。
func (r *PCG32) Uint64() uint64 {
	return (uint64(r.nextUint32()) << 32) | uint64(r.nextUint32())
}

// Snapshot 取得當下內部狀態 (big-endian state || inc)
func (r *PCG32) Snapshot() ([]byte, error) {
	b := make([]byte, 0, pcg32StateLen)
	b = binary.BigEndian.AppendUint64(b, r.state)
	b = binary.BigEndian.AppendUint64(b, r.inc)
	return b, nil
}

// Restore 由 Snapshot 的輸出還原狀態。
func (r *PCG32) Restore(data []byte) error {
	if len(data) != pcg32StateLen {
		return errs.Warnf("pcg32 state must be %d bytes, got %d", pcg32StateLen, len(data))
	}
	inc := binary.BigEndian.Uint64(data[8:])
	if inc&1 == 0 {
		return errs.NewWarn("pcg32 increment must be odd")
	}
	r.state = binary.BigEndian.Uint64(data[:8])
	r.inc = inc
	return nil
}

func (r *PCG32) initWithSeed(baseSeed int64, seq uint64) {
	// PCG 建議的初始化流程：先用 stream 初始化一次，再加 seed，最後再 step。
	r.state = 0
	r.inc = (seq << 1) | 1
	r.nextUint32()
	r.state += uint64(baseSeed)
	r.nextUint32()
}

func (r *PCG32) nextUint32() uint32 {
	oldstate := r.state
	r.state = oldstate*pcg32Multiplier + r.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return bits.RotateLeft32(xorshifted, -int(rot))
}
