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

// Package core 定義取樣器依賴的「均勻亂數來源」能力，以及一組可重現的實作。
//
// 取樣器只依賴 RAND（一個 Uint64 方法）。任何 math/rand/v2 的 Source
// （*rand.PCG、*rand.ChaCha8）、gonum mathext/prng 的產生器，以及本包的
// PCG64 / PCG32 都直接滿足它，呼叫端也可以塞入決定性的測試替身。
package core

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"math/big"
	r2 "math/rand/v2"
	"strings"
	"time"

	"github.com/zintix-labs/gausslab/errs"
	"gonum.org/v1/gonum/mathext/prng"
)

// RAND 定義核心亂數取樣能力。
//
// 合約：
//   - Uint64 回傳均勻分布於 [0, 2^64) 的整數，並推進內部狀態。
//   - 實作不需要是 goroutine-safe；需要共用時請用 NewLocked 包一層。
//
// 為什麼只要求 Uint64？
//   - Uniform[F] 會從高位取出 F 有效位數所需的 bit（float64 取 53、float32 取 24），
//     只要來源能提供 64 bit，就能為任一精度做無偏的抽樣。
//   - 原生 32-bit 的產生器（例如 PCG32）以兩次輸出拼成 64 bit 即可滿足。
type RAND interface {
	Uint64() uint64
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原內部狀態。
	Restore([]byte) error
}

// PRNG 是模擬器使用的亂數來源：可取樣，也可保存/還原狀態（重播、稽核）。
type PRNG interface {
	RAND
	Restorable
}

// PRNGFactory 以 seed 建立新的 PRNG。
//
// 合約：在同一個實作與同一個版本下，New(seed) 必須是決定性的，
// 相同的 seed 必須產生相同的輸出序列。Simulator 依賴這點派生多個 worker 的子 seed。
type PRNGFactory interface {
	New(seed int64) PRNG
}

// Kind 是內建產生器的名稱。
type Kind string

const (
	KindPCG64      Kind = "pcg64"
	KindPCG32      Kind = "pcg32"
	KindChaCha8    Kind = "chacha8"
	KindMT19937    Kind = "mt19937"
	KindXoshiro256 Kind = "xoshiro256"
)

// Kinds 回傳所有內建產生器名稱（穩定順序）。
func Kinds() []Kind {
	return []Kind{KindPCG64, KindPCG32, KindChaCha8, KindMT19937, KindXoshiro256}
}

// ParseKind 解析產生器名稱（大小寫不敏感，空字串視為 pcg64）。
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindPCG64, nil
	}
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errs.Warnf("unsupported generator: %q", s)
}

// NewFactory 回傳指定 Kind 的工廠。
func NewFactory(kind Kind) (PRNGFactory, error) {
	k, err := ParseKind(string(kind))
	if err != nil {
		return nil, err
	}
	return kindFactory{kind: k}, nil
}

// DefaultFactory 回傳預設工廠（PCG64）。
func DefaultFactory() PRNGFactory {
	return kindFactory{kind: KindPCG64}
}

type kindFactory struct {
	kind Kind
}

func (f kindFactory) New(seed int64) PRNG {
	switch f.kind {
	case KindPCG32:
		return NewPCG32WithSeed(seed)
	case KindChaCha8:
		return &binaryPRNG{src: r2.NewChaCha8(chachaSeed(seed))}
	case KindMT19937:
		src := prng.NewMT19937()
		src.Seed(uint64(seed))
		return &binaryPRNG{src: src}
	case KindXoshiro256:
		return &binaryPRNG{src: prng.NewXoshiro256starstar(uint64(seed))}
	default:
		return NewPCG64WithSeed(seed)
	}
}

// binaryState 是同時具備 encoding.BinaryMarshaler / BinaryUnmarshaler 的來源，
// math/rand/v2 與 gonum prng 的產生器都屬於此類。
type binaryState interface {
	RAND
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

// binaryPRNG 把 binaryState 接到 PRNG 介面。
type binaryPRNG struct {
	src binaryState
}

func (b *binaryPRNG) Uint64() uint64 { return b.src.Uint64() }

func (b *binaryPRNG) Snapshot() ([]byte, error) { return b.src.MarshalBinary() }

func (b *binaryPRNG) Restore(data []byte) error {
	if err := b.src.UnmarshalBinary(data); err != nil {
		return errs.WrapWarn(err, "restore generator state failed")
	}
	return nil
}

// chachaSeed 以 splitmix64 把 int64 展開成 ChaCha8 需要的 32 bytes。
func chachaSeed(seed int64) [32]byte {
	var out [32]byte
	x := uint64(seed)
	for i := 0; i < 4; i++ {
		x += 0x9e3779b97f4a7c15
		binary.LittleEndian.PutUint64(out[i*8:], splitmix64(x))
	}
	return out
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// EntropySeed 從系統加密亂數池取得一個非負 int64 seed。
// 系統亂數池不可用時退回時間來源。
func EntropySeed() int64 {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		now := time.Now()
		return int64(splitmix64(uint64(now.UnixNano())) >> 1)
	}
	return seed.Int64()
}
