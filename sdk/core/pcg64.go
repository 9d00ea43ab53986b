// Package core implements the PCG64 random number generator.
//
// The PCG algorithm is designed by Melissa O'Neill.
// The generator itself is math/rand/v2's PCG (128-bit state, DXSM output);
// this file only adds seed expansion and the Restorable contract.

package core

import (
	r2 "math/rand/v2"

	"github.com/zintix-labs/gausslab/errs"
)

// PCG64 亂數產生器
type PCG64 struct {
	rng *r2.PCG
}

// NewPCG64 使用加密隨機來源產生 seed，建立新的 PCG64 實例。
func NewPCG64() *PCG64 {
	return NewPCG64WithSeed(EntropySeed())
}

// NewPCG64WithSeed 以指定 seed 建立新的 PCG64 實例。
func NewPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ (0x9e3779b97f4a7c15)
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xDA942042E4DD58B5)
	return &PCG64{rng: r2.NewPCG(hi, lo)}
}

// Uint64 回傳均勻分布的 uint64 亂數
func (r *PCG64) Uint64() uint64 {
	return r.rng.Uint64()
}

// Restore 恢復內部狀態
func (r *PCG64) Restore(data []byte) error {
	if err := r.rng.UnmarshalBinary(data); err != nil {
		return errs.WrapWarn(err, "restore pcg64 state failed")
	}
	return nil
}

// Snapshot 取得當下內部狀態
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}
