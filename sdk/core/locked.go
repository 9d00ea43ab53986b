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
	"sync"

	"github.com/zintix-labs/gausslab/errs"
)

// Locked 以互斥鎖包裝任一 RAND，使其可被多個 goroutine 共用。
//
// 每次 Uint64 都會取鎖；高吞吐的場景請讓每個 goroutine 持有自己的產生器
// （Simulator.SimMP 就是這樣做的）。
type Locked struct {
	mu  sync.Mutex
	src RAND
}

// NewLocked 回傳包裝 src 的 goroutine-safe 來源。
func NewLocked(src RAND) *Locked {
	return &Locked{src: src}
}

// Uint64 回傳下一個 uint64。
func (l *Locked) Uint64() uint64 {
	l.mu.Lock()
	v := l.src.Uint64()
	l.mu.Unlock()
	return v
}

// Snapshot 在來源可快照時回傳其狀態。
func (l *Locked) Snapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rs, ok := l.src.(Restorable)
	if !ok {
		return nil, errs.NewWarn("generator does not support snapshot")
	}
	return rs.Snapshot()
}

// Restore 在來源可還原時還原其狀態。
func (l *Locked) Restore(data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rs, ok := l.src.(Restorable)
	if !ok {
		return errs.NewWarn("generator does not support restore")
	}
	return rs.Restore(data)
}
