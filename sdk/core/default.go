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

import "sync"

var defaultRAND = sync.OnceValue(func() *Locked {
	return NewLocked(NewPCG64())
})

// Default 回傳行程共用的預設亂數來源。
//
// 第一次呼叫時才建立（PCG64，seed 取自系統加密亂數池），之後每次回傳同一個實例。
// 內部以互斥鎖保護，可在任意 goroutine 併發使用。
// 序列不可重現；需要重現請自行以 seed 建立產生器。
func Default() RAND {
	return defaultRAND()
}
