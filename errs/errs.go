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

// Package errs 定義 gausslab 周邊（設定、目錄、模擬器、HTTP）共用的分級錯誤。
//
// 取樣核心 (sdk/normal) 本身沒有任何錯誤路徑：所有輸入都被接受，
// 異常值依 IEEE-754 規則傳遞。這裡的錯誤只出現在「組裝層」。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel 錯誤分級，讓最上層（CLI / HTTP）決定如何回應。
type ErrLevel uint8

const (
	None  ErrLevel = iota
	Fatal          // 系統或設定不可用，需要中止
	Warn           // 呼叫端參數問題，可修正後重試
	Log            // 僅需紀錄
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

// String 回傳分級名稱，未知分級回傳空字串。
func (l ErrLevel) String() string {
	return errLvMap[l]
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文（例如 preset 名稱）；
// Cause 串接下層錯誤；ErrLv 為嚴重度。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", e.ErrLv, e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E { return New(Fatal, msg) }

func NewWarn(msg string) *E { return New(Warn, msg) }

func NewLog(msg string) *E { return New(Log, msg) }

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但附加不影響主訊息的上下文字串。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 以 msg 包裝 cause。
//
// 分級規則：
//   - cause 鏈中已有 *E：沿用其 ErrLv。
//   - 其他（標準庫、yaml、json 等）：一律視為 Fatal。
//
// 若你已判斷該錯誤是「呼叫端可修正」的情境，直接用 NewWarn 建立，而不是 Wrap。
func Wrap(cause error, msg string) *E {
	r := New(levelOf(cause), msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 同 Wrap，並附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := NewWithExtra(levelOf(cause), msg, extra)
	r.Cause = cause
	return r
}

// WrapWarn 以 Warn 包裝 cause，用於解碼呼叫端輸入失敗（yaml/json 語法錯誤等）。
func WrapWarn(cause error, msg string) *E {
	r := NewWarn(msg)
	r.Cause = cause
	return r
}

// AsErr 取出錯誤鏈中的第一個 *E。
func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Level 回傳錯誤鏈中的分級；nil 回傳 None，非 *E 回傳 Fatal。
func Level(err error) ErrLevel {
	if err == nil {
		return None
	}
	return levelOf(err)
}

func levelOf(cause error) ErrLevel {
	if e, ok := AsErr(cause); ok {
		return e.ErrLv
	}
	return Fatal
}
