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

// Package errs 定義 randwheel 內部共用的分級錯誤。
//
// 核心（geom / spin / items）的「政策拒絕」一律是 no-op，不會產生錯誤；
// 只有邊界層（設定解析、API 參數、session 查找）才會回傳 *E。
package errs

import (
	"errors"
	"fmt"
)

type ErrLevel uint8

const (
	None     ErrLevel = iota
	Fatal             // 系統不可恢復：設定壞掉、runtime 已關閉
	Warn              // 請求/參數問題
	NotFound          // 找不到 session / locale
	Log               // 只需紀錄
)

func (lv ErrLevel) String() string {
	switch lv {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case NotFound:
		return "not_found"
	case Log:
		return "log"
	default:
		return ""
	}
}

// E 是帶等級的錯誤。Wrap 時會沿用 cause 的等級。
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

func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E    { return New(Fatal, msg) }
func NewWarn(msg string) *E     { return New(Warn, msg) }
func NewNotFound(msg string) *E { return New(NotFound, msg) }

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func NotFoundf(format string, a ...any) *E {
	return NewNotFound(fmt.Sprintf(format, a...))
}

func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 包裝 cause；cause 不是 *E 時視為 Fatal。
func Wrap(cause error, msg string) *E {
	r := New(Level(cause), msg)
	if r.ErrLv == None {
		r.ErrLv = Fatal
	}
	r.Cause = cause
	return r
}

// Level 回傳錯誤鏈上第一個 *E 的等級；沒有 *E 時回傳 None。
func Level(err error) ErrLevel {
	var e *E
	if errors.As(err, &e) {
		return e.ErrLv
	}
	return None
}

func IsFatal(err error) bool    { return Level(err) == Fatal }
func IsNotFound(err error) bool { return Level(err) == NotFound }

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
