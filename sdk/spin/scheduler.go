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

package spin

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer 是已排程工作的停止把手；*time.Timer 滿足此介面。
type Timer interface {
	Stop() bool
}

// Scheduler 負責延遲執行 Resolve。正式環境用 RealScheduler，測試可注入手動觸發的實作。
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler 以 time.AfterFunc 排程。
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Pending 是一個待觸發的 Resolve，帶有可重複呼叫的取消把手。
//
// 取消後 f 不會再被呼叫；若 f 已經開始執行，取消不會中斷它，
// 呼叫端需自行用世代（generation）檢查丟棄過期結果。
type Pending struct {
	timer    Timer
	once     sync.Once
	canceled atomic.Bool
	fired    atomic.Bool
}

// Schedule 在 d 之後呼叫 f，回傳取消把手。
func Schedule(s Scheduler, d time.Duration, f func()) *Pending {
	p := &Pending{}
	p.timer = s.AfterFunc(d, func() {
		if p.canceled.Load() {
			return
		}
		p.fired.Store(true)
		f()
	})
	return p
}

// Cancel 停止排程。只有第一次呼叫會回傳 true。nil receiver 安全。
func (p *Pending) Cancel() bool {
	if p == nil {
		return false
	}
	first := false
	p.once.Do(func() {
		first = true
		p.canceled.Store(true)
		if p.timer != nil {
			p.timer.Stop()
		}
	})
	return first
}

func (p *Pending) Canceled() bool {
	return p != nil && p.canceled.Load()
}

func (p *Pending) Fired() bool {
	return p != nil && p.fired.Load()
}
