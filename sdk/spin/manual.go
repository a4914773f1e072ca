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
	"time"
)

// ManualScheduler 由呼叫端決定何時觸發，供測試與模擬使用。
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	after   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{after: d, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Pending 回傳尚未觸發也未停止的工作數。
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// LastDelay 回傳最後一個排程的延遲。
func (m *ManualScheduler) LastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tasks) == 0 {
		return 0
	}
	return m.tasks[len(m.tasks)-1].after
}

// FireAll 依排程順序觸發所有未停止的工作，回傳觸發數量。
// 被停止的工作也可用 FireStopped 強制觸發，用來模擬 Stop 與到期的競爭。
func (m *ManualScheduler) FireAll() int {
	return m.fire(false)
}

// FireStopped 連已停止的工作一起觸發（模擬 timer 已到期但 Stop 晚到）。
func (m *ManualScheduler) FireStopped() int {
	return m.fire(true)
}

func (m *ManualScheduler) fire(includeStopped bool) int {
	m.mu.Lock()
	var run []func()
	for _, t := range m.tasks {
		if t.fired || (t.stopped && !includeStopped) {
			continue
		}
		t.fired = true
		run = append(run, t.f)
	}
	m.mu.Unlock()
	for _, f := range run {
		f()
	}
	return len(run)
}
