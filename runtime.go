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

package randwheel

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/randwheel/errs"
)

const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultMaxSessions   = 10000
)

// Metrics 是 Runtime 的累計指標快照。
type Metrics struct {
	Sessions  int    `json:"sessions"`
	Created   uint64 `json:"created"`
	Spins     uint64 `json:"spins"`
	Resolves  uint64 `json:"resolves"`
	Cancels   uint64 `json:"cancels"`
	Evictions uint64 `json:"evictions"`
	Closed    bool   `json:"closed"`
}

// Runtime 持有所有存活的 Session，並以閒置 TTL 回收。
// Session 不持久化，程序結束或被回收即消失。
type Runtime struct {
	rw  *Randwheel
	log *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	created   atomic.Uint64
	spins     atomic.Uint64
	resolves  atomic.Uint64
	cancels   atomic.Uint64
	evictions atomic.Uint64
}

// RuntimeOption 調整 Runtime 行為。
type RuntimeOption func(*Runtime)

// WithTTL 設定閒置回收時間，<= 0 代表不回收。
func WithTTL(d time.Duration) RuntimeOption {
	return func(rt *Runtime) { rt.ttl = d }
}

// WithMaxSessions 設定同時存活的 Session 上限，<= 0 代表不限。
func WithMaxSessions(n int) RuntimeOption {
	return func(rt *Runtime) { rt.maxSessions = n }
}

// WithClock 替換時間來源，測試用。
func WithClock(now func() time.Time) RuntimeOption {
	return func(rt *Runtime) { rt.now = now }
}

func newRuntime(rw *Randwheel, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		rw:          rw,
		log:         rw.log,
		sessions:    map[string]*Session{},
		ttl:         DefaultSessionTTL,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		done:        make(chan struct{}),
	}
	for _, o := range opts {
		o(rt)
	}
	return rt
}

// Create 建立新的 Session。labels 為空時使用語系預設選項。
func (rt *Runtime) Create(locale string, labels []string) (*Session, error) {
	if rt.closed.Load() {
		return nil, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	}
	id := uuid.NewString()
	s, err := rt.rw.newSession(id, locale, labels, rt.now, hooks{
		spun:     func() { rt.spins.Add(1) },
		resolved: func() { rt.resolves.Add(1) },
		canceled: func() { rt.cancels.Add(1) },
	})
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	// Close 可能在上面建立 Session 的期間完成清空，持鎖後再確認一次。
	if rt.closed.Load() {
		rt.mu.Unlock()
		s.Close()
		return nil, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	}
	if rt.maxSessions > 0 && len(rt.sessions) >= rt.maxSessions {
		rt.mu.Unlock()
		s.Close()
		return nil, errs.NewWarn("too many wheels, try again later")
	}
	rt.sessions[id] = s
	rt.mu.Unlock()
	rt.created.Add(1)
	rt.log.Debug("wheel.create", slog.String("id", id), slog.String("locale", s.Locale()))
	return s, nil
}

// Get 取得 Session；不存在時回傳 NotFound 等級錯誤。
func (rt *Runtime) Get(id string) (*Session, error) {
	select {
	case <-rt.done:
		return nil, errs.NewFatal("runtime closed: " + rt.ClosedReason())
	default:
	}
	rt.mu.RLock()
	s, ok := rt.sessions[id]
	rt.mu.RUnlock()
	if !ok {
		return nil, errs.NotFoundf("wheel not found: %s", id)
	}
	return s, nil
}

// Delete 關閉並移除 Session，會取消進行中的轉動。
func (rt *Runtime) Delete(id string) error {
	rt.mu.Lock()
	s, ok := rt.sessions[id]
	delete(rt.sessions, id)
	rt.mu.Unlock()
	if !ok {
		return errs.NotFoundf("wheel not found: %s", id)
	}
	s.Close()
	return nil
}

// Len 回傳存活 Session 數量。
func (rt *Runtime) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.sessions)
}

// IDs 回傳排序後的 Session id，觀測用。
func (rt *Runtime) IDs() []string {
	rt.mu.RLock()
	ids := make([]string, 0, len(rt.sessions))
	for id := range rt.sessions {
		ids = append(ids, id)
	}
	rt.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Sweep 回收閒置超過 TTL 的 Session，轉動中的不回收。回傳回收數量。
func (rt *Runtime) Sweep() int {
	if rt.ttl <= 0 {
		return 0
	}
	cutoff := rt.now().Add(-rt.ttl)
	var victims []*Session
	rt.mu.Lock()
	for id, s := range rt.sessions {
		last, spinning := s.LastActive()
		if spinning || !last.Before(cutoff) {
			continue
		}
		victims = append(victims, s)
		delete(rt.sessions, id)
	}
	rt.mu.Unlock()
	for _, s := range victims {
		s.Close()
		rt.evictions.Add(1)
		rt.log.Info("wheel.evict", slog.String("id", s.ID()))
	}
	return len(victims)
}

// Run 週期性執行 Sweep，直到 ctx 結束或 Runtime 關閉。
func (rt *Runtime) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.done:
			return
		case <-t.C:
			rt.Sweep()
		}
	}
}

// Metrics 回傳目前指標。
func (rt *Runtime) Metrics() Metrics {
	return Metrics{
		Sessions:  rt.Len(),
		Created:   rt.created.Load(),
		Spins:     rt.spins.Load(),
		Resolves:  rt.resolves.Load(),
		Cancels:   rt.cancels.Load(),
		Evictions: rt.evictions.Load(),
		Closed:    rt.closed.Load(),
	}
}

// Close transitions the runtime into a closed state and tears down every session.
// It is safe to call multiple times.
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)

		rt.mu.Lock()
		all := make([]*Session, 0, len(rt.sessions))
		for id, s := range rt.sessions {
			all = append(all, s)
			delete(rt.sessions, id)
		}
		rt.mu.Unlock()
		for _, s := range all {
			s.Close()
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
