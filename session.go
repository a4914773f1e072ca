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
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/sdk/core"
	"github.com/zintix-labs/randwheel/sdk/items"
	"github.com/zintix-labs/randwheel/sdk/spin"
	"github.com/zintix-labs/randwheel/spec"
)

// EventKind 是推送給訂閱者的事件種類。
type EventKind string

const (
	EventSpin   EventKind = "spin"   // 轉動開始
	EventResult EventKind = "result" // 轉動結束並得到結果
	EventItems  EventKind = "items"  // 清單變更
	EventClosed EventKind = "closed" // Session 已關閉
)

// State 是 Session 某一刻的唯讀快照。
type State struct {
	ID          string   `json:"id"`
	Locale      string   `json:"locale"`
	Items       []string `json:"items"`
	Rotation    float64  `json:"rotation"`
	Spinning    bool     `json:"spinning"`
	Result      *string  `json:"result"`
	ResultIndex *int     `json:"result_index"`
}

// Event 是 Session 推送的事件。
type Event struct {
	Kind           EventKind `json:"kind"`
	State          State     `json:"state"`
	From           float64   `json:"from,omitempty"`
	ResolveAfterMs int64     `json:"resolve_after_ms,omitempty"`
}

// Ticket 是一次 Spin 呼叫的回覆。Accepted=false 代表政策拒絕（轉動中或選項不足），不是錯誤，
// 此時 From 與 Rotation 都等於目前角度。
type Ticket struct {
	Accepted     bool
	From         float64
	Rotation     float64
	ResolveAfter time.Duration
	State        State
}

// hooks 讓 Runtime 收集指標，nil 欄位代表不關心。
type hooks struct {
	spun     func()
	resolved func()
	canceled func()
}

// Session 是一個轉盤的完整狀態：選項清單、累積角度與進行中的轉動。
//
// 所有狀態變更都在 mu 之下進行。轉動中旗標在排程 Resolve 之前就已設定，
// 因此第二個 Spin 一定會看到 spinning=true。
type Session struct {
	id      string
	locale  string
	binding spec.ResolveBinding
	params  spin.Params
	sched   spin.Scheduler
	core    *core.Core
	log     *slog.Logger
	hooks   hooks

	mu         sync.Mutex
	list       items.List
	snapshot   items.List // 轉動開始時的清單
	rotation   float64
	spinning   bool
	result     *string
	resultIdx  int
	pending    *spin.Pending
	gen        uint64
	closed     bool
	lastActive time.Time
	now        func() time.Time
	subs       map[int]chan Event
	nextSub    int
}

func (s *Session) ID() string     { return s.id }
func (s *Session) Locale() string { return s.locale }

// Binding 回傳結果以哪一份清單計算。
func (s *Session) Binding() spec.ResolveBinding { return s.binding }

// State 回傳目前狀態快照。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		ID:       s.id,
		Locale:   s.locale,
		Items:    s.list.Labels(),
		Rotation: s.rotation,
		Spinning: s.spinning,
	}
	if s.result != nil {
		r := *s.result
		idx := s.resultIdx
		st.Result = &r
		st.ResultIndex = &idx
	}
	return st
}

// Add 新增選項。空白或已達上限時不變更並回傳 applied=false。
func (s *Session) Add(label string) (bool, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, State{}, errClosed(s.id)
	}
	s.touchLocked()
	next, ok := s.list.Add(label)
	if ok {
		s.list = next
		s.broadcastLocked(Event{Kind: EventItems, State: s.stateLocked()})
	}
	return ok, s.stateLocked(), nil
}

// Remove 移除第 index 個選項。已達下限或索引越界時不變更並回傳 applied=false。
func (s *Session) Remove(index int) (bool, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, State{}, errClosed(s.id)
	}
	s.touchLocked()
	next, ok := s.list.Remove(index)
	if ok {
		s.list = next
		s.broadcastLocked(Event{Kind: EventItems, State: s.stateLocked()})
	}
	return ok, s.stateLocked(), nil
}

// Spin 請求一次轉動。接受時清除上一次結果、設定 spinning 並排程 Resolve。
func (s *Session) Spin() (Ticket, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Ticket{}, errClosed(s.id)
	}
	s.touchLocked()
	req, ok := spin.RequestSpin(s.params, s.rotation, s.list.Len(), s.spinning, s.core)
	if !ok {
		t := Ticket{From: s.rotation, Rotation: s.rotation, State: s.stateLocked()}
		s.mu.Unlock()
		return t, nil
	}
	s.spinning = true
	s.result = nil
	s.resultIdx = -1
	s.rotation = req.Rotation
	s.snapshot = s.list
	s.gen++
	gen := s.gen
	s.pending = spin.Schedule(s.sched, req.ResolveAfter, func() { s.resolve(gen) })
	st := s.stateLocked()
	s.broadcastLocked(Event{
		Kind:           EventSpin,
		State:          st,
		From:           req.From,
		ResolveAfterMs: req.ResolveAfter.Milliseconds(),
	})
	s.mu.Unlock()

	s.log.Debug("wheel.spin",
		slog.String("id", s.id),
		slog.Float64("from", req.From),
		slog.Float64("rotation", req.Rotation),
		slog.Int("items", st.itemCount()),
	)
	if s.hooks.spun != nil {
		s.hooks.spun()
	}
	return Ticket{
		Accepted:     true,
		From:         req.From,
		Rotation:     req.Rotation,
		ResolveAfter: req.ResolveAfter,
		State:        st,
	}, nil
}

// resolve 在排程到期時執行；世代不符（已被取消或已被新轉動取代）時忽略。
func (s *Session) resolve(gen uint64) {
	s.mu.Lock()
	if s.closed || !s.spinning || gen != s.gen {
		s.mu.Unlock()
		return
	}
	list := s.snapshot
	if s.binding == spec.BindLive {
		list = s.list
	}
	idx := spin.Resolve(s.rotation, list.Len())
	label, ok := list.At(idx)
	s.spinning = false
	s.pending = nil
	if ok {
		s.result = &label
		s.resultIdx = idx
	}
	st := s.stateLocked()
	s.broadcastLocked(Event{Kind: EventResult, State: st})
	s.mu.Unlock()

	s.log.Info("wheel.resolve",
		slog.String("id", s.id),
		slog.Int("index", idx),
		slog.String("label", label),
		slog.String("binding", string(s.binding)),
	)
	if s.hooks.resolved != nil {
		s.hooks.resolved()
	}
}

// Close 取消進行中的轉動並關閉所有訂閱。可重複呼叫。
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	canceled := s.pending.Cancel()
	s.pending = nil
	s.spinning = false
	s.broadcastLocked(Event{Kind: EventClosed, State: s.stateLocked()})
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	if canceled {
		s.log.Debug("wheel.cancel", slog.String("id", s.id))
		if s.hooks.canceled != nil {
			s.hooks.canceled()
		}
	}
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Subscribe 回傳事件 channel 與取消訂閱函式。
// 推送不阻塞，緩衝滿時丟棄該訂閱者的事件。Session 關閉時 channel 會被關閉。
func (s *Session) Subscribe(buf int) (<-chan Event, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Event, buf)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

// LastActive 回傳最後一次操作時間。轉動中的 Session 視為活躍。
func (s *Session) LastActive() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.spinning
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}

func (s *Session) broadcastLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (st State) itemCount() int { return len(st.Items) }

func errClosed(id string) error {
	return errs.NewNotFound("wheel closed: " + id)
}
