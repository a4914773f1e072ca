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
	"sync"
	"testing"
	"time"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/sdk/spin"
	"github.com/zintix-labs/randwheel/spec"
)

func newTestWheel(t *testing.T, binding spec.ResolveBinding) (*Randwheel, *spin.ManualScheduler) {
	t.Helper()
	ws := spec.Default()
	ws.ResolveBinding = binding
	bundle, err := i18n.Load()
	if err != nil {
		t.Fatal(err)
	}
	sched := &spin.ManualScheduler{}
	rw, err := New(ws, bundle, WithScheduler(sched), WithSeed(20251019))
	if err != nil {
		t.Fatal(err)
	}
	return rw, sched
}

func TestSessionDefaults(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	s, err := rw.NewSession("a", "zh", nil)
	if err != nil {
		t.Fatal(err)
	}
	st := s.State()
	if len(st.Items) != 6 || st.Items[0] != "选项 1" {
		t.Fatalf("items=%v", st.Items)
	}
	if st.Spinning || st.Result != nil || st.ResultIndex != nil || st.Rotation != 0 {
		t.Fatalf("initial state=%+v", st)
	}
}

func TestNewSessionRejects(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	if _, err := rw.NewSession("a", "fr", nil); errs.Level(err) != errs.Warn {
		t.Fatalf("unsupported locale err=%v", err)
	}
	if _, err := rw.NewSession("a", "en", []string{"only", "  "}); errs.Level(err) != errs.Warn {
		t.Fatalf("single item err=%v", err)
	}
	s, err := rw.NewSession("a", "", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13"})
	if err != nil {
		t.Fatal(err)
	}
	if st := s.State(); len(st.Items) != 12 || st.Locale != "en" {
		t.Fatalf("state=%+v", st)
	}
}

func TestSpinResolveSnapshot(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B", "C", "D"})

	tk, err := s.Spin()
	if err != nil || !tk.Accepted {
		t.Fatalf("spin accepted=%v err=%v", tk.Accepted, err)
	}
	if !tk.State.Spinning || tk.ResolveAfter != 4*time.Second || sched.LastDelay() != 4*time.Second {
		t.Fatalf("ticket=%+v delay=%v", tk, sched.LastDelay())
	}
	if tk.Rotation < 5*360 {
		t.Fatalf("rotation=%v", tk.Rotation)
	}

	// 轉動中再轉一次會被拒絕，且不排程第二個 Resolve。
	tk2, err := s.Spin()
	if err != nil || tk2.Accepted || sched.Pending() != 1 {
		t.Fatalf("second spin accepted=%v pending=%d", tk2.Accepted, sched.Pending())
	}
	if tk2.Rotation != tk.Rotation || tk2.From != tk.Rotation || tk2.State.Rotation != tk.Rotation {
		t.Fatalf("rejected ticket should carry current rotation %v: %+v", tk.Rotation, tk2)
	}

	// 轉動中編輯清單，結果仍以轉動開始時的清單計算。
	if ok, _, _ := s.Add("E"); !ok {
		t.Fatal("add during spin should apply")
	}
	sched.FireAll()

	st := s.State()
	want := spin.Resolve(tk.Rotation, 4)
	if st.Spinning || st.ResultIndex == nil || *st.ResultIndex != want {
		t.Fatalf("state=%+v want index %d", st, want)
	}
	if *st.Result != []string{"A", "B", "C", "D"}[want] {
		t.Fatalf("result=%q", *st.Result)
	}
	if len(st.Items) != 5 {
		t.Fatalf("items=%v", st.Items)
	}
}

func TestSpinResolveLive(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindLive)
	s, _ := rw.NewSession("a", "en", []string{"A", "B", "C", "D"})
	tk, _ := s.Spin()
	s.Add("E")
	s.Add("F")
	sched.FireAll()

	st := s.State()
	want := spin.Resolve(tk.Rotation, 6)
	if st.ResultIndex == nil || *st.ResultIndex != want {
		t.Fatalf("state=%+v want index %d", st, want)
	}
	if *st.Result != st.Items[want] {
		t.Fatalf("result=%q items=%v", *st.Result, st.Items)
	}
}

func TestSpinClearsPreviousResult(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B"})
	s.Spin()
	sched.FireAll()
	if s.State().Result == nil {
		t.Fatal("expected result")
	}
	first := s.State().Rotation
	tk, _ := s.Spin()
	if !tk.Accepted || tk.State.Result != nil || tk.From != first {
		t.Fatalf("ticket=%+v", tk)
	}
	if tk.Rotation-first < 5*360 {
		t.Fatalf("rotation did not advance: %v -> %v", first, tk.Rotation)
	}
}

func TestSpinRejectedBelowMin(t *testing.T) {
	ws := spec.Default()
	ws.MinItems = 3
	bundle, _ := i18n.Load()
	sched := &spin.ManualScheduler{}
	rw, _ := New(ws, bundle, WithScheduler(sched))
	s, err := rw.NewSession("a", "en", []string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if ok, _, _ := s.Remove(0); ok {
		t.Fatal("remove at min should be rejected")
	}
	if ok, _, _ := s.Remove(9); ok {
		t.Fatal("remove out of range should be rejected")
	}
	if tk, _ := s.Spin(); !tk.Accepted {
		t.Fatal("spin with 3 items should be accepted")
	}
}

func TestSpinRejectedKeepsRotation(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B"})
	first, _ := s.Spin()
	sched.FireAll()
	cur := s.State().Rotation

	// 低於下限：以設定把 MinItems 提高後直接拒絕。
	s.mu.Lock()
	s.params.MinItems = 3
	s.mu.Unlock()
	tk, err := s.Spin()
	if err != nil || tk.Accepted {
		t.Fatalf("spin below min accepted=%v err=%v", tk.Accepted, err)
	}
	if cur != first.Rotation || tk.Rotation != cur || tk.From != cur {
		t.Fatalf("rejected ticket rotation=%v from=%v want %v", tk.Rotation, tk.From, cur)
	}
	if sched.Pending() != 0 {
		t.Fatalf("pending=%d", sched.Pending())
	}
}

func TestCloseCancelsPending(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B"})
	events, _ := s.Subscribe(8)
	s.Spin()
	s.Close()
	s.Close()
	if sched.Pending() != 0 {
		t.Fatalf("pending=%d after close", sched.Pending())
	}
	// 即使 timer 已經到期才停止，Resolve 也不能改動已關閉的 Session。
	sched.FireStopped()
	if st := s.State(); st.Result != nil || st.Spinning {
		t.Fatalf("closed session mutated: %+v", st)
	}
	if _, err := s.Spin(); !errs.IsNotFound(err) {
		t.Fatalf("spin after close err=%v", err)
	}
	if _, _, err := s.Add("x"); err == nil {
		t.Fatal("add after close should fail")
	}

	var kinds []EventKind
	for ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) != 2 || kinds[0] != EventSpin || kinds[1] != EventClosed {
		t.Fatalf("events=%v", kinds)
	}
}

func TestSubscribeEvents(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B"})
	events, cancel := s.Subscribe(8)
	s.Add("C")
	tk, _ := s.Spin()
	sched.FireAll()

	ev := <-events
	if ev.Kind != EventItems || len(ev.State.Items) != 3 {
		t.Fatalf("ev=%+v", ev)
	}
	ev = <-events
	if ev.Kind != EventSpin || ev.State.Rotation != tk.Rotation || ev.ResolveAfterMs != 4000 {
		t.Fatalf("ev=%+v", ev)
	}
	ev = <-events
	if ev.Kind != EventResult || ev.State.Result == nil {
		t.Fatalf("ev=%+v", ev)
	}
	cancel()
	cancel()
	if _, open := <-events; open {
		t.Fatal("channel should be closed after cancel")
	}
}

func TestSubscribeDropsWhenFull(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B"})
	events, _ := s.Subscribe(1)
	s.Add("C")
	s.Add("D")
	s.Add("E")
	if len(events) != 1 {
		t.Fatalf("buffered=%d", len(events))
	}
}

func TestConcurrentSpinOnlyOneAccepted(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	s, _ := rw.NewSession("a", "en", []string{"A", "B", "C"})
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tk, _ := s.Spin(); tk.Accepted {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted != 1 || sched.Pending() != 1 {
		t.Fatalf("accepted=%d pending=%d", accepted, sched.Pending())
	}
}

func TestRealSchedulerResolves(t *testing.T) {
	ws := spec.Default()
	ws.SpinDurationMs = 5
	bundle, _ := i18n.Load()
	rw, err := New(ws, bundle)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := rw.NewSession("a", "en", nil)
	events, _ := s.Subscribe(4)
	s.Spin()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == EventResult {
				return
			}
		case <-deadline:
			t.Fatal("no result event")
		}
	}
}

func TestSeedReproducible(t *testing.T) {
	a, _ := newTestWheel(t, spec.BindSnapshot)
	b, _ := newTestWheel(t, spec.BindSnapshot)
	sa, _ := a.NewSession("a", "en", nil)
	sb, _ := b.NewSession("b", "en", nil)
	ta, _ := sa.Spin()
	tb, _ := sb.Spin()
	if ta.Rotation != tb.Rotation {
		t.Fatalf("same seed diverged: %v vs %v", ta.Rotation, tb.Rotation)
	}
}

func TestRuntimeLifecycle(t *testing.T) {
	rw, sched := newTestWheel(t, spec.BindSnapshot)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	rt := rw.BuildRuntime(WithTTL(time.Minute), WithClock(clock))

	s, err := rt.Create("en", nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := rt.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("get err=%v", err)
	}
	if _, err := rt.Get("missing"); !errs.IsNotFound(err) {
		t.Fatalf("missing err=%v", err)
	}

	s.Spin()
	sched.FireAll()
	s.Spin()
	if err := rt.Delete(s.ID()); err != nil {
		t.Fatal(err)
	}
	if err := rt.Delete(s.ID()); !errs.IsNotFound(err) {
		t.Fatalf("double delete err=%v", err)
	}
	if !s.Closed() {
		t.Fatal("deleted session should be closed")
	}

	m := rt.Metrics()
	if m.Created != 1 || m.Spins != 2 || m.Resolves != 1 || m.Cancels != 1 || m.Sessions != 0 {
		t.Fatalf("metrics=%+v", m)
	}
}

func TestRuntimeSweep(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}
	rt := rw.BuildRuntime(WithTTL(time.Minute), WithClock(clock))

	idle, _ := rt.Create("en", nil)
	busy, _ := rt.Create("en", nil)
	active, _ := rt.Create("zh", nil)

	busy.Spin() // 轉動中不回收
	advance(2 * time.Minute)
	active.Add("x")

	if n := rt.Sweep(); n != 1 {
		t.Fatalf("swept=%d", n)
	}
	if _, err := rt.Get(idle.ID()); !errs.IsNotFound(err) {
		t.Fatal("idle session should be evicted")
	}
	if !idle.Closed() || busy.Closed() || active.Closed() {
		t.Fatal("wrong sessions closed")
	}
	if rt.Metrics().Evictions != 1 {
		t.Fatalf("metrics=%+v", rt.Metrics())
	}
}

func TestRuntimeLimitsAndClose(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	rt := rw.BuildRuntime(WithMaxSessions(2))
	a, _ := rt.Create("en", nil)
	if _, err := rt.Create("en", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.Create("en", nil); errs.Level(err) != errs.Warn {
		t.Fatalf("over limit err=%v", err)
	}
	if len(rt.IDs()) != 2 {
		t.Fatalf("ids=%v", rt.IDs())
	}

	rt.Close()
	rt.Close()
	if !rt.Closed() || rt.ClosedReason() != "closed" {
		t.Fatal("runtime should be closed")
	}
	if !a.Closed() || rt.Len() != 0 {
		t.Fatal("close should tear down sessions")
	}
	if _, err := rt.Create("en", nil); !errs.IsFatal(err) {
		t.Fatalf("create after close err=%v", err)
	}
	if _, err := rt.Get(a.ID()); !errs.IsFatal(err) {
		t.Fatalf("get after close err=%v", err)
	}
}

func TestRuntimeCreateRacingClose(t *testing.T) {
	for round := 0; round < 20; round++ {
		rw, _ := newTestWheel(t, spec.BindSnapshot)
		rt := rw.BuildRuntime()
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created []*Session
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					s, err := rt.Create("en", nil)
					if err != nil {
						if !errs.IsFatal(err) {
							t.Errorf("create err=%v", err)
						}
						return
					}
					mu.Lock()
					created = append(created, s)
					mu.Unlock()
				}
			}()
		}
		rt.Close()
		wg.Wait()
		for _, s := range created {
			if !s.Closed() {
				t.Fatalf("round %d: session %s survived runtime close", round, s.ID())
			}
		}
		if rt.Len() != 0 {
			t.Fatalf("round %d: len=%d after close", round, rt.Len())
		}
	}
}

func TestSimulatorDistribution(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	sim, err := rw.NewSimulator([]string{"A", "B", "C", "D", "E"})
	if err != nil {
		t.Fatal(err)
	}
	rep, _, err := sim.Sim(20000, false)
	if err != nil {
		t.Fatal(err)
	}
	sum := rep.Summary
	if sum.Rounds != 20000 || sum.ItemCount != 5 {
		t.Fatalf("summary=%+v", sum)
	}
	if sum.MinStep < 5*360 || sum.MaxStep >= 9*360 {
		t.Fatalf("step range [%v,%v]", sum.MinStep, sum.MaxStep)
	}
	if sum.MaxDevPct > 10 {
		t.Fatalf("distribution too skewed: %+v", rep.Items)
	}

	rep, _, err = sim.SimMP(5000, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Summary.Rounds != 20000 {
		t.Fatalf("mp rounds=%d", rep.Summary.Rounds)
	}
}

func TestSimulatorReproducible(t *testing.T) {
	a, _ := newTestWheel(t, spec.BindSnapshot)
	b, _ := newTestWheel(t, spec.BindSnapshot)
	sa, _ := a.NewSimulator(nil)
	sb, _ := b.NewSimulator(nil)
	ra, _, _ := sa.Sim(1000, false)
	rb, _, _ := sb.Sim(1000, false)
	for i := range ra.Items {
		if ra.Items[i].Count != rb.Items[i].Count {
			t.Fatalf("item %d: %d vs %d", i, ra.Items[i].Count, rb.Items[i].Count)
		}
	}
	if len(sa.Labels()) != 6 || sa.Labels()[0] != "Option 1" {
		t.Fatalf("labels=%v", sa.Labels())
	}
}

func TestSimulatorBadParams(t *testing.T) {
	rw, _ := newTestWheel(t, spec.BindSnapshot)
	sim, _ := rw.NewSimulator(nil)
	if _, _, err := sim.Sim(0, false); err == nil {
		t.Fatal("expected round error")
	}
	if _, _, err := sim.SimMP(10, 0, false); err == nil {
		t.Fatal("expected worker error")
	}
	if _, err := rw.NewSimulator([]string{"solo"}); err == nil {
		t.Fatal("expected item count error")
	}
}

func TestSeedMakerUnique(t *testing.T) {
	sm := newSeedMaker(1)
	seen := map[int64]bool{}
	for i := 0; i < 10000; i++ {
		v := sm.next()
		if v < 0 || seen[v] {
			t.Fatalf("seed %d invalid or repeated at %d", v, i)
		}
		seen[v] = true
	}
}
