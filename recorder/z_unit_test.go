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

package recorder

import "testing"

func TestRecordAndDone(t *testing.T) {
	r, err := NewSpinRecorder([]string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	r.Record(0, 2000)
	r.Record(2, 2100)
	r.Record(2, 1900)
	if r.Record(3, 1000) || r.Record(-1, 1000) {
		t.Fatal("out of range index recorded")
	}
	if r.Rounds != 3 || r.Counts[2] != 2 {
		t.Fatalf("rounds=%d counts=%v", r.Rounds, r.Counts)
	}
	if r.MinStep != 1900 || r.MaxStep != 2100 {
		t.Fatalf("min=%v max=%v", r.MinStep, r.MaxStep)
	}
	rep := r.Done()
	if rep.Summary.Rounds != 3 || rep.Summary.MeanStep != 2000 {
		t.Fatalf("summary=%+v", rep.Summary)
	}
}

func TestNewSpinRecorderRejectsSingleItem(t *testing.T) {
	if _, err := NewSpinRecorder([]string{"A"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestMergeSpinRecorder(t *testing.T) {
	a, _ := NewSpinRecorder([]string{"A", "B"})
	b, _ := NewSpinRecorder([]string{"A", "B"})
	empty, _ := NewSpinRecorder([]string{"A", "B"})
	a.Record(0, 1850)
	b.Record(1, 2500)
	b.Record(1, 1900)
	m, err := MergeSpinRecorder([]*SpinRecorder{a, empty, b})
	if err != nil {
		t.Fatal(err)
	}
	if m.Rounds != 3 || m.Counts[0] != 1 || m.Counts[1] != 2 {
		t.Fatalf("merged=%+v", m)
	}
	if m.MinStep != 1850 || m.MaxStep != 2500 {
		t.Fatalf("min=%v max=%v", m.MinStep, m.MaxStep)
	}

	c, _ := NewSpinRecorder([]string{"A", "B", "C"})
	if _, err := MergeSpinRecorder([]*SpinRecorder{a, c}); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := MergeSpinRecorder(nil); err == nil {
		t.Fatal("expected empty merge error")
	}
}

func TestReset(t *testing.T) {
	r, _ := NewSpinRecorder([]string{"A", "B"})
	r.Record(1, 2000)
	r.Reset()
	if r.Rounds != 0 || r.Counts[1] != 0 || r.Advance != 0 {
		t.Fatalf("reset failed: %+v", r)
	}
}
