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

package items

import (
	"slices"
	"strconv"
	"testing"
)

func sixItems() List {
	return New(DefaultBounds(), "A", "B", "C", "D", "E", "F")
}

func TestAddEmptyIsNoop(t *testing.T) {
	l := sixItems()
	for _, in := range []string{"", "   ", "\t\n"} {
		next, ok := l.Add(in)
		if ok || next.Len() != 6 {
			t.Fatalf("add(%q) must be a no-op, got len=%d ok=%v", in, next.Len(), ok)
		}
	}
}

func TestAddTrimsAndAppends(t *testing.T) {
	l := sixItems()
	next, ok := l.Add("  G  ")
	if !ok {
		t.Fatalf("add rejected")
	}
	if got := next.Labels(); !slices.Equal(got, []string{"A", "B", "C", "D", "E", "F", "G"}) {
		t.Fatalf("unexpected labels %v", got)
	}
	if l.Len() != 6 {
		t.Fatalf("original list must not change")
	}
}

func TestAddAtMaxIsNoop(t *testing.T) {
	l := New(DefaultBounds())
	var ok bool
	for i := 0; i < DefaultMax; i++ {
		l, ok = l.Add("item " + strconv.Itoa(i))
		if !ok {
			t.Fatalf("add %d rejected", i)
		}
	}
	next, ok := l.Add("overflow")
	if ok || next.Len() != DefaultMax {
		t.Fatalf("add at max must be a no-op")
	}
}

func TestRemoveAtMinIsNoop(t *testing.T) {
	l := New(DefaultBounds(), "A", "B")
	next, ok := l.Remove(0)
	if ok || next.Len() != 2 {
		t.Fatalf("remove at min must be a no-op")
	}
}

func TestRemoveShifts(t *testing.T) {
	l := sixItems()
	next, ok := l.Remove(2)
	if !ok {
		t.Fatalf("remove rejected")
	}
	if got := next.Labels(); !slices.Equal(got, []string{"A", "B", "D", "E", "F"}) {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestRemoveOutOfRange(t *testing.T) {
	l := sixItems()
	for _, i := range []int{-1, 6, 100} {
		if _, ok := l.Remove(i); ok {
			t.Fatalf("remove(%d) must be rejected", i)
		}
	}
}

func TestDuplicatesAllowed(t *testing.T) {
	l := New(DefaultBounds(), "A", "A")
	next, ok := l.Add("A")
	if !ok || next.Len() != 3 {
		t.Fatalf("duplicate labels are allowed")
	}
}

func TestNewTruncatesAndSkipsBlank(t *testing.T) {
	in := make([]string, 0, 20)
	in = append(in, " ", "")
	for i := 0; i < 20; i++ {
		in = append(in, strconv.Itoa(i))
	}
	l := New(DefaultBounds(), in...)
	if l.Len() != DefaultMax {
		t.Fatalf("expected %d items, got %d", DefaultMax, l.Len())
	}
	if first, _ := l.At(0); first != "0" {
		t.Fatalf("blank labels must be skipped, first=%q", first)
	}
}

func TestLabelsIsCopy(t *testing.T) {
	l := sixItems()
	got := l.Labels()
	got[0] = "mutated"
	if first, _ := l.At(0); first != "A" {
		t.Fatalf("Labels must return a copy")
	}
}

func TestSpinnable(t *testing.T) {
	if New(DefaultBounds(), "A").Spinnable() {
		t.Fatalf("one item is not spinnable")
	}
	if !New(DefaultBounds(), "A", "B").Spinnable() {
		t.Fatalf("two items are spinnable")
	}
}
