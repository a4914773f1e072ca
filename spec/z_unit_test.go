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

package spec

import (
	"testing"
	"time"

	"github.com/zintix-labs/randwheel/errs"
)

func TestDefaultSetting(t *testing.T) {
	ws := Default()
	if ws.MinItems != 2 || ws.MaxItems != 12 {
		t.Fatalf("bounds=%d..%d", ws.MinItems, ws.MaxItems)
	}
	if ws.SpinDuration() != 4*time.Second {
		t.Fatalf("duration=%v", ws.SpinDuration())
	}
	if ws.ResolveBinding != BindSnapshot {
		t.Fatalf("binding=%s", ws.ResolveBinding)
	}
	if len(ws.Colors) != 12 {
		t.Fatalf("colors=%d", len(ws.Colors))
	}
	p := ws.SpinParams()
	if p.MinSpins != 5 || p.MaxExtraSpins != 3 || p.MinItems != 2 {
		t.Fatalf("params=%+v", p)
	}
	if f := ws.Frame(); f.Radius != 200 || f.TextRadius != 130 {
		t.Fatalf("frame=%+v", f)
	}
}

func TestColorWraps(t *testing.T) {
	ws := Default()
	if ws.Color(12) != ws.Color(0) || ws.Color(13) != ws.Color(1) {
		t.Fatal("color index should wrap")
	}
	if ws.Color(0).Start != "#FF6B9D" {
		t.Fatalf("first color=%+v", ws.Color(0))
	}
}

func TestSettingFillsZeroFields(t *testing.T) {
	ws, err := GetWheelSettingByJSON([]byte(`{"colors":[{"start":"#fff","end":"#000"}],"resolve_binding":"LIVE"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ws.MinItems != 2 || ws.MaxItems != 12 || ws.Radius != 200 {
		t.Fatalf("defaults not applied: %+v", ws)
	}
	if ws.ResolveBinding != BindLive {
		t.Fatalf("binding=%s", ws.ResolveBinding)
	}
	if p := ws.SpinParams(); p.MinSpins != 5 || p.MaxExtraSpins != 3 {
		t.Fatalf("spin defaults not applied: %+v", p)
	}
}

func TestSettingMaxExtraSpins(t *testing.T) {
	cases := []struct {
		doc  string
		want float64
	}{
		{"min_spins: 5", 3},
		{"min_spins: 5\nmax_extra_spins: 0", 0},
		{"max_extra_spins: 1.5", 1.5},
	}
	for _, c := range cases {
		ws, err := GetWheelSettingByYAML([]byte(c.doc))
		if err != nil {
			t.Fatalf("%q: %v", c.doc, err)
		}
		if got := ws.SpinParams().MaxExtraSpins; got != c.want {
			t.Fatalf("%q: max extra spins=%v want %v", c.doc, got, c.want)
		}
	}
	if _, err := GetWheelSettingByYAML([]byte("max_extra_spins: -1")); !errs.IsFatal(err) {
		t.Fatalf("negative extra spins: %v", err)
	}
}

func TestSettingWithoutColorsUsesPalette(t *testing.T) {
	ws, err := GetWheelSettingByYAML([]byte("min_spins: 2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ws.Colors) != 12 || ws.Colors[0].Start != "#FF6B9D" {
		t.Fatalf("colors=%v", ws.Colors)
	}
}

func TestSettingInvalid(t *testing.T) {
	cases := map[string]string{
		"min too small":   "min_items: 1\ncolors: [{start: a, end: b}]",
		"max below min":   "min_items: 5\nmax_items: 3\ncolors: [{start: a, end: b}]",
		"text radius":     "radius: 100\ntext_radius: 150\ncolors: [{start: a, end: b}]",
		"binding":         "resolve_binding: later\ncolors: [{start: a, end: b}]",
		"too many items":  "max_items: 2\ndefault_items: [a, b, c]\ncolors: [{start: a, end: b}]",
		"broken yaml":     "min_items: [",
		"half color pair": "colors: [{start: a}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := GetWheelSettingByYAML([]byte(doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.IsFatal(err) {
				t.Fatalf("expected fatal level, got %v", err)
			}
		})
	}
}
