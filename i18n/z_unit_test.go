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

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/randwheel/errs"
)

func TestLoadEmbedded(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	codes := b.Codes()
	if len(codes) != 2 || codes[0] != "en" || codes[1] != "zh" {
		t.Fatalf("codes=%v", codes)
	}
	if issues := b.Check(2, 12); len(issues) != 0 {
		t.Fatalf("embedded locales have issues: %v", issues)
	}
}

func TestTranslateAndInterpolate(t *testing.T) {
	b, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := b.T("en", "startSpin"); got != "Spin" {
		t.Fatalf("en startSpin=%q", got)
	}
	if got := b.T("zh", "startSpin"); got != "开始旋转" {
		t.Fatalf("zh startSpin=%q", got)
	}
	if got := b.T("en", "itemCount", 6); got != "6 items (2-12)" {
		t.Fatalf("en itemCount=%q", got)
	}
	if got := b.T("zh", "itemCount", 3); got != "共 3 个选项（2-12）" {
		t.Fatalf("zh itemCount=%q", got)
	}
	// 未知語系退回預設語系。
	if got := b.T("fr", "add"); got != "Add" {
		t.Fatalf("fallback add=%q", got)
	}
}

func TestDefaultItems(t *testing.T) {
	b, _ := Load()
	items := b.DefaultItems("zh")
	if len(items) != 6 || items[0] != "选项 1" {
		t.Fatalf("zh items=%v", items)
	}
	items[0] = "changed"
	if b.DefaultItems("zh")[0] != "选项 1" {
		t.Fatal("DefaultItems must return a copy")
	}
}

func TestMatch(t *testing.T) {
	b, _ := Load()
	cases := map[string]string{
		"":                        "en",
		"zh-CN,zh;q=0.9,en;q=0.8": "zh",
		"en-GB,en;q=0.9":          "en",
		"fr-FR":                   "en",
		"de;q=0.5,zh;q=0.9":       "zh",
		"!!!not a header!!!":      "en",
	}
	for header, want := range cases {
		if got := b.Match(header); got != want {
			t.Errorf("Match(%q)=%q want %q", header, got, want)
		}
	}
}

func TestLocaleLookup(t *testing.T) {
	b, _ := Load()
	if _, err := b.Locale("jp"); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	loc, err := b.Locale("zh")
	if err != nil {
		t.Fatal(err)
	}
	if loc.OGLocale != "zh_CN" || loc.Tag != "zh-CN" {
		t.Fatalf("loc=%+v", loc)
	}
}

func TestCheckReportsGaps(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.yaml": {Data: []byte("locale: en\nmessages: {a: A, b: B}\ndefault_items: [x, y]\nmetadata: {title: T}\n")},
		"l/zh.yaml": {Data: []byte("locale: zh\nmessages: {a: 甲, c: 丙}\ndefault_items: [x]\n")},
	}
	b, err := LoadFS(fsys, "l")
	if err != nil {
		t.Fatal(err)
	}
	issues := b.Check(2, 12)
	want := map[string]bool{
		"zh/messages.b":       false,
		"zh/messages.c":       false,
		"zh/default_items":    false,
		"en/metadata.appName": false,
	}
	for _, is := range issues {
		k := is.Locale + "/" + is.Field
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("missing issue %s in %v", k, issues)
		}
	}
}

func TestLoadRequiresDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"l/zh.yaml": {Data: []byte("locale: zh\n")},
	}
	if _, err := LoadFS(fsys, "l"); err == nil {
		t.Fatal("expected error without default locale")
	}
}
