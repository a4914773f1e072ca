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

// Package i18n 提供多語系字串：以 golang.org/x/text 的 catalog 保存翻譯，
// 以 language.Matcher 協商 Accept-Language。
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/zintix-labs/randwheel/errs"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const DefaultLocale = "en"

// Meta 是頁面 metadata 與結構化資料使用的字串。
type Meta struct {
	Title          string   `yaml:"title"`
	Description    string   `yaml:"description"`
	AppName        string   `yaml:"appName"`
	AppDescription string   `yaml:"appDescription"`
	BreadcrumbHome string   `yaml:"breadcrumbHome"`
	OGTitle        string   `yaml:"ogTitle"`
	OGSubtitle     string   `yaml:"ogSubtitle"`
	Keywords       []string `yaml:"keywords"`
	Features       []string `yaml:"features"`
}

// Locale 是單一語系的完整內容。
type Locale struct {
	Code         string            `yaml:"locale"`
	Tag          string            `yaml:"tag"`       // BCP 47，用於 html lang 與 inLanguage
	OGLocale     string            `yaml:"og_locale"` // OpenGraph 使用底線格式
	Messages     map[string]string `yaml:"messages"`
	DefaultItems []string          `yaml:"default_items"`
	Metadata     Meta              `yaml:"metadata"`
	Content      string            `yaml:"content"` // markdown

	tag language.Tag
}

// Bundle 持有所有語系與對應的 catalog。建立後唯讀，可併發使用。
type Bundle struct {
	locales map[string]*Locale
	codes   []string
	tags    []language.Tag
	matcher language.Matcher
	cat     *catalog.Builder
}

// Load 讀取內嵌的語系檔。
func Load() (*Bundle, error) {
	return LoadFS(localeFS, "locales")
}

// LoadFS 從 fsys 的 dir 目錄讀取所有 .yaml 語系檔。
// DefaultLocale 必須存在，且會被排在第一位作為協商失敗時的回退。
func LoadFS(fsys fs.FS, dir string) (*Bundle, error) {
	ents, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errs.Wrap(err, "read locale dir err")
	}
	b := &Bundle{
		locales: map[string]*Locale{},
		cat:     catalog.NewBuilder(catalog.Fallback(language.English)),
	}
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, errs.Wrap(err, "read locale file err")
		}
		loc := &Locale{}
		if err := yaml.Unmarshal(raw, loc); err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("parse locale %s err", e.Name()))
		}
		if err := b.add(loc); err != nil {
			return nil, err
		}
	}
	if _, ok := b.locales[DefaultLocale]; !ok {
		return nil, errs.NewFatal("default locale missing: " + DefaultLocale)
	}
	sort.SliceStable(b.codes, func(i, j int) bool {
		if b.codes[i] == DefaultLocale {
			return true
		}
		if b.codes[j] == DefaultLocale {
			return false
		}
		return b.codes[i] < b.codes[j]
	})
	b.tags = make([]language.Tag, len(b.codes))
	for i, c := range b.codes {
		b.tags[i] = b.locales[c].tag
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) add(loc *Locale) error {
	if loc.Code == "" {
		return errs.NewFatal("locale code required")
	}
	if _, dup := b.locales[loc.Code]; dup {
		return errs.NewFatal("duplicate locale: " + loc.Code)
	}
	if loc.Tag == "" {
		loc.Tag = loc.Code
	}
	tag, err := language.Parse(loc.Tag)
	if err != nil {
		return errs.Wrap(err, "invalid locale tag "+loc.Tag)
	}
	loc.tag = tag
	for k, v := range loc.Messages {
		if err := b.cat.SetString(tag, k, v); err != nil {
			return errs.Wrap(err, "catalog set "+k)
		}
	}
	b.locales[loc.Code] = loc
	b.codes = append(b.codes, loc.Code)
	return nil
}

// Codes 回傳所有語系代碼，DefaultLocale 在第一位。
func (b *Bundle) Codes() []string {
	return slices.Clone(b.codes)
}

// Has 回報 code 是否為支援的語系。
func (b *Bundle) Has(code string) bool {
	_, ok := b.locales[code]
	return ok
}

// Locale 回傳語系內容；未知代碼回傳 NotFound 等級錯誤。
func (b *Bundle) Locale(code string) (*Locale, error) {
	loc, ok := b.locales[code]
	if !ok {
		return nil, errs.NotFoundf("unknown locale: %q", code)
	}
	return loc, nil
}

// Match 依 Accept-Language 標頭挑出最合適的語系代碼，解析失敗或無匹配時回傳 DefaultLocale。
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.codes[0]
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.codes[0]
	}
	return b.codes[idx]
}

// Printer 回傳語系的 message.Printer。未知語系使用 DefaultLocale。
func (b *Bundle) Printer(code string) *message.Printer {
	loc, ok := b.locales[code]
	if !ok {
		loc = b.locales[DefaultLocale]
	}
	return message.NewPrinter(loc.tag, message.Catalog(b.cat))
}

// T 翻譯 key，args 依 key 對應的格式字串插值。
func (b *Bundle) T(code, key string, args ...any) string {
	return b.Printer(code).Sprintf(key, args...)
}

// DefaultItems 回傳語系的預設選項副本。
func (b *Bundle) DefaultItems(code string) []string {
	loc, ok := b.locales[code]
	if !ok {
		loc = b.locales[DefaultLocale]
	}
	return slices.Clone(loc.DefaultItems)
}

// Keys 回傳 DefaultLocale 定義的所有訊息 key（排序後）。
func (b *Bundle) Keys() []string {
	def := b.locales[DefaultLocale]
	keys := make([]string, 0, len(def.Messages))
	for k := range def.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
