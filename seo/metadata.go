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

// Package seo 產生頁面 metadata、JSON-LD 結構化資料、sitemap、robots 與 web manifest。
package seo

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
)

const (
	SiteName          = "Random Wheel"
	TwitterCard       = "summary_large_image"
	XDefault          = "x-default"
	schemaContext     = "https://schema.org"
	applicationType   = "UtilityApplication"
	browserRequires   = "Requires JavaScript. Requires HTML5."
	organizationLogo  = "/icon.svg"
	ogImagePathSuffix = "/opengraph-image.svg"
)

// Alternate 是一筆 hreflang 對應。
type Alternate struct {
	HrefLang string `json:"hreflang"`
	Href     string `json:"href"`
}

// OpenGraph 是 og:* 屬性。
type OpenGraph struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	Locale          string `json:"locale"`
	AlternateLocale string `json:"alternate_locale"`
	SiteName        string `json:"site_name"`
	Image           string `json:"image"`
	URL             string `json:"url"`
}

// Twitter 是 twitter:* 屬性。
type Twitter struct {
	Card        string `json:"card"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Metadata 是單一語系頁面的所有 head 資訊。建立後不再修改。
type Metadata struct {
	Locale      string      `json:"locale"`
	Lang        string      `json:"lang"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Keywords    []string    `json:"keywords"`
	Canonical   string      `json:"canonical"`
	Alternates  []Alternate `json:"alternates"`
	OpenGraph   OpenGraph   `json:"open_graph"`
	Twitter     Twitter     `json:"twitter"`
	Robots      string      `json:"robots"`
	GoogleBot   string      `json:"google_bot"`
	// JSONLD 每個元素是一段已序列化的 JSON-LD。
	JSONLD []string `json:"json_ld"`
}

// Build 以語系字串組出 Metadata，是純函式。baseURL 為空時輸出相對網址並省略需要絕對網址的欄位。
func Build(b *i18n.Bundle, locale, baseURL string) (*Metadata, error) {
	loc, err := b.Locale(locale)
	if err != nil {
		return nil, err
	}
	baseURL = strings.TrimRight(baseURL, "/")
	m := loc.Metadata
	self := baseURL + "/" + locale

	md := &Metadata{
		Locale:      locale,
		Lang:        loc.Tag,
		Title:       m.Title,
		Description: m.Description,
		Keywords:    append([]string(nil), m.Keywords...),
		Canonical:   "/" + locale,
		Alternates:  Alternates(b, baseURL),
		OpenGraph: OpenGraph{
			Title:           m.Title,
			Description:     m.Description,
			Type:            "website",
			Locale:          loc.OGLocale,
			AlternateLocale: alternateOG(b, locale),
			SiteName:        SiteName,
			Image:           self + ogImagePathSuffix,
			URL:             self,
		},
		Twitter: Twitter{
			Card:        TwitterCard,
			Title:       m.Title,
			Description: m.Description,
		},
		Robots:    "index, follow",
		GoogleBot: "index, follow, max-video-preview:-1, max-image-preview:large, max-snippet:-1",
	}

	ld, err := structuredData(loc, baseURL)
	if err != nil {
		return nil, err
	}
	md.JSONLD = ld
	return md, nil
}

// Alternates 回傳每個語系的 hreflang 連結，最後附上指向預設語系的 x-default。
func Alternates(b *i18n.Bundle, baseURL string) []Alternate {
	baseURL = strings.TrimRight(baseURL, "/")
	codes := b.Codes()
	out := make([]Alternate, 0, len(codes)+1)
	for _, c := range codes {
		out = append(out, Alternate{HrefLang: c, Href: baseURL + "/" + c})
	}
	out = append(out, Alternate{HrefLang: XDefault, Href: baseURL + "/" + i18n.DefaultLocale})
	return out
}

func alternateOG(b *i18n.Bundle, locale string) string {
	for _, c := range b.Codes() {
		if c == locale {
			continue
		}
		if loc, err := b.Locale(c); err == nil {
			return loc.OGLocale
		}
	}
	return ""
}

func structuredData(loc *i18n.Locale, baseURL string) ([]string, error) {
	m := loc.Metadata
	var pageURL, logo string
	if baseURL != "" {
		pageURL = baseURL + "/" + loc.Code
		logo = baseURL + organizationLogo
	}
	features := m.Features
	if features == nil {
		features = []string{}
	}
	docs := []map[string]any{
		{
			"@context":            schemaContext,
			"@type":               "WebApplication",
			"name":                m.AppName,
			"description":         m.AppDescription,
			"url":                 optional(pageURL),
			"applicationCategory": applicationType,
			"operatingSystem":     "Any",
			"browserRequirements": browserRequires,
			"offers":              map[string]any{"@type": "Offer", "price": "0", "priceCurrency": "USD"},
			"featureList":         features,
			"inLanguage":          loc.Tag,
		},
		{
			"@context": schemaContext,
			"@type":    "BreadcrumbList",
			"itemListElement": []map[string]any{{
				"@type":    "ListItem",
				"position": 1,
				"name":     m.BreadcrumbHome,
				"item":     optional(pageURL),
			}},
		},
		{
			"@context": schemaContext,
			"@type":    "Organization",
			"name":     SiteName,
			"url":      optional(baseURL),
			"logo":     optional(logo),
			"sameAs":   []string{},
		},
	}
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		for k, v := range d {
			if v == nil {
				delete(d, k)
			}
		}
		raw, err := json.Marshal(d)
		if err != nil {
			return nil, errs.Wrap(err, "json-ld marshal err")
		}
		out = append(out, string(raw))
	}
	return out, nil
}

// optional 把空字串轉成 nil，序列化前會被移除。
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Cache 以語系為 key 記住 Build 的結果。由持有者（伺服器）建立，不是全域變數。
type Cache struct {
	bundle  *i18n.Bundle
	baseURL string

	mu sync.RWMutex
	m  map[string]*Metadata
}

func NewCache(b *i18n.Bundle, baseURL string) *Cache {
	return &Cache{bundle: b, baseURL: baseURL, m: map[string]*Metadata{}}
}

// Get 回傳語系的 Metadata，第一次呼叫時建立。
func (c *Cache) Get(locale string) (*Metadata, error) {
	c.mu.RLock()
	md, ok := c.m[locale]
	c.mu.RUnlock()
	if ok {
		return md, nil
	}
	md, err := Build(c.bundle, locale, c.baseURL)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.m[locale]; ok {
		return prev, nil
	}
	c.m[locale] = md
	return md, nil
}

// Reset 清空快取，下一次 Get 會重新建立。
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.m)
}

// Len 回傳已快取的語系數。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *Cache) BaseURL() string { return c.baseURL }
