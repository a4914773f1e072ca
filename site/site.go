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

// Package site 組出每個語系的首頁 HTML：head metadata、可直接顯示的轉盤 SVG、
// 選項編輯區，以及由 markdown 轉出的說明內容。
package site

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/render"
	"github.com/zintix-labs/randwheel/seo"
	"github.com/zintix-labs/randwheel/spec"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page 是樣板的輸入。
type Page struct {
	Meta       *seo.Metadata
	Locale     string
	Msg        map[string]string
	Items      []string
	ItemCount  string
	Wheel      template.HTML
	Content    template.HTML
	Switch     Link
	MinItems   int
	MaxItems   int
	DurationMs int
	Binding    string
}

// Link 是語言切換連結。
type Link struct {
	Code  string
	Href  string
	Label string
	Aria  string
}

// Renderer 持有解析好的樣板與 markdown 轉換器，可併發使用。
type Renderer struct {
	bundle *i18n.Bundle
	ws     *spec.WheelSetting
	tmpl   *template.Template
	md     goldmark.Markdown

	mu      sync.RWMutex
	content map[string]template.HTML
}

func New(bundle *i18n.Bundle, ws *spec.WheelSetting) (*Renderer, error) {
	if bundle == nil || ws == nil {
		return nil, errs.NewFatal("site: bundle and setting are required")
	}
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		// JSON-LD 來自 json.Marshal，已轉義 <、>、&，可直接放進 script。
		"jsonld": func(s string) template.JS { return template.JS(s) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errs.Wrap(err, "site: parse templates")
	}
	return &Renderer{
		bundle:  bundle,
		ws:      ws,
		tmpl:    tmpl,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		content: map[string]template.HTML{},
	}, nil
}

// Build 組出頁面資料。labels 為空時使用語系預設選項。
func (r *Renderer) Build(meta *seo.Metadata, locale string, labels []string) (*Page, error) {
	if meta == nil {
		return nil, errs.NewFatal("site: metadata is required")
	}
	loc, err := r.bundle.Locale(locale)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		labels = r.bundle.DefaultItems(locale)
		if len(r.ws.DefaultItems) > 0 {
			labels = append([]string(nil), r.ws.DefaultItems...)
		}
	}
	// 含 %d 的字串保留原始格式，頁面上的腳本在選項變動時自行代入。
	msg := make(map[string]string, len(loc.Messages))
	for _, k := range r.bundle.Keys() {
		if raw, ok := loc.Messages[k]; ok {
			msg[k] = raw
		} else {
			msg[k] = r.bundle.T(locale, k)
		}
	}
	wheelLabel := r.bundle.T(locale, "wheelLabel", len(labels))

	svgDoc, err := render.WheelBytes(labels, render.WheelOptions{
		Frame:        r.ws.Frame(),
		Colors:       r.ws.Colors,
		Title:        wheelLabel,
		Highlight:    -1,
		Pointer:      true,
		PointerLabel: msg["pointerLabel"],
	})
	if err != nil {
		return nil, errs.Wrap(err, "site: render wheel")
	}
	content, err := r.markdown(loc)
	if err != nil {
		return nil, err
	}

	return &Page{
		Meta:       meta,
		Locale:     locale,
		Msg:        msg,
		Items:      labels,
		ItemCount:  r.bundle.T(locale, "itemCount", len(labels)),
		Wheel:      template.HTML(render.Inline(svgDoc)),
		Content:    content,
		Switch:     r.switchLink(locale),
		MinItems:   r.ws.MinItems,
		MaxItems:   r.ws.MaxItems,
		DurationMs: r.ws.SpinDurationMs,
		Binding:    string(r.ws.ResolveBinding),
	}, nil
}

// Render 把頁面寫到 w。先寫進緩衝區，樣板中途出錯時不會送出半頁。
func (r *Renderer) Render(w io.Writer, meta *seo.Metadata, locale string) error {
	p, err := r.Build(meta, locale, nil)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&b, "page.html", p); err != nil {
		return errs.Wrap(err, "site: execute template")
	}
	_, err = w.Write(b.Bytes())
	return err
}

// markdown 轉換語系的說明內容並依語系快取。goldmark 預設不輸出原始 HTML。
func (r *Renderer) markdown(loc *i18n.Locale) (template.HTML, error) {
	r.mu.RLock()
	h, ok := r.content[loc.Code]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}
	var b bytes.Buffer
	if err := r.md.Convert([]byte(loc.Content), &b); err != nil {
		return "", errs.Wrap(err, "site: render markdown")
	}
	h = template.HTML(b.String())
	r.mu.Lock()
	r.content[loc.Code] = h
	r.mu.Unlock()
	return h, nil
}

// switchLink 指向語系清單中的下一個語系。
func (r *Renderer) switchLink(locale string) Link {
	codes := r.bundle.Codes()
	next := locale
	for i, c := range codes {
		if c == locale {
			next = codes[(i+1)%len(codes)]
			break
		}
	}
	return Link{
		Code:  next,
		Href:  "/" + next,
		Label: r.bundle.T(locale, "switchLabel"),
		Aria:  r.bundle.T(locale, "switchLanguage"),
	}
}
