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

package seo

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
)

const (
	ChangeFreq = "monthly"
	Priority   = "1.0"

	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod"`
	ChangeFreq string      `xml:"changefreq"`
	Priority   string      `xml:"priority"`
	Links      []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// WriteSitemap 輸出每個語系一筆 <url> 的 sitemap，每筆都附上所有語系的 hreflang 對應。
// baseURL 必須是絕對網址。
func WriteSitemap(w io.Writer, b *i18n.Bundle, baseURL string, lastMod time.Time) error {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return errs.NewWarn("sitemap requires base url")
	}
	alts := Alternates(b, baseURL)
	links := make([]xhtmlLink, len(alts))
	for i, a := range alts {
		links[i] = xhtmlLink{Rel: "alternate", HrefLang: a.HrefLang, Href: a.Href}
	}
	set := urlset{Xmlns: sitemapNS, XHTML: xhtmlNS}
	stamp := lastMod.UTC().Format(time.RFC3339)
	for _, c := range b.Codes() {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + "/" + c,
			LastMod:    stamp,
			ChangeFreq: ChangeFreq,
			Priority:   Priority,
			Links:      links,
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return errs.Wrap(err, "sitemap encode err")
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRobots 輸出允許全部路徑的 robots.txt；baseURL 非空時附上 Host 與 Sitemap。
func WriteRobots(w io.Writer, baseURL string) error {
	baseURL = strings.TrimRight(baseURL, "/")
	var sb strings.Builder
	sb.WriteString("# *\nUser-agent: *\nAllow: /\n")
	if baseURL != "" {
		fmt.Fprintf(&sb, "\n# Host\nHost: %s\n\n# Sitemaps\nSitemap: %s/sitemap.xml\n", baseURL, baseURL)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ManifestIcon 是 manifest 的 icon 項目。
type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Manifest 是 Web App Manifest。
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

// DefaultManifest 回傳站台的 manifest。
func DefaultManifest() Manifest {
	return Manifest{
		Name:            SiteName + " - Online Random Picker",
		ShortName:       SiteName,
		Description:     "Free online random wheel picker tool with smooth animations",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#667EEA",
		Icons: []ManifestIcon{
			{Src: "/icon.svg", Sizes: "any", Type: "image/svg+xml"},
		},
	}
}

func WriteManifest(w io.Writer, m Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
