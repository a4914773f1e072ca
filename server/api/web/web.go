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

package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/randwheel/dto"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/render"
	"github.com/zintix-labs/randwheel/seo"
	"github.com/zintix-labs/randwheel/server/httperr"
	"github.com/zintix-labs/randwheel/server/netsvr"
	"github.com/zintix-labs/randwheel/server/svrcfg"
	"github.com/zintix-labs/randwheel/site"
	"github.com/zintix-labs/randwheel/spec"
)

// Handler 提供各語系頁面與 sitemap、robots、manifest、icon、分享圖等站台資源。
type Handler struct {
	bundle  *i18n.Bundle
	ws      *spec.WheelSetting
	meta    *seo.Cache
	pages   *site.Renderer
	log     *slog.Logger
	baseURL string
	lastMod time.Time
}

func New(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Randwheel == nil || sCfg.Metadata == nil {
		return nil, errs.NewFatal("site handler: randwheel and metadata are required")
	}
	rw := sCfg.Randwheel
	pages, err := site.New(rw.Bundle(), rw.Setting())
	if err != nil {
		return nil, err
	}
	return &Handler{
		bundle:  rw.Bundle(),
		ws:      rw.Setting(),
		meta:    sCfg.Metadata,
		pages:   pages,
		log:     sCfg.Log,
		baseURL: sCfg.BaseURL,
		lastMod: time.Now().UTC().Truncate(time.Second),
	}, nil
}

// Register 掛上站台路由。
func (h *Handler) Register(r netsvr.NetRouter) {
	r.Get("/", h.Index)
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/robots.txt", h.Robots)
	r.Get("/manifest.webmanifest", h.Manifest)
	r.Get("/icon.svg", h.Icon)
	r.Post("/api/vitals", h.Vitals)
	r.Get("/{locale}", h.Page)
	r.Get("/{locale}/opengraph-image.svg", h.OGImage)
}

// Index 依 Accept-Language 導向最接近的語系。
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	code := h.bundle.Match(r.Header.Get("Accept-Language"))
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, "/"+code, http.StatusTemporaryRedirect)
}

// Page GET /{locale}
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	code := netsvr.URLParam(r, "locale")
	meta, err := h.meta.Get(code)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	var b bytes.Buffer
	if err := h.pages.Render(&b, meta, code); err != nil {
		httperr.Log(h.log, "site.page", err)
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", meta.Lang)
	_, _ = w.Write(b.Bytes())
}

// Sitemap GET /sitemap.xml
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	var b bytes.Buffer
	if err := seo.WriteSitemap(&b, h.bundle, h.baseURL, h.lastMod); err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(b.Bytes())
}

// Robots GET /robots.txt
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_ = seo.WriteRobots(w, h.baseURL)
}

// Manifest GET /manifest.webmanifest
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	_ = seo.WriteManifest(w, seo.DefaultManifest())
}

// Icon GET /icon.svg
func (h *Handler) Icon(w http.ResponseWriter, r *http.Request) {
	var b bytes.Buffer
	if err := render.Icon(&b, h.ws.Colors); err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(b.Bytes())
}

// OGImage GET /{locale}/opengraph-image.svg
func (h *Handler) OGImage(w http.ResponseWriter, r *http.Request) {
	loc, err := h.bundle.Locale(netsvr.URLParam(r, "locale"))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	var b bytes.Buffer
	render.OGImage(&b, loc.Metadata.OGTitle, loc.Metadata.OGSubtitle)
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(b.Bytes())
}

// Vitals POST /api/vitals，瀏覽器回報的 Web Vitals 只記錄，不保存。
func (h *Handler) Vitals(w http.ResponseWriter, r *http.Request) {
	v := new(dto.VitalsReport)
	if err := dto.DecodeJSON(r, v, false); err != nil {
		httperr.JSON(w, err)
		return
	}
	if v.Name == "" {
		httperr.JSON(w, errs.NewWarn("name is required"))
		return
	}
	h.log.LogAttrs(r.Context(), slog.LevelInfo, "web.vitals",
		slog.String("name", v.Name),
		slog.Int64("value", v.Scaled()),
		slog.String("id", v.ID),
		slog.String("rating", v.Rating),
		slog.Float64("delta", v.Delta),
		slog.String("navigation_type", v.NavigationType),
	)
	w.WriteHeader(http.StatusNoContent)
}
