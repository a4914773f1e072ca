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

package v1

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/dto"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/render"
	"github.com/zintix-labs/randwheel/sdk/geom"
	"github.com/zintix-labs/randwheel/server/httperr"
	"github.com/zintix-labs/randwheel/server/netsvr"
	"github.com/zintix-labs/randwheel/server/svrcfg"
	"github.com/zintix-labs/randwheel/spec"
)

// ============================================================
// ** WheelHandler **
// ============================================================

// WheelHandler 處理 /v1/wheels 底下的所有路由，Session 由 Runtime 管理。
type WheelHandler struct {
	rt    *randwheel.Runtime
	ws    *spec.WheelSetting
	frame geom.Frame
	log   *slog.Logger
	ebuf  int

	upgrader *websocket.Upgrader
}

func NewWheelHandler(sCfg *svrcfg.SvrCfg) (*WheelHandler, error) {
	if sCfg == nil || sCfg.Runtime == nil || sCfg.Randwheel == nil {
		return nil, errs.NewFatal("wheel handler: runtime is required")
	}
	ws := sCfg.Randwheel.Setting()
	return &WheelHandler{
		rt:    sCfg.Runtime,
		ws:    ws,
		frame: ws.Frame(),
		log:   sCfg.Log,
		ebuf:  sCfg.EventBuffer,

		upgrader: NewUpgrader(sCfg.CORSOrigins),
	}, nil
}

// Create POST /v1/wheels
func (h *WheelHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := new(dto.CreateWheelRequest)
	if err := dto.DecodeJSON(r, req, true); err != nil {
		httperr.JSON(w, err)
		return
	}
	s, err := h.rt.Create(req.Locale, req.Items)
	if err != nil {
		httperr.Log(h.log, "wheel.create", err)
		httperr.JSON(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewWheelState(s.State(), h.frame))
}

// Get GET /v1/wheels/{id}
func (h *WheelHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.NewWheelState(s.State(), h.frame))
}

// Delete DELETE /v1/wheels/{id}，進行中的轉動會被取消。
func (h *WheelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rt.Delete(netsvr.URLParam(r, "id")); err != nil {
		httperr.JSON(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem POST /v1/wheels/{id}/items
func (h *WheelHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	req := new(dto.AddItemRequest)
	if err := dto.DecodeJSON(r, req, false); err != nil {
		httperr.JSON(w, err)
		return
	}
	applied, st, err := s.Add(req.Label)
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ItemResult{Applied: applied, State: dto.NewWheelState(st, h.frame)})
}

// RemoveItem DELETE /v1/wheels/{id}/items/{index}
func (h *WheelHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, err := dto.ParseIndex(netsvr.URLParam(r, "index"))
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	applied, st, err := s.Remove(idx)
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ItemResult{Applied: applied, State: dto.NewWheelState(st, h.frame)})
}

// Spin POST /v1/wheels/{id}/spin
//
// 轉動中或選項不足時回 200 且 accepted=false，不視為錯誤。
func (h *WheelHandler) Spin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	t, err := s.Spin()
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSpinResult(t, h.frame))
}

// SVG GET /v1/wheels/{id}/wheel.svg，畫出目前角度與結果高亮。
func (h *WheelHandler) SVG(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	st := s.State()
	opt := render.WheelOptions{
		Frame:     h.frame,
		Colors:    h.ws.Colors,
		Rotation:  st.Rotation,
		Highlight: -1,
		Pointer:   true,
	}
	if st.ResultIndex != nil && !st.Spinning {
		opt.Highlight = *st.ResultIndex
	}
	var b bytes.Buffer
	if err := render.Wheel(&b, st.Items, opt); err != nil {
		httperr.Log(h.log, "wheel.svg", err)
		httperr.JSON(w, errs.Wrap(err, "render wheel"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b.Bytes())
}

func (h *WheelHandler) session(w http.ResponseWriter, r *http.Request) (*randwheel.Session, bool) {
	s, err := h.rt.Get(netsvr.URLParam(r, "id"))
	if err != nil {
		httperr.JSON(w, err)
		return nil, false
	}
	return s, true
}

// writeJSON 先編碼到緩衝區再寫出，確保不會送出寫到一半的 JSON。
func writeJSON(w http.ResponseWriter, status int, v any) {
	var b bytes.Buffer
	if err := json.NewEncoder(&b).Encode(v); err != nil {
		httperr.JSON(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b.Bytes())
}
