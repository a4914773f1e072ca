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

package dto

import (
	"time"

	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/sdk/geom"
	"github.com/zintix-labs/randwheel/stats"
)

// WheelState 為對外輸出的轉盤狀態，附帶當前選項數對應的扇形資料。
type WheelState struct {
	ID          string       `json:"id"`
	Locale      string       `json:"locale"`
	Items       []string     `json:"items"`
	Count       int          `json:"count"`
	Rotation    float64      `json:"rotation"`
	Spinning    bool         `json:"spinning"`
	Result      *string      `json:"result"`
	ResultIndex *int         `json:"result_index"`
	Wedges      []geom.Wedge `json:"wedges"`
}

func NewWheelState(st randwheel.State, f geom.Frame) WheelState {
	items := st.Items
	if items == nil {
		items = []string{}
	}
	return WheelState{
		ID:          st.ID,
		Locale:      st.Locale,
		Items:       items,
		Count:       len(items),
		Rotation:    st.Rotation,
		Spinning:    st.Spinning,
		Result:      st.Result,
		ResultIndex: st.ResultIndex,
		Wedges:      f.Wedges(len(items)),
	}
}

// ItemResult 是新增/刪除選項的回覆，Applied=false 代表被清單規則擋下。
type ItemResult struct {
	Applied bool       `json:"applied"`
	State   WheelState `json:"state"`
}

// SpinResult 是 Spin 的回覆。Accepted=false 時 Rotation 等於目前角度。
type SpinResult struct {
	Accepted       bool       `json:"accepted"`
	From           float64    `json:"from"`
	Rotation       float64    `json:"rotation"`
	ResolveAfterMs int64      `json:"resolve_after_ms"`
	State          WheelState `json:"state"`
}

func NewSpinResult(t randwheel.Ticket, f geom.Frame) SpinResult {
	return SpinResult{
		Accepted:       t.Accepted,
		From:           t.From,
		Rotation:       t.Rotation,
		ResolveAfterMs: t.ResolveAfter.Milliseconds(),
		State:          NewWheelState(t.State, f),
	}
}

// Event 是 websocket 推送的訊息。
type Event struct {
	Kind           randwheel.EventKind `json:"kind"`
	From           float64             `json:"from,omitempty"`
	ResolveAfterMs int64               `json:"resolve_after_ms,omitempty"`
	State          WheelState          `json:"state"`
}

func NewEvent(ev randwheel.Event, f geom.Frame) Event {
	return Event{
		Kind:           ev.Kind,
		From:           ev.From,
		ResolveAfterMs: ev.ResolveAfterMs,
		State:          NewWheelState(ev.State, f),
	}
}

// Geometry 是 n 個選項時的扇形切分。
type Geometry struct {
	Count      int          `json:"count"`
	WedgeAngle float64      `json:"wedge_angle"`
	Radius     float64      `json:"radius"`
	TextRadius float64      `json:"text_radius"`
	Wedges     []geom.Wedge `json:"wedges"`
}

func NewGeometry(n int, f geom.Frame) Geometry {
	return Geometry{
		Count:      n,
		WedgeAngle: geom.WedgeAngle(n),
		Radius:     f.Radius,
		TextRadius: f.TextRadius,
		Wedges:     f.Wedges(n),
	}
}

// SimResult 是模擬 API 的回覆。
type SimResult struct {
	Seed     int64             `json:"seed"`
	Stats    *stats.SpinReport `json:"stats"`
	UsedTime int64             `json:"used_ms"`
}

func NewSimResult(seed int64, rep *stats.SpinReport, used time.Duration) SimResult {
	return SimResult{Seed: seed, Stats: rep, UsedTime: used.Milliseconds()}
}
