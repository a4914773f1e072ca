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
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/dto"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	wsPongWait   = wsPingPeriod + 10*time.Second
	wsMaxMessage = 4 << 10
)

// wsCommand 是客戶端可送出的指令，目前只有 spin。
type wsCommand struct {
	Type string `json:"type"`
}

// wsError 是回給客戶端的錯誤訊息。
type wsError struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// NewUpgrader 建立 websocket upgrader。origins 為空時只接受同源，"*" 接受所有來源。
func NewUpgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
}

// Events GET /v1/wheels/{id}/events
//
// 連線後先推一筆目前狀態（kind=items），之後推送 spin / result / items / closed。
// 客戶端送 {"type":"spin"} 等同呼叫 Spin。Session 關閉時送出 closed 後斷線。
func (h *WheelHandler) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已經寫回錯誤回應
		h.log.Debug("wheel.events.upgrade", slog.Any("err", err))
		return
	}
	defer conn.Close()
	// http.Server 的讀寫逾時會留在被接管的連線上，這裡改由 ping/pong 控制。
	_ = conn.NetConn().SetDeadline(time.Time{})

	events, unsubscribe := s.Subscribe(h.ebuf)
	defer unsubscribe()

	if err := h.writeEvent(conn, randwheel.Event{Kind: randwheel.EventItems, State: s.State()}); err != nil {
		return
	}

	cmds := make(chan wsCommand, 4)
	quit := make(chan struct{})
	defer close(quit)
	go readCommands(conn, cmds, quit)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case ev, open := <-events:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "wheel closed"), time.Now().Add(wsWriteWait))
				return
			}
			if err := h.writeEvent(conn, ev); err != nil {
				return
			}
			if ev.Kind == randwheel.EventClosed {
				return
			}
		case cmd, open := <-cmds:
			if !open {
				return
			}
			h.handleCommand(conn, s, cmd)
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *WheelHandler) handleCommand(conn *websocket.Conn, s *randwheel.Session, cmd wsCommand) {
	switch cmd.Type {
	case "spin":
		// 結果透過事件推送；被拒絕時不回應。
		if _, err := s.Spin(); err != nil {
			h.writeError(conn, err.Error())
		}
	default:
		h.writeError(conn, "unknown command: "+cmd.Type)
	}
}

func (h *WheelHandler) writeEvent(conn *websocket.Conn, ev randwheel.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(dto.NewEvent(ev, h.frame))
}

func (h *WheelHandler) writeError(conn *websocket.Conn, msg string) {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	_ = conn.WriteJSON(wsError{Kind: "error", Error: msg})
}

// readCommands 是唯一的讀取者；連線斷開時關閉 out。
func readCommands(conn *websocket.Conn, out chan<- wsCommand, quit <-chan struct{}) {
	defer close(out)
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		var cmd wsCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			cmd = wsCommand{Type: "invalid"}
		}
		select {
		case out <- cmd:
		case <-quit:
			return
		}
	}
}
