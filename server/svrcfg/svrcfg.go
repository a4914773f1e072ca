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

package svrcfg

import (
	"log/slog"
	"strings"
	"time"

	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/seo"
	"github.com/zintix-labs/randwheel/server/logger"
	"github.com/zintix-labs/randwheel/server/netsvr/middleware"
)

const (
	DefaultAddr        = ":8080"
	DefaultEventBuffer = 16
	maxEventBuffer     = 256
)

// SvrCfg 是 server 的全部依賴，由呼叫端（cmd 或測試）組好後交給 server.Run。
type SvrCfg struct {
	Log     *slog.Logger
	Addr    string
	BaseURL string // 例如 https://wheel.example.com，用於 canonical、sitemap 與 OG

	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	EventBuffer   int // 每個 websocket 訂閱者的事件緩衝
	CORSOrigins   []string
	Compress      middleware.CompressConfig // 零值欄位使用 middleware 的預設

	// http.Server 逾時與關閉時限，非正值沿用 netsvr 與 app 的預設
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Randwheel *randwheel.Randwheel
	Runtime   *randwheel.Runtime // nil 時由 Vaild 依上面的設定建立
	Metadata  *seo.Cache         // nil 時由 Vaild 建立
}

// Vaild 檢查必要依賴並把數值夾到合法範圍。
func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Randwheel == nil {
		return errs.NewFatal("randwheel is required")
	}

	if strings.TrimSpace(sc.Addr) == "" {
		sc.Addr = DefaultAddr
	}
	sc.BaseURL = strings.TrimRight(strings.TrimSpace(sc.BaseURL), "/")
	if sc.BaseURL == "" {
		sc.Log.Warn("svrcfg: base url is empty, canonical and sitemap links will be relative")
	}

	if sc.SessionTTL < 0 {
		sc.SessionTTL = 0
	} else if sc.SessionTTL == 0 {
		sc.SessionTTL = randwheel.DefaultSessionTTL
	}
	if sc.SweepInterval <= 0 {
		sc.SweepInterval = randwheel.DefaultSweepInterval
	}
	sc.SweepInterval = max(time.Second, sc.SweepInterval)
	if sc.MaxSessions <= 0 {
		sc.MaxSessions = randwheel.DefaultMaxSessions
	}
	if sc.EventBuffer <= 0 {
		sc.EventBuffer = DefaultEventBuffer
	}
	sc.EventBuffer = min(maxEventBuffer, sc.EventBuffer)

	if sc.Runtime == nil {
		sc.Runtime = sc.Randwheel.BuildRuntime(
			randwheel.WithTTL(sc.SessionTTL),
			randwheel.WithMaxSessions(sc.MaxSessions),
		)
	}
	if sc.Runtime.Closed() {
		return errs.NewFatal("runtime already closed")
	}
	if sc.Metadata == nil {
		sc.Metadata = seo.NewCache(sc.Randwheel.Bundle(), sc.BaseURL)
	}
	return nil
}
