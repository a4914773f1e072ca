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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/server/api"
	"github.com/zintix-labs/randwheel/server/app"
	"github.com/zintix-labs/randwheel/server/netsvr"
	"github.com/zintix-labs/randwheel/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 logger 與 Randwheel）。
//  2. 建立 HTTP server（netsvr），監聽 SvrCfg.Addr 並套用逾時設定。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動閒置 Session 清理，與 HTTP server 一起交給 app.App 管理，直到 ctx 結束。
//
// Run 不讀檔也不讀環境變數，所有依賴都透過 SvrCfg 注入。
func Run(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Vaild(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	svr := netsvr.NewChiServer(sCfg.Addr)
	svr.SetTimeouts(sCfg.ReadTimeout, sCfg.WriteTimeout, sCfg.IdleTimeout)
	return RunWithSvr(ctx, sCfg, svr)
}

// RunWithSvr 與 Run 相同，但允許注入自訂的 NetSvr（其他 adapter、測試用 listener 等）。
// svr 若是 ChiAdapter 需要 Ready() 為 true。
func RunWithSvr(ctx context.Context, sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	a, err := Build(sCfg, svr)
	if err != nil {
		return err
	}
	sCfg.Log.Info("randwheel.listen",
		slog.String("addr", addrOf(svr)),
		slog.String("base_url", sCfg.BaseURL),
		slog.Int64("seed", sCfg.Randwheel.Seed()),
	)
	if err := a.WithShutdownTimeout(sCfg.ShutdownTimeout).RunContext(ctx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// Build 完成驗證與路由註冊，回傳尚未啟動的 App。
func Build(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) (*app.App, error) {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	if svr == nil {
		return nil, errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return nil, errs.NewFatal("default server is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, err
	}
	// 先註冊 sweeper，關閉時反序執行：HTTP 先停，再關 Runtime。
	a := app.NewWith(Sweeper(sCfg), svr).WithLogger(sCfg.Log)
	return a, nil
}

// Sweeper 定期回收閒置 Session；Shutdown 時關閉 Runtime，取消所有進行中的轉動。
func Sweeper(sCfg *svrcfg.SvrCfg) app.Component {
	rt := sCfg.Runtime
	return app.NewFunc(
		func(ctx context.Context) error {
			rt.Run(ctx, sCfg.SweepInterval)
			return nil
		},
		func(context.Context) error {
			rt.Close()
			m := rt.Metrics()
			sCfg.Log.Info("runtime.closed",
				slog.Uint64("created", m.Created),
				slog.Uint64("spins", m.Spins),
				slog.Uint64("cancels", m.Cancels),
				slog.Uint64("evictions", m.Evictions),
			)
			return nil
		},
	)
}

func addrOf(svr netsvr.NetSvr) string {
	if s, ok := svr.(*netsvr.ChiAdapter); ok {
		return s.Address()
	}
	return ""
}
