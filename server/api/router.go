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

package api

import (
	"net/http"

	"github.com/zintix-labs/randwheel/errs"
	v1 "github.com/zintix-labs/randwheel/server/api/v1"
	"github.com/zintix-labs/randwheel/server/api/web"
	"github.com/zintix-labs/randwheel/server/httperr"
	"github.com/zintix-labs/randwheel/server/netsvr"
	"github.com/zintix-labs/randwheel/server/netsvr/middleware"
	"github.com/zintix-labs/randwheel/server/svrcfg"
)

// RegisterRoutes 註冊全部路由。sCfg 必須先通過 Vaild。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	if sCfg == nil || sCfg.Runtime == nil || sCfg.Metadata == nil {
		return errs.NewFatal("register routes: svrcfg is not validated")
	}
	registerMiddleware(svr, sCfg) // 1. 註冊 middleware
	svr.NotFound(notFound)
	svr.Get("/healthz", healthz) // 2. 健康檢查
	if err := registerSite(svr, sCfg); err != nil {
		return err // 3. 各語系頁面與站台資源
	}
	return registerV1API(svr, sCfg) // 4. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	svr.Use(middleware.SecurityHeaders)
	svr.Use(middleware.StaticCache)
	svr.Use(middleware.Compression(sCfg.Compress))
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// notFound 以 JSON 回應沒有對應路由的請求。
func notFound(w http.ResponseWriter, r *http.Request) {
	httperr.JSON(w, errs.NotFoundf("no route for %s %s", r.Method, r.URL.Path))
}

func registerSite(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	h, err := web.New(sCfg)
	if err != nil {
		return err
	}
	h.Register(svr)
	return nil
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	wh, err := v1.NewWheelHandler(sCfg)
	if err != nil {
		return err
	}
	sh, err := v1.NewSimHandler(sCfg.Randwheel)
	if err != nil {
		return err
	}
	gh := v1.NewGeometryHandler(sCfg.Randwheel)

	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Use(middleware.CORS(sCfg.CORSOrigins))

		vOne.Post("/wheels", wh.Create)
		vOne.Get("/wheels/{id}", wh.Get)
		vOne.Delete("/wheels/{id}", wh.Delete)
		vOne.Post("/wheels/{id}/items", wh.AddItem)
		vOne.Delete("/wheels/{id}/items/{index}", wh.RemoveItem)
		vOne.Post("/wheels/{id}/spin", wh.Spin)
		vOne.Get("/wheels/{id}/wheel.svg", wh.SVG)
		vOne.Get("/wheels/{id}/events", wh.Events)

		vOne.Get("/geometry", gh.Geometry)
		vOne.Get("/metrics", v1.Metrics(sCfg.Runtime))

		vOne.Get("/sim", sh.Sim)
		vOne.Post("/sim", sh.Sim)
		vOne.Post("/simbycfg", sh.SetByJson)
		vOne.Post("/stat", v1.Stat)
	})
	return nil
}
