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
	"net/http"

	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/dto"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/sdk/core"
	"github.com/zintix-labs/randwheel/server/httperr"
	"github.com/zintix-labs/randwheel/spec"
)

// SetByJson POST /v1/simbycfg
//
// 以請求帶入的轉盤設定（例如不同的 min_spins / max_items）做模擬，不影響伺服器本身的設定。
func (sh *SimHandler) SetByJson(w http.ResponseWriter, r *http.Request) {
	req := new(dto.SimByCfgRequest)
	if err := dto.DecodeJSON(r, req, false); err != nil {
		httperr.JSON(w, err)
		return
	}
	if req.Rounds < 1 || req.Rounds > dto.MaxSimRounds {
		httperr.JSON(w, errs.Warnf("rounds must be between 1 and %d", dto.MaxSimRounds))
		return
	}
	if len(req.Setting) == 0 {
		httperr.JSON(w, errs.NewWarn("cfg is required"))
		return
	}
	ws, err := spec.GetWheelSettingByJSON(req.Setting)
	if err != nil {
		// 使用者帶入的設定錯誤屬於請求問題
		httperr.JSON(w, errs.New(errs.Warn, err.Error()))
		return
	}
	seed := core.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rw, err := randwheel.New(ws, sh.Randwheel.Bundle(), randwheel.WithSeed(seed))
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	sim, err := rw.NewSimulatorWithSeed(req.Items, seed)
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	rep, used, err := sim.Sim(req.Rounds, false)
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSimResult(seed, rep, used))
}
