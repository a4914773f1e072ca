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
)

// SimHandler 以目前的轉盤設定做大量轉動模擬，檢查落點分布。
type SimHandler struct {
	Randwheel *randwheel.Randwheel
}

func NewSimHandler(rw *randwheel.Randwheel) (*SimHandler, error) {
	if rw == nil {
		return nil, errs.NewFatal("sim handler: randwheel is required")
	}
	return &SimHandler{Randwheel: rw}, nil
}

// Sim GET|POST /v1/sim
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	seed := core.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	sim, err := sh.Randwheel.NewSimulatorWithSeed(req.Items, seed)
	if err != nil {
		httperr.JSON(w, errs.Wrap(err, "build simulator"))
		return
	}
	rep, used, err := sim.SimMP(req.Rounds, req.Workers, false)
	if err != nil {
		// 這裡的錯誤來自 simulator，尊重錯誤分級
		httperr.JSON(w, errs.Wrap(err, "simulate"))
		return
	}
	writeJSON(w, http.StatusOK, dto.NewSimResult(seed, rep, used))
}
