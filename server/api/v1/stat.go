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

	"github.com/zintix-labs/randwheel/dto"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/server/httperr"
	"github.com/zintix-labs/randwheel/stats"
)

// Stat POST /v1/stat
//
// 對外部收集到的落點次數（例如前端實際轉出的結果）做卡方均勻性檢定。
func Stat(w http.ResponseWriter, r *http.Request) {
	req := new(dto.StatRequest)
	if err := dto.DecodeJSON(r, req, false); err != nil {
		httperr.JSON(w, err)
		return
	}
	if len(req.Counts) < 2 {
		httperr.JSON(w, errs.NewWarn("counts must have at least 2 entries"))
		return
	}
	if len(req.Labels) != 0 && len(req.Labels) != len(req.Counts) {
		httperr.JSON(w, errs.NewWarn("labels and counts must have the same length"))
		return
	}
	total := 0
	for _, c := range req.Counts {
		if c < 0 {
			httperr.JSON(w, errs.NewWarn("counts must be non-negative"))
			return
		}
		total += c
	}
	if total < 1 {
		httperr.JSON(w, errs.NewWarn("round must > 0"))
		return
	}
	rep := stats.NewSpinReport(req.Labels, req.Counts)
	rep.Done()
	writeJSON(w, http.StatusOK, rep)
}
