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
	"github.com/zintix-labs/randwheel/sdk/geom"
	"github.com/zintix-labs/randwheel/server/httperr"
)

// GeometryHandler 回傳 n 個選項時的扇形資料，與任何 Session 無關。
type GeometryHandler struct {
	frame    geom.Frame
	min, max int
}

func NewGeometryHandler(rw *randwheel.Randwheel) *GeometryHandler {
	ws := rw.Setting()
	return &GeometryHandler{frame: ws.Frame(), min: ws.MinItems, max: ws.MaxItems}
}

// Geometry GET /v1/geometry?n=6
func (g *GeometryHandler) Geometry(w http.ResponseWriter, r *http.Request) {
	n, err := dto.ParseCount(r.URL.Query().Get("n"), g.min, g.max)
	if err != nil {
		httperr.JSON(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewGeometry(n, g.frame))
}

// Metrics GET /v1/metrics
func Metrics(rt *randwheel.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rt.Metrics())
	}
}
