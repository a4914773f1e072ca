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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/randwheel/errs"
)

// 防止 body 過大（1MiB）
const maxBody = 1 << 20

// MaxSimRounds 是單次模擬 API 允許的最大總轉動次數。
const MaxSimRounds = 1_000_000

// CreateWheelRequest 建立轉盤。兩個欄位都可省略：locale 預設 en，items 預設語系選項。
type CreateWheelRequest struct {
	Locale string   `json:"locale,omitempty"`
	Items  []string `json:"items,omitempty"`
}

// AddItemRequest 新增一個選項。
type AddItemRequest struct {
	Label string `json:"label"`
}

// SimRequest 以指定選項跑 Rounds*Workers 次轉動。
type SimRequest struct {
	Items   []string `json:"items,omitempty"`
	Rounds  int      `json:"rounds"`
	Workers int      `json:"workers,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`
}

// SimByCfgRequest 以自帶的轉盤設定（JSON，格式同 spec.WheelSetting）做模擬。
type SimByCfgRequest struct {
	Items   []string        `json:"items,omitempty"`
	Rounds  int             `json:"rounds"`
	Setting json.RawMessage `json:"cfg"`
	Seed    *int64          `json:"seed,omitempty"`
}

// StatRequest 對外部收集到的落點次數做均勻性檢定。
type StatRequest struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// VitalsReport 是瀏覽器回報的 Web Vitals 指標。
type VitalsReport struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	ID             string  `json:"id"`
	Rating         string  `json:"rating,omitempty"`
	Delta          float64 `json:"delta,omitempty"`
	NavigationType string  `json:"navigationType,omitempty"`
}

// Scaled 回傳記錄用的數值：CLS 是無單位小數，放大 1000 倍取整，其餘四捨五入到毫秒。
func (v VitalsReport) Scaled() int64 {
	if v.Name == "CLS" {
		return int64(math.Round(v.Value * 1000))
	}
	return int64(math.Round(v.Value))
}

// DecodeJSON 解碼 POST body。
//
//   - body 限制 1MiB。
//   - 開啟 DisallowUnknownFields()，未知欄位直接拒絕。
//   - allowEmpty 為 true 時，空 body 視為零值。
//
// 錯誤一律為 errs.Warn（對應 400）。
func DecodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	if r == nil || r.Body == nil {
		if allowEmpty {
			return nil
		}
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return errs.Warnf("invalid json: %v", err)
	}
	return nil
}

// DecodeSimRequest 會把 HTTP 請求解碼成 SimRequest。
//
// 支援：
//   - GET：query string（items 以逗號分隔、rounds、workers、seed）。
//   - POST：JSON body。
//
// 這裡只做解碼與範圍檢查；選項是否足夠由 Randwheel 決定。
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := new(SimRequest)
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("items"); s != "" {
			req.Items = strings.Split(s, ",")
		}
		var err error
		if req.Rounds, err = queryInt(q.Get("rounds"), "rounds"); err != nil {
			return nil, err
		}
		if req.Workers, err = queryInt(q.Get("workers"), "workers"); err != nil {
			return nil, err
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn("seed must be int64")
			}
			req.Seed = &v
		}
	case http.MethodPost:
		if err := DecodeJSON(r, req, false); err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewWarn("method not allowed")
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	if req.Rounds < 1 {
		return nil, errs.NewWarn("rounds must be at least 1")
	}
	if req.Rounds*req.Workers > MaxSimRounds || req.Rounds > MaxSimRounds || req.Workers > 64 {
		return nil, errs.NewWarn(fmt.Sprintf("rounds*workers must be at most %d (workers <= 64)", MaxSimRounds))
	}
	return req, nil
}

// ParseCount 解析 geometry 的 n 參數並檢查範圍。
func ParseCount(s string, lo, hi int) (int, error) {
	if s == "" {
		return 0, errs.NewWarn("n is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn("n must be integer")
	}
	if n < lo || n > hi {
		return 0, errs.Warnf("n must be between %d and %d", lo, hi)
	}
	return n, nil
}

// ParseIndex 解析路由上的選項索引，只檢查格式，範圍交給清單規則。
func ParseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn("index must be integer")
	}
	return i, nil
}

func queryInt(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Warnf("%s must be integer", name)
	}
	return v, nil
}
