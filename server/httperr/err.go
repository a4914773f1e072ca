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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/randwheel/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射、可預期）：
//   - ctx timeout/cancel → 504/408（請求生命週期問題）
//   - errs.NotFound     → 404（wheel / locale 不存在或已關閉）
//   - errs.Warn         → 400（請求/參數問題）
//   - errs.Fatal        → 500（系統/不可恢復問題）
//
// 注意：本函數屬於 HTTP 邊界層，因此放在 server/*（而不是 core errs）。
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	var e *errs.E
	if errors.As(err, &e) {
		switch e.ErrLv {
		case errs.NotFound:
			return http.StatusNotFound
		case errs.Warn:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// Body 是 JSON API 的錯誤回應格式。
type Body struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Errs 寫回純文字錯誤，給 HTML 頁面與 sitemap 這類非 JSON 路由使用。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	http.Error(w, err.Error(), StatusCode(err))
}

// JSON 寫回 {"error": ..., "status": ...}。
func JSON(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{Error: err.Error(), Status: status})
}

// Log 只記錄值得關注的錯誤：逾時類記 Warn，5xx 記 Error，其餘 4xx 屬呼叫端問題不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 409) || (status == 429) || (status == 504) {
		log.Warn(msg, slog.Any("err", err), slog.Int("status", status))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err), slog.Int("status", status))
	}
}
