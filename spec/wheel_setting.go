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

package spec

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/sdk/geom"
	"github.com/zintix-labs/randwheel/sdk/items"
	"github.com/zintix-labs/randwheel/sdk/spin"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ResolveBinding 決定轉動結束時以哪一份清單計算結果。
type ResolveBinding string

const (
	// BindSnapshot 以轉動開始時擷取的清單快照計算（預設）。
	BindSnapshot ResolveBinding = "snapshot"
	// BindLive 以計時器觸發當下的清單計算，轉動中編輯清單可能讓結果與畫面不一致。
	BindLive ResolveBinding = "live"
)

// GradientPair 是單一扇形的漸層起訖色。
type GradientPair struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end"   json:"end"`
}

// WheelSetting 包含建立一個轉盤所需的所有設定。
type WheelSetting struct {
	MinItems       int            `yaml:"min_items"        json:"min_items"`
	MaxItems       int            `yaml:"max_items"        json:"max_items"`
	SpinDurationMs int            `yaml:"spin_duration_ms" json:"spin_duration_ms"`
	MinSpins       float64        `yaml:"min_spins"        json:"min_spins"`
	MaxExtraSpins  *float64       `yaml:"max_extra_spins"  json:"max_extra_spins"` // nil 用預設值，明確的 0 代表固定圈數
	Radius         float64        `yaml:"radius"           json:"radius"`
	TextRadius     float64        `yaml:"text_radius"      json:"text_radius"`
	ResolveBinding ResolveBinding `yaml:"resolve_binding"  json:"resolve_binding"`
	DefaultItems   []string       `yaml:"default_items"    json:"default_items"`
	Colors         []GradientPair `yaml:"colors"           json:"colors"`
}

// GetWheelSettingByYAML 解析 YAML 設定並完成初始化與檢查。
func GetWheelSettingByYAML(data []byte) (*WheelSetting, error) {
	ws := &WheelSetting{}
	if err := yaml.Unmarshal(data, ws); err != nil {
		return nil, errs.Wrap(err, "wheel setting yaml unmarshal err")
	}
	if err := ws.init(); err != nil {
		return nil, errs.Wrap(err, "wheel setting initialized err")
	}
	return ws, nil
}

// GetWheelSettingByJSON 解析 JSON 設定並完成初始化與檢查。
func GetWheelSettingByJSON(data []byte) (*WheelSetting, error) {
	ws := &WheelSetting{}
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, errs.Wrap(err, "wheel setting json unmarshal err")
	}
	if err := ws.init(); err != nil {
		return nil, errs.Wrap(err, "wheel setting initialized err")
	}
	return ws, nil
}

// Default 回傳內嵌的預設設定，每次呼叫都是新的副本。
func Default() *WheelSetting {
	ws, err := GetWheelSettingByYAML(defaultYAML)
	if err != nil {
		panic(err)
	}
	return ws
}

// init 補上未填的欄位，再做檢查。
func (ws *WheelSetting) init() error {
	if ws.MinItems == 0 {
		ws.MinItems = items.DefaultMin
	}
	if ws.MaxItems == 0 {
		ws.MaxItems = items.DefaultMax
	}
	if ws.SpinDurationMs == 0 {
		ws.SpinDurationMs = int(spin.DefaultDuration / time.Millisecond)
	}
	if ws.MinSpins == 0 {
		ws.MinSpins = spin.DefaultMinSpins
	}
	if ws.MaxExtraSpins == nil {
		extra := spin.DefaultMaxExtraSpins
		ws.MaxExtraSpins = &extra
	}
	if ws.Radius == 0 {
		ws.Radius = geom.DefaultRadius
	}
	if ws.TextRadius == 0 {
		ws.TextRadius = geom.DefaultTextRadius
	}
	if ws.ResolveBinding == "" {
		ws.ResolveBinding = BindSnapshot
	}
	ws.ResolveBinding = ResolveBinding(strings.ToLower(string(ws.ResolveBinding)))
	if len(ws.Colors) == 0 {
		ws.Colors = defaultColors()
	}
	return ws.valid()
}

// defaultColors 回傳內嵌預設檔的色盤副本。
func defaultColors() []GradientPair {
	var d struct {
		Colors []GradientPair `yaml:"colors"`
	}
	if err := yaml.Unmarshal(defaultYAML, &d); err != nil {
		return nil
	}
	return d.Colors
}

func (ws *WheelSetting) valid() error {
	if ws.MinItems < 2 {
		return errs.NewFatal(fmt.Sprintf("min_items must be >= 2, got %d", ws.MinItems))
	}
	if ws.MaxItems < ws.MinItems {
		return errs.NewFatal(fmt.Sprintf("max_items %d < min_items %d", ws.MaxItems, ws.MinItems))
	}
	if ws.SpinDurationMs < 0 {
		return errs.NewFatal("negative spin_duration_ms")
	}
	if ws.MinSpins < 0 || *ws.MaxExtraSpins < 0 {
		return errs.NewFatal("spin counts must be non-negative")
	}
	if ws.Radius <= 0 || ws.TextRadius <= 0 || ws.TextRadius > ws.Radius {
		return errs.NewFatal(fmt.Sprintf("invalid radius=%v text_radius=%v", ws.Radius, ws.TextRadius))
	}
	switch ws.ResolveBinding {
	case BindSnapshot, BindLive:
	default:
		return errs.NewFatal(fmt.Sprintf("unknown resolve_binding: %s", ws.ResolveBinding))
	}
	if len(ws.Colors) == 0 {
		return errs.NewFatal("empty colors")
	}
	for i, c := range ws.Colors {
		if c.Start == "" || c.End == "" {
			return errs.NewFatal(fmt.Sprintf("colors[%d] missing start or end", i))
		}
	}
	if len(ws.DefaultItems) > ws.MaxItems {
		return errs.NewFatal(fmt.Sprintf("default_items has %d entries, max_items is %d", len(ws.DefaultItems), ws.MaxItems))
	}
	return nil
}

// Bounds 回傳清單長度上下限。
func (ws *WheelSetting) Bounds() items.Bounds {
	return items.Bounds{Min: ws.MinItems, Max: ws.MaxItems}
}

// Frame 回傳繪圖框架。
func (ws *WheelSetting) Frame() geom.Frame {
	return geom.Frame{Radius: ws.Radius, TextRadius: ws.TextRadius}
}

// SpinParams 回傳轉動參數。
func (ws *WheelSetting) SpinParams() spin.Params {
	return spin.Params{
		MinItems:      ws.MinItems,
		MinSpins:      ws.MinSpins,
		MaxExtraSpins: *ws.MaxExtraSpins,
		Duration:      ws.SpinDuration(),
	}
}

func (ws *WheelSetting) SpinDuration() time.Duration {
	return time.Duration(ws.SpinDurationMs) * time.Millisecond
}

// Color 回傳第 i 個扇形的漸層色，超過色表長度時循環使用。
func (ws *WheelSetting) Color(i int) GradientPair {
	n := len(ws.Colors)
	return ws.Colors[((i%n)+n)%n]
}
