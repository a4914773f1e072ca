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

// Package geom 產生轉盤的扇形幾何。
//
// 座標系與 SVG 相同：原點在左上、y 向下。圓心固定在 (R, R)，
// 第 0 片從 12 點鐘方向（-90°）開始，順時針排列，所有扇形恰好鋪滿一整圈。
// 本包的函數都是純函數：相同的 (index, total) 一定得到相同輸出。
package geom

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultRadius     = 200.0
	DefaultTextRadius = 130.0
)

// Frame 描述轉盤的尺寸。ViewBox 為 2R x 2R。
type Frame struct {
	Radius     float64
	TextRadius float64
}

func DefaultFrame() Frame {
	return Frame{Radius: DefaultRadius, TextRadius: DefaultTextRadius}
}

// Wedge 是一片扇形的渲染資料。
//
// StartDeg/EndDeg 是螢幕座標下的角度（已含 -90° 偏移）；
// TextAngle 是未偏移座標下的扇形中線角度，供文字旋轉使用。
type Wedge struct {
	Index          int     `json:"index"`
	StartDeg       float64 `json:"start_deg"`
	EndDeg         float64 `json:"end_deg"`
	Path           string  `json:"path"`
	TextAngle      float64 `json:"text_angle"`
	LabelTransform string  `json:"label_transform"`
}

// WedgeAngle 回傳每片扇形的角度（度）。total <= 0 回傳 0。
func WedgeAngle(total int) float64 {
	if total <= 0 {
		return 0
	}
	return 360 / float64(total)
}

func (f Frame) Center() r2.Vec {
	return r2.Vec{X: f.Radius, Y: f.Radius}
}

// ViewBox 回傳 SVG viewBox 的邊長。
func (f Frame) ViewBox() float64 {
	return 2 * f.Radius
}

// pointAt 回傳圓周上弧度 rad 的點。
func (f Frame) pointAt(rad float64) r2.Vec {
	return r2.Add(f.Center(), r2.Scale(f.Radius, r2.Vec{X: math.Cos(rad), Y: math.Sin(rad)}))
}

// WedgePath 產生第 index 片（共 total 片）的封閉路徑：
// 圓心 → 起點 → 弧 → 終點 → 回圓心。
//
// 前置條件：total >= 2 且 0 <= index < total；不滿足時回傳空字串，
// 由宿主端在呼叫前保證項目數量落在合法範圍。
func (f Frame) WedgePath(index, total int) string {
	if total < 2 || index < 0 || index >= total {
		return ""
	}
	angle := 2 * math.Pi / float64(total)
	start := float64(index)*angle - math.Pi/2
	end := start + angle

	c := f.Center()
	p1 := f.pointAt(start)
	p2 := f.pointAt(end)

	largeArc := 0
	if angle > math.Pi {
		largeArc = 1
	}
	r := num(f.Radius)
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
		num(c.X), num(c.Y),
		num(p1.X), num(p1.Y),
		r, r, largeArc,
		num(p2.X), num(p2.Y))
}

// TextAngle 回傳第 index 片的中線角度（未含 -90° 偏移）。
func TextAngle(index, total int) float64 {
	w := WedgeAngle(total)
	return float64(index)*w + w/2
}

// LabelTransform 回傳文字的 SVG transform：繞圓心旋轉到中線，再沿旋轉後的軸往外推 TextRadius。
func (f Frame) LabelTransform(index, total int) string {
	c := f.Center()
	return fmt.Sprintf("rotate(%s %s %s) translate(0 %s)",
		num(TextAngle(index, total)), num(c.X), num(c.Y), num(-f.TextRadius))
}

// Wedges 依序產生 total 片扇形；total < 2 回傳 nil。
func (f Frame) Wedges(total int) []Wedge {
	if total < 2 {
		return nil
	}
	w := WedgeAngle(total)
	out := make([]Wedge, total)
	for i := range total {
		out[i] = Wedge{
			Index:          i,
			StartDeg:       float64(i)*w - 90,
			EndDeg:         float64(i+1)*w - 90,
			Path:           f.WedgePath(i, total),
			TextAngle:      TextAngle(i, total),
			LabelTransform: f.LabelTransform(i, total),
		}
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
