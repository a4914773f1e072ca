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

// Package render 以 svgo 繪製轉盤、OpenGraph 圖與站台 icon。
package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/zintix-labs/randwheel/sdk/geom"
	"github.com/zintix-labs/randwheel/spec"
)

const (
	hubOuter      = 30
	hubInner      = 15
	hubStroke     = "#ddd"
	hubFill       = "#f59e0b"
	pointerColor  = "#dc2626"
	wedgeStroke   = "white"
	labelFontSize = 16
)

// WheelOptions 控制轉盤的繪製。
type WheelOptions struct {
	Frame     geom.Frame
	Colors    []spec.GradientPair
	Rotation  float64 // 累積角度，順時針
	Title     string  // <title> 與 aria-label
	Highlight int     // 結果索引，< 0 代表沒有
	Pointer   bool    // 是否畫出固定在 12 點鐘的指針

	PointerLabel string // 指針的 aria-label，空字串時為 "pointer"
}

// Wheel 繪出完整的轉盤 SVG。labels 少於 2 個時只畫出空盤與中心。
func Wheel(w io.Writer, labels []string, opt WheelOptions) error {
	f := opt.Frame
	if f.Radius <= 0 {
		f = geom.DefaultFrame()
	}
	if len(opt.Colors) == 0 {
		return fmt.Errorf("render: no colors")
	}
	size := int(f.ViewBox())
	c := f.Center()
	cx, cy := int(c.X), int(c.Y)

	canvas := svg.New(w)
	canvas.Startview(size, size, 0, 0, size, size)
	if opt.Title != "" {
		canvas.Title(opt.Title)
	}
	canvas.Def()
	for i := range labels {
		gp := colorAt(opt.Colors, i)
		canvas.LinearGradient(gradientID(i), 0, 0, 100, 100, []svg.Offcolor{
			{Offset: 0, Color: gp.Start, Opacity: 1},
			{Offset: 100, Color: gp.End, Opacity: 1},
		})
	}
	canvas.DefEnd()

	canvas.Group(attr("class", "wheel-rotor"), attr("role", "img"), attr("aria-label", opt.Title),
		attr("transform", fmt.Sprintf("rotate(%s %s %s)", f64s(opt.Rotation), f64s(c.X), f64s(c.Y))))
	for _, wd := range f.Wedges(len(labels)) {
		styles := []string{
			attr("fill", "url(#"+gradientID(wd.Index)+")"),
			attr("stroke", wedgeStroke),
			attr("stroke-width", "3"),
			attr("data-index", strconv.Itoa(wd.Index)),
		}
		if wd.Index == opt.Highlight {
			styles = append(styles, attr("class", "wedge selected"))
		} else {
			styles = append(styles, attr("class", "wedge"))
		}
		canvas.Path(wd.Path, styles...)
		canvas.Text(cx, cy, labels[wd.Index],
			attr("fill", "white"),
			attr("font-size", strconv.Itoa(labelFontSize)),
			attr("font-weight", "bold"),
			attr("text-anchor", "middle"),
			attr("dominant-baseline", "middle"),
			attr("transform", wd.LabelTransform),
		)
	}
	canvas.Circle(cx, cy, hubOuter, attr("fill", "white"), attr("stroke", hubStroke), attr("stroke-width", "2"))
	canvas.Circle(cx, cy, hubInner, attr("fill", hubFill))
	canvas.Gend()

	if opt.Pointer {
		label := opt.PointerLabel
		if label == "" {
			label = "pointer"
		}
		canvas.Polygon([]int{cx - 20, cx + 20, cx}, []int{0, 0, 30}, attr("fill", pointerColor), attr("aria-label", label))
	}
	canvas.End()
	return nil
}

// WheelBytes 是 Wheel 的便利版本。
func WheelBytes(labels []string, opt WheelOptions) ([]byte, error) {
	var b bytes.Buffer
	if err := Wheel(&b, labels, opt); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Inline 去掉 <svg 之前的 XML 宣告與 svgo 產生器註解，讓 SVG 可以直接嵌入 HTML。
func Inline(doc []byte) []byte {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		return doc[i:]
	}
	return doc
}

func gradientID(i int) string {
	return "gradient-" + strconv.Itoa(i)
}

func colorAt(colors []spec.GradientPair, i int) spec.GradientPair {
	return colors[i%len(colors)]
}

// attr 產生 svgo 會原樣輸出的屬性字串（含 = 的 style 參數會被當成屬性）。
func attr(name, value string) string {
	return name + `="` + html.EscapeString(value) + `"`
}

func f64s(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
