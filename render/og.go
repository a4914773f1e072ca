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

package render

import (
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/zintix-labs/randwheel/sdk/geom"
	"github.com/zintix-labs/randwheel/spec"
)

const (
	OGWidth  = 1200
	OGHeight = 630

	ogStart = "#667eea"
	ogEnd   = "#764ba2"
)

// OGImage 繪出 1200x630 的分享圖：斜向漸層背景、置中標題與副標。
func OGImage(w io.Writer, title, subtitle string) {
	canvas := svg.New(w)
	canvas.Start(OGWidth, OGHeight)
	canvas.Title(title)
	canvas.Def()
	canvas.LinearGradient("bg", 0, 0, 100, 100, []svg.Offcolor{
		{Offset: 0, Color: ogStart, Opacity: 1},
		{Offset: 100, Color: ogEnd, Opacity: 1},
	})
	canvas.DefEnd()
	canvas.Rect(0, 0, OGWidth, OGHeight, attr("fill", "url(#bg)"))
	canvas.Text(OGWidth/2, OGHeight/2-10, title,
		attr("fill", "white"),
		attr("font-size", "120"),
		attr("font-weight", "bold"),
		attr("font-family", "system-ui, sans-serif"),
		attr("text-anchor", "middle"),
	)
	canvas.Text(OGWidth/2, OGHeight/2+80, subtitle,
		attr("fill", "white"),
		attr("fill-opacity", "0.9"),
		attr("font-size", "48"),
		attr("font-family", "system-ui, sans-serif"),
		attr("text-anchor", "middle"),
	)
	canvas.End()
}

// Icon 繪出站台 icon：六等分的小轉盤。
func Icon(w io.Writer, colors []spec.GradientPair) error {
	f := geom.Frame{Radius: 32, TextRadius: 20}
	labels := make([]string, 6)
	return iconWheel(w, f, labels, colors)
}

func iconWheel(w io.Writer, f geom.Frame, labels []string, colors []spec.GradientPair) error {
	size := int(f.ViewBox())
	c := f.Center()
	canvas := svg.New(w)
	canvas.Startview(size, size, 0, 0, size, size)
	canvas.Def()
	for i := range labels {
		gp := colorAt(colors, i)
		canvas.LinearGradient(gradientID(i), 0, 0, 100, 100, []svg.Offcolor{
			{Offset: 0, Color: gp.Start, Opacity: 1},
			{Offset: 100, Color: gp.End, Opacity: 1},
		})
	}
	canvas.DefEnd()
	for _, wd := range f.Wedges(len(labels)) {
		canvas.Path(wd.Path, attr("fill", "url(#"+gradientID(wd.Index)+")"))
	}
	canvas.Circle(int(c.X), int(c.Y), 6, attr("fill", hubFill))
	canvas.End()
	return nil
}
