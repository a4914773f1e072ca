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

package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// Alpha 是均勻性檢定的顯著水準。
const Alpha = 0.01

// SpinReport 轉動分布統計報告
type SpinReport struct {
	Summary *SummaryReport `json:"Summary" yaml:"Summary"`
	Items   []ItemReport   `json:"Items"   yaml:"Items"`
	isDone  bool
}

type SummaryReport struct {
	ItemCount  int     `json:"ItemCount"  yaml:"ItemCount"`
	Rounds     int     `json:"Rounds"     yaml:"Rounds"`
	Expected   float64 `json:"Expected"   yaml:"Expected"`   // 均勻分布下每項的期望次數
	MeanCount  float64 `json:"MeanCount"  yaml:"MeanCount"`  // 各項次數平均
	StdCount   float64 `json:"StdCount"   yaml:"StdCount"`   // 各項次數標準差
	ChiSquare  float64 `json:"ChiSquare"  yaml:"ChiSquare"`  // 對均勻分布的卡方統計量
	DoF        int     `json:"DoF"        yaml:"DoF"`        // 自由度 = ItemCount-1
	PValue     float64 `json:"PValue"     yaml:"PValue"`     // 右尾機率
	Uniform    bool    `json:"Uniform"    yaml:"Uniform"`    // PValue >= Alpha
	MeanStep   float64 `json:"MeanStep"   yaml:"MeanStep"`   // 每次轉動平均角度
	MinStep    float64 `json:"MinStep"    yaml:"MinStep"`    // 單次最小角度
	MaxStep    float64 `json:"MaxStep"    yaml:"MaxStep"`    // 單次最大角度
	MaxDevPct  float64 `json:"MaxDevPct"  yaml:"MaxDevPct"`  // 與期望值的最大相對偏差（%）
	ElapsedSec float64 `json:"ElapsedSec" yaml:"ElapsedSec"` // 由呼叫端填入
}

// ItemReport 單一選項的落點
type ItemReport struct {
	Index int     `json:"Index" yaml:"Index"`
	Label string  `json:"Label" yaml:"Label"`
	Count int     `json:"Count" yaml:"Count"`
	Share float64 `json:"Share" yaml:"Share"`
}

// NewSpinReport 以各索引的次數建立報告，尚未計算統計量，需呼叫 Done。
func NewSpinReport(labels []string, counts []int) *SpinReport {
	rep := &SpinReport{
		Summary: &SummaryReport{ItemCount: len(counts)},
		Items:   make([]ItemReport, len(counts)),
	}
	for i, c := range counts {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		rep.Items[i] = ItemReport{Index: i, Label: label, Count: c}
		rep.Summary.Rounds += c
	}
	return rep
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 一次性計算統計結果並鎖定 isDone 標記。
func (s *SpinReport) Done() {
	if s.isDone {
		return
	}
	n := len(s.Items)
	sum := s.Summary
	if n == 0 {
		s.isDone = true
		return
	}
	obs := make([]float64, n)
	exp := make([]float64, n)
	sum.Expected = float64(sum.Rounds) / float64(n)
	for i, it := range s.Items {
		obs[i] = float64(it.Count)
		exp[i] = sum.Expected
		if sum.Rounds > 0 {
			s.Items[i].Share = float64(it.Count) / float64(sum.Rounds)
		}
	}
	sum.MeanCount = stat.Mean(obs, nil)
	if n > 1 {
		sum.StdCount = stat.StdDev(obs, nil)
	}
	sum.DoF = n - 1
	if sum.Rounds > 0 && n > 1 {
		sum.ChiSquare = stat.ChiSquare(obs, exp)
		sum.PValue = distuv.ChiSquared{K: float64(sum.DoF)}.Survival(sum.ChiSquare)
		sum.Uniform = sum.PValue >= Alpha
		for _, o := range obs {
			if d := math.Abs(o-sum.Expected) / sum.Expected * 100; d > sum.MaxDevPct {
				sum.MaxDevPct = d
			}
		}
	}
	s.isDone = true
}

func (s *SpinReport) WriteWith(w io.Writer, rep SpinReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

// StdOut 以表格輸出至標準輸出。
func (s *SpinReport) StdOut(ut time.Duration) {
	s.Done()
	s.Summary.ElapsedSec = ut.Seconds()
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	fmt.Println(fmtTable("Spin Distribution", sk, sm))
	ik, im := s.fmtItems()
	fmt.Println(fmtTable("Items", ik, im))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

func (s *SpinReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	sum := s.Summary
	basic := map[string]string{
		"Items":         p.Sprintf("%d", sum.ItemCount),
		"Total Rounds":  p.Sprintf("%d", sum.Rounds),
		"Expected":      p.Sprintf("%.2f", sum.Expected),
		"Std (count)":   p.Sprintf("%.3f", sum.StdCount),
		"Max Deviation": p.Sprintf("%.3f %%", sum.MaxDevPct),
		"Chi-Square":    p.Sprintf("%.4f", sum.ChiSquare),
		"DoF":           p.Sprintf("%d", sum.DoF),
		"P-Value":       p.Sprintf("%.4f", sum.PValue),
		"Uniform":       fmt.Sprintf("%t (alpha=%.2f)", sum.Uniform, Alpha),
		"Mean Step":     p.Sprintf("%.2f°", sum.MeanStep),
		"Step Range":    p.Sprintf("[%.2f°, %.2f°]", sum.MinStep, sum.MaxStep),
	}
	keys := []string{"Items", "Total Rounds", "Expected", "Std (count)", "Max Deviation", "Chi-Square", "DoF", "P-Value", "Uniform", "Mean Step", "Step Range"}
	return keys, basic
}

func (s *SpinReport) fmtItems() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(s.Items))
	m := make(map[string]string, len(s.Items))
	for _, it := range s.Items {
		k := fmt.Sprintf("%2d %s", it.Index, it.Label)
		keys = append(keys, k)
		m[k] = p.Sprintf("%d (%.3f %%)", it.Count, it.Share*100)
	}
	return keys, m
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2
	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var b strings.Builder
	b.WriteString(top)
	b.WriteString(p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right)))
	b.WriteString(divider)
	for _, k := range keys {
		b.WriteString(p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k]))))
	}
	b.WriteString(divider)
	return b.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
