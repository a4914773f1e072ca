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

package recorder

import (
	"fmt"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/stats"
)

// SpinRecorder 轉動紀錄員
//
// SpinRecorder 負責累計每個索引被選中的次數，並透過 Done 輸出統計報表。
// 單一 SpinRecorder 不做同步，並行時每個 worker 各持一份，最後用 MergeSpinRecorder 合併。
type SpinRecorder struct {
	Labels  []string
	Counts  []int
	Rounds  int
	Advance float64 // 累積轉動角度總和，用來檢查每次至少轉滿 MinSpins 圈
	MinStep float64 // 單次轉動的最小角度
	MaxStep float64 // 單次轉動的最大角度
}

func NewSpinRecorder(labels []string) (*SpinRecorder, error) {
	if len(labels) < 2 {
		return nil, errs.NewWarn(fmt.Sprintf("need at least 2 items, got %d", len(labels)))
	}
	cp := make([]string, len(labels))
	copy(cp, labels)
	return &SpinRecorder{
		Labels: cp,
		Counts: make([]int, len(labels)),
	}, nil
}

// Record 紀錄一次轉動：選中的索引與本次轉動的角度增量。
// 越界索引會被忽略並回傳 false。
func (s *SpinRecorder) Record(index int, step float64) bool {
	if index < 0 || index >= len(s.Counts) {
		return false
	}
	s.Counts[index]++
	if s.Rounds == 0 || step < s.MinStep {
		s.MinStep = step
	}
	if step > s.MaxStep {
		s.MaxStep = step
	}
	s.Rounds++
	s.Advance += step
	return true
}

// Done 把累計資料交給 stats 產生報表。
func (s *SpinRecorder) Done() *stats.SpinReport {
	rep := stats.NewSpinReport(s.Labels, s.Counts)
	rep.Summary.MinStep = s.MinStep
	rep.Summary.MaxStep = s.MaxStep
	if s.Rounds > 0 {
		rep.Summary.MeanStep = s.Advance / float64(s.Rounds)
	}
	rep.Done()
	return rep
}

func (s *SpinRecorder) Reset() {
	clear(s.Counts)
	s.Rounds = 0
	s.Advance = 0
	s.MinStep = 0
	s.MaxStep = 0
}

// MergeSpinRecorder 合併多個紀錄員，所有紀錄員必須有相同的選項數。
func MergeSpinRecorder(rs []*SpinRecorder) (*SpinRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewWarn("no recorder to merge")
	}
	out, err := NewSpinRecorder(rs[0].Labels)
	if err != nil {
		return nil, err
	}
	for i, r := range rs {
		if len(r.Counts) != len(out.Counts) {
			return nil, errs.NewFatal(fmt.Sprintf("recorder %d has %d items, want %d", i, len(r.Counts), len(out.Counts)))
		}
		for j, c := range r.Counts {
			out.Counts[j] += c
		}
		if r.Rounds == 0 {
			continue
		}
		if out.Rounds == 0 || r.MinStep < out.MinStep {
			out.MinStep = r.MinStep
		}
		if r.MaxStep > out.MaxStep {
			out.MaxStep = r.MaxStep
		}
		out.Rounds += r.Rounds
		out.Advance += r.Advance
	}
	return out, nil
}
