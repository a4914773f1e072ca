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

// Package items 管理轉盤的選項列表。
//
// List 是不可變值：Add/Remove 永遠回傳新的 List，不就地修改，
// 因此 Session 在 spin 開始時持有的快照不會被之後的編輯影響。
// 超出 [Min, Max] 範圍的修改一律是 no-op（applied=false），不是錯誤。
package items

import (
	"slices"
	"strings"
)

const (
	DefaultMin = 2
	DefaultMax = 12
)

// Bounds 是列表長度的閉區間。
type Bounds struct {
	Min int
	Max int
}

func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMin, Max: DefaultMax}
}

// List 是有序的選項；相同文字的項目允許重複。
type List struct {
	labels []string
	bounds Bounds
}

// New 以初始項目建立列表。空白項目會被略過，超過 Max 的部分會被截掉。
func New(b Bounds, labels ...string) List {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if len(out) == b.Max {
			break
		}
		out = append(out, l)
	}
	return List{labels: out, bounds: b}
}

func (l List) Len() int       { return len(l.labels) }
func (l List) Bounds() Bounds { return l.bounds }

// Labels 回傳副本。
func (l List) Labels() []string {
	return slices.Clone(l.labels)
}

// At 回傳第 i 個項目；越界回傳 ("", false)。
func (l List) At(i int) (string, bool) {
	if i < 0 || i >= len(l.labels) {
		return "", false
	}
	return l.labels[i], true
}

// Spinnable 表示目前長度允許轉動。
func (l List) Spinnable() bool {
	return len(l.labels) >= l.bounds.Min && len(l.labels) <= l.bounds.Max
}

func (l List) CanAdd() bool    { return len(l.labels) < l.bounds.Max }
func (l List) CanRemove() bool { return len(l.labels) > l.bounds.Min }

// Add 在尾端加入 label（去除前後空白）。
// label 為空白或已達 Max 時不變動。
func (l List) Add(label string) (List, bool) {
	label = strings.TrimSpace(label)
	if label == "" || !l.CanAdd() {
		return l, false
	}
	next := make([]string, len(l.labels), len(l.labels)+1)
	copy(next, l.labels)
	next = append(next, label)
	return List{labels: next, bounds: l.bounds}, true
}

// Remove 移除第 index 個項目，後面的項目往前補。
// 已達 Min 或 index 越界時不變動。
func (l List) Remove(index int) (List, bool) {
	if !l.CanRemove() || index < 0 || index >= len(l.labels) {
		return l, false
	}
	next := make([]string, 0, len(l.labels)-1)
	next = append(next, l.labels[:index]...)
	next = append(next, l.labels[index+1:]...)
	return List{labels: next, bounds: l.bounds}, true
}
