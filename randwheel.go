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

// Package randwheel 提供隨機轉盤的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Randwheel 把三個地基組裝在一起：
//  1. WheelSetting：清單上下限、轉動圈數、動畫時長、繪圖尺寸與顏色。
//  2. i18n.Bundle：各語系的字串與預設選項。
//  3. PRNGFactory + seedMaker：每個 Session 各自持有一個由 seed 推導出的亂數核心。
//
// 由 Randwheel 可以建立：
//   - Session：單一轉盤，給 TUI 或單元測試直接使用。
//   - Runtime：多個 Session 的存放區，給 HTTP 服務使用。
//   - Simulator：大量轉動並統計落點分布，給開發者檢查使用。
package randwheel

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/sdk/core"
	"github.com/zintix-labs/randwheel/sdk/items"
	"github.com/zintix-labs/randwheel/sdk/spin"
	"github.com/zintix-labs/randwheel/spec"
)

// Randwheel 是組裝器。建立後唯讀，可併發使用。
type Randwheel struct {
	ws     *spec.WheelSetting
	bundle *i18n.Bundle
	cf     core.PRNGFactory
	sched  spin.Scheduler
	seed   int64
	seeds  *seedMaker
	log    *slog.Logger
}

// Option 調整 Randwheel 的組裝內容。
type Option func(*Randwheel)

// WithScheduler 替換 Resolve 的排程器（測試時注入 spin.ManualScheduler）。
func WithScheduler(s spin.Scheduler) Option {
	return func(r *Randwheel) { r.sched = s }
}

// WithSeed 固定初始 seed，讓所有 Session 的亂數序列可重現。
func WithSeed(seed int64) Option {
	return func(r *Randwheel) { r.seed = seed }
}

// WithPRNG 替換亂數工廠。
func WithPRNG(cf core.PRNGFactory) Option {
	return func(r *Randwheel) { r.cf = cf }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Randwheel) { r.log = l }
}

// New 以給定的設定與語系建立 Randwheel。
func New(ws *spec.WheelSetting, bundle *i18n.Bundle, opts ...Option) (*Randwheel, error) {
	if ws == nil {
		return nil, errs.NewFatal("wheel setting required")
	}
	if bundle == nil {
		return nil, errs.NewFatal("locale bundle required")
	}
	r := &Randwheel{
		ws:     ws,
		bundle: bundle,
		cf:     core.Default(),
		sched:  spin.RealScheduler{},
		seed:   -1,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(r)
	}
	if r.cf == nil || r.sched == nil || r.log == nil {
		return nil, errs.NewFatal("nil option value")
	}
	if r.seed < 0 {
		r.seed = core.NewSeed()
	}
	r.seeds = newSeedMaker(r.seed)
	return r, nil
}

// NewAuto 使用內嵌的預設設定與語系建立 Randwheel。
func NewAuto(opts ...Option) (*Randwheel, error) {
	bundle, err := i18n.Load()
	if err != nil {
		return nil, err
	}
	return New(spec.Default(), bundle, opts...)
}

func (r *Randwheel) Setting() *spec.WheelSetting { return r.ws }
func (r *Randwheel) Bundle() *i18n.Bundle        { return r.bundle }
func (r *Randwheel) Seed() int64                 { return r.seed }

// NewSession 建立一個不受 Runtime 管理的 Session，id 由呼叫端決定。
func (r *Randwheel) NewSession(id, locale string, labels []string) (*Session, error) {
	return r.newSession(id, locale, labels, time.Now, hooks{})
}

// BuildRuntime 建立 Session 存放區。
func (r *Randwheel) BuildRuntime(opts ...RuntimeOption) *Runtime {
	return newRuntime(r, opts...)
}

// NewSimulator 建立模擬器。labels 為空時使用預設語系的預設選項。
func (r *Randwheel) NewSimulator(labels []string) (*Simulator, error) {
	list, err := r.initialList(i18n.DefaultLocale, labels)
	if err != nil {
		return nil, err
	}
	return newSimulator(r, list.Labels(), r.seeds.next()), nil
}

// NewSimulatorWithSeed 以指定種子建立模擬器，相同種子與選項會得到相同的報表。
func (r *Randwheel) NewSimulatorWithSeed(labels []string, seed int64) (*Simulator, error) {
	list, err := r.initialList(i18n.DefaultLocale, labels)
	if err != nil {
		return nil, err
	}
	return newSimulator(r, list.Labels(), seed), nil
}

// DefaultLabels 回傳語系的初始選項：設定檔有 default_items 時優先，否則使用語系檔。
func (r *Randwheel) DefaultLabels(locale string) []string {
	if len(r.ws.DefaultItems) > 0 {
		out := make([]string, len(r.ws.DefaultItems))
		copy(out, r.ws.DefaultItems)
		return out
	}
	return r.bundle.DefaultItems(locale)
}

func (r *Randwheel) initialList(locale string, labels []string) (items.List, error) {
	if len(labels) == 0 {
		labels = r.DefaultLabels(locale)
	}
	list := items.New(r.ws.Bounds(), labels...)
	if !list.Spinnable() {
		return items.List{}, errs.Warnf("need at least %d non-empty items, got %d", r.ws.MinItems, list.Len())
	}
	return list, nil
}

func (r *Randwheel) newSession(id, locale string, labels []string, now func() time.Time, h hooks) (*Session, error) {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	if !r.bundle.Has(locale) {
		return nil, errs.Warnf("unsupported locale: %q", locale)
	}
	list, err := r.initialList(locale, labels)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:         id,
		locale:     locale,
		binding:    r.ws.ResolveBinding,
		params:     r.ws.SpinParams(),
		sched:      r.sched,
		core:       core.New(r.cf.New(r.seeds.next())),
		log:        r.log,
		hooks:      h,
		list:       list,
		resultIdx:  -1,
		lastActive: now(),
		now:        now,
		subs:       map[int]chan Event{},
	}
	return s, nil
}
