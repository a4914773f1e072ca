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

// Package spin 是轉盤的選取演算法：由目前累積角度算出新的目標角度，
// 以及把動畫結束時的角度反推回指針下方的扇形索引。
package spin

import (
	"math"
	"time"
)

const (
	DefaultMinItems      = 2
	DefaultMinSpins      = 5.0
	DefaultMaxExtraSpins = 3.0
	DefaultDuration      = 4000 * time.Millisecond
)

// Rand 是選取所需的最小亂數能力；core.Core 滿足此介面。
type Rand interface {
	// Float64 回傳 [0,1)。
	Float64() float64
}

// Params 控制每次轉動的圈數與動畫時長。
type Params struct {
	MinItems      int
	MinSpins      float64
	MaxExtraSpins float64
	Duration      time.Duration
}

func DefaultParams() Params {
	return Params{
		MinItems:      DefaultMinItems,
		MinSpins:      DefaultMinSpins,
		MaxExtraSpins: DefaultMaxExtraSpins,
		Duration:      DefaultDuration,
	}
}

// Request 是一次被接受的轉動。
type Request struct {
	From         float64       // 轉動前的累積角度
	Rotation     float64       // 新的累積角度（動畫目標）
	ResolveAfter time.Duration // 動畫時長，到期後才能 Resolve
}

// RequestSpin 計算新的累積角度：
//
//	spins    = MinSpins + rand * MaxExtraSpins
//	extra    = rand * 360
//	rotation = current + spins*360 + extra
//
// spinning 為 true 或 count < MinItems 時不轉動（ok=false），這是政策拒絕而不是錯誤。
func RequestSpin(p Params, current float64, count int, spinning bool, rng Rand) (Request, bool) {
	if spinning || count < p.MinItems {
		return Request{}, false
	}
	spins := p.MinSpins + rng.Float64()*p.MaxExtraSpins
	extra := rng.Float64() * 360
	return Request{
		From:         current,
		Rotation:     current + spins*360 + extra,
		ResolveAfter: p.Duration,
	}, true
}

// Normalize 把角度折回 [0,360)。
func Normalize(rotation float64) float64 {
	n := math.Mod(rotation, 360)
	if n < 0 {
		n += 360
	}
	if n >= 360 {
		n = 0
	}
	return n
}

// Resolve 回傳累積角度 rotation 停下時指針（12 點鐘方向）所指的扇形索引：
//
//	normalized = rotation mod 360
//	segment    = 360 / count
//	index      = floor((360 - normalized + segment/2) / segment) mod count
//
// 轉盤順時針轉了 normalized 度，等於指針相對轉盤逆時針走了 normalized 度；
// segment/2 把判定邊界移到扇形中線。count <= 0 回傳 -1。
func Resolve(rotation float64, count int) int {
	if count <= 0 {
		return -1
	}
	normalized := Normalize(rotation)
	segment := 360 / float64(count)
	idx := int(math.Floor((360-normalized+segment/2)/segment)) % count
	if idx < 0 {
		idx += count
	}
	return idx
}
