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

// Package core 提供 randwheel 使用的亂數核心。
//
// 每個 Session 與每個模擬 worker 各自持有一個 Core，Core 本身不做同步；
// 呼叫端（Session 的鎖、worker 的 goroutine）負責保證單一擁有者。
package core

import (
	"crypto/rand"
	"math"
	"math/big"
)

// PRNG 是轉盤需要的取樣能力。
type PRNG interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
}

// PRNGFactory 以 seed 建立 PRNG。
//
// 合約：同一實作、同一 seed 必須產生相同序列（模擬與測試依賴這點）。
type PRNGFactory interface {
	New(seed int64) PRNG
}

// DefaultPRNG 以 PCG64 實作 PRNGFactory。
type DefaultPRNG struct{}

func (DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() DefaultPRNG {
	return DefaultPRNG{}
}

// Core 封裝 PRNG，滿足 spin.Rand。
type Core struct {
	PRNG
}

func New(rng PRNG) *Core {
	return &Core{rng}
}

// NewSeed 以加密亂數產生非負 int64 seed。
// crypto/rand 失敗時退回固定值 1，確保呼叫端一定拿到合法 seed。
func NewSeed() int64 {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 1
	}
	return seed.Int64()
}
