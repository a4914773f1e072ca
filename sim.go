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

package randwheel

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/recorder"
	"github.com/zintix-labs/randwheel/sdk/core"
	"github.com/zintix-labs/randwheel/sdk/spin"
	"github.com/zintix-labs/randwheel/stats"
)

const capPrepare int = 100

// Simulator 以純函式 RequestSpin + Resolve 連續轉動，統計每個選項的落點。
// 不經過 Session 與排程器，因此沒有動畫等待。
type Simulator struct {
	labels    []string
	params    spin.Params
	cf        core.PRNGFactory
	initSeed  int64
	seedmaker *seedMaker
	cores     []*core.Core             // 併發執行的亂數核心
	rBuf      []*recorder.SpinRecorder // 併發紀錄員
}

func newSimulator(r *Randwheel, labels []string, seed int64) *Simulator {
	s := &Simulator{
		labels:    labels,
		params:    r.ws.SpinParams(),
		cf:        r.cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		cores:     make([]*core.Core, 1, capPrepare),
		rBuf:      make([]*recorder.SpinRecorder, 0, capPrepare),
	}
	s.cores[0] = core.New(s.cf.New(seed))
	return s
}

func (s *Simulator) Labels() []string { return append([]string(nil), s.labels...) }
func (s *Simulator) Seed() int64      { return s.initSeed }

// Sim 單線模擬器：以一個亂數核心連續跑 round 次並回傳統計結果與用時。
func (s *Simulator) Sim(round int, showpb bool) (*stats.SpinReport, time.Duration, error) {
	defer s.reset()
	if round < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	r, err := recorder.NewSpinRecorder(s.labels)
	if err != nil {
		return nil, 0, err
	}
	s.rBuf = append(s.rBuf, r)

	bar := pb.StartNew(round)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	run(s.params, s.cores[0], r, round, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()

	result := r.Done()
	return result, used, nil
}

// SimMP 平行執行 mp 個 worker，總計 rounds*mp 次轉動，合併統計結果後回傳統計結果與用時。
func (s *Simulator) SimMP(rounds int, mp int, showpb bool) (*stats.SpinReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	for len(s.cores) < mp {
		s.cores = append(s.cores, core.New(s.cf.New(s.seedmaker.next())))
	}
	for len(s.rBuf) < mp {
		r, err := recorder.NewSpinRecorder(s.labels)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rounds * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			run(s.params, s.cores[i], s.rBuf[i], rounds, bar)
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	merged, err := recorder.MergeSpinRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, 0, err
	}
	return merged.Done(), used, nil
}

// run 連續轉動 rounds 次；累積角度不歸零，與 Session 行為一致。
func run(p spin.Params, c *core.Core, r *recorder.SpinRecorder, rounds int, bar *pb.ProgressBar) {
	n := len(r.Labels)
	rot := 0.0
	for i := 0; i < rounds; i++ {
		req, ok := spin.RequestSpin(p, rot, n, false, c)
		if !ok {
			return
		}
		r.Record(spin.Resolve(req.Rotation, n), req.Rotation-rot)
		rot = req.Rotation
		bar.Increment()
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 走全週期 LCG（mod 2^63，不重複），再用可逆的 mix63 打散。
//
// 注意：Runtime 建立 Session 時可能被多個 goroutine 同時呼叫，
// 因此用 CAS 迴圈推進 state，確保每次呼叫取得唯一的下一個 seed。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

// mix63：只用可逆的 bit 操作與乘奇數（mod 2^63）。
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
