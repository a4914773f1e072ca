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

package app

import "context"

// Component 是可被 App 啟停的單元。
// Run 應阻塞到結束；Shutdown 要讓 Run 返回。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Func 把一對函數包成 Component，背景工作（如過期清理）不必另外宣告型別。
type Func struct {
	RunFn      func(ctx context.Context) error
	ShutdownFn func(ctx context.Context) error

	ctx    context.Context
	cancel context.CancelFunc
}

// NewFunc 建立 Func；run 會收到一個在 Shutdown 時取消的 ctx。
func NewFunc(run func(ctx context.Context) error, shutdown func(ctx context.Context) error) *Func {
	ctx, cancel := context.WithCancel(context.Background())
	return &Func{RunFn: run, ShutdownFn: shutdown, ctx: ctx, cancel: cancel}
}

func (f *Func) Run() error {
	if f.RunFn == nil {
		<-f.ctx.Done()
		return nil
	}
	return f.RunFn(f.ctx)
}

func (f *Func) Shutdown(ctx context.Context) error {
	f.cancel()
	if f.ShutdownFn == nil {
		return nil
	}
	return f.ShutdownFn(ctx)
}
