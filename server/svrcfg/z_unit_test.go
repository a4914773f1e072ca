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

package svrcfg

import (
	"log/slog"
	"testing"
	"time"

	"github.com/zintix-labs/randwheel"
)

func TestVaildRequiresRandwheel(t *testing.T) {
	sc := &SvrCfg{Log: slog.New(slog.DiscardHandler)}
	if err := sc.Vaild(); err == nil {
		t.Fatal("expected error without randwheel")
	}
}

func TestVaildFillsDefaults(t *testing.T) {
	rw, err := randwheel.NewAuto(randwheel.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	sc := &SvrCfg{
		Log:           slog.New(slog.DiscardHandler),
		BaseURL:       " https://wheel.example.com/ ",
		SweepInterval: time.Millisecond,
		EventBuffer:   100000,
		Randwheel:     rw,
	}
	if err := sc.Vaild(); err != nil {
		t.Fatal(err)
	}
	if sc.Addr != DefaultAddr {
		t.Fatalf("addr=%q", sc.Addr)
	}
	if sc.BaseURL != "https://wheel.example.com" {
		t.Fatalf("base=%q", sc.BaseURL)
	}
	if sc.SweepInterval != time.Second {
		t.Fatalf("sweep=%v", sc.SweepInterval)
	}
	if sc.EventBuffer != maxEventBuffer {
		t.Fatalf("buf=%d", sc.EventBuffer)
	}
	if sc.SessionTTL != randwheel.DefaultSessionTTL || sc.MaxSessions != randwheel.DefaultMaxSessions {
		t.Fatalf("ttl=%v max=%d", sc.SessionTTL, sc.MaxSessions)
	}
	if sc.Runtime == nil || sc.Metadata == nil {
		t.Fatal("runtime and metadata should be built")
	}
	if sc.Metadata.BaseURL() != "https://wheel.example.com" {
		t.Fatalf("metadata base=%q", sc.Metadata.BaseURL())
	}
}

func TestVaildRejectsClosedRuntime(t *testing.T) {
	rw, err := randwheel.NewAuto(randwheel.WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	rt := rw.BuildRuntime()
	rt.Close()
	sc := &SvrCfg{Log: slog.New(slog.DiscardHandler), Randwheel: rw, Runtime: rt}
	if err := sc.Vaild(); err == nil {
		t.Fatal("expected error for closed runtime")
	}
}
