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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/randwheel/config"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/stats"
)

// run 以獨立的 root command 執行一次，回傳 stdout。
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "randwheel.yaml")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--config", tempConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if out != "randwheel dev\n" {
		t.Fatalf("out=%q", out)
	}
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := tempConfig(t)
	if _, err := run(t, "init", "--config", path); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Sim.Format != "table" {
		t.Fatalf("cfg=%+v", cfg)
	}

	_, err = run(t, "init", "--config", path)
	if err == nil || errs.Level(err) != errs.Warn {
		t.Fatalf("second init should refuse to overwrite: %v", err)
	}
	if _, err := run(t, "init", "--config", path, "--force"); err != nil {
		t.Fatal(err)
	}
}

func TestSitemapWritesFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "sitemap", "--config", tempConfig(t), "--out", dir, "--base-url", "https://wheel.example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "wrote ") != 3 {
		t.Fatalf("out=%q", out)
	}
	sm, err := os.ReadFile(filepath.Join(dir, "sitemap.xml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<loc>https://wheel.example.com/en</loc>", "<loc>https://wheel.example.com/zh</loc>", `hreflang="x-default"`} {
		if !bytes.Contains(sm, []byte(want)) {
			t.Fatalf("sitemap missing %s:\n%s", want, sm)
		}
	}
	robots, err := os.ReadFile(filepath.Join(dir, "robots.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(robots), "Sitemap: https://wheel.example.com/sitemap.xml") {
		t.Fatalf("robots=%s", robots)
	}
	if _, err := os.Stat(filepath.Join(dir, "manifest.webmanifest")); err != nil {
		t.Fatal(err)
	}
}

func TestSitemapNeedsBaseURL(t *testing.T) {
	t.Setenv("RANDWHEEL_SERVER__BASE_URL", "")
	_, err := run(t, "sitemap", "--config", tempConfig(t), "--out", t.TempDir())
	if err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestCheck(t *testing.T) {
	t.Setenv("RANDWHEEL_SERVER__BASE_URL", "https://wheel.example.com")
	out, err := run(t, "check", "--config", tempConfig(t))
	if err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "ok ") || strings.Contains(out, "warning") {
		t.Fatalf("out=%q", out)
	}

	t.Setenv("RANDWHEEL_SERVER__BASE_URL", "")
	out, err = run(t, "check", "--config", tempConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "warning server.base_url is empty") {
		t.Fatalf("out=%q", out)
	}
}

func TestSimJSON(t *testing.T) {
	args := []string{"sim", "--config", tempConfig(t), "--rounds", "3000", "--workers", "2",
		"--format", "json", "--seed", "11", "--items", "A,B,C", "-q"}
	out, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	var rep stats.SpinReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("%v\n%s", err, out)
	}
	if rep.Summary.Rounds != 6000 || rep.Summary.ItemCount != 3 {
		t.Fatalf("summary=%+v", rep.Summary)
	}
	if rep.Items[0].Label != "A" || rep.Items[2].Label != "C" {
		t.Fatalf("items=%+v", rep.Items)
	}

	again, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	var rep2 stats.SpinReport
	if err := json.Unmarshal([]byte(again), &rep2); err != nil {
		t.Fatal(err)
	}
	for i := range rep.Items {
		if rep.Items[i].Count != rep2.Items[i].Count {
			t.Fatalf("same seed gave different counts: %+v vs %+v", rep.Items, rep2.Items)
		}
	}
}

func TestSimProfile(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "sim", "--config", tempConfig(t), "--rounds", "500", "--format", "yaml",
		"--pprof", "heap", "--pprof-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "heap.pprof")); err != nil {
		t.Fatal(err)
	}
}

func TestSimRejectsBadFormat(t *testing.T) {
	_, err := run(t, "sim", "--config", tempConfig(t), "--format", "csv")
	if err == nil || errs.Level(err) != errs.Warn {
		t.Fatalf("err=%v", err)
	}
}
