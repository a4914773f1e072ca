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

// ops 是開發用的工作腳本：go run ./scripts <task>
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// task 名稱 -> 說明與執行函式
var tasks = map[string]struct {
	help string
	run  func() error
}{
	"test":    {"go test ./... -cover, only ok/FAIL lines", runTest},
	"race":    {"go test -race ./...", func() error { return goCmd(os.Stdout, "test", "-race", "-count=1", "./...") }},
	"pgo":     {"profile a long simulation and install cmd/randwheel/default.pgo", runPGO},
	"sitemap": {"write public/sitemap.xml and robots.txt (needs RANDWHEEL_SERVER__BASE_URL)", runSitemap},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		fmt.Println(yellow.Render("Unknown task: " + os.Args[1]))
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		fmt.Println(red.Render(err.Error()))
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	for name, t := range tasks {
		fmt.Printf("  %-8s %s\n", name, t.help)
	}
}

func goCmd(out io.Writer, args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// runTest 清除測試快取後執行全部測試，只印出 ok / FAIL 與編譯失敗的行。
func runTest() error {
	fmt.Println(green.Render("running tests"))
	_ = exec.Command("go", "clean", "-testcache").Run()

	cmd := exec.Command("go", "test", "./...", "-cover", "-count=1")
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			fmt.Println(green.Render(line))
		case strings.HasPrefix(line, "FAIL"),
			strings.Contains(line, "build failed"),
			strings.Contains(line, "setup failed"):
			fmt.Println(red.Render(line))
		}
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("tests finished with errors")
	}
	return nil
}

func runPGO() error {
	dir := filepath.Join("build", "profiling")
	fmt.Println(green.Render("profiling simulator"))
	if err := goCmd(os.Stdout, "run", "./cmd/randwheel", "sim",
		"--rounds", "2000000", "--workers", "4", "--pprof", "cpu", "--pprof-dir", dir, "-q"); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(dir, "cpu.pprof"))
	if err != nil {
		return err
	}
	dst := filepath.Join("cmd", "randwheel", "default.pgo")
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	fmt.Println(green.Render("wrote " + dst))
	return nil
}

func runSitemap() error {
	return goCmd(os.Stdout, "run", "./cmd/randwheel", "sitemap", "--out", "public")
}
