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
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/config"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/server/logger"
)

// Version 由 -ldflags "-X main.Version=..." 設定。
var Version = "dev"

// cli 保存所有子指令共用的狀態。
type cli struct {
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "randwheel",
		Short: "Random wheel picker: web service, simulator and terminal UI",
		Long: `randwheel spins a wheel of 2 to 12 options and picks the one under the pointer.
It can serve the bilingual web page and JSON/WebSocket API, run large
fairness simulations, or host a wheel directly in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", config.DefaultPath, "config file path (missing file is ignored)")

	root.AddCommand(
		c.serveCmd(),
		c.simCmd(),
		c.tuiCmd(),
		c.sitemapCmd(),
		c.checkCmd(),
		c.initCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of randwheel",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "randwheel %s\n", Version)
		},
	}
}

// buildLogger 依 log 設定建立 logger，回傳的 closer 會把非同步緩衝寫完。
// 設定了 log.file 時寫檔；fallback 不為 nil 時取代 stderr（終端介面用）。
func buildLogger(lc config.LogConfig, fallback io.Writer) (*slog.Logger, func(), error) {
	mode, err := logger.ParseMode(lc.Mode)
	if err != nil {
		return nil, nil, err
	}
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, errs.Wrap(err, "opening log file "+lc.File)
		}
		return logger.NewWithWriter(mode, f), func() { _ = f.Close() }, nil
	}
	if fallback != nil {
		return logger.NewWithWriter(mode, fallback), func() {}, nil
	}
	if lc.Buffer > 0 {
		log, ah := logger.NewAsync(lc.Buffer, mode)
		return log, ah.Close, nil
	}
	return logger.NewDefaultLogger(mode), func() {}, nil
}

// buildRandwheel 依 wheel 設定組出 Randwheel。
func buildRandwheel(cfg *config.Config, log *slog.Logger) (*randwheel.Randwheel, error) {
	ws, err := cfg.WheelSetting()
	if err != nil {
		return nil, err
	}
	bundle, err := i18n.Load()
	if err != nil {
		return nil, err
	}
	opts := []randwheel.Option{randwheel.WithLogger(log)}
	if cfg.Wheel.Seed >= 0 {
		opts = append(opts, randwheel.WithSeed(cfg.Wheel.Seed))
	}
	return randwheel.New(ws, bundle, opts...)
}
