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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/sdk/perf"
	"github.com/zintix-labs/randwheel/server/logger"
	"github.com/zintix-labs/randwheel/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func (c *cli) simCmd() *cobra.Command {
	var (
		labels   []string
		locale   string
		pprofDir string
		pprofOn  string
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run a fairness simulation of many spins and report the distribution",
		Long: `sim spins the wheel rounds*workers times without animation, tallies which
option lands under the pointer and reports counts, shares and a chi-square
test against the uniform expectation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if f.Changed("rounds") {
				c.cfg.Sim.Rounds, _ = f.GetInt("rounds")
			}
			if f.Changed("workers") {
				c.cfg.Sim.Workers, _ = f.GetInt("workers")
			}
			if f.Changed("format") {
				c.cfg.Sim.Format, _ = f.GetString("format")
			}
			if f.Changed("seed") {
				c.cfg.Wheel.Seed, _ = f.GetInt64("seed")
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			render := c.cfg.Render()
			if render == nil {
				return errs.Warnf("unknown format %q", c.cfg.Sim.Format)
			}

			rw, err := buildRandwheel(c.cfg, logger.NewDefaultLogger(logger.ModeSilence))
			if err != nil {
				return err
			}
			if len(labels) == 0 {
				labels = rw.DefaultLabels(locale)
			}
			s, err := rw.NewSimulator(labels)
			if err != nil {
				return err
			}

			sc := c.cfg.Sim
			_, isTable := render.(*stats.TableSpinReportRender)
			showpb := isTable && !quiet
			p := message.NewPrinter(language.English)
			if showpb {
				p.Fprintf(cmd.ErrOrStderr(), "[ITEMS:%d] [WORKERS:%d] [ROUNDS:%d] [SEED:%d]\n",
					len(labels), sc.Workers, sc.Rounds*sc.Workers, s.Seed())
			}

			var (
				report *stats.SpinReport
				simErr error
			)
			exe := func() {
				var used time.Duration
				if sc.Workers == 1 {
					report, used, simErr = s.Sim(sc.Rounds, showpb)
				} else {
					report, used, simErr = s.SimMP(sc.Rounds, sc.Workers, showpb)
				}
				if simErr == nil {
					report.Summary.ElapsedSec = used.Seconds()
				}
			}
			path, err := perf.Run(strings.ToLower(pprofOn), pprofDir, exe)
			if err != nil {
				return err
			}
			if simErr != nil {
				return simErr
			}
			if err := report.WriteWith(cmd.OutOrStdout(), render); err != nil {
				return errs.Wrap(err, "writing report")
			}
			if path != "" {
				cmd.PrintErrf("profile written to %s\n", path)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("rounds", 0, "spins per worker (overrides sim.rounds)")
	f.Int("workers", 0, "parallel workers (overrides sim.workers)")
	f.String("format", "", "report format: table, json or yaml (overrides sim.format)")
	f.Int64("seed", -1, "simulation seed, -1 for random (overrides wheel.seed)")
	f.StringSliceVar(&labels, "items", nil, "comma separated option labels (default: the locale's default items)")
	f.StringVar(&locale, "locale", "en", "locale for the default items")
	f.StringVar(&pprofOn, "pprof", "", "write a profile: cpu, heap or allocs")
	f.StringVar(&pprofDir, "pprof-dir", perf.DefaultDir, "directory for pprof output")
	f.BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}
