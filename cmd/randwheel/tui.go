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
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/zintix-labs/randwheel/tui"
)

func (c *cli) tuiCmd() *cobra.Command {
	var (
		labels []string
		locale string
		inline bool
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Spin a wheel in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("locale") {
				c.cfg.Wheel.Locale = locale
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			// 畫面占用終端，log 只寫 log.file，沒設定就丟棄。
			log, closeLog, err := buildLogger(c.cfg.Log, io.Discard)
			if err != nil {
				return err
			}
			defer closeLog()

			rw, err := buildRandwheel(c.cfg, log)
			if err != nil {
				return err
			}
			var opts []tea.ProgramOption
			if !inline {
				opts = append(opts, tea.WithAltScreen())
			}
			return tui.Run(cmd.Context(), rw, c.cfg.Wheel.Locale, labels, opts...)
		},
	}
	cmd.Flags().StringSliceVar(&labels, "items", nil, "comma separated option labels (default: the locale's default items)")
	cmd.Flags().StringVar(&locale, "locale", "", "interface language: en or zh (overrides wheel.locale)")
	cmd.Flags().BoolVar(&inline, "inline", false, "draw inline instead of using the alternate screen")
	return cmd
}
