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
	"strings"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
)

// checkCmd 檢查每個語系的訊息、metadata 與預設選項是否齊全。
func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify locale messages, SEO metadata and default items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := c.cfg.WheelSetting()
			if err != nil {
				return err
			}
			bundle, err := i18n.Load()
			if err != nil {
				return err
			}
			issues := bundle.Check(ws.MinItems, ws.MaxItems)
			for _, is := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "error   %s\n", is)
			}
			if strings.TrimSpace(c.cfg.Server.BaseURL) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "warning server.base_url is empty: canonical and OpenGraph URLs will be relative and the sitemap cannot be built")
			}
			if len(issues) > 0 {
				return errs.Warnf("%d locale issue(s)", len(issues))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok      %d locales: %s\n", len(bundle.Codes()), strings.Join(bundle.Codes(), ", "))
			return nil
		},
	}
}
