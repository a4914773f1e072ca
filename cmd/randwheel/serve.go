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
	"github.com/spf13/cobra"
	"github.com/zintix-labs/randwheel/server"
	"github.com/zintix-labs/randwheel/server/svrcfg"
)

func (c *cli) serveCmd() *cobra.Command {
	var addr, baseURL string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page, the /v1 API and the WebSocket event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("base-url") {
				c.cfg.Server.BaseURL = baseURL
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			log, closeLog, err := buildLogger(c.cfg.Log, nil)
			if err != nil {
				return err
			}
			defer closeLog()

			rw, err := buildRandwheel(c.cfg, log)
			if err != nil {
				return err
			}
			sc := c.cfg.Server
			compress, err := sc.Compression.Config()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), &svrcfg.SvrCfg{
				Log:             log,
				Addr:            sc.Addr,
				BaseURL:         sc.BaseURL,
				SessionTTL:      sc.SessionTTL,
				SweepInterval:   sc.SweepInterval,
				MaxSessions:     sc.MaxSessions,
				EventBuffer:     sc.EventBuffer,
				CORSOrigins:     sc.CORSOrigins,
				Compress:        compress,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				IdleTimeout:     sc.IdleTimeout,
				ShutdownTimeout: sc.ShutdownTimeout,
				Randwheel:       rw,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "public base URL for canonical links and the sitemap")
	return cmd
}
