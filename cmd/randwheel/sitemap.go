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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/zintix-labs/randwheel/errs"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/seo"
)

func (c *cli) sitemapCmd() *cobra.Command {
	var out, baseURL string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml, robots.txt and manifest.webmanifest for static hosting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("base-url") {
				c.cfg.Server.BaseURL = baseURL
			}
			bundle, err := i18n.Load()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return errs.Wrap(err, "creating "+out)
			}

			files := []struct {
				name  string
				write func(*bytes.Buffer) error
			}{
				{"sitemap.xml", func(b *bytes.Buffer) error {
					return seo.WriteSitemap(b, bundle, c.cfg.Server.BaseURL, time.Now())
				}},
				{"robots.txt", func(b *bytes.Buffer) error {
					return seo.WriteRobots(b, c.cfg.Server.BaseURL)
				}},
				{"manifest.webmanifest", func(b *bytes.Buffer) error {
					return seo.WriteManifest(b, seo.DefaultManifest())
				}},
			}
			for _, f := range files {
				var buf bytes.Buffer
				if err := f.write(&buf); err != nil {
					return err
				}
				path := filepath.Join(out, f.name)
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return errs.Wrap(err, "writing "+path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "public", "output directory")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "absolute site URL (overrides server.base_url)")
	return cmd
}
