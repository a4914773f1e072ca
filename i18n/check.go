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

package i18n

import (
	"fmt"
	"strings"
)

// Issue 是一筆語系檢查結果。
type Issue struct {
	Locale string
	Field  string
	Msg    string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Locale, i.Field, i.Msg)
}

// Check 檢查每個語系是否定義了 DefaultLocale 的所有 key、metadata 欄位與預設選項。
// minItems / maxItems 用來檢查預設選項數量是否可轉動。
func (b *Bundle) Check(minItems, maxItems int) []Issue {
	var out []Issue
	keys := b.Keys()
	for _, code := range b.codes {
		loc := b.locales[code]
		for _, k := range keys {
			if strings.TrimSpace(loc.Messages[k]) == "" {
				out = append(out, Issue{code, "messages." + k, "missing"})
			}
		}
		for k := range loc.Messages {
			if _, ok := b.locales[DefaultLocale].Messages[k]; !ok {
				out = append(out, Issue{code, "messages." + k, "not defined in " + DefaultLocale})
			}
		}
		m := loc.Metadata
		required := map[string]string{
			"title":          m.Title,
			"description":    m.Description,
			"appName":        m.AppName,
			"appDescription": m.AppDescription,
			"breadcrumbHome": m.BreadcrumbHome,
			"ogTitle":        m.OGTitle,
			"ogSubtitle":     m.OGSubtitle,
		}
		for _, f := range []string{"title", "description", "appName", "appDescription", "breadcrumbHome", "ogTitle", "ogSubtitle"} {
			if strings.TrimSpace(required[f]) == "" {
				out = append(out, Issue{code, "metadata." + f, "missing"})
			}
		}
		if len(m.Keywords) == 0 {
			out = append(out, Issue{code, "metadata.keywords", "empty"})
		}
		if len(m.Features) == 0 {
			out = append(out, Issue{code, "metadata.features", "empty"})
		}
		if n := len(loc.DefaultItems); n < minItems || n > maxItems {
			out = append(out, Issue{code, "default_items", fmt.Sprintf("has %d entries, want %d..%d", n, minItems, maxItems)})
		}
	}
	return out
}
