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

package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

type SpinReportRender interface {
	Write(w io.Writer, r *SpinReport) error
}

// Json渲染
type JsonSpinReportRender struct{}

func (jr *JsonSpinReportRender) Write(w io.Writer, r *SpinReport) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLSpinReportRender struct{}

func (yr *YAMLSpinReportRender) Write(w io.Writer, r *SpinReport) error {
	return forceReadableList(w, r)
}

// Table渲染
type TableSpinReportRender struct{}

func (tr *TableSpinReportRender) Write(w io.Writer, r *SpinReport) error {
	sk, sm := r.fmtBasic()
	if _, err := io.WriteString(w, fmtTable("Spin Distribution", sk, sm)); err != nil {
		return err
	}
	ik, im := r.fmtItems()
	_, err := io.WriteString(w, fmtTable("Items", ik, im))
	return err
}

// RenderFor 依名稱回傳渲染器，未知名稱回傳 nil。
func RenderFor(name string) SpinReportRender {
	switch name {
	case "json":
		return &JsonSpinReportRender{}
	case "yaml", "yml":
		return &YAMLSpinReportRender{}
	case "table", "":
		return &TableSpinReportRender{}
	}
	return nil
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	// 最內層一維 sequence 用 flow style，外層維度保持展開。
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChild := false
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				hasChild = true
				break
			}
		}
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		if !hasChild {
			n.Style = yaml.FlowStyle
		}
	}
}
