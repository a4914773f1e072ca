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

// Package tui 是轉盤的終端介面：在同一個程序內持有一個 Session，
// 以 Bubble Tea 顯示清單、轉動動畫與結果。
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/randwheel"
	"github.com/zintix-labs/randwheel/i18n"
	"github.com/zintix-labs/randwheel/sdk/spin"
	"github.com/zintix-labs/randwheel/spec"
)

const (
	frameInterval = 33 * time.Millisecond
	labelWidth    = 28
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea"))
	pointerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#dc2626"))
	resultStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f59e0b"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
)

// eventMsg 把 Session 事件帶進 Bubble Tea 的訊息迴圈。
type eventMsg randwheel.Event

// closedMsg 代表訂閱頻道已關閉。
type closedMsg struct{}

type tickMsg time.Time

// animation 是一次轉動的畫面插值，真正的結果由 Session 計時器決定。
type animation struct {
	active bool
	from   float64
	to     float64
	start  time.Time
	dur    time.Duration
	count  int // 轉動開始時的選項數，0 代表跟著目前清單
}

// Model 是 Bubble Tea 的 model。
type Model struct {
	s      *randwheel.Session
	bundle *i18n.Bundle
	locale string

	events <-chan randwheel.Event
	unsub  func()

	input    textinput.Model
	state    randwheel.State
	selected int
	display  float64
	anim     animation
	now      func() time.Time
	err      error
	quitting bool
}

// New 建立 model 並訂閱 Session 事件。呼叫端負責在結束後 Close Session。
func New(s *randwheel.Session, bundle *i18n.Bundle) *Model {
	ti := textinput.New()
	ti.Placeholder = bundle.T(s.Locale(), "inputPlaceholder")
	ti.CharLimit = 40
	ti.Width = labelWidth
	ti.Focus()

	events, unsub := s.Subscribe(8)
	st := s.State()
	return &Model{
		s:       s,
		bundle:  bundle,
		locale:  s.Locale(),
		events:  events,
		unsub:   unsub,
		input:   ti,
		state:   st,
		display: st.Rotation,
		now:     time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitEvent())
}

func (m *Model) waitEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.state = msg.State
		switch msg.Kind {
		case randwheel.EventResult:
			m.anim.active = false
			m.display = msg.State.Rotation
		case randwheel.EventClosed:
			m.quitting = true
			return m, tea.Quit
		}
		m.clampSelection()
		return m, m.waitEvent()

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case tickMsg:
		if !m.anim.active {
			return m, nil
		}
		p := 1.0
		if m.anim.dur > 0 {
			p = float64(m.now().Sub(m.anim.start)) / float64(m.anim.dur)
		}
		if p >= 1 {
			m.display = m.anim.to
			return m, nil
		}
		m.display = m.anim.from + (m.anim.to-m.anim.from)*easeOut(p)
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		m.unsub()
		return m, tea.Quit
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case tea.KeyDown:
		if m.selected < len(m.state.Items)-1 {
			m.selected++
		}
		return m, nil
	case tea.KeyCtrlS:
		return m, m.spin()
	case tea.KeyCtrlD:
		m.apply(m.s.Remove(m.selected))
		return m, nil
	case tea.KeyEnter:
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, m.spin()
		}
		applied, st, err := m.s.Add(m.input.Value())
		m.apply(applied, st, err)
		if applied {
			m.input.Reset()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m *Model) apply(_ bool, st randwheel.State, err error) {
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.state = st
	m.clampSelection()
}

// spin 送出轉動並開始動畫；被拒絕時不做任何事。
func (m *Model) spin() tea.Cmd {
	t, err := m.s.Spin()
	if err != nil {
		m.err = err
		return nil
	}
	if !t.Accepted {
		return nil
	}
	m.state = t.State
	m.anim = animation{active: true, from: t.From, to: t.Rotation, start: m.now(), dur: t.ResolveAfter}
	if m.s.Binding() == spec.BindSnapshot {
		m.anim.count = len(t.State.Items)
	}
	m.display = t.From
	return tick()
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.state.Items) {
		m.selected = len(m.state.Items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// pointerCount 回傳指針位置要用的選項數：轉動中且結果綁定快照時用轉動開始時的數量。
func (m *Model) pointerCount() int {
	if m.anim.active && m.anim.count > 0 {
		return m.anim.count
	}
	return len(m.state.Items)
}

// easeOut 是三次方緩出，接近轉盤減速停下的感覺。
func easeOut(p float64) float64 {
	return 1 - math.Pow(1-p, 3)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	t := func(key string, args ...any) string { return m.bundle.T(m.locale, key, args...) }
	var b strings.Builder

	b.WriteString(titleStyle.Render(t("title")))
	b.WriteString("\n\n")

	n := len(m.state.Items)
	under := spin.Resolve(m.display, m.pointerCount())
	for i, label := range m.state.Items {
		marker := "  "
		if i == under {
			marker = pointerStyle.Render("▶ ")
		}
		line := fmt.Sprintf("%2d. %s", i+1, runewidth.Truncate(label, labelWidth, "…"))
		line = runewidth.FillRight(line, labelWidth+4)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	b.WriteString("\n" + t("itemCount", n) + "\n")

	switch {
	case m.state.Spinning:
		b.WriteString(resultStyle.Render(t("spinning")) + "\n")
	case m.state.Result != nil:
		b.WriteString(resultStyle.Render(t("result")+" "+*m.state.Result) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString("\n" + t("customList") + "\n")
	b.WriteString(m.input.View() + "\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("enter/ctrl+s " + t("startSpin") + " · ctrl+d " + t("remove") + " · ↑/↓ · esc"))
	b.WriteString("\n")
	return b.String()
}

// Run 以 Randwheel 建立一個 Session 並啟動終端介面，結束時關閉 Session。
func Run(ctx context.Context, rw *randwheel.Randwheel, locale string, labels []string, opts ...tea.ProgramOption) error {
	s, err := rw.NewSession(uuid.NewString(), locale, labels)
	if err != nil {
		return err
	}
	defer s.Close()
	m := New(s, rw.Bundle())
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err = tea.NewProgram(m, opts...).Run()
	return err
}
