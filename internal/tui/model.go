// Copyright 2025 The Brainprogress Authors
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

// Package tui implements the live terminal preview of an indicator.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"k8s.io/utils/clock"
	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cycle"
	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/progress"
	"github.com/syllabyte/brainprogress/internal/ui"
)

const (
	// DefaultStep is the percent change of one increase or decrease.
	DefaultStep = 5.0

	// DefaultInterval is the frame interval of the preview.
	DefaultInterval = 16 * time.Millisecond
)

// DemoCycle is the fast fill and drain preset: 100 units per second with a
// one second pause at the peak.
func DemoCycle() cycle.Config {
	cfg := cycle.DefaultConfig()
	cfg.Rate = 100
	cfg.Speed = 1
	cfg.PauseAtPeak = ptr.To(time.Second)
	return cfg
}

// DemoAnimationSpeed is the transition speed of the demo preset.
const DemoAnimationSpeed = 0.3

// DemoProps returns the props of the labelled autoplay demo.
func DemoProps() indicator.Props {
	return indicator.Props{
		Autoplay:       true,
		ShowLabel:      true,
		AnimationSpeed: DemoAnimationSpeed,
		Cycle:          DemoCycle(),
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ui.ColorBrightCyan))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorRed))
)

// Model is the bubbletea model of the preview. It owns the indicator: every
// mutation happens inside Update.
type Model struct {
	ind      *indicator.Indicator
	keys     KeyMap
	help     help.Model
	title    string
	interval time.Duration
	step     float64
	width    int
	err      error
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the heading.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithInterval sets the frame interval of manual indicators.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithStep sets the percent change of one key press.
func WithStep(step float64) Option {
	return func(m *Model) {
		if step > 0 {
			m.step = step
		}
	}
}

// New creates a preview of ind.
func New(ind *indicator.Indicator, opts ...Option) Model {
	m := Model{
		ind:      ind,
		keys:     DefaultKeyMap().manual(ind.Mode() == indicator.Manual),
		help:     help.New(),
		title:    "brainprogress",
		interval: DefaultInterval,
		step:     DefaultStep,
		width:    ui.BarWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model. Manual indicators tick themselves; autoplay
// indicators are fed by a runner.
func (m Model) Init() tea.Cmd {
	if m.ind.Mode() == indicator.Manual {
		return TickCmd(m.interval)
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(10, min(msg.Width-10, ui.TableMaxWidth))
		m.help.Width = msg.Width
		return m, nil
	case TickMsg:
		m.ind.Tick()
		return m, TickCmd(m.interval)
	case SnapshotMsg:
		m.ind.Observe(msg.Snapshot)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.ind.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		if m.ind.Props().Paused {
			m.ind.Resume()
		} else {
			m.ind.Pause()
		}
	case key.Matches(msg, m.keys.Reverse):
		m.ind.SetReverse(!m.ind.Props().Reverse)
	case key.Matches(msg, m.keys.Increase):
		m.err = m.setPercent(m.target() + m.step)
	case key.Matches(msg, m.keys.Decrease):
		m.err = m.setPercent(m.target() - m.step)
	case key.Matches(msg, m.keys.Empty):
		m.err = m.setPercent(0)
	case key.Matches(msg, m.keys.Fill):
		m.err = m.setPercent(100)
	}
	return m, nil
}

func (m Model) target() float64 {
	return progress.Normalize(m.ind.Props().Input())
}

func (m Model) setPercent(p float64) error {
	return m.ind.SetProgress(progress.Input{Percent: ptr.To(progress.Clamp(p))})
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.ind.State()
	colors := m.ind.Props().Colors

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString(" ")
	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray)).Render(st.Mode.String()))
	sb.WriteString("\n\n")
	sb.WriteString(ui.PathStrip(st.Paths, colors.Primary, colors.Secondary))
	sb.WriteString("\n")
	sb.WriteString(ui.Bar(st.Progress, m.width, lipgloss.NewStyle().Foreground(lipgloss.Color(colors.Primary))))
	sb.WriteString("\n")
	sb.WriteString(ui.StatusLine(st))
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString(errStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	sb.WriteString("\n")
	return sb.String()
}

// Indicator returns the previewed indicator.
func (m Model) Indicator() *indicator.Indicator { return m.ind }

// Run shows the preview until the user quits or ctx is done. Autoplay
// indicators are driven by a cycle runner on clk.
func Run(ctx context.Context, ind *indicator.Indicator, clk clock.WithTicker, logger *logging.ObservableLogger, opts ...Option) error {
	m := New(ind, opts...)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	if ind.Mode() == indicator.Autoplay {
		runner := cycle.NewRunner(ind.Driver(), clk, m.interval, SnapshotSender(p.Send), cycle.WithLogger(logger))
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start cycle runner: %w", err)
		}
		defer runner.Stop()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		}
		return fmt.Errorf("preview failed: %w", err)
	}
	return nil
}
