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

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/progress"
	"github.com/syllabyte/brainprogress/internal/runtime"
	"github.com/syllabyte/brainprogress/internal/store"
	"github.com/syllabyte/brainprogress/internal/ui"
)

// EntryViewModel is the curated output of a saved progress entry for json
// matching what is displayed in table mode.
type EntryViewModel struct {
	ID        string  `json:"id"`
	Key       string  `json:"key"`
	Percent   float64 `json:"percent"`
	Step      string  `json:"step"`
	UpdatedAt string  `json:"updatedAt"`
	Age       string  `json:"age"`
}

// EntryToViewModel converts a store entry to a view model. Ages are relative to now.
func EntryToViewModel(e store.Entry, now time.Time) EntryViewModel {
	vm := EntryViewModel{
		ID:      e.ID,
		Key:     store.Key(e.ID),
		Percent: e.Percent,
		Step:    progress.MapToStep(e.Percent).String(),
	}
	if !e.UpdatedAt.IsZero() {
		vm.UpdatedAt = e.UpdatedAt.Format(time.RFC3339)
		vm.Age = humanize.RelTime(e.UpdatedAt, now, "ago", "from now")
	}
	return vm
}

// PathViewModel describes one path of the artwork.
type PathViewModel struct {
	ID         geometry.PathID `json:"id"`
	Length     float64         `json:"length"`
	RevealStep string          `json:"revealStep"`
	Traversal  int             `json:"traversal"`
	D          string          `json:"d,omitempty"`
}

// PathsToViewModels lists the paths of provider in document order with the
// first step of table that reveals them. Paths never revealed report "-".
func PathsToViewModels(provider *geometry.Provider, table progress.Table, withData bool) []PathViewModel {
	order := make(map[geometry.PathID]int)
	for i, id := range provider.Traversal() {
		order[id] = i + 1
	}

	paths := provider.Paths()
	out := make([]PathViewModel, 0, len(paths))
	for _, p := range paths {
		vm := PathViewModel{ID: p.ID, Length: p.Length, RevealStep: "-", Traversal: order[p.ID]}
		for _, step := range progress.Steps {
			if table.PathsFor(step).Contains(p.ID) {
				vm.RevealStep = step.String()
				break
			}
		}
		if withData {
			vm.D = p.D
		}
		out = append(out, vm)
	}
	return out
}

// GetEntryColumns returns the column configuration of saved progress tables
func GetEntryColumns(detailed bool) []ui.Column {
	return []ui.Column{
		{
			Title:    "ID",
			Key:      "id",
			MinWidth: 8,
			MaxWidth: 32,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightWhite))
			},
			Condition: true,
		},
		{
			Title: "PERCENT",
			Key:   "percent",
			Width: 8,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightCyan))
			},
			Condition: true,
		},
		{
			Title:     "STEP",
			Key:       "step",
			Width:     5,
			StyleFunc: ui.GetStepStyle,
			Condition: true,
		},
		{
			Title:    "KEY",
			Key:      "key",
			MinWidth: 10,
			MaxWidth: 48,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray))
			},
			Condition: detailed,
		},
		{
			Title:    "UPDATED",
			Key:      "age",
			MinWidth: 8,
			MaxWidth: 20,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray))
			},
			Condition: true,
		},
	}
}

// EntryRow converts a view model to a table row
func EntryRow(vm EntryViewModel) ui.Row {
	return ui.Row{
		"id":      vm.ID,
		"percent": fmt.Sprintf("%.1f", vm.Percent),
		"step":    vm.Step,
		"key":     vm.Key,
		"age":     vm.Age,
	}
}

// GetPathColumns returns the column configuration of geometry tables
func GetPathColumns() []ui.Column {
	return []ui.Column{
		{
			Title:     "PATH",
			Key:       "id",
			MinWidth:  8,
			Condition: true,
		},
		{
			Title: "LENGTH",
			Key:   "length",
			Width: 8,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorBrightCyan))
			},
			Condition: true,
		},
		{
			Title:     "REVEAL",
			Key:       "reveal",
			Width:     6,
			StyleFunc: ui.GetStepStyle,
			Condition: true,
		},
		{
			Title: "ORDER",
			Key:   "order",
			Width: 5,
			StyleFunc: func(value string) lipgloss.Style {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(ui.ColorGray))
			},
			Condition: true,
		},
	}
}

// PathRow converts a view model to a table row
func PathRow(vm PathViewModel) ui.Row {
	order := ""
	if vm.Traversal > 0 {
		order = fmt.Sprint(vm.Traversal)
	}
	return ui.Row{
		"id":     string(vm.ID),
		"length": fmt.Sprintf("%.1f", vm.Length),
		"reveal": vm.RevealStep,
		"order":  order,
	}
}

// Colorize applies syntax highlighting for the named chroma lexer when
// stdout is a terminal.
func Colorize(data []byte, language string) (string, error) {
	if !ui.IsTerminal() {
		return string(data), nil
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	// Use a terminal-friendly style
	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return "", fmt.Errorf("failed to tokenize %s: %w", language, err)
	}

	var result strings.Builder
	if err := formatter.Format(&result, style, iterator); err != nil {
		return "", fmt.Errorf("failed to format %s: %w", language, err)
	}

	return result.String(), nil
}

// ColorizeJSONWithChroma applies syntax highlighting to JSON using chroma
func ColorizeJSONWithChroma(data []byte) (string, error) {
	return Colorize(data, "json")
}

// PrintHighlighted writes data to w, highlighted when possible.
func PrintHighlighted(w io.Writer, data []byte, language string) {
	colorized, err := Colorize(data, language)
	if err != nil {
		// Fallback to plain output if colorization fails
		colorized = string(data)
	}
	fmt.Fprint(w, colorized)
	if !strings.HasSuffix(colorized, "\n") {
		fmt.Fprintln(w)
	}
}

// WriteOutput writes data to path, creating parent directories, or to w
// when path is empty or "-".
func WriteOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// GetRuntime returns the runtime from the command context.
// This is a common utility function used across multiple commands.
func GetRuntime(ctx context.Context) (*runtime.Runtime, error) {
	rt := runtime.FromRuntime(ctx)
	if rt == nil {
		return nil, fmt.Errorf("runtime not initialized")
	}
	return rt, nil
}

// GetStore opens the progress store of the runtime in ctx.
func GetStore(ctx context.Context) (store.Store, error) {
	rt, err := GetRuntime(ctx)
	if err != nil {
		return nil, err
	}
	s, err := rt.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize progress store: %w", err)
	}
	return s, nil
}
