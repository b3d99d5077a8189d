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

// Package render turns path visuals into SVG documents.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"sync"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"

	"github.com/syllabyte/brainprogress/internal/engine"
	"github.com/syllabyte/brainprogress/internal/geometry"
)

const (
	templateName = "brain.svg.gotmpl"

	// DefaultStrokeWidth is the stroke of every brain path in viewBox units.
	DefaultStrokeWidth = 12
)

//go:embed templates
var TemplateFS embed.FS

var (
	svgTemplate     *template.Template
	svgTemplateErr  error
	svgTemplateOnce sync.Once
)

func loadTemplate() (*template.Template, error) {
	svgTemplateOnce.Do(func() {
		data, err := TemplateFS.ReadFile("templates/" + templateName)
		if err != nil {
			svgTemplateErr = fmt.Errorf("failed to read embedded template %s: %w", templateName, err)
			return
		}
		svgTemplate, svgTemplateErr = template.New(templateName).Funcs(sprig.TxtFuncMap()).Parse(string(data))
		if svgTemplateErr != nil {
			svgTemplateErr = fmt.Errorf("failed to parse template %s: %w", templateName, svgTemplateErr)
		}
	})
	return svgTemplate, svgTemplateErr
}

// Frame carries the indicator-level values of one rendered document.
type Frame struct {
	Percent   int               `json:"percent"`
	Step      int               `json:"step"`
	Paused    bool              `json:"paused"`
	Reverse   bool              `json:"reverse"`
	ShowLabel bool              `json:"showLabel"`
	AutoScale bool              `json:"autoScale"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Colors    geometry.Gradient `json:"colors"`
}

// PathData is the template view of one path.
type PathData struct {
	ID          geometry.PathID
	D           string
	Length      float64
	Offset      float64
	Opacity     float64
	FillOpacity float64
}

type document struct {
	Frame
	ViewBox     string
	StrokeWidth int
	Paths       []PathData
}

// Surface holds the current visual of every path of a geometry provider.
// Its handles are what the engine writes to.
type Surface struct {
	provider *geometry.Provider
	visuals  map[geometry.PathID]engine.Visual
}

// NewSurface creates a surface with every path hidden.
func NewSurface(provider *geometry.Provider) *Surface {
	s := &Surface{
		provider: provider,
		visuals:  make(map[geometry.PathID]engine.Visual, len(provider.IDs())),
	}
	for _, id := range provider.IDs() {
		s.visuals[id] = engine.Hidden
	}
	return s
}

// Provider returns the geometry the surface draws.
func (s *Surface) Provider() *geometry.Provider { return s.provider }

// Handles returns one engine handle per path.
func (s *Surface) Handles() map[geometry.PathID]engine.Handle {
	out := make(map[geometry.PathID]engine.Handle, len(s.visuals))
	for _, id := range s.provider.IDs() {
		out[id] = engine.HandleFunc(func(v engine.Visual) { s.visuals[id] = v })
	}
	return out
}

// Set overwrites the visual of id. Unknown ids are ignored.
func (s *Surface) Set(id geometry.PathID, v engine.Visual) {
	if _, ok := s.visuals[id]; ok {
		s.visuals[id] = v
	}
}

// Visual returns the current visual of id.
func (s *Surface) Visual(id geometry.PathID) (engine.Visual, bool) {
	v, ok := s.visuals[id]
	return v, ok
}

// Paths returns the template view of every path in declaration order.
func (s *Surface) Paths() []PathData {
	paths := s.provider.Paths()
	out := make([]PathData, 0, len(paths))
	for _, p := range paths {
		v := s.visuals[p.ID]
		out = append(out, PathData{
			ID:          p.ID,
			D:           p.D,
			Length:      p.Length,
			Offset:      v.DashOffset * p.Length,
			Opacity:     v.Opacity,
			FillOpacity: v.FillOpacity,
		})
	}
	return out
}

// Render writes the SVG document of f and the current visuals to w.
func (s *Surface) Render(w io.Writer, f Frame) error {
	tpl, err := loadTemplate()
	if err != nil {
		return err
	}
	if f.Colors.Primary == "" && f.Colors.Secondary == "" {
		f.Colors = s.provider.Gradient()
	}

	doc := document{
		Frame:       f,
		ViewBox:     s.provider.ViewBox(),
		StrokeWidth: DefaultStrokeWidth,
		Paths:       s.Paths(),
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, doc); err != nil {
		return fmt.Errorf("failed to render template %s: %w", templateName, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}

// Bytes renders f into memory.
func (s *Surface) Bytes(f Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Render(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
