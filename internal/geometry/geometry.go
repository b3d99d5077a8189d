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

// Package geometry provides the brain artwork: named paths, their arc lengths,
// the default reveal table and the autoplay traversal order.
package geometry

import (
	"fmt"
	"slices"
	"sync"
)

// PathID identifies a single drawable path of the artwork.
type PathID string

// Definition is the raw description of a path before its length is measured.
type Definition struct {
	ID PathID
	D  string
}

// Path is a drawable path with its measured arc length in viewBox units.
type Path struct {
	ID     PathID  `json:"id"`
	D      string  `json:"d"`
	Length float64 `json:"length"`
}

// RevealTable lists, per step threshold, the paths visible at that threshold.
// Keys are the thresholds 0, 25, 50, 75 and 100.
type RevealTable map[int][]PathID

// Gradient holds the two stops of the stroke gradient.
type Gradient struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Provider serves path geometry to the engine and the render surface.
type Provider struct {
	paths     []Path
	index     map[PathID]int
	reveal    RevealTable
	traversal []PathID
	gradient  Gradient
}

// NewProvider measures every definition and builds a provider. Ids must be unique.
func NewProvider(defs []Definition, reveal RevealTable, traversal []PathID, gradient Gradient) (*Provider, error) {
	p := &Provider{
		paths:     make([]Path, 0, len(defs)),
		index:     make(map[PathID]int, len(defs)),
		reveal:    make(RevealTable, len(reveal)),
		traversal: slices.Clone(traversal),
		gradient:  gradient,
	}

	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("path definition is missing an id")
		}
		if _, exists := p.index[def.ID]; exists {
			return nil, fmt.Errorf("duplicate path id %q", def.ID)
		}
		length, err := PathLength(def.D)
		if err != nil {
			return nil, fmt.Errorf("failed to measure path %q: %w", def.ID, err)
		}
		p.index[def.ID] = len(p.paths)
		p.paths = append(p.paths, Path{ID: def.ID, D: def.D, Length: length})
	}

	for threshold, ids := range reveal {
		p.reveal[threshold] = slices.Clone(ids)
	}

	if len(p.traversal) == 0 {
		p.traversal = p.IDs()
	}

	return p, nil
}

var (
	defaultProvider *Provider
	defaultOnce     sync.Once
)

// Default returns the provider for the built-in brain artwork.
func Default() *Provider {
	defaultOnce.Do(func() {
		p, err := NewProvider(brainPaths, defaultReveal, defaultTraversal, Gradient{
			Primary:   DefaultPrimaryColor,
			Secondary: DefaultSecondaryColor,
		})
		if err != nil {
			panic(fmt.Sprintf("geometry: built-in artwork is invalid: %v", err))
		}
		defaultProvider = p
	})
	return defaultProvider
}

// Paths returns every path in declaration order.
func (p *Provider) Paths() []Path {
	return slices.Clone(p.paths)
}

// IDs returns every path id in declaration order.
func (p *Provider) IDs() []PathID {
	ids := make([]PathID, len(p.paths))
	for i, path := range p.paths {
		ids[i] = path.ID
	}
	return ids
}

// Lookup returns the path with the given id.
func (p *Provider) Lookup(id PathID) (Path, bool) {
	i, ok := p.index[id]
	if !ok {
		return Path{}, false
	}
	return p.paths[i], true
}

// RevealTable returns a copy of the step reveal table.
func (p *Provider) RevealTable() RevealTable {
	out := make(RevealTable, len(p.reveal))
	for k, v := range p.reveal {
		out[k] = slices.Clone(v)
	}
	return out
}

// Traversal returns the order in which autoplay reveals paths.
func (p *Provider) Traversal() []PathID {
	return slices.Clone(p.traversal)
}

// Gradient returns the gradient stops.
func (p *Provider) Gradient() Gradient { return p.gradient }

// ViewBox returns the SVG viewBox of the artwork.
func (p *Provider) ViewBox() string { return ViewBox }
