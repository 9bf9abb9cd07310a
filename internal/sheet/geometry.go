/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package sheet maps grid addresses to rectangles on a printed page or on the
// preview canvas.
package sheet

import (
	"fmt"
	"sort"
	"strings"

	"decalsheet/internal/domain"
)

// MM is one millimetre in PDF points.
const MM = 72.0 / 25.4

// Page sizes in points.
const (
	A4Width  = 210 * MM
	A4Height = 297 * MM
	A5Width  = 148 * MM
	A5Height = 210 * MM
)

// Default spacing in points.
const (
	DefaultMargin = 5 * MM
	DefaultZigZag = 10 * MM
)

// Origin is the corner a geometry measures y from.
type Origin int

const (
	// TopLeft has y growing downward (screen, gofpdf).
	TopLeft Origin = iota
	// BottomLeft has y growing upward (PDF user space).
	BottomLeft
)

// Geometry describes one output surface.
type Geometry struct {
	Name   string
	Width  float64
	Height float64
	// Block is the area holding the four quadrants, in top-left coordinates.
	Block  domain.Rect
	Copies int
	// Step is the vertical distance between copies of Block.
	Step   float64
	Origin Origin
	ZigZag float64
	// Scale is output units per point; 1 for pages, px/pt for previews.
	Scale float64
}

func block(w, h, margin float64) domain.Rect {
	return domain.Rect{X: margin, Y: margin, Width: w - 2*margin, Height: h - 2*margin}
}

// A5Landscape is a single block filling a landscape A5 page.
func A5Landscape() Geometry {
	return Geometry{
		Name: "a5", Width: A5Height, Height: A5Width,
		Block: block(A5Height, A5Width, DefaultMargin), Copies: 1,
		Origin: BottomLeft, ZigZag: DefaultZigZag, Scale: 1,
	}
}

// A4Half is a single block in the top half of a portrait A4 page.
func A4Half() Geometry {
	return Geometry{
		Name: "a4-half", Width: A4Width, Height: A4Height,
		Block: block(A4Width, A4Height/2, DefaultMargin), Copies: 1,
		Origin: BottomLeft, ZigZag: DefaultZigZag, Scale: 1,
	}
}

// A4Full is A4Half with the block repeated on the bottom half.
func A4Full() Geometry {
	g := A4Half()
	g.Name = "a4-full"
	g.Copies = 2
	g.Step = A4Height / 2
	return g
}

// Preview is a w×h pixel canvas with top-left origin. Spacing scales with
// the canvas relative to a landscape A5 page.
func Preview(w, h int) Geometry {
	s := float64(w) / A5Height
	return Geometry{
		Name: "preview", Width: float64(w), Height: float64(h),
		Block: block(float64(w), float64(h), DefaultMargin*s), Copies: 1,
		Origin: TopLeft, ZigZag: DefaultZigZag * s, Scale: s,
	}
}

var pages = map[string]func() Geometry{
	"a5":      A5Landscape,
	"a4-half": A4Half,
	"a4-full": A4Full,
}

// Page returns a named page geometry: a5, a4-half or a4-full.
func Page(name string) (Geometry, error) {
	f, ok := pages[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Geometry{}, fmt.Errorf("unknown page %q (want one of %s)", name, strings.Join(PageNames(), ", "))
	}
	return f(), nil
}

// PageNames lists the names accepted by Page.
func PageNames() []string {
	out := make([]string, 0, len(pages))
	for n := range pages {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// WithZigZag returns g with a different zig-zag distance given in millimetres,
// converted to the geometry's units.
func (g Geometry) WithZigZag(mm float64) Geometry {
	g.ZigZag = mm * MM * g.scale()
	return g
}

func (g Geometry) scale() float64 {
	if g.Scale <= 0 {
		return 1
	}
	return g.Scale
}

// Quadrant returns the area of section id in top-left coordinates: sections
// fill the block left to right, top to bottom.
func (g Geometry) Quadrant(id domain.SectionID) domain.Rect {
	qw, qh := g.Block.Width/2, g.Block.Height/2
	i := int(id)
	return domain.Rect{X: g.Block.X + float64(i%2)*qw, Y: g.Block.Y + float64(i/2)*qh, Width: qw, Height: qh}
}

// CellSize returns the width and height of one cell of section id.
func (g Geometry) CellSize(id domain.SectionID) (float64, float64) {
	q := g.Quadrant(id)
	w := q.Width
	if id.Kind() == domain.IconSection {
		w -= g.ZigZag
	}
	return w / domain.Cols, q.Height / domain.Rows
}

// MapCell returns the rectangle of a cell in the geometry's own coordinates
// for the first copy of the block. Row 0 is the lowest band of its quadrant.
// Odd rows of icon sections are shifted left by ZigZag.
func MapCell(g Geometry, id domain.SectionID, row, col int) (domain.Rect, error) {
	r, err := mapTopLeft(g, id, row, col)
	if err != nil {
		return domain.Rect{}, err
	}
	if g.Origin == BottomLeft {
		r.Y = g.Height - (r.Y + r.Height)
	}
	return r, nil
}

// MapCellTopLeft is MapCell in top-left coordinates regardless of Origin.
func MapCellTopLeft(g Geometry, id domain.SectionID, row, col int) (domain.Rect, error) {
	return mapTopLeft(g, id, row, col)
}

func mapTopLeft(g Geometry, id domain.SectionID, row, col int) (domain.Rect, error) {
	a := domain.Address{Section: id, Row: row, Col: col}
	if !a.Valid() {
		return domain.Rect{}, fmt.Errorf("%w: %s", domain.ErrOutOfRange, a)
	}
	q := g.Quadrant(id)
	cw, ch := g.CellSize(id)
	x := q.X + float64(col)*cw
	if id.Kind() == domain.IconSection && row%2 == 0 {
		x += g.ZigZag
	}
	y := q.Y + float64(domain.Rows-1-row)*ch
	return domain.Rect{X: x, Y: y, Width: cw, Height: ch}, nil
}

// Offsets returns the vertical translation of every copy of the block in the
// geometry's own coordinates. The first copy is always 0.
func (g Geometry) Offsets() []float64 {
	n := g.Copies
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for k := range out {
		dy := float64(k) * g.Step
		if g.Origin == BottomLeft {
			dy = -dy
		}
		out[k] = dy
	}
	return out
}

// TopLeftOffsets is Offsets in top-left coordinates.
func (g Geometry) TopLeftOffsets() []float64 {
	out := g.Offsets()
	if g.Origin == BottomLeft {
		for i := range out {
			out[i] = -out[i]
		}
	}
	return out
}

// Raster returns g scaled to pixels at dpi with a top-left origin, for
// rendering a printable page as an image.
func (g Geometry) Raster(dpi float64) Geometry {
	k := dpi / 72
	r := g
	r.Width *= k
	r.Height *= k
	r.Block = domain.Rect{X: g.Block.X * k, Y: g.Block.Y * k, Width: g.Block.Width * k, Height: g.Block.Height * k}
	r.Step *= k
	r.ZigZag *= k
	r.Scale = g.scale() * k
	r.Origin = TopLeft
	return r
}
