/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export turns a grid into positioned, colored drawing items and
// writes them as PDF pages, PNG previews or SVG sheets.
package export

import (
	"errors"
	"fmt"
	"log/slog"

	"decalsheet/internal/domain"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/sheet"
)

// DefaultFontSize is the text size in points used when a cell has none.
const DefaultFontSize = 10.0

// ItemKind tells text items from icon items.
type ItemKind int

const (
	TextItem ItemKind = iota
	IconItem
)

func (k ItemKind) String() string {
	if k == IconItem {
		return "icon"
	}
	return "text"
}

// Item is one drawable cell of one block copy. Rect is in top-left
// coordinates of the output surface.
type Item struct {
	Address domain.Address
	Copy    int
	Kind    ItemKind
	Rect    domain.Rect
	// Color is the resolved fill as upper-case #RRGGBB.
	Color string

	Text     string
	Font     domain.FontSpec
	FontSize float64 // output units

	Icon string
}

// Problem records a cell that could not be drawn.
type Problem struct {
	Address domain.Address
	Err     error
}

// Report summarises what an export drew and what it skipped.
type Report struct {
	Drawn    int
	Skipped  int
	Problems []Problem
}

func (r *Report) skip(a domain.Address, err error) {
	r.Skipped++
	r.Problems = append(r.Problems, Problem{Address: a, Err: err})
}

// Err joins every problem into one error, or returns nil.
func (r Report) Err() error {
	errs := make([]error, 0, len(r.Problems))
	for _, p := range r.Problems {
		errs = append(errs, fmt.Errorf("%s: %w", p.Address, p.Err))
	}
	return errors.Join(errs...)
}

// PlanOptions controls BuildPlan.
type PlanOptions struct {
	// ClampWhites replaces near-white colors with Threshold so they still
	// print on white paper.
	ClampWhites bool
	Threshold   string
	// FontSize in points overrides every cell's font size when > 0.
	FontSize float64
	// Sections restricts the plan to these sections; empty means all.
	Sections []domain.SectionID
}

// Plan is the fully resolved drawing list for one geometry.
type Plan struct {
	Geometry sheet.Geometry
	Items    []Item
	Report   Report
}

// BuildPlan maps every populated cell of g onto geom, once per block copy.
// Cells whose color cannot be parsed are skipped and recorded in the report.
func BuildPlan(g *domain.Grid, geom sheet.Geometry, opt PlanOptions) (Plan, error) {
	if g == nil {
		return Plan{}, errors.New("build plan: nil grid")
	}
	var threshold domain.Color
	if opt.ClampWhites {
		t := opt.Threshold
		if t == "" {
			t = domain.DefaultClampThreshold
		}
		var err error
		if threshold, err = domain.ParseColor(t); err != nil {
			return Plan{}, fmt.Errorf("clamp threshold: %w", err)
		}
	}
	include := map[domain.SectionID]bool{}
	for _, s := range opt.Sections {
		include[s] = true
	}
	scale := geom.Scale
	if scale <= 0 {
		scale = 1
	}
	logger := dlog.WithOperation(dlog.WithComponent("export"), "plan")

	plan := Plan{Geometry: geom}
	offsets := geom.TopLeftOffsets()
	g.Each(func(a domain.Address, c *domain.Cell) {
		if c.Empty() || (len(include) > 0 && !include[a.Section]) {
			return
		}
		rect, err := sheet.MapCellTopLeft(geom, a.Section, a.Row, a.Col)
		if err != nil {
			plan.Report.skip(a, err)
			return
		}
		col, err := domain.ParseColor(c.Content().Fill())
		if err != nil {
			logger.Warn("skip cell with bad color", slog.String("cell", a.String()), slog.Any("err", err))
			plan.Report.skip(a, err)
			return
		}
		if opt.ClampWhites {
			col = domain.ClampWhite(col, threshold)
		}
		base := Item{Address: a, Color: col.Hex()}
		switch v := c.Content().(type) {
		case domain.TextContent:
			base.Kind = TextItem
			base.Text = v.Text
			base.Font = v.Font
			size := opt.FontSize
			if size <= 0 {
				size = v.Font.Size
			}
			if size <= 0 {
				size = DefaultFontSize
			}
			base.FontSize = size * scale
		case domain.IconContent:
			base.Kind = IconItem
			base.Icon = v.Path
		}
		for k, dy := range offsets {
			it := base
			it.Copy = k
			it.Rect = rect.Translate(0, dy)
			plan.Items = append(plan.Items, it)
		}
	})
	return plan, nil
}

// Copy returns the items of block copy k in plan order.
func (p Plan) Copy(k int) []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Copy == k {
			out = append(out, it)
		}
	}
	return out
}
