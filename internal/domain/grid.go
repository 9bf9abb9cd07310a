/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned for section, row or column indices outside the grid.
	ErrOutOfRange = errors.New("cell address out of range")
	// ErrIconNotAllowed is returned when an icon is placed in a numeral section.
	ErrIconNotAllowed = errors.New("icons are not supported in numeral sections")
)

// Address identifies a cell.
type Address struct {
	Section SectionID
	Row     int
	Col     int
}

func (a Address) Valid() bool {
	return a.Section.Valid() && a.Row >= 0 && a.Row < Rows && a.Col >= 0 && a.Col < Cols
}

func (a Address) String() string { return fmt.Sprintf("%s[%d,%d]", a.Section, a.Row, a.Col) }

// Section is a fixed Rows×Cols matrix of cells.
type Section struct {
	ID    SectionID
	cells [Rows][Cols]Cell
}

// Cell returns the cell at row, col.
func (s *Section) Cell(row, col int) (*Cell, error) {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return nil, fmt.Errorf("%w: %s row %d col %d", ErrOutOfRange, s.ID, row, col)
	}
	return &s.cells[row][col], nil
}

// Grid is the whole decal sheet: four sections in reading order.
type Grid struct {
	sections [SectionCount]Section
}

// NewEmptyGrid returns a grid where every cell is empty.
func NewEmptyGrid() *Grid {
	g := &Grid{}
	for i := range g.sections {
		g.sections[i].ID = SectionID(i)
	}
	return g
}

// NewGrid returns a grid with both numeral sections pre-filled; icon sections
// start empty.
func NewGrid() *Grid {
	g := NewEmptyGrid()
	g.FillNumerals(GothicNumerals)
	g.FillNumerals(ImperialNumerals)
	return g
}

// FillNumerals writes the column numerals into every row of a numeral section
// using the section's default font and color.
func (g *Grid) FillNumerals(id SectionID) {
	if id.Kind() != NumeralSection {
		return
	}
	s := &g.sections[id]
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			label, _ := id.Label(c)
			s.cells[r][c].SetText(label, id.DefaultFont(), DefaultForeground)
		}
	}
}

// Section returns the section with the given id.
func (g *Grid) Section(id SectionID) (*Section, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("%w: section %d", ErrOutOfRange, int(id))
	}
	return &g.sections[id], nil
}

// Cell returns the cell at the given address.
func (g *Grid) Cell(id SectionID, row, col int) (*Cell, error) {
	s, err := g.Section(id)
	if err != nil {
		return nil, err
	}
	return s.Cell(row, col)
}

// SetText sets text content on one cell.
func (g *Grid) SetText(id SectionID, row, col int, text string, font FontSpec, color string) error {
	c, err := g.Cell(id, row, col)
	if err != nil {
		return err
	}
	c.SetText(text, font, color)
	return nil
}

// SetIcon sets icon content on one cell of an icon section.
func (g *Grid) SetIcon(id SectionID, row, col int, path, color string) error {
	c, err := g.Cell(id, row, col)
	if err != nil {
		return err
	}
	if id.Kind() == NumeralSection {
		return fmt.Errorf("%w: %s", ErrIconNotAllowed, id)
	}
	c.SetIcon(path, color)
	return nil
}

// Clear empties one cell.
func (g *Grid) Clear(id SectionID, row, col int) error {
	c, err := g.Cell(id, row, col)
	if err != nil {
		return err
	}
	c.Clear()
	return nil
}

// ApplyToRow calls fn for every column of one row, left to right.
func (g *Grid) ApplyToRow(id SectionID, row int, fn func(*Cell)) error {
	s, err := g.Section(id)
	if err != nil {
		return err
	}
	if row < 0 || row >= Rows {
		return fmt.Errorf("%w: %s row %d", ErrOutOfRange, id, row)
	}
	for c := 0; c < Cols; c++ {
		fn(&s.cells[row][c])
	}
	return nil
}

// ApplyToSection calls fn for every cell of a section, row by row.
func (g *Grid) ApplyToSection(id SectionID, fn func(*Cell)) error {
	for r := 0; r < Rows; r++ {
		if err := g.ApplyToRow(id, r, fn); err != nil {
			return err
		}
	}
	return nil
}

// Each visits every cell in reading order: sections, then rows, then columns.
func (g *Grid) Each(fn func(Address, *Cell)) {
	for i := range g.sections {
		s := &g.sections[i]
		for r := 0; r < Rows; r++ {
			for c := 0; c < Cols; c++ {
				fn(Address{Section: s.ID, Row: r, Col: c}, &s.cells[r][c])
			}
		}
	}
}

// Populated returns the number of non-empty cells.
func (g *Grid) Populated() int {
	n := 0
	g.Each(func(_ Address, c *Cell) {
		if !c.Empty() {
			n++
		}
	})
	return n
}

// Clone returns a deep copy. Content values are immutable, so copying the
// arrays is sufficient.
func (g *Grid) Clone() *Grid {
	cp := *g
	return &cp
}

// Equal reports whether both grids hold identical content in every cell.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	for i := range g.sections {
		if g.sections[i].cells != o.sections[i].cells {
			return false
		}
	}
	return true
}

// Recolor changes the color of one cell and keeps its content. Recoloring an
// empty cell is a no-op.
func (g *Grid) Recolor(id SectionID, row, col int, color string) error {
	c, err := g.Cell(id, row, col)
	if err != nil {
		return err
	}
	c.SetColor(color)
	return nil
}

// SetFont changes the font of a text cell. Icon and empty cells are left alone.
func (g *Grid) SetFont(id SectionID, row, col int, font FontSpec) error {
	c, err := g.Cell(id, row, col)
	if err != nil {
		return err
	}
	c.SetFont(font)
	return nil
}

// CopySection replaces the cells of section id with those of src.
func (g *Grid) CopySection(id SectionID, src *Grid) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %s", ErrOutOfRange, id)
	}
	g.sections[id].cells = src.sections[id].cells
	return nil
}
