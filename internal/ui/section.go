//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"decalsheet/internal/domain"
	"decalsheet/internal/icons"
)

// rowAll addresses the whole section in the editor's apply calls.
const rowAll = -1

// sectionView is the tab of one section: a 5×10 grid of cells with per-row
// pickers on the right and section-wide actions below.
type sectionView struct {
	ui    *editorUI
	id    domain.SectionID
	cells [domain.Rows][domain.Cols]*CellView
	// colors remembers the last color picked per row, used for new icons.
	colors [domain.Rows]string
	root   fyne.CanvasObject
}

func newSectionView(u *editorUI, id domain.SectionID) *sectionView {
	sv := &sectionView{ui: u, id: id}
	for i := range sv.colors {
		sv.colors[i] = domain.DefaultForeground
	}
	ctl := id.Controls()

	var rows []fyne.CanvasObject
	// Row 0 is printed at the bottom of the quadrant, so it is shown last.
	for r := domain.Rows - 1; r >= 0; r-- {
		row := r
		cells := make([]fyne.CanvasObject, 0, domain.Cols)
		for c := 0; c < domain.Cols; c++ {
			col := c
			cv := NewCellView()
			cv.OnTapped = func() { sv.editCell(row, col) }
			cv.OnTappedSecondary = func() { u.do(id, u.session.Clear(id, row, col)) }
			cv.OnHover = func() { sv.describe(row, col) }
			sv.cells[row][col] = cv
			cells = append(cells, cv)
		}
		var pickers []fyne.CanvasObject
		if ctl.Icon {
			pickers = append(pickers, widget.NewButton("Icon…", func() {
				u.pickIcon(fmt.Sprintf("%s row %d", id, row+1), func(e icons.Entry) {
					u.do(id, u.session.ApplyIcon(id, row, e.Path, sv.colors[row]))
				})
			}))
		}
		if ctl.Font {
			sel := widget.NewSelect(fontFamilies(u.fonts), func(family string) {
				u.do(id, u.session.ApplyFont(id, row, family))
			})
			sel.PlaceHolder = "Font"
			pickers = append(pickers, sel)
		}
		if ctl.Color {
			pickers = append(pickers, widget.NewButton("Color…", func() {
				u.pickColor(fmt.Sprintf("%s row %d", id, row+1), func(hex string) {
					sv.colors[row] = hex
					u.do(id, u.session.ApplyColor(id, row, hex))
				})
			}))
		}
		label := widget.NewLabel(fmt.Sprintf("%d", row+1))
		rows = append(rows, container.NewBorder(nil, nil, label, container.NewHBox(pickers...),
			container.NewGridWithColumns(domain.Cols, cells...)))
	}

	actions := []fyne.CanvasObject{}
	if ctl.Icon {
		actions = append(actions, widget.NewButton("Icon for section…", func() {
			u.pickIcon(id.String(), func(e icons.Entry) {
				u.do(id, u.session.ApplyIcon(id, rowAll, e.Path, domain.DefaultForeground))
			})
		}))
	}
	if ctl.Font {
		sel := widget.NewSelect(fontFamilies(u.fonts), func(family string) {
			u.do(id, u.session.ApplyFont(id, rowAll, family))
		})
		sel.PlaceHolder = "Font for section"
		actions = append(actions, sel)
	}
	if ctl.Color {
		actions = append(actions, widget.NewButton("Color for section…", func() {
			u.pickColor(id.String(), func(hex string) {
				for i := range sv.colors {
					sv.colors[i] = hex
				}
				u.do(id, u.session.ApplyColor(id, rowAll, hex))
			})
		}))
	}
	actions = append(actions,
		widget.NewButton("Clear section", func() {
			dialog.ShowConfirm("Clear section", fmt.Sprintf("Clear every cell of %s?", id), func(ok bool) {
				if ok {
					u.do(id, u.session.ClearSection(id))
				}
			}, u.win)
		}),
		widget.NewButton("Undo", func() { u.undo(id) }),
		widget.NewButton("Redo", func() { u.redo(id) }),
	)

	sv.root = container.NewBorder(nil, container.NewHBox(actions...), nil, nil, container.NewVBox(rows...))
	sv.refresh()
	return sv
}

// editCell opens the picker matching the section: icons for icon sections,
// a text form for numeral sections.
func (sv *sectionView) editCell(row, col int) {
	u := sv.ui
	if sv.id.Controls().Icon {
		u.pickIcon(fmt.Sprintf("%s [%d,%d]", sv.id, row, col), func(e icons.Entry) {
			u.do(sv.id, u.session.SetIcon(sv.id, row, col, e.Path, sv.colors[row]))
		})
		return
	}
	entry := widget.NewEntry()
	fill := ""
	if c, err := u.session.Grid().Cell(sv.id, row, col); err == nil {
		if tc, ok := c.Content().(domain.TextContent); ok {
			entry.SetText(tc.Text)
			fill = tc.Color
		}
	}
	dialog.ShowForm(fmt.Sprintf("%s [%d,%d]", sv.id, row, col), "Set", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			if entry.Text == "" {
				u.do(sv.id, u.session.Clear(sv.id, row, col))
				return
			}
			u.do(sv.id, u.session.SetText(sv.id, row, col, entry.Text, fill))
		}, u.win)
}

func (sv *sectionView) describe(row, col int) {
	c, err := sv.ui.session.Grid().Cell(sv.id, row, col)
	if err != nil {
		return
	}
	sv.ui.status.SetText(cellTooltip(domain.Address{Section: sv.id, Row: row, Col: col}, c.Content()))
}

// refresh redraws every cell from the session grid.
func (sv *sectionView) refresh() {
	g := sv.ui.session.Grid()
	for r := 0; r < domain.Rows; r++ {
		for c := 0; c < domain.Cols; c++ {
			cell, err := g.Cell(sv.id, r, c)
			if err != nil {
				continue
			}
			content := cell.Content()
			sv.cells[r][c].SetContent(content, sv.ui.iconImage(content))
		}
	}
}

// pickColor shows the advanced color picker and reports the choice as #RRGGBB.
func (u *editorUI) pickColor(title string, onPick func(string)) {
	d := dialog.NewColorPicker(title, "Decal color", func(c color.Color) {
		hex := hexColor(c)
		u.logger.Debug("color picked", slog.String("color", hex))
		onPick(hex)
	}, u.win)
	d.Advanced = true
	d.Show()
}
