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
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"decalsheet/internal/domain"
)

const cellSize = 44

var (
	cellBackground = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	cellBorder     = color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
)

// CellView draws one grid cell: a tinted icon or colored text on a dark tile.
type CellView struct {
	widget.BaseWidget

	content domain.Content
	img     image.Image

	OnTapped          func()
	OnTappedSecondary func()
	OnHover           func()
}

func NewCellView() *CellView {
	c := &CellView{}
	c.ExtendBaseWidget(c)
	return c
}

// SetContent updates the cell. img is the rendered icon, or nil to draw the caption.
func (c *CellView) SetContent(content domain.Content, img image.Image) {
	c.content = content
	c.img = img
	c.Refresh()
}

func (c *CellView) Tapped(*fyne.PointEvent) {
	if c.OnTapped != nil {
		c.OnTapped()
	}
}

func (c *CellView) TappedSecondary(*fyne.PointEvent) {
	if c.OnTappedSecondary != nil {
		c.OnTappedSecondary()
	}
}

// MouseIn, MouseMoved and MouseOut make the cell desktop.Hoverable.
func (c *CellView) MouseIn(*desktop.MouseEvent) {
	if c.OnHover != nil {
		c.OnHover()
	}
}

func (c *CellView) MouseMoved(*desktop.MouseEvent) {}
func (c *CellView) MouseOut()                      {}

func (c *CellView) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(cellBackground)
	bg.StrokeColor = cellBorder
	bg.StrokeWidth = 1
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	txt := canvas.NewText("", color.White)
	txt.Alignment = fyne.TextAlignCenter
	r := &cellRenderer{cell: c, bg: bg, img: img, text: txt}
	r.objects = []fyne.CanvasObject{bg, img, txt}
	r.Refresh()
	return r
}

type cellRenderer struct {
	cell    *CellView
	bg      *canvas.Rectangle
	img     *canvas.Image
	text    *canvas.Text
	objects []fyne.CanvasObject
}

func (r *cellRenderer) Destroy()                     {}
func (r *cellRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *cellRenderer) MinSize() fyne.Size           { return fyne.NewSize(cellSize, cellSize) }

func (r *cellRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	side := size.Width
	if size.Height < side {
		side = size.Height
	}
	side -= 6
	r.img.Resize(fyne.NewSize(side, side))
	r.img.Move(fyne.NewPos((size.Width-side)/2, (size.Height-side)/2))
	th := r.text.MinSize().Height
	r.text.Resize(fyne.NewSize(size.Width, th))
	r.text.Move(fyne.NewPos(0, (size.Height-th)/2))
}

func (r *cellRenderer) Refresh() {
	c := r.cell
	r.img.Image = c.img
	r.img.Hidden = c.img == nil
	r.text.Hidden = c.img != nil
	r.text.Text = caption(c.content)
	r.text.TextStyle = fyne.TextStyle{}
	switch v := c.content.(type) {
	case domain.TextContent:
		r.text.Color = displayColor(v.Color)
		r.text.TextStyle.Bold = v.Font.Bold()
		r.text.TextSize = 14
	case domain.IconContent:
		// Missing or broken icon file: show its name.
		r.text.Color = displayColor(v.Color)
		r.text.TextSize = 9
	}
	r.Layout(c.Size())
	canvas.Refresh(c)
}
