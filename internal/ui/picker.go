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
	"context"
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"decalsheet/internal/domain"
	"decalsheet/internal/icons"
)

const (
	thumbSize = 64
	allTags   = "All"
)

// pickIcon shows the icon library filtered by tag and name. Thumbnails are
// rendered in batches off the UI goroutine; closing the dialog cancels them.
func (u *editorUI) pickIcon(title string, onPick func(icons.Entry)) {
	if len(u.library) == 0 {
		dialog.ShowInformation("Icons", "No icons found in "+u.cfg.General.IconDir, u.win)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	thumbs := map[string]image.Image{}
	var shown []icons.Entry
	var d *dialog.CustomDialog

	grid := widget.NewGridWrap(
		func() int { return len(shown) },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromImage(nil)
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(thumbSize, thumbSize))
			lbl := widget.NewLabel("")
			lbl.Truncation = fyne.TextTruncateEllipsis
			// Icons default to a light tint; keep them on a dark tile.
			return container.NewBorder(nil, lbl, nil, nil, container.NewStack(canvas.NewRectangle(cellBackground), img))
		},
		func(id widget.GridWrapItemID, o fyne.CanvasObject) {
			if id < 0 || id >= len(shown) {
				return
			}
			e := shown[id]
			box := o.(*fyne.Container)
			img := box.Objects[0].(*fyne.Container).Objects[1].(*canvas.Image)
			lbl := box.Objects[1].(*widget.Label)
			img.Image = thumbs[e.Path]
			img.Refresh()
			lbl.SetText(e.Name)
		},
	)
	grid.OnSelected = func(id widget.GridWrapItemID) {
		if id < 0 || id >= len(shown) {
			return
		}
		e := shown[id]
		cancel()
		if d != nil {
			d.Hide()
		}
		onPick(e)
	}

	render := func(entries []icons.Entry) {
		todo := make([]icons.Entry, 0, len(entries))
		for _, e := range entries {
			if _, ok := thumbs[e.Path]; !ok {
				todo = append(todo, e)
			}
		}
		go func() {
			err := icons.RenderThumbnails(ctx, u.cache, todo, thumbSize, func(batch []icons.ThumbResult) {
				fyne.Do(func() {
					for _, r := range batch {
						if r.Err != nil {
							u.logger.Warn("thumbnail failed", slog.String("icon", r.Entry.Path), slog.Any("err", r.Err))
							continue
						}
						thumbs[r.Entry.Path] = r.Img
					}
					grid.Refresh()
				})
			})
			if err != nil && ctx.Err() == nil {
				u.logger.Warn("thumbnails stopped", slog.Any("err", err))
			}
		}()
	}

	tag := widget.NewSelect(append([]string{allTags}, icons.Facets(u.library)...), nil)
	search := widget.NewEntry()
	search.SetPlaceHolder("Search icons")
	apply := func() {
		t := tag.Selected
		if t == allTags {
			t = ""
		}
		shown = u.searchIcons(ctx, t, search.Text)
		grid.UnselectAll()
		grid.Refresh()
		render(shown)
	}
	tag.OnChanged = func(string) { apply() }
	search.OnChanged = func(string) { apply() }
	tag.SetSelected(allTags)

	content := container.NewBorder(container.NewBorder(nil, nil, tag, nil, search), nil, nil, nil, grid)
	d = dialog.NewCustom("Icon for "+title, "Cancel", content, u.win)
	d.SetOnClosed(cancel)
	d.Resize(fyne.NewSize(720, 520))
	d.Show()
}

// searchIcons asks the catalog when one is open and falls back to filtering
// the in-memory library.
func (u *editorUI) searchIcons(ctx context.Context, tag, query string) []icons.Entry {
	if u.catalog != nil {
		res, err := u.catalog.Search(ctx, query, tag)
		if err == nil {
			return res
		}
		u.logger.Warn("catalog search failed", slog.Any("err", err))
	}
	return matchEntries(u.library, tag, query)
}

// iconImage renders an icon cell for the grid; nil means "draw the caption".
func (u *editorUI) iconImage(c domain.Content) image.Image {
	ic, ok := c.(domain.IconContent)
	if !ok {
		return nil
	}
	img, err := u.cache.GetFit(ic.Path, cellSize*2, cellSize*2, ic.Fill())
	if err != nil {
		return nil
	}
	return img
}
