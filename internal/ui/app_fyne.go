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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"decalsheet/internal/config"
	"decalsheet/internal/crash"
	"decalsheet/internal/domain"
	"decalsheet/internal/editor"
	"decalsheet/internal/export"
	"decalsheet/internal/fonts"
	"decalsheet/internal/icons"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/storage"
	"decalsheet/internal/version"
)

type editorUI struct {
	app      fyne.App
	win      fyne.Window
	cfg      config.AppConfig
	settings export.Settings
	session  *editor.Session
	fonts    *fonts.Registry
	cache    *icons.Cache
	library  []icons.Entry
	catalog  *storage.Catalog
	watcher  *icons.Watcher
	viewer   export.Viewer
	tabs     *container.AppTabs
	sections [domain.SectionCount]*sectionView
	status   *widget.Label
	logger   *slog.Logger
}

// Run starts the Fyne desktop editor and blocks until the window closes.
func Run(opts Options) error {
	l := dlog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	session := editor.New()
	if opts.Layout != "" {
		s, err := editor.Open(opts.Layout)
		if err != nil {
			return err
		}
		session = s
	}
	defer crash.Recover(session)

	u := newEditorUI(app.NewWithID("decalsheet"), opts.Config, session)
	defer u.close()
	u.loadAssets()
	u.build()
	u.win.ShowAndRun()
	return nil
}

func newEditorUI(a fyne.App, cfg config.AppConfig, s *editor.Session) *editorUI {
	u := &editorUI{
		app:     a,
		cfg:     cfg,
		session: s,
		fonts:   fonts.NewRegistry(),
		viewer:  export.SystemViewer{},
		status:  widget.NewLabel("Ready"),
		logger:  dlog.WithComponent("ui"),
	}
	var opts []icons.Option
	if cfg.Cache.MaxEntries > 0 {
		opts = append(opts, icons.WithPolicy(icons.NewLRU(cfg.Cache.MaxEntries)))
	}
	u.cache = icons.NewCache(opts...)
	u.settings = export.SettingsFrom(cfg.Export, u.fonts, u.cache)
	u.win = a.NewWindow(windowTitle(s.Path(), false))
	return u
}

// loadAssets reads fonts and icons, opens the catalog and starts watching the
// icon directory. Every step is optional.
func (u *editorUI) loadAssets() {
	if dir := u.cfg.General.FontDir; dir != "" {
		if n, err := u.fonts.LoadDir(dir); err != nil {
			u.logger.Warn("font dir unavailable", slog.String("dir", dir), slog.Any("err", err))
		} else {
			u.logger.Info("fonts loaded", slog.Int("count", n))
		}
	}
	dir := u.cfg.General.IconDir
	lib, err := icons.LoadDir(dir)
	if err != nil {
		u.logger.Warn("icon dir unavailable", slog.String("dir", dir), slog.Any("err", err))
		return
	}
	if c, err := storage.OpenCatalog(dir); err != nil {
		u.logger.Warn("icon catalog unavailable", slog.Any("err", err))
	} else {
		u.catalog = c
	}
	u.setLibrary(lib)

	w, err := icons.Watch(dir, u.cache)
	if err != nil {
		u.logger.Warn("icon watcher unavailable", slog.Any("err", err))
		return
	}
	u.watcher = w
	go func() {
		for lib := range w.Updates() {
			fyne.Do(func() {
				u.setLibrary(lib)
				u.refreshAll()
				u.status.SetText(fmt.Sprintf("Icon library reloaded (%d icons)", len(lib)))
			})
		}
	}()
}

func (u *editorUI) setLibrary(lib []icons.Entry) {
	u.library = lib
	if u.catalog == nil {
		return
	}
	if err := u.catalog.Sync(context.Background(), lib); err != nil {
		u.logger.Warn("catalog sync failed", slog.Any("err", err))
	}
}

func (u *editorUI) close() {
	if u.watcher != nil {
		_ = u.watcher.Close()
	}
	if u.catalog != nil {
		_ = u.catalog.Close()
	}
}

func (u *editorUI) build() {
	prefs := u.app.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 760)
	u.win.Resize(fyne.NewSize(float32(max(winW, 800)), float32(max(winH, 600))))

	var items []*container.TabItem
	for _, id := range domain.Sections() {
		sv := newSectionView(u, id)
		u.sections[id] = sv
		items = append(items, container.NewTabItem(id.String(), container.NewVScroll(sv.root)))
	}
	u.tabs = container.NewAppTabs(items...)
	u.win.SetContent(container.NewBorder(nil, u.status, nil, nil, u.tabs))
	u.win.SetMainMenu(u.menu())

	u.win.SetCloseIntercept(func() {
		sz := u.win.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if !u.session.Dirty() {
			u.win.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Quit without saving?", func(ok bool) {
			if ok {
				u.win.Close()
			}
		}, u.win)
	})
}

func (u *editorUI) current() domain.SectionID {
	if u.tabs == nil {
		return domain.LeftShoulder
	}
	return domain.SectionID(u.tabs.SelectedIndex())
}

// do finishes an edit of section id: it redraws on success and reports err otherwise.
func (u *editorUI) do(id domain.SectionID, err error) {
	if err != nil {
		u.logger.Warn("edit failed", slog.String("section", id.String()), slog.Any("err", err))
		dialog.ShowError(err, u.win)
		return
	}
	if sv := u.sections[id]; sv != nil {
		sv.refresh()
	}
	u.win.SetTitle(windowTitle(u.session.Path(), u.session.Dirty()))
}

func (u *editorUI) refreshAll() {
	for _, sv := range u.sections {
		if sv != nil {
			sv.refresh()
		}
	}
	u.win.SetTitle(windowTitle(u.session.Path(), u.session.Dirty()))
}

func (u *editorUI) undo(id domain.SectionID) {
	ok, err := u.session.Undo(id)
	if err == nil && !ok {
		u.status.SetText("Nothing to undo in " + id.String())
		return
	}
	u.do(id, err)
}

func (u *editorUI) redo(id domain.SectionID) {
	ok, err := u.session.Redo(id)
	if err == nil && !ok {
		u.status.SetText("Nothing to redo in " + id.String())
		return
	}
	u.do(id, err)
}

func (u *editorUI) menu() *fyne.MainMenu {
	newItem := fyne.NewMenuItem("New", func() {
		u.confirmDiscard("New layout", func() {
			u.session.Replace(domain.NewGrid(), "")
			u.refreshAll()
		})
	})
	openItem := fyne.NewMenuItem("Open…", u.openLayout)
	saveItem := fyne.NewMenuItem("Save", u.save)
	saveAsItem := fyne.NewMenuItem("Save As…", u.saveAs)
	restoreItem := fyne.NewMenuItem("Restore Latest Backup", u.restoreBackup)

	undoItem := fyne.NewMenuItem("Undo", func() { u.undo(u.current()) })
	redoItem := fyne.NewMenuItem("Redo", func() { u.redo(u.current()) })

	pdfItem := fyne.NewMenuItem("Export PDF…", func() { u.exportFile("pdf") })
	svgItem := fyne.NewMenuItem("Export SVG…", func() { u.exportFile("svg") })
	printItem := fyne.NewMenuItem("Print…", u.print)
	previewItem := fyne.NewMenuItem("Preview", u.showPreview)
	batchItem := fyne.NewMenuItem("Export All Presets…", u.batch)

	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	printItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyP, Modifier: fyne.KeyModifierControl}
	for _, it := range []*fyne.MenuItem{newItem, openItem, saveItem, undoItem, redoItem, printItem} {
		sc := it.Shortcut
		action := it.Action
		u.win.Canvas().AddShortcut(sc, func(fyne.Shortcut) { action() })
	}

	return fyne.NewMainMenu(
		fyne.NewMenu("File", newItem, openItem, saveItem, saveAsItem, fyne.NewMenuItemSeparator(), restoreItem),
		fyne.NewMenu("Edit", undoItem, redoItem),
		fyne.NewMenu("Export", previewItem, pdfItem, svgItem, printItem, fyne.NewMenuItemSeparator(), batchItem),
	)
}

func (u *editorUI) confirmDiscard(title string, then func()) {
	if !u.session.Dirty() {
		then()
		return
	}
	dialog.ShowConfirm(title, "Discard unsaved changes?", func(ok bool) {
		if ok {
			then()
		}
	}, u.win)
}

func (u *editorUI) openLayout() {
	u.confirmDiscard("Open layout", func() {
		d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, u.win)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			g, err := storage.LoadLayout(path)
			if err != nil {
				dialog.ShowError(err, u.win)
				return
			}
			u.session.Replace(g, path)
			u.refreshAll()
			u.status.SetText("Opened " + path)
		}, u.win)
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		d.Show()
	})
}

func (u *editorUI) save() {
	if u.session.Path() == "" {
		u.saveAs()
		return
	}
	if err := u.session.Save(); err != nil {
		dialog.ShowError(err, u.win)
		return
	}
	u.refreshAll()
	u.status.SetText("Saved " + u.session.Path())
}

func (u *editorUI) saveAs() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if err := u.session.SaveAs(path); err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		u.refreshAll()
		u.status.SetText("Saved " + path)
	}, u.win)
	d.SetFileName("decals.json")
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func (u *editorUI) restoreBackup() {
	path := u.session.Path()
	if path == "" {
		dialog.ShowInformation("Restore backup", "Save the layout first; backups are kept next to it.", u.win)
		return
	}
	g, from, err := storage.LoadLatestBackup(path)
	if err != nil {
		dialog.ShowError(err, u.win)
		return
	}
	u.confirmDiscard("Restore backup", func() {
		u.session.Replace(g, path)
		u.refreshAll()
		u.status.SetText("Restored " + filepath.Base(from))
	})
}

// plan builds the export plan for the configured page.
func (u *editorUI) plan() (export.Plan, error) {
	geom, err := u.settings.Geometry()
	if err != nil {
		return export.Plan{}, err
	}
	return export.BuildPlan(u.session.Grid(), geom, u.settings.Plan)
}

func (u *editorUI) exportFile(format string) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		if err := u.writeExport(format, path); err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if u.settings.Open {
			u.handOff(path, false)
		}
	}, u.win)
	d.SetFileName("decals." + format)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{"." + format}))
	d.Show()
}

func (u *editorUI) writeExport(format, path string) error {
	plan, err := u.plan()
	if err != nil {
		return err
	}
	var rep export.Report
	switch format {
	case "svg":
		rep, err = export.ExportSVG(plan, path, u.settings.SVG)
	default:
		rep, err = export.ExportPDF(plan, path, u.settings.PDF)
	}
	if err != nil {
		return err
	}
	u.status.SetText(fmt.Sprintf("Exported %s: %d drawn, %d skipped", filepath.Base(path), rep.Drawn, rep.Skipped))
	return nil
}

// print writes a temporary PDF and hands it to the system print command.
func (u *editorUI) print() {
	f, err := os.CreateTemp("", "decals-*.pdf")
	if err != nil {
		dialog.ShowError(err, u.win)
		return
	}
	path := f.Name()
	_ = f.Close()
	if err := u.writeExport("pdf", path); err != nil {
		dialog.ShowError(err, u.win)
		return
	}
	u.handOff(path, true)
}

// handOff opens (or prints) path. Failures are a notice, never an error.
func (u *editorUI) handOff(path string, print bool) {
	if err := export.HandOff(u.viewer, path, print); err != nil {
		u.logger.Warn("viewer hand-off failed", slog.String("path", path), slog.Any("err", err))
		msg := "Saved to " + path + " but no viewer could open it."
		if errors.Is(err, export.ErrHandOff) && print {
			msg = "Saved to " + path + " but it could not be printed or opened."
		}
		dialog.ShowInformation("Export", msg, u.win)
	}
}

func (u *editorUI) batch() {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if uri == nil {
			return
		}
		base := "decals"
		if p := u.session.Path(); p != "" {
			base = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		outs, err := export.BatchExport(u.session.Grid(), u.settings.Batch(uri.Path(), base, "pdf", "png", "svg"))
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		dialog.ShowInformation("Export All Presets", fmt.Sprintf("Wrote %d files to %s", len(outs), uri.Path()), u.win)
	}, u.win)
	d.Show()
}

// showPreview opens a window with the checkerboard preview of the sheet.
func (u *editorUI) showPreview() {
	w := u.app.NewWindow("Preview – " + windowTitle(u.session.Path(), false))
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	info := widget.NewLabel("")
	pw, ph := u.cfg.Preview.Width, u.cfg.Preview.Height

	draw := func() {
		geom := u.settings.PreviewGeometry(pw, ph)
		plan, err := export.BuildPlan(u.session.Grid(), geom, u.settings.Plan)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		out, rep := export.RenderPreview(plan, u.settings.PreviewFor(geom))
		img.Image = out
		img.Refresh()
		info.SetText(fmt.Sprintf("%d drawn, %d skipped", rep.Drawn, rep.Skipped))
	}
	savePNG := widget.NewButton("Save PNG…", func() {
		d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			path := wc.URI().Path()
			_ = wc.Close()
			geom := u.settings.PreviewGeometry(pw, ph)
			plan, err := export.BuildPlan(u.session.Grid(), geom, u.settings.Plan)
			if err == nil {
				_, err = export.WritePreviewPNG(plan, path, u.settings.PreviewFor(geom))
			}
			if err != nil {
				dialog.ShowError(err, w)
			}
		}, w)
		d.SetFileName("preview.png")
		d.Show()
	})
	w.SetContent(container.NewBorder(nil, container.NewHBox(widget.NewButton("Refresh", draw), savePNG, info), nil, nil, img))
	w.Resize(fyne.NewSize(float32(pw)/1.5, float32(ph)/1.5))
	draw()
	w.Show()
}
