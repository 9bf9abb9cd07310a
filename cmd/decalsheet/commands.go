/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"decalsheet/internal/config"
	"decalsheet/internal/crash"
	"decalsheet/internal/domain"
	"decalsheet/internal/editor"
	"decalsheet/internal/export"
	"decalsheet/internal/fonts"
	"decalsheet/internal/icons"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/storage"
	"decalsheet/internal/ui"
)

// env is bound into every command's Run.
type env struct {
	cfg    config.AppConfig
	logger *slog.Logger
}

// settings loads fonts from the configured directory and applies overrides.
func (e *env) settings(page string, zigzag float64) export.Settings {
	reg := fonts.NewRegistry()
	if dir := e.cfg.General.FontDir; dir != "" {
		if n, err := reg.LoadDir(dir); err != nil {
			e.logger.Debug("font dir unavailable", slog.String("dir", dir), slog.Any("err", err))
		} else {
			e.logger.Debug("fonts loaded", slog.Int("count", n))
		}
	}
	var opts []icons.Option
	if n := e.cfg.Cache.MaxEntries; n > 0 {
		opts = append(opts, icons.WithPolicy(icons.NewLRU(n)))
	}
	s := export.SettingsFrom(e.cfg.Export, reg, icons.NewCache(opts...))
	if page != "" {
		s.Page = page
	}
	if zigzag > 0 {
		s.ZigZag = zigzag
	}
	return s
}

func report(path string, rep export.Report) {
	fmt.Printf("Wrote %s (%d drawn, %d skipped)\n", path, rep.Drawn, rep.Skipped)
	if err := rep.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
}

// handOff opens or prints path. A missing viewer is not an error: the file is
// already written.
func (e *env) handOff(path string, print bool) {
	if err := export.HandOff(export.SystemViewer{}, path, print); err != nil {
		e.logger.Warn("viewer hand-off failed", slog.String("path", path), slog.Any("err", err))
		if errors.Is(err, export.ErrHandOff) {
			fmt.Fprintln(os.Stderr, "Could not open", path)
		}
	}
}

type newCmd struct {
	Path  string `arg:"" help:"Layout file to create."`
	Force bool   `short:"f" help:"Overwrite an existing file."`
}

func (c *newCmd) Run(e *env) error {
	if _, err := os.Stat(c.Path); err == nil && !c.Force {
		return fmt.Errorf("%s exists (use --force)", c.Path)
	}
	s := editor.New()
	if err := s.SaveAs(c.Path); err != nil {
		return err
	}
	fmt.Println("Created", c.Path)
	return nil
}

type showCmd struct {
	Path string `arg:"" type:"existingfile" help:"Layout file."`
}

func (c *showCmd) Run(e *env) error {
	g, err := storage.LoadLayout(c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d populated cells\n", c.Path, g.Populated())
	g.Each(func(a domain.Address, cell *domain.Cell) {
		switch v := cell.Content().(type) {
		case domain.TextContent:
			fmt.Printf("  %-26s text %q %s %s\n", a, v.Text, v.Font, v.Fill())
		case domain.IconContent:
			fmt.Printf("  %-26s icon %s %s\n", a, filepath.Base(v.Path), v.Fill())
		}
	})
	return nil
}

// cellArgs addresses a cell from the command line.
type cellArgs struct {
	Layout  string `arg:"" type:"existingfile" help:"Layout file."`
	Section string `arg:"" help:"Section name, e.g. left-shoulder or gothic-numerals."`
	Row     int    `arg:"" help:"Row 0-4, counted from the bottom."`
	Col     int    `arg:"" optional:"" default:"-1" help:"Column 0-9; omit to address the whole row."`
}

func (a cellArgs) open() (*editor.Session, domain.SectionID, error) {
	id, err := domain.ParseSection(a.Section)
	if err != nil {
		return nil, 0, err
	}
	s, err := editor.Open(a.Layout)
	if err != nil {
		return nil, 0, err
	}
	return s, id, nil
}

type setCmd struct {
	cellArgs `embed:""`
	Text  string `xor:"content" help:"Text to place."`
	Icon  string `xor:"content" type:"existingfile" help:"SVG icon to place."`
	Color string `help:"Foreground color (name or #RRGGBB)."`
	Font  string `help:"Font family applied to the row."`
}

func (c *setCmd) Run(e *env) error {
	s, id, err := c.open()
	if err != nil {
		return err
	}
	defer crash.Recover(s)

	color := c.Color
	if color != "" {
		parsed, err := domain.ParseColor(color)
		if err != nil {
			return err
		}
		color = parsed.Hex()
	}
	switch {
	case c.Text != "":
		if c.Col < 0 {
			return errors.New("text needs a column")
		}
		err = s.SetText(id, c.Row, c.Col, c.Text, color)
	case c.Icon != "" && c.Col < 0:
		err = s.ApplyIcon(id, c.Row, c.Icon, color)
	case c.Icon != "":
		err = s.SetIcon(id, c.Row, c.Col, c.Icon, color)
	case color != "" && c.Col < 0:
		err = s.ApplyColor(id, c.Row, color)
	case color != "":
		err = s.Edit(id, func(g *domain.Grid) error { return g.Recolor(id, c.Row, c.Col, color) })
	case c.Font == "":
		return errors.New("nothing to set: pass --text, --icon, --color or --font")
	}
	if err != nil {
		return err
	}
	if c.Font != "" {
		if err := s.ApplyFont(id, c.Row, c.Font); err != nil {
			return err
		}
	}
	return s.Save()
}

type clearCmd struct {
	Layout  string `arg:"" type:"existingfile" help:"Layout file."`
	Section string `arg:"" help:"Section name."`
	Row     int    `arg:"" optional:"" default:"-1" help:"Row; omit to clear the section."`
	Col     int    `arg:"" optional:"" default:"-1" help:"Column; omit to clear the row."`
}

func (c *clearCmd) Run(e *env) error {
	a := cellArgs{Layout: c.Layout, Section: c.Section, Row: c.Row, Col: c.Col}
	s, id, err := a.open()
	if err != nil {
		return err
	}
	switch {
	case c.Row < 0:
		err = s.ClearSection(id)
	case c.Col < 0:
		err = s.Edit(id, func(g *domain.Grid) error {
			return g.ApplyToRow(id, c.Row, func(cell *domain.Cell) { cell.Clear() })
		})
	default:
		err = s.Clear(id, c.Row, c.Col)
	}
	if err != nil {
		return err
	}
	return s.Save()
}

type restoreCmd struct {
	Layout string `arg:"" help:"Layout file whose backups are searched."`
}

func (c *restoreCmd) Run(e *env) error {
	g, from, err := storage.LoadLatestBackup(c.Layout)
	if err != nil {
		return err
	}
	if err := storage.SaveLayout(c.Layout, g); err != nil {
		return err
	}
	fmt.Printf("Restored %s from %s\n", c.Layout, filepath.Base(from))
	return nil
}

type exportCmd struct {
	Layout string  `arg:"" type:"existingfile" help:"Layout file."`
	Out    string  `short:"o" required:"" help:"Output file; .svg writes SVG, anything else PDF."`
	Page   string  `help:"Page geometry: a5, a4-half or a4-full."`
	ZigZag float64 `name:"zigzag" help:"Zig-zag margin in millimetres."`
	Print  bool    `help:"Send the PDF to the system print command."`
	NoOpen bool    `help:"Do not open the result."`
}

func (c *exportCmd) Run(e *env) error {
	g, err := storage.LoadLayout(c.Layout)
	if err != nil {
		return err
	}
	st := e.settings(c.Page, c.ZigZag)
	geom, err := st.Geometry()
	if err != nil {
		return err
	}
	plan, err := export.BuildPlan(g, geom, st.Plan)
	if err != nil {
		return err
	}
	var rep export.Report
	if strings.EqualFold(filepath.Ext(c.Out), ".svg") {
		rep, err = export.ExportSVG(plan, c.Out, st.SVG)
	} else {
		rep, err = export.ExportPDF(plan, c.Out, st.PDF)
	}
	if err != nil {
		return err
	}
	report(c.Out, rep)
	e.logger.InfoContext(dlog.ContextWithLayout(context.Background(), c.Layout), "exported",
		slog.String("out", c.Out), slog.String("page", st.Page), slog.Int("drawn", rep.Drawn))
	if c.Print || (st.Open && !c.NoOpen) {
		e.handOff(c.Out, c.Print)
	}
	return nil
}

type previewCmd struct {
	Layout string `arg:"" type:"existingfile" help:"Layout file."`
	Out    string `short:"o" default:"preview.png" help:"PNG output file."`
	Width  int    `help:"Preview width in pixels."`
	Height int    `help:"Preview height in pixels."`
}

func (c *previewCmd) Run(e *env) error {
	g, err := storage.LoadLayout(c.Layout)
	if err != nil {
		return err
	}
	w, h := e.cfg.Preview.Width, e.cfg.Preview.Height
	if c.Width > 0 {
		w = c.Width
	}
	if c.Height > 0 {
		h = c.Height
	}
	st := e.settings("", 0)
	geom := st.PreviewGeometry(w, h)
	plan, err := export.BuildPlan(g, geom, st.Plan)
	if err != nil {
		return err
	}
	rep, err := export.WritePreviewPNG(plan, c.Out, st.PreviewFor(geom))
	if err != nil {
		return err
	}
	report(c.Out, rep)
	return nil
}

type batchCmd struct {
	Layout  string   `arg:"" type:"existingfile" help:"Layout file."`
	OutDir  string   `short:"o" default:"." help:"Directory for the exported files."`
	Formats []string `short:"f" default:"pdf" enum:"pdf,png,svg" help:"Formats to write."`
	Base    string   `help:"File name prefix; defaults to the layout name."`
}

func (c *batchCmd) Run(e *env) error {
	g, err := storage.LoadLayout(c.Layout)
	if err != nil {
		return err
	}
	base := c.Base
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(c.Layout), filepath.Ext(c.Layout))
	}
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return err
	}
	outs, err := export.BatchExport(g, e.settings("", 0).Batch(c.OutDir, base, c.Formats...))
	for _, o := range outs {
		report(o.Path, o.Report)
	}
	return err
}

type iconsCmd struct {
	Search iconsSearchCmd `cmd:"" default:"withargs" help:"Search icons by name and tag."`
	Tags   iconsTagsCmd   `cmd:"" help:"List the tags in the library."`
}

// catalog opens the icon catalog and brings it up to date with the directory.
func (e *env) catalog(ctx context.Context, dir string) (*storage.Catalog, error) {
	if dir == "" {
		dir = e.cfg.General.IconDir
	}
	lib, err := icons.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	c, err := storage.OpenCatalog(dir)
	if err != nil {
		return nil, err
	}
	if err := c.Sync(ctx, lib); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

type iconsSearchCmd struct {
	Query string `arg:"" optional:"" help:"Name substring."`
	Tag   string `short:"t" help:"Only icons with this tag (Unknown for untagged)."`
	Dir   string `type:"existingdir" help:"Icon directory; defaults to the configured one."`
}

func (c *iconsSearchCmd) Run(e *env) error {
	ctx := context.Background()
	cat, err := e.catalog(ctx, c.Dir)
	if err != nil {
		return err
	}
	defer cat.Close()
	found, err := cat.Search(ctx, c.Query, c.Tag)
	if err != nil {
		return err
	}
	for _, en := range found {
		fmt.Printf("%-40s %s\n", en, en.Path)
	}
	return nil
}

type iconsTagsCmd struct {
	Dir string `type:"existingdir" help:"Icon directory; defaults to the configured one."`
}

func (c *iconsTagsCmd) Run(e *env) error {
	ctx := context.Background()
	cat, err := e.catalog(ctx, c.Dir)
	if err != nil {
		return err
	}
	defer cat.Close()
	tags, err := cat.Tags(ctx)
	if err != nil {
		return err
	}
	for _, t := range tags {
		fmt.Println(t)
	}
	return nil
}

type uiCmd struct {
	Layout string `arg:"" optional:"" help:"Layout file to open."`
}

func (c *uiCmd) Run(e *env) error {
	if c.Layout == "" {
		if last := e.cfg.General.LastLayout; last != "" {
			if _, err := os.Stat(last); err == nil {
				c.Layout = last
			}
		}
	} else {
		e.cfg.General.LastLayout = c.Layout
		if err := config.Save(e.cfg); err != nil {
			e.logger.Debug("remember last layout failed", slog.Any("err", err))
		}
	}
	return ui.Run(ui.Options{Layout: c.Layout, Config: e.cfg})
}
