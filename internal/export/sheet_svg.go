/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/beevik/etree"

	"decalsheet/internal/icons"
	dlog "decalsheet/internal/log"
)

// SVGOptions controls the SVG sheet writer. Units follow the plan geometry.
type SVGOptions struct {
	IconPadding float64
	KeepNone    bool
	// Background fills the sheet when set, e.g. "#FFFFFF".
	Background string
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

// WriteSVG writes plan as a standalone SVG document with icons inlined as
// nested, recolored <svg> elements.
func WriteSVG(plan Plan, out io.Writer, opt SVGOptions) (Report, error) {
	g := plan.Geometry
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("width", num(g.Width))
	root.CreateAttr("height", num(g.Height))
	root.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", num(g.Width), num(g.Height)))
	if opt.Background != "" {
		bg := root.CreateElement("rect")
		bg.CreateAttr("width", "100%")
		bg.CreateAttr("height", "100%")
		bg.CreateAttr("fill", opt.Background)
	}

	logger := dlog.WithOperation(dlog.WithComponent("export"), "svg")
	rep := Report{Skipped: plan.Report.Skipped, Problems: append([]Problem(nil), plan.Report.Problems...)}
	for _, it := range plan.Items {
		var err error
		switch it.Kind {
		case TextItem:
			svgText(root, it)
		case IconItem:
			err = svgIcon(root, it, opt)
		}
		if err != nil {
			logger.Warn("skip cell", slog.String("cell", it.Address.String()), slog.Any("err", err))
			rep.skip(it.Address, err)
			continue
		}
		rep.Drawn++
	}
	doc.Indent(2)
	if _, err := doc.WriteTo(out); err != nil {
		return rep, fmt.Errorf("write svg: %w", err)
	}
	return rep, nil
}

func svgText(root *etree.Element, it Item) {
	cx, cy := it.Rect.Center()
	t := root.CreateElement("text")
	t.CreateAttr("x", num(cx))
	t.CreateAttr("y", num(cy))
	t.CreateAttr("text-anchor", "middle")
	t.CreateAttr("dominant-baseline", "central")
	if it.Font.Family != "" {
		t.CreateAttr("font-family", it.Font.Family)
	}
	t.CreateAttr("font-size", num(it.FontSize))
	if it.Font.Bold() {
		t.CreateAttr("font-weight", "bold")
	}
	t.CreateAttr("fill", it.Color)
	t.SetText(it.Text)
}

func svgIcon(root *etree.Element, it Item, opt SVGOptions) error {
	src, err := os.ReadFile(it.Icon)
	if err != nil {
		return err
	}
	markup, err := icons.Recolor(src, it.Color, icons.RecolorOptions{KeepNone: opt.KeepNone})
	if err != nil {
		return err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(markup); err != nil {
		return err
	}
	icon := doc.Root()
	if icon.SelectAttr("viewBox") == nil {
		w, h, err := icons.ViewBox(markup)
		if err != nil {
			return err
		}
		icon.CreateAttr("viewBox", fmt.Sprintf("0 0 %s %s", num(w), num(h)))
	}
	box := it.Rect.Inset(opt.IconPadding)
	icon.CreateAttr("x", num(box.X))
	icon.CreateAttr("y", num(box.Y))
	icon.CreateAttr("width", num(box.Width))
	icon.CreateAttr("height", num(box.Height))
	root.AddChild(icon)
	return nil
}

// ExportSVG writes plan to path, creating parent directories.
func ExportSVG(plan Plan, path string, opt SVGOptions) (Report, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Report{}, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return Report{}, fmt.Errorf("create svg: %w", err)
	}
	rep, err := WriteSVG(plan, f, opt)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close svg: %w", cerr)
	}
	return rep, err
}
