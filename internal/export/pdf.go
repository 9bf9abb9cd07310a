/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"decalsheet/internal/domain"
	"decalsheet/internal/fonts"
	"decalsheet/internal/icons"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/version"
)

// PDFOptions controls PDF export. Units are points.
type PDFOptions struct {
	// Fonts resolves cell fonts to TTF files; nil uses Helvetica throughout.
	Fonts *fonts.Registry
	// IconPadding is removed from every side of an icon cell before fitting.
	IconPadding float64
	// KeepNone leaves fill="none" shapes hollow when recoloring icons.
	KeepNone bool
	// RasterDPI is the resolution of icons that cannot be embedded as vectors.
	RasterDPI int
	Title     string
	// NoCompression writes plain content streams.
	NoCompression bool
}

// DefaultRasterDPI is used when PDFOptions.RasterDPI is zero.
const DefaultRasterDPI = 300

type pdfWriter struct {
	pdf    *gofpdf.Fpdf
	opt    PDFOptions
	tr     func(string) string
	fonts  map[string]string // font path -> registered family, "" when unusable
	images map[string]bool
	logger *slog.Logger
}

// WritePDF renders plan to a single PDF page sized to the plan's geometry and
// writes it to out. Cells that fail are skipped and listed in the report.
func WritePDF(plan Plan, out io.Writer, opt PDFOptions) (Report, error) {
	g := plan.Geometry
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	title := opt.Title
	if title == "" {
		title = "Decal sheet (" + g.Name + ")"
	}
	pdf.SetCompression(!opt.NoCompression)
	pdf.SetTitle(title, true)
	pdf.SetCreator("decalsheet "+version.String(), true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	if opt.RasterDPI <= 0 {
		opt.RasterDPI = DefaultRasterDPI
	}

	w := &pdfWriter{
		pdf:    pdf,
		opt:    opt,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		fonts:  map[string]string{},
		images: map[string]bool{},
		logger: dlog.WithOperation(dlog.WithComponent("export"), "pdf"),
	}
	rep := Report{Skipped: plan.Report.Skipped, Problems: append([]Problem(nil), plan.Report.Problems...)}
	for _, it := range plan.Items {
		var err error
		switch it.Kind {
		case TextItem:
			err = w.text(it)
		case IconItem:
			err = w.icon(it)
		}
		if err == nil && pdf.Err() {
			err = pdf.Error()
		}
		if err != nil {
			pdf.ClearError()
			w.logger.Warn("skip cell", slog.String("cell", it.Address.String()), slog.Any("err", err))
			rep.skip(it.Address, err)
			continue
		}
		rep.Drawn++
	}
	if err := pdf.Output(out); err != nil {
		return rep, fmt.Errorf("write pdf: %w", err)
	}
	return rep, nil
}

// ExportPDF writes plan to path, creating parent directories.
func ExportPDF(plan Plan, path string, opt PDFOptions) (Report, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Report{}, fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	rep, err := WritePDF(plan, &buf, opt)
	if err != nil {
		return rep, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return rep, fmt.Errorf("write pdf: %w", err)
	}
	return rep, nil
}

func (w *pdfWriter) text(it Item) error {
	c, err := domain.ParseColor(it.Color)
	if err != nil {
		return err
	}
	txt := it.Text
	if w.setFont(it.Font, it.FontSize) {
		txt = w.tr(txt)
	}
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	w.pdf.SetXY(it.Rect.X, it.Rect.Y)
	w.pdf.CellFormat(it.Rect.Width, it.Rect.Height, txt, "", 0, "CM", false, 0, "")
	return nil
}

// setFont selects the cell font, falling back to Helvetica. It reports
// whether the core font is in use.
func (w *pdfWriter) setFont(spec domain.FontSpec, size float64) bool {
	if f, ok := w.opt.Fonts.Lookup(spec); ok {
		if fam := w.register(f); fam != "" {
			w.pdf.SetFont(fam, "", size)
			return false
		}
	}
	style := ""
	if spec.Bold() {
		style = "B"
	}
	w.pdf.SetFont("Helvetica", style, size)
	return true
}

func (w *pdfWriter) register(f *fonts.Font) string {
	if fam, seen := w.fonts[f.Path]; seen {
		return fam
	}
	fam := fmt.Sprintf("dcs%d", len(w.fonts))
	switch {
	case bytes.HasPrefix(f.Data, []byte("OTTO")):
		w.logger.Warn("CFF fonts cannot be embedded, using Helvetica", slog.String("font", f.Path))
		fam = ""
	default:
		w.pdf.AddUTF8FontFromBytes(fam, "", f.Data)
		if w.pdf.Err() {
			w.logger.Warn("font registration failed, using Helvetica", slog.String("font", f.Path), slog.Any("err", w.pdf.Error()))
			w.pdf.ClearError()
			fam = ""
		}
	}
	w.fonts[f.Path] = fam
	return fam
}

func (w *pdfWriter) icon(it Item) error {
	col, err := domain.ParseColor(it.Color)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(it.Icon)
	if err != nil {
		return err
	}
	markup, err := icons.Recolor(src, it.Color, icons.RecolorOptions{KeepNone: w.opt.KeepNone})
	if err != nil {
		return err
	}
	box := it.Rect.Inset(w.opt.IconPadding)
	if sb, err := basicPaths(markup); err == nil {
		placed, s := box.Fit(sb.Wd, sb.Ht)
		w.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
		drawBasic(w.pdf, sb, placed.X, placed.Y, s)
		return nil
	}
	return w.rasterIcon(it, markup, box, col)
}

func (w *pdfWriter) rasterIcon(it Item, markup []byte, box domain.Rect, col domain.Color) error {
	vw, vh, err := icons.ViewBox(markup)
	if err != nil {
		return err
	}
	if vw <= 0 || vh <= 0 {
		vw, vh = box.Width, box.Height
	}
	placed, _ := box.Fit(vw, vh)
	k := float64(w.opt.RasterDPI) / 72
	pw := int(math.Ceil(placed.Width * k))
	ph := int(math.Ceil(placed.Height * k))
	name := fmt.Sprintf("%s|%s|%dx%d", it.Icon, it.Color, pw, ph)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	if !w.images[name] {
		img, err := icons.Rasterize(bytes.NewReader(markup), pw, ph)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, icons.Tint(img, col)); err != nil {
			return err
		}
		w.pdf.RegisterImageOptionsReader(name, opts, &buf)
		if w.pdf.Err() {
			return w.pdf.Error()
		}
		w.images[name] = true
	}
	w.pdf.ImageOptions(name, placed.X, placed.Y, placed.Width, placed.Height, false, opts, 0, "")
	return nil
}
