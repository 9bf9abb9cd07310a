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
	"path/filepath"
	"strings"

	"decalsheet/internal/domain"
	"decalsheet/internal/sheet"
)

// PresetName names a page geometry usable for batch export.
type PresetName string

const (
	PresetA5     PresetName = "a5"
	PresetA4Half PresetName = "a4-half"
	PresetA4Full PresetName = "a4-full"
)

// Presets lists every preset in a stable order.
func Presets() []PresetName { return []PresetName{PresetA5, PresetA4Half, PresetA4Full} }

// BatchOptions controls BatchExport.
//
// Output files are named <Base>-<preset>.<format> inside OutDir.
type BatchOptions struct {
	Presets []PresetName // empty means all
	Formats []string     // pdf, png, svg; empty means pdf
	OutDir  string
	Base    string // defaults to "decals"
	// DPI sets the pixel density of PNG pages; zero means 150.
	DPI     int
	ZigZag  float64 // millimetres; zero keeps the geometry default
	Plan    PlanOptions
	PDF     PDFOptions
	Preview PreviewOptions
	SVG     SVGOptions
}

// Output is one file written by BatchExport.
type Output struct {
	Preset PresetName
	Format string
	Path   string
	Report Report
}

// BatchExport writes the grid in every requested preset and format.
func BatchExport(g *domain.Grid, opt BatchOptions) ([]Output, error) {
	presets := opt.Presets
	if len(presets) == 0 {
		presets = Presets()
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []string{"pdf"}
	}
	base := opt.Base
	if base == "" {
		base = "decals"
	}
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 150
	}

	var outs []Output
	for _, p := range presets {
		geom, err := sheet.Page(string(p))
		if err != nil {
			return outs, err
		}
		if opt.ZigZag > 0 {
			geom = geom.WithZigZag(opt.ZigZag)
		}
		for _, f := range formats {
			f = strings.ToLower(strings.TrimSpace(f))
			path := filepath.Join(opt.OutDir, fmt.Sprintf("%s-%s.%s", base, p, f))
			var rep Report
			switch f {
			case "pdf":
				plan, err := BuildPlan(g, geom, opt.Plan)
				if err != nil {
					return outs, err
				}
				rep, err = ExportPDF(plan, path, opt.PDF)
				if err != nil {
					return outs, fmt.Errorf("pdf %s: %w", p, err)
				}
			case "png":
				raster := geom.Raster(float64(dpi))
				plan, err := BuildPlan(g, raster, opt.Plan)
				if err != nil {
					return outs, err
				}
				po := opt.Preview
				po.IconPadding *= raster.Scale
				rep, err = WritePreviewPNG(plan, path, po)
				if err != nil {
					return outs, fmt.Errorf("png %s: %w", p, err)
				}
			case "svg":
				plan, err := BuildPlan(g, geom, opt.Plan)
				if err != nil {
					return outs, err
				}
				rep, err = ExportSVG(plan, path, opt.SVG)
				if err != nil {
					return outs, fmt.Errorf("svg %s: %w", p, err)
				}
			default:
				return outs, fmt.Errorf("unknown format: %s", f)
			}
			outs = append(outs, Output{Preset: p, Format: f, Path: path, Report: rep})
		}
	}
	return outs, nil
}
