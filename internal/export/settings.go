/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"decalsheet/internal/config"
	"decalsheet/internal/fonts"
	"decalsheet/internal/icons"
	"decalsheet/internal/sheet"
)

// Settings bundles the option sets a front end derives from the user
// configuration. Lengths from the config are millimetres; the option sets
// carry points.
type Settings struct {
	Page string
	// ZigZag in millimetres.
	ZigZag float64
	// Open hands finished exports to the system viewer.
	Open    bool
	Plan    PlanOptions
	PDF     PDFOptions
	Preview PreviewOptions
	SVG     SVGOptions
}

// SettingsFrom translates c. reg and cache may be nil.
func SettingsFrom(c config.ExportConfig, reg *fonts.Registry, cache *icons.Cache) Settings {
	pad := c.IconPaddingMM * sheet.MM
	return Settings{
		Page:   c.Page,
		ZigZag: c.ZigZagMM,
		Open:   c.OpenAfterExport,
		Plan: PlanOptions{
			ClampWhites: c.ClampWhites,
			Threshold:   c.ClampThreshold,
			FontSize:    c.FontSize,
		},
		PDF: PDFOptions{
			Fonts:       reg,
			IconPadding: pad,
			KeepNone:    c.KeepNone,
			RasterDPI:   c.RasterDPI,
			Title:       "Decal sheet",
		},
		Preview: PreviewOptions{Fonts: reg, Icons: cache, IconPadding: pad},
		SVG:     SVGOptions{IconPadding: pad, KeepNone: c.KeepNone},
	}
}

// Geometry resolves the configured page with the configured zig-zag.
func (s Settings) Geometry() (sheet.Geometry, error) {
	g, err := sheet.Page(s.Page)
	if err != nil {
		return g, err
	}
	return s.zigzag(g), nil
}

// PreviewGeometry is a w×h canvas with the configured zig-zag.
func (s Settings) PreviewGeometry(w, h int) sheet.Geometry {
	return s.zigzag(sheet.Preview(w, h))
}

func (s Settings) zigzag(g sheet.Geometry) sheet.Geometry {
	if s.ZigZag > 0 {
		return g.WithZigZag(s.ZigZag)
	}
	return g
}

// PreviewFor returns the preview options with padding scaled to geom.
func (s Settings) PreviewFor(geom sheet.Geometry) PreviewOptions {
	po := s.Preview
	po.IconPadding *= geom.Scale
	return po
}

// Batch returns batch options writing <base>-<preset>.<format> into dir.
func (s Settings) Batch(dir, base string, formats ...string) BatchOptions {
	return BatchOptions{
		Formats: formats,
		OutDir:  dir,
		Base:    base,
		ZigZag:  s.ZigZag,
		Plan:    s.Plan,
		PDF:     s.PDF,
		Preview: s.Preview,
		SVG:     s.SVG,
	}
}
