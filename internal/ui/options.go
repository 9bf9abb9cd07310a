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
	"path/filepath"
	"sort"
	"strings"

	"decalsheet/internal/config"
	"decalsheet/internal/domain"
	"decalsheet/internal/fonts"
	"decalsheet/internal/icons"
)

// Options configures Run.
type Options struct {
	// Layout is opened at start when set.
	Layout string
	Config config.AppConfig
}

// fallbackFamily is offered even without a font directory; PDF export maps
// it to Helvetica.
const fallbackFamily = "Arial"

// fontFamilies lists the families offered by the font picker.
func fontFamilies(reg *fonts.Registry) []string {
	set := map[string]struct{}{fallbackFamily: {}}
	if reg != nil {
		for _, f := range reg.Families() {
			set[f] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// displayColor converts a cell color for on-screen drawing. Unparseable
// colors show as the default foreground.
func displayColor(s string) color.NRGBA {
	if strings.TrimSpace(s) == "" {
		s = domain.DefaultForeground
	}
	c, err := domain.ParseColor(s)
	if err != nil {
		c = domain.MustColor(domain.DefaultForeground)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// hexColor is the layout file form of a picked color.
func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return domain.Color{R: n.R, G: n.G, B: n.B, A: 255}.Hex()
}

// caption is the short text shown for a cell that has no image.
func caption(c domain.Content) string {
	switch v := c.(type) {
	case domain.TextContent:
		return v.Text
	case domain.IconContent:
		name, _ := icons.ParseFilename(v.Path)
		return name
	}
	return ""
}

// cellTooltip describes a cell for the status bar.
func cellTooltip(a domain.Address, c domain.Content) string {
	switch v := c.(type) {
	case domain.TextContent:
		return fmt.Sprintf("%s: %q %s %s", a, v.Text, v.Font, v.Fill())
	case domain.IconContent:
		return fmt.Sprintf("%s: %s %s", a, filepath.Base(v.Path), v.Fill())
	}
	return fmt.Sprintf("%s: empty", a)
}

func windowTitle(path string, dirty bool) string {
	name := "Untitled"
	if path != "" {
		name = filepath.Base(path)
	}
	if dirty {
		name = "*" + name
	}
	return name + " – Decal Sheet"
}

// matchEntries filters the library by tag and a case-insensitive name query.
func matchEntries(lib []icons.Entry, tag, query string) []icons.Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []icons.Entry
	for _, e := range icons.Filter(lib, tag) {
		if q == "" || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
