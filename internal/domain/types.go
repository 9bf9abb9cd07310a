/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file holds the small value types shared by the grid model, the page
// mapper and the exporters.

import (
	"fmt"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

const (
	// DefaultForeground is used for cells whose color was never set.
	DefaultForeground = "#FFFFFF"
	// DefaultClampThreshold is the near-white limit for text printed on white paper.
	DefaultClampThreshold = "#FDFFF5"
)

// Rect is an axis-aligned rectangle. Units depend on the producer (points for
// PDF pages, pixels for the preview).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Inset shrinks r by d on every side. The result never has negative extent.
func (r Rect) Inset(d float64) Rect {
	r.X += d
	r.Y += d
	r.Width -= 2 * d
	r.Height -= 2 * d
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// Center returns the midpoint of r.
func (r Rect) Center() (float64, float64) { return r.X + r.Width/2, r.Y + r.Height/2 }

// Fit scales an intrinsic w×h box uniformly into r and centers it.
// It returns the placed rectangle and the scale factor.
func (r Rect) Fit(w, h float64) (Rect, float64) {
	if w <= 0 || h <= 0 {
		return Rect{X: r.X, Y: r.Y}, 0
	}
	s := r.Width / w
	if sh := r.Height / h; sh < s {
		s = sh
	}
	pw, ph := w*s, h*s
	return Rect{X: r.X + (r.Width-pw)/2, Y: r.Y + (r.Height-ph)/2, Width: pw, Height: ph}, s
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// ParseColor accepts any CSS color notation (#RGB, #RRGGBB, #RRGGBBAA, named colors, rgb()).
func ParseColor(s string) (Color, error) {
	c, err := csscolorparser.Parse(strings.TrimSpace(s))
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b, a := c.RGBA255()
	return Color{R: r, G: g, B: b, A: a}, nil
}

// MustColor is ParseColor for constants; it panics on malformed input.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex renders the color as upper-case #RRGGBB. Alpha is dropped.
func (c Color) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// ClampWhite replaces c with threshold when every RGB channel of c is greater
// than or equal to the matching channel of threshold; otherwise c is returned.
func ClampWhite(c, threshold Color) Color {
	if c.R >= threshold.R && c.G >= threshold.G && c.B >= threshold.B {
		return threshold
	}
	return c
}

// ClampWhiteHex is ClampWhite on color strings. The result is upper-case #RRGGBB.
func ClampWhiteHex(candidate, threshold string) (string, error) {
	c, err := ParseColor(candidate)
	if err != nil {
		return "", err
	}
	t, err := ParseColor(threshold)
	if err != nil {
		return "", fmt.Errorf("threshold: %w", err)
	}
	return ClampWhite(c, t).Hex(), nil
}
