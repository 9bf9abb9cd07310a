/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Content is the value held by a non-empty cell. It is a closed set:
// TextContent or IconContent.
type Content interface {
	isContent()
	// Fill returns the effective color, substituting DefaultForeground.
	Fill() string
}

// TextContent is a string drawn with a font and a fill color.
type TextContent struct {
	Text  string
	Font  FontSpec
	Color string
}

// IconContent references a vector icon file drawn with a tint.
type IconContent struct {
	Path  string
	Color string
}

func (TextContent) isContent() {}
func (IconContent) isContent() {}

func (t TextContent) Fill() string { return orDefault(t.Color) }
func (i IconContent) Fill() string { return orDefault(i.Color) }

func orDefault(c string) string {
	if c == "" {
		return DefaultForeground
	}
	return c
}

// Cell is one grid position. The zero value is empty.
type Cell struct {
	content Content
}

// SetText replaces the cell content with text. Any icon is dropped.
func (c *Cell) SetText(text string, font FontSpec, color string) {
	c.content = TextContent{Text: text, Font: font, Color: color}
}

// SetIcon replaces the cell content with an icon. Any text is dropped.
func (c *Cell) SetIcon(path, color string) {
	c.content = IconContent{Path: path, Color: color}
}

// Content returns the current variant or nil for an empty cell.
func (c *Cell) Content() Content { return c.content }

func (c *Cell) Clear() { c.content = nil }

func (c *Cell) Empty() bool { return c.content == nil }

// SetColor changes the color of whatever the cell holds. Empty cells are
// left alone and report false.
func (c *Cell) SetColor(color string) bool {
	switch v := c.content.(type) {
	case TextContent:
		v.Color = color
		c.content = v
	case IconContent:
		v.Color = color
		c.content = v
	default:
		return false
	}
	return true
}

// SetFont changes the font of a text cell; other cells report false.
func (c *Cell) SetFont(font FontSpec) bool {
	v, ok := c.content.(TextContent)
	if !ok {
		return false
	}
	v.Font = font
	c.content = v
	return true
}
