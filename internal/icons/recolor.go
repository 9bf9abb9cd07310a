/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package icons

import (
	"fmt"

	"github.com/beevik/etree"
)

// RecolorOptions tunes Recolor.
type RecolorOptions struct {
	// KeepNone leaves fill="none" untouched so outlines stay hollow.
	KeepNone bool
}

var shapeTags = map[string]bool{
	"path": true, "circle": true, "rect": true, "polygon": true,
	"ellipse": true, "line": true, "polyline": true, "g": true,
}

// Recolor rewrites the fill of every shape element in markup to color. Inline
// style attributes on those elements are dropped so they cannot override the
// new fill. Namespaces and unrelated attributes are preserved.
func Recolor(markup []byte, color string, opt RecolorOptions) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(markup); err != nil {
		return nil, fmt.Errorf("recolor: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, fmt.Errorf("recolor: no <svg> root element")
	}
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		if shapeTags[el.Tag] {
			el.RemoveAttr("style")
			if !(opt.KeepNone && el.SelectAttrValue("fill", "") == "none") {
				el.CreateAttr("fill", color)
			}
		}
		for _, ch := range el.ChildElements() {
			walk(ch)
		}
	}
	walk(root)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("recolor: %w", err)
	}
	return out, nil
}
