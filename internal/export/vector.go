/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/jung-kurt/gofpdf"
)

var errNotBasic = errors.New("svg needs more than basic path support")

// relativeAfterClose matches a relative command right after a closepath.
// gofpdf does not move the current point back to the subpath start on z, so
// such paths would be drawn from the wrong origin.
var relativeAfterClose = regexp.MustCompile(`[zZ][\s,]*[a-y]`)

// ignorable elements carry no geometry.
var ignorable = map[string]bool{"title": true, "desc": true, "metadata": true}

// basicPaths reduces markup to gofpdf's basic SVG subset: an <svg> with a
// numeric extent holding only <path d> children. Anything that would change
// the rendering when dropped (transforms, other shapes, hollow paths, an
// offset viewBox) returns errNotBasic.
func basicPaths(markup []byte) (gofpdf.SVGBasicType, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(markup); err != nil {
		return gofpdf.SVGBasicType{}, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return gofpdf.SVGBasicType{}, errNotBasic
	}
	w, h, err := extent(root)
	if err != nil {
		return gofpdf.SVGBasicType{}, err
	}
	var paths []string
	var walk func(el *etree.Element) error
	walk = func(el *etree.Element) error {
		for _, ch := range el.ChildElements() {
			switch {
			case ignorable[ch.Tag]:
				continue
			case ch.Tag == "g":
				if ch.SelectAttr("transform") != nil {
					return errNotBasic
				}
				if err := walk(ch); err != nil {
					return err
				}
			case ch.Tag == "path":
				if ch.SelectAttr("transform") != nil || ch.SelectAttrValue("fill", "") == "none" {
					return errNotBasic
				}
				d := strings.TrimSpace(ch.SelectAttrValue("d", ""))
				if relativeAfterClose.MatchString(d) {
					return errNotBasic
				}
				if d != "" {
					paths = append(paths, d)
				}
			default:
				return errNotBasic
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return gofpdf.SVGBasicType{}, err
	}
	if len(paths) == 0 {
		return gofpdf.SVGBasicType{}, errNotBasic
	}

	flat := etree.NewDocument()
	svg := flat.CreateElement("svg")
	svg.CreateAttr("width", strconv.FormatFloat(w, 'f', -1, 64))
	svg.CreateAttr("height", strconv.FormatFloat(h, 'f', -1, 64))
	for _, d := range paths {
		svg.CreateElement("path").CreateAttr("d", d)
	}
	buf, err := flat.WriteToBytes()
	if err != nil {
		return gofpdf.SVGBasicType{}, err
	}
	sb, err := gofpdf.SVGBasicParse(buf)
	if err != nil {
		return gofpdf.SVGBasicType{}, fmt.Errorf("%w: %v", errNotBasic, err)
	}
	return sb, nil
}

// extent reads the drawing size from viewBox, falling back to plain numeric
// width and height attributes.
func extent(root *etree.Element) (float64, float64, error) {
	if vb := root.SelectAttrValue("viewBox", ""); vb != "" {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' })
		if len(f) != 4 {
			return 0, 0, errNotBasic
		}
		var v [4]float64
		for i, s := range f {
			n, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, 0, errNotBasic
			}
			v[i] = n
		}
		if v[0] != 0 || v[1] != 0 || v[2] <= 0 || v[3] <= 0 {
			return 0, 0, errNotBasic
		}
		return v[2], v[3], nil
	}
	w, err1 := strconv.ParseFloat(strings.TrimSuffix(root.SelectAttrValue("width", ""), "px"), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSuffix(root.SelectAttrValue("height", ""), "px"), 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, errNotBasic
	}
	return w, h, nil
}

// drawBasic fills every path of sb with the current fill color, scaled by s
// and placed at x, y.
func drawBasic(pdf *gofpdf.Fpdf, sb gofpdf.SVGBasicType, x, y, s float64) {
	px := func(v float64) float64 { return x + v*s }
	py := func(v float64) float64 { return y + v*s }
	for _, path := range sb.Segments {
		var cx, cy, sx, sy float64
		open := false
		for _, seg := range path {
			a := seg.Arg
			switch seg.Cmd {
			case 'M':
				cx, cy = a[0], a[1]
				sx, sy = cx, cy
				pdf.MoveTo(px(cx), py(cy))
				open = true
			case 'L':
				cx, cy = a[0], a[1]
				pdf.LineTo(px(cx), py(cy))
			case 'H':
				cx = a[0]
				pdf.LineTo(px(cx), py(cy))
			case 'V':
				cy = a[0]
				pdf.LineTo(px(cx), py(cy))
			case 'C':
				pdf.CurveBezierCubicTo(px(a[0]), py(a[1]), px(a[2]), py(a[3]), px(a[4]), py(a[5]))
				cx, cy = a[4], a[5]
			case 'Q':
				pdf.CurveTo(px(a[0]), py(a[1]), px(a[2]), py(a[3]))
				cx, cy = a[2], a[3]
			case 'Z':
				pdf.ClosePath()
				cx, cy = sx, sy
			}
		}
		if open {
			pdf.DrawPath("F")
		}
	}
}
