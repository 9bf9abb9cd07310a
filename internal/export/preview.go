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
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"decalsheet/internal/fonts"
	"decalsheet/internal/icons"
	dlog "decalsheet/internal/log"
)

// PreviewOptions controls the raster preview. Units are pixels.
type PreviewOptions struct {
	Fonts *fonts.Registry
	// Icons renders icon cells; nil creates a private cache per call.
	Icons       *icons.Cache
	IconPadding float64
	// Checker is the checkerboard square size; zero means 10.
	Checker int
	Dark    string
	Light   string
}

func (o PreviewOptions) withDefaults() PreviewOptions {
	if o.Checker <= 0 {
		o.Checker = 10
	}
	if o.Dark == "" {
		o.Dark = "#222222"
	}
	if o.Light == "" {
		o.Light = "#333333"
	}
	if o.Icons == nil {
		o.Icons = icons.NewCache()
	}
	return o
}

// RenderPreview draws plan onto a checkerboard canvas the size of its geometry.
func RenderPreview(plan Plan, opt PreviewOptions) (image.Image, Report) {
	opt = opt.withDefaults()
	w := int(math.Round(plan.Geometry.Width))
	h := int(math.Round(plan.Geometry.Height))
	dc := gg.NewContext(w, h)
	checkerboard(dc, w, h, opt)

	logger := dlog.WithOperation(dlog.WithComponent("export"), "preview")
	rep := Report{Skipped: plan.Report.Skipped, Problems: append([]Problem(nil), plan.Report.Problems...)}
	for _, it := range plan.Items {
		var err error
		switch it.Kind {
		case TextItem:
			face, _ := opt.Fonts.Face(it.Font, it.FontSize, 72)
			dc.SetFontFace(face)
			dc.SetHexColor(it.Color)
			cx, cy := it.Rect.Center()
			dc.DrawStringAnchored(it.Text, cx, cy, 0.5, 0.5)
		case IconItem:
			err = previewIcon(dc, it, opt)
		}
		if err != nil {
			logger.Warn("skip cell", slog.String("cell", it.Address.String()), slog.Any("err", err))
			rep.skip(it.Address, err)
			continue
		}
		rep.Drawn++
	}
	return dc.Image(), rep
}

func checkerboard(dc *gg.Context, w, h int, opt PreviewOptions) {
	dc.SetHexColor(opt.Dark)
	dc.Clear()
	dc.SetHexColor(opt.Light)
	s := opt.Checker
	for y := 0; y < h; y += s {
		for x := 0; x < w; x += s {
			if (x/s+y/s)%2 == 0 {
				dc.DrawRectangle(float64(x), float64(y), float64(s), float64(s))
			}
		}
	}
	dc.Fill()
}

func previewIcon(dc *gg.Context, it Item, opt PreviewOptions) error {
	box := it.Rect.Inset(opt.IconPadding)
	side := math.Floor(math.Min(box.Width, box.Height))
	if side < 1 {
		return fmt.Errorf("cell too small for icon")
	}
	img, err := opt.Icons.GetFit(it.Icon, int(side), int(side), it.Color)
	if err != nil {
		return err
	}
	cx, cy := box.Center()
	dc.DrawImageAnchored(img, int(math.Round(cx)), int(math.Round(cy)), 0.5, 0.5)
	return nil
}

// EncodePreviewPNG renders plan and encodes it as PNG to out.
func EncodePreviewPNG(plan Plan, out io.Writer, opt PreviewOptions) (Report, error) {
	img, rep := RenderPreview(plan, opt)
	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(out); err != nil {
		return rep, fmt.Errorf("encode png: %w", err)
	}
	return rep, nil
}

// WritePreviewPNG renders plan to a PNG file, creating parent directories.
func WritePreviewPNG(plan Plan, path string, opt PreviewOptions) (Report, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Report{}, fmt.Errorf("ensure out dir: %w", err)
	}
	img, rep := RenderPreview(plan, opt)
	if err := gg.SavePNG(path, img); err != nil {
		return rep, fmt.Errorf("write png: %w", err)
	}
	return rep, nil
}
