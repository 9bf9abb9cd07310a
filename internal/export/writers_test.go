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
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decalsheet/internal/domain"
	"decalsheet/internal/icons"
	"decalsheet/internal/sheet"
)

func TestRenderPreviewDrawsCheckerAndIcons(t *testing.T) {
	g := domain.NewEmptyGrid()
	require.NoError(t, g.SetIcon(domain.LeftShoulder, 0, 0, iconFile(t, "sq.svg", squareIcon), "#FF0000"))
	require.NoError(t, g.SetIcon(domain.LeftShoulder, 0, 1, filepath.Join(t.TempDir(), "gone.svg"), ""))
	require.NoError(t, g.SetText(domain.GothicNumerals, 0, 0, "1", domain.FontSpec{Family: "Nope"}, "#00FF00"))

	geom := sheet.Preview(200, 140)
	plan, err := BuildPlan(g, geom, PlanOptions{})
	require.NoError(t, err)
	img, rep := RenderPreview(plan, PreviewOptions{Icons: icons.NewCache()})
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 140, img.Bounds().Dy())
	assert.Equal(t, 2, rep.Drawn)
	assert.Equal(t, 1, rep.Skipped)

	r, gg, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0x33, 0x33, 0x33}, [3]uint32{r >> 8, gg >> 8, b >> 8})
	r, gg, b, _ = img.At(10, 0).RGBA()
	assert.Equal(t, [3]uint32{0x22, 0x22, 0x22}, [3]uint32{r >> 8, gg >> 8, b >> 8})

	cell, err := sheet.MapCellTopLeft(geom, domain.LeftShoulder, 0, 0)
	require.NoError(t, err)
	cx, cy := cell.Center()
	px := color.NRGBAModel.Convert(img.At(int(cx), int(cy))).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, px)
}

func TestPreviewPNGWriters(t *testing.T) {
	plan, err := BuildPlan(domain.NewGrid(), sheet.Preview(120, 90), PlanOptions{})
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = EncodePreviewPNG(plan, &buf, PreviewOptions{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	out := filepath.Join(t.TempDir(), "p", "preview.png")
	_, err = WritePreviewPNG(plan, out, PreviewOptions{})
	require.NoError(t, err)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestWriteSVGSheet(t *testing.T) {
	g := domain.NewGrid()
	require.NoError(t, g.SetIcon(domain.RightShoulder, 3, 3, iconFile(t, "ci.svg", circleIcon), "#0000FF"))
	require.NoError(t, g.SetIcon(domain.RightShoulder, 3, 4, filepath.Join(t.TempDir(), "gone.svg"), ""))
	plan, err := BuildPlan(g, sheet.A5Landscape(), PlanOptions{ClampWhites: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	rep, err := WriteSVG(plan, &buf, SVGOptions{Background: "#FFFFFF"})
	require.NoError(t, err)
	assert.Equal(t, 101, rep.Drawn)
	assert.Equal(t, 1, rep.Skipped)

	s := buf.String()
	assert.Equal(t, 100, strings.Count(s, "<text "))
	assert.Contains(t, s, ">IX</text>")
	assert.Contains(t, s, `fill="#FDFFF5"`)
	assert.Contains(t, s, `<circle`)
	assert.Contains(t, s, `fill="#0000FF"`)
	assert.Contains(t, s, `font-weight="bold"`)

	out := filepath.Join(t.TempDir(), "sheet.svg")
	_, err = ExportSVG(plan, out, SVGOptions{})
	require.NoError(t, err)
}

func TestHandOff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	v := NewMockViewer(ctrl)
	v.EXPECT().Print("a.pdf").Return(nil)
	assert.NoError(t, HandOff(v, "a.pdf", true))

	v.EXPECT().Print("b.pdf").Return(errors.ErrUnsupported)
	v.EXPECT().Open("b.pdf").Return(nil)
	assert.NoError(t, HandOff(v, "b.pdf", true))

	v.EXPECT().Open("c.pdf").Return(errors.New("no viewer"))
	err := HandOff(v, "c.pdf", false)
	assert.ErrorIs(t, err, ErrHandOff)
	assert.Contains(t, err.Error(), "no viewer")
}

func TestBatchExportWritesEveryPresetAndFormat(t *testing.T) {
	g := domain.NewGrid()
	require.NoError(t, g.SetIcon(domain.LeftShoulder, 0, 0, iconFile(t, "sq.svg", squareIcon), "#FF0000"))
	dir := t.TempDir()
	outs, err := BatchExport(g, BatchOptions{
		Formats: []string{"pdf", "PNG", " svg"},
		OutDir:  dir,
		DPI:     36,
		ZigZag:  4,
		Plan:    PlanOptions{ClampWhites: true},
	})
	require.NoError(t, err)
	require.Len(t, outs, 9)
	for _, o := range outs {
		st, err := os.Stat(o.Path)
		require.NoError(t, err, o.Path)
		assert.Positive(t, st.Size(), o.Path)
		assert.Zero(t, o.Report.Skipped, o.Path)
	}
	assert.Equal(t, filepath.Join(dir, "decals-a5.pdf"), outs[0].Path)

	_, err = BatchExport(g, BatchOptions{Formats: []string{"tiff"}, OutDir: dir})
	assert.Error(t, err)
	_, err = BatchExport(g, BatchOptions{Presets: []PresetName{"letter"}, OutDir: dir})
	assert.Error(t, err)
}
