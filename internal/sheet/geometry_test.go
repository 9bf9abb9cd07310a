/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decalsheet/internal/domain"
)

const eps = 1e-9

func TestCornersAndRowFlipBottomLeft(t *testing.T) {
	g := A5Landscape()
	q := g.Quadrant(domain.LeftShoulder)
	first, err := MapCell(g, domain.LeftShoulder, 0, 0)
	require.NoError(t, err)
	last, err := MapCell(g, domain.LeftShoulder, 4, 9)
	require.NoError(t, err)

	// Quadrant bottom in PDF space.
	bottom := g.Height - (q.Y + q.Height)
	assert.InDelta(t, bottom, first.Y, eps, "row 0 sits on the quadrant floor")
	assert.InDelta(t, q.X+g.ZigZag, first.X, eps)
	assert.InDelta(t, bottom+q.Height, last.Y+last.Height, eps, "row 4 touches the quadrant top")
	assert.InDelta(t, q.X+q.Width, last.X+last.Width, eps)
	assert.Less(t, first.Y, last.Y, "row 0 is below row 4 with y growing up")
}

func TestCornersTopLeftPreview(t *testing.T) {
	g := Preview(900, 636)
	q := g.Quadrant(domain.GothicNumerals)
	first, err := MapCell(g, domain.GothicNumerals, 0, 0)
	require.NoError(t, err)
	last, err := MapCell(g, domain.GothicNumerals, 4, 9)
	require.NoError(t, err)
	assert.InDelta(t, q.Y+q.Height, first.Y+first.Height, eps)
	assert.InDelta(t, q.X, first.X, eps)
	assert.InDelta(t, q.Y, last.Y, eps)
	assert.InDelta(t, q.X+q.Width, last.X+last.Width, eps)
	assert.Greater(t, first.Y, last.Y, "row 0 is below row 4 with y growing down")
}

func TestZigZagOnlyOnIconRows(t *testing.T) {
	for _, g := range []Geometry{A5Landscape(), A4Half(), Preview(900, 636)} {
		r0, _ := MapCell(g, domain.RightShoulder, 0, 3)
		r1, _ := MapCell(g, domain.RightShoulder, 1, 3)
		r2, _ := MapCell(g, domain.RightShoulder, 2, 3)
		assert.InDelta(t, g.ZigZag, r0.X-r1.X, eps, g.Name)
		assert.InDelta(t, r0.X, r2.X, eps, g.Name)
		assert.InDelta(t, r0.Height, abs(r1.Y-r0.Y), eps, g.Name)

		n0, _ := MapCell(g, domain.ImperialNumerals, 0, 3)
		n1, _ := MapCell(g, domain.ImperialNumerals, 1, 3)
		assert.InDelta(t, n0.X, n1.X, eps, g.Name)
		assert.NotEqual(t, n0.Y, n1.Y)
	}
}

func TestQuadrantOrder(t *testing.T) {
	g := A4Half()
	tl := g.Quadrant(domain.LeftShoulder)
	tr := g.Quadrant(domain.RightShoulder)
	bl := g.Quadrant(domain.GothicNumerals)
	br := g.Quadrant(domain.ImperialNumerals)
	assert.Equal(t, tl.Y, tr.Y)
	assert.Greater(t, tr.X, tl.X)
	assert.Equal(t, tl.X, bl.X)
	assert.Greater(t, bl.Y, tl.Y)
	assert.Equal(t, bl.Y, br.Y)
	assert.InDelta(t, g.Block.X+g.Block.Width, br.X+br.Width, eps)
}

func TestMapCellRejectsBadAddress(t *testing.T) {
	_, err := MapCell(A5Landscape(), domain.LeftShoulder, 5, 0)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	_, err = MapCellTopLeft(A5Landscape(), domain.SectionID(7), 0, 0)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}

func TestOffsets(t *testing.T) {
	assert.Equal(t, []float64{0}, A4Half().Offsets())
	full := A4Full()
	off := full.Offsets()
	require.Len(t, off, 2)
	assert.InDelta(t, -A4Height/2, off[1], eps)
	assert.InDelta(t, A4Height/2, full.TopLeftOffsets()[1], eps)

	// Copy two of the top block lands entirely in the bottom half.
	r, _ := MapCell(full, domain.ImperialNumerals, 0, 0)
	assert.GreaterOrEqual(t, r.Y+off[1], 0.0)
	assert.Less(t, r.Y+r.Height+off[1], A4Height/2)
}

func TestPagesAndZigZagOverride(t *testing.T) {
	for _, n := range PageNames() {
		g, err := Page(n)
		require.NoError(t, err)
		assert.Equal(t, n, g.Name)
	}
	_, err := Page("letter")
	assert.Error(t, err)

	a5 := A5Landscape()
	assert.Greater(t, a5.Width, a5.Height, "A5 is landscape")
	assert.InDelta(t, 5*MM, a5.WithZigZag(5).ZigZag, eps)
	p := Preview(420, 297)
	assert.InDelta(t, p.Scale*5*MM, p.WithZigZag(5).ZigZag, eps)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestRasterKeepsProportions(t *testing.T) {
	g := A4Full()
	r := g.Raster(144)
	assert.Equal(t, TopLeft, r.Origin)
	assert.InDelta(t, 2*g.Width, r.Width, eps)
	assert.InDelta(t, 2.0, r.Scale, eps)
	assert.InDelta(t, r.Height/2, r.TopLeftOffsets()[1], eps)

	a, _ := MapCellTopLeft(g, domain.RightShoulder, 1, 2)
	b, _ := MapCellTopLeft(r, domain.RightShoulder, 1, 2)
	assert.InDelta(t, 2*a.X, b.X, 1e-6)
	assert.InDelta(t, 2*a.Y, b.Y, 1e-6)
}
