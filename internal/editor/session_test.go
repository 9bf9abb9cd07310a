/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decalsheet/internal/domain"
	"decalsheet/internal/undo"
)

func newSession() *Session {
	return New(WithUndo(undo.Config{MinInterval: -1}))
}

func content(t *testing.T, s *Session, id domain.SectionID, row, col int) domain.Content {
	t.Helper()
	c, err := s.Grid().Cell(id, row, col)
	require.NoError(t, err)
	return c.Content()
}

func TestUndoRedoSingleEdit(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SetIcon(domain.LeftShoulder, 0, 0, "star.svg", "#FF0000"))
	assert.True(t, s.Dirty())
	assert.Equal(t, domain.IconContent{Path: "star.svg", Color: "#FF0000"}, content(t, s, domain.LeftShoulder, 0, 0))

	ok, err := s.Undo(domain.LeftShoulder)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, content(t, s, domain.LeftShoulder, 0, 0))

	ok, err = s.Redo(domain.LeftShoulder)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.IconContent{Path: "star.svg", Color: "#FF0000"}, content(t, s, domain.LeftShoulder, 0, 0))

	ok, err = s.Redo(domain.LeftShoulder)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUndoIsPerSection(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SetIcon(domain.LeftShoulder, 1, 1, "a.svg", ""))
	require.NoError(t, s.ApplyColor(domain.GothicNumerals, 2, "#00FF00"))

	ok, err := s.Undo(domain.LeftShoulder)
	require.NoError(t, err)
	assert.True(t, ok)
	tc := content(t, s, domain.GothicNumerals, 2, 0).(domain.TextContent)
	assert.Equal(t, "#00FF00", tc.Color, "undo of another section must not touch numerals")

	ok, err = s.Undo(domain.GothicNumerals)
	require.NoError(t, err)
	assert.True(t, ok)
	tc = content(t, s, domain.GothicNumerals, 2, 0).(domain.TextContent)
	assert.Equal(t, domain.DefaultForeground, tc.Color)
	assert.Equal(t, "1", tc.Text)
}

func TestApplyIcon(t *testing.T) {
	s := newSession()
	require.NoError(t, s.ApplyIcon(domain.RightShoulder, 3, "wolf.svg", "#0000FF"))
	for c := 0; c < domain.Cols; c++ {
		assert.Equal(t, domain.IconContent{Path: "wolf.svg", Color: "#0000FF"}, content(t, s, domain.RightShoulder, 3, c))
	}
	assert.Nil(t, content(t, s, domain.RightShoulder, 2, 0))

	require.NoError(t, s.ApplyIcon(domain.LeftShoulder, -1, "eagle.svg", ""))
	assert.Equal(t, domain.Rows*domain.Cols*2+domain.Cols+domain.Rows*domain.Cols, s.Grid().Populated())

	err := s.ApplyIcon(domain.GothicNumerals, 0, "x.svg", "")
	assert.ErrorIs(t, err, domain.ErrIconNotAllowed)
}

func TestApplyColorKeepsContent(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SetIcon(domain.LeftShoulder, 0, 4, "a.svg", "#FFFFFF"))
	require.NoError(t, s.ApplyColor(domain.LeftShoulder, 0, "#123456"))
	assert.Equal(t, domain.IconContent{Path: "a.svg", Color: "#123456"}, content(t, s, domain.LeftShoulder, 0, 4))
	assert.Nil(t, content(t, s, domain.LeftShoulder, 0, 5), "empty cells stay empty")
}

func TestApplyFontUsesSectionRules(t *testing.T) {
	s := newSession()
	require.NoError(t, s.ApplyFont(domain.ImperialNumerals, -1, "Go"))
	tc := content(t, s, domain.ImperialNumerals, 4, 9).(domain.TextContent)
	assert.Equal(t, domain.FontSpec{Family: "Go", Size: 10, Weight: "bold"}, tc.Font)
	assert.Equal(t, "X", tc.Text)

	require.NoError(t, s.ApplyFont(domain.GothicNumerals, 0, "Go"))
	tc = content(t, s, domain.GothicNumerals, 0, 0).(domain.TextContent)
	assert.False(t, tc.Font.Bold())
	tc = content(t, s, domain.GothicNumerals, 1, 0).(domain.TextContent)
	assert.Equal(t, domain.GothicNumerals.DefaultFont(), tc.Font)
}

func TestSetTextKeepsFont(t *testing.T) {
	s := newSession()
	require.NoError(t, s.ApplyFont(domain.GothicNumerals, 0, "Go"))
	require.NoError(t, s.SetText(domain.GothicNumerals, 0, 0, "0", ""))
	tc := content(t, s, domain.GothicNumerals, 0, 0).(domain.TextContent)
	assert.Equal(t, "0", tc.Text)
	assert.Equal(t, "Go", tc.Font.Family)

	require.NoError(t, s.SetText(domain.LeftShoulder, 0, 0, "A", "#FF0000"))
	tc = content(t, s, domain.LeftShoulder, 0, 0).(domain.TextContent)
	assert.Equal(t, domain.LeftShoulder.DefaultFont(), tc.Font)
}

func TestFailedEditIsRolledBack(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SetIcon(domain.LeftShoulder, 0, 0, "a.svg", ""))
	err := s.Edit(domain.LeftShoulder, func(g *domain.Grid) error {
		require.NoError(t, g.Clear(domain.LeftShoulder, 0, 0))
		return g.SetText(domain.LeftShoulder, 9, 9, "x", domain.FontSpec{}, "")
	})
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Equal(t, domain.IconContent{Path: "a.svg"}, content(t, s, domain.LeftShoulder, 0, 0))

	// Only the successful edit is on the stack.
	ok, _ := s.Undo(domain.LeftShoulder)
	assert.True(t, ok)
	assert.False(t, s.CanUndo(domain.LeftShoulder))
}

func TestClearSectionRefillsNumerals(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SetText(domain.ImperialNumerals, 0, 0, "Z", ""))
	require.NoError(t, s.ClearSection(domain.ImperialNumerals))
	tc := content(t, s, domain.ImperialNumerals, 0, 0).(domain.TextContent)
	assert.Equal(t, "I", tc.Text)

	require.NoError(t, s.SetIcon(domain.LeftShoulder, 0, 0, "a.svg", ""))
	require.NoError(t, s.ClearSection(domain.LeftShoulder))
	assert.Nil(t, content(t, s, domain.LeftShoulder, 0, 0))
}

func TestSaveOpen(t *testing.T) {
	s := newSession()
	assert.ErrorIs(t, s.Save(), ErrNoPath)

	path := filepath.Join(t.TempDir(), "sheet.json")
	require.NoError(t, s.SetIcon(domain.RightShoulder, 4, 9, "a.svg", "#ABCDEF"))
	require.NoError(t, s.SaveAs(path))
	assert.False(t, s.Dirty())
	assert.Equal(t, path, s.Path())

	o, err := Open(path)
	require.NoError(t, err)
	assert.True(t, o.Grid().Equal(s.Grid()))
	assert.False(t, o.CanUndo(domain.RightShoulder))

	require.NoError(t, s.Clear(domain.RightShoulder, 4, 9))
	require.NoError(t, s.Save())
	o, err = Open(path)
	require.NoError(t, err)
	assert.True(t, o.Grid().Equal(s.Grid()))
}

func TestReplaceDropsHistory(t *testing.T) {
	s := newSession()
	require.NoError(t, s.SetIcon(domain.LeftShoulder, 0, 0, "a.svg", ""))
	s.Replace(domain.NewGrid(), "other.json")
	assert.False(t, s.CanUndo(domain.LeftShoulder))
	assert.False(t, s.Dirty())
	assert.Equal(t, "other.json", s.Path())
}
