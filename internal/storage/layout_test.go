/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"decalsheet/internal/domain"
)

func sampleGrid(t *testing.T) *domain.Grid {
	t.Helper()
	g := domain.NewGrid()
	if err := g.SetIcon(domain.LeftShoulder, 0, 0, "icons/Eagle [Imperial].svg", "#FF0000"); err != nil {
		t.Fatalf("SetIcon: %v", err)
	}
	if err := g.SetText(domain.RightShoulder, 2, 3, "A", domain.FontSpec{Family: "Go", Size: 12}, ""); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := g.Recolor(domain.ImperialNumerals, 1, 8, "#FFFFFF"); err != nil {
		t.Fatalf("Recolor: %v", err)
	}
	return g
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.json")
	g := sampleGrid(t)
	if err := SaveLayout(path, g); err != nil {
		t.Fatalf("SaveLayout: %v", err)
	}
	got, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if !got.Equal(g) {
		t.Fatalf("round trip changed the grid")
	}
	// No temp files left behind.
	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestRoundTripKeepsBlankTextAndZeroFont(t *testing.T) {
	g := domain.NewGrid()
	if err := g.SetText(domain.LeftShoulder, 0, 0, "A", domain.FontSpec{}, "#FF0000"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := g.SetText(domain.GothicNumerals, 3, 4, "", domain.GothicNumerals.DefaultFont(), ""); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("encoded layout fails its schema: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(g) {
		t.Fatalf("round trip changed the grid:\n%s", data)
	}

	c, _ := back.Cell(domain.LeftShoulder, 0, 0)
	if tc := c.Content().(domain.TextContent); !tc.Font.IsZero() {
		t.Fatalf("zero font became %v", tc.Font)
	}
	c, _ = back.Cell(domain.GothicNumerals, 3, 4)
	tc, ok := c.Content().(domain.TextContent)
	if !ok || tc.Text != "" {
		t.Fatalf("blank text cell lost: %#v", c.Content())
	}
}

func TestEncodeWritesAllSections(t *testing.T) {
	l := Encode(domain.NewEmptyGrid())
	if len(l) != domain.SectionCount {
		t.Fatalf("expected %d sections, got %d", domain.SectionCount, len(l))
	}
	for _, id := range domain.Sections() {
		cells, ok := l[id.String()]
		if !ok {
			t.Fatalf("section %s missing", id)
		}
		if len(cells) != 0 {
			t.Fatalf("empty grid encoded %d cells in %s", len(cells), id)
		}
	}
	data, err := Marshal(domain.NewEmptyGrid())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Fatalf("empty layout should validate: %v", err)
	}
}

func TestDecodeDefaults(t *testing.T) {
	doc := `{
  "Gothic Numerals": {"0,0": {"text": "1"}},
  "Left Shoulder": {"3,4": {"icon_file": "star.svg"}},
  "Right Shoulder": {"1,1": {"text": "B", "font": "Go"}}
}`
	g, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	c, _ := g.Cell(domain.GothicNumerals, 0, 0)
	tc, ok := c.Content().(domain.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", c.Content())
	}
	if tc.Font != domain.GothicNumerals.DefaultFont() {
		t.Fatalf("expected section default font, got %v", tc.Font)
	}
	if tc.Fill() != "#FFFFFF" {
		t.Fatalf("expected default fill #FFFFFF, got %s", tc.Fill())
	}
	c, _ = g.Cell(domain.LeftShoulder, 3, 4)
	if ic, ok := c.Content().(domain.IconContent); !ok || ic.Path != "star.svg" {
		t.Fatalf("expected icon star.svg, got %#v", c.Content())
	}
	c, _ = g.Cell(domain.RightShoulder, 1, 1)
	if tc := c.Content().(domain.TextContent); tc.Font.Family != "Go" {
		t.Fatalf("expected bare font family, got %v", tc.Font)
	}
	// Cells not listed stay empty, numerals are not pre-filled on load.
	if c, _ := g.Cell(domain.GothicNumerals, 0, 1); !c.Empty() {
		t.Fatalf("unlisted cell should be empty")
	}
}

func TestUnmarshalRejectsInvalidLayouts(t *testing.T) {
	cases := map[string]string{
		"unknown section":  `{"Belly": {}}`,
		"bad key":          `{"Left Shoulder": {"a,b": {"text": "x"}}}`,
		"out of range":     `{"Left Shoulder": {"99,0": {"text": "x"}}}`,
		"no content":       `{"Left Shoulder": {"0,0": {"color": "#000000"}}}`,
		"icon in numerals": `{"Imperial Numerals": {"0,0": {"icon_file": "star.svg"}}}`,
		"not an object":    `[]`,
		"broken json":      `{"Left Shoulder": `,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal([]byte(doc))
			if !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestLoadLayoutMissingFile(t *testing.T) {
	_, err := LoadLayout(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSaveCreatesBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.json")
	first := domain.NewGrid()
	if err := SaveLayout(path, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := Backups(path); err == nil {
		t.Fatalf("no backup dir expected after first save")
	}
	second := sampleGrid(t)
	if err := SaveLayout(path, second); err != nil {
		t.Fatalf("second save: %v", err)
	}
	bs, err := Backups(path)
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(bs) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(bs))
	}
	if !strings.HasPrefix(filepath.Base(bs[0]), "sheet.json.") {
		t.Fatalf("unexpected backup name %s", bs[0])
	}
	g, from, err := LoadLatestBackup(path)
	if err != nil {
		t.Fatalf("LoadLatestBackup: %v", err)
	}
	if from != bs[0] || !g.Equal(first) {
		t.Fatalf("latest backup should hold the first save")
	}
}

func TestLoadLatestBackupSkipsCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheet.json")
	good := domain.NewGrid()
	if err := SaveLayout(path, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveLayout(path, good); err != nil {
		t.Fatalf("save: %v", err)
	}
	corrupt := filepath.Join(BackupDir(path), "sheet.json.99999999-999999.999999999.bak")
	if err := os.WriteFile(corrupt, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, from, err := LoadLatestBackup(path)
	if err != nil {
		t.Fatalf("LoadLatestBackup: %v", err)
	}
	if from == corrupt || !g.Equal(good) {
		t.Fatalf("expected the valid backup, got %s", from)
	}
}

func TestAutosaveCrash(t *testing.T) {
	dir := t.TempDir()
	g := sampleGrid(t)
	out, err := AutosaveCrash(filepath.Join(dir, "sheet.json"), "", g)
	if err != nil {
		t.Fatalf("AutosaveCrash: %v", err)
	}
	if filepath.Dir(out) != dir || !strings.HasPrefix(filepath.Base(out), "sheet.crash-") {
		t.Fatalf("unexpected autosave path %s", out)
	}
	back, err := LoadLayout(out)
	if err != nil {
		t.Fatalf("load autosave: %v", err)
	}
	if !back.Equal(g) {
		t.Fatalf("autosave does not match grid")
	}

	// Unsaved layouts go to the fallback dir.
	out, err = AutosaveCrash("", dir, g)
	if err != nil {
		t.Fatalf("AutosaveCrash untitled: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(out), "untitled.crash-") {
		t.Fatalf("unexpected untitled autosave %s", out)
	}
}

func TestSaveLayoutRequiresPath(t *testing.T) {
	if err := SaveLayout("  ", domain.NewGrid()); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
