/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"decalsheet/internal/domain"
)

const (
	// StateDirName holds backups and the icon catalog next to a layout file.
	StateDirName   = ".decalsheet"
	BackupsDirName = "backups"
)

// ErrInvalidLayout is returned for layout documents that fail validation.
var ErrInvalidLayout = errors.New("invalid layout")

//go:embed schema/layout.schema.json
var layoutSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(layoutSchema)

// CellRecord is the on-disk form of one cell.
type CellRecord struct {
	Text     string           `json:"text,omitempty"`
	Font     *domain.FontSpec `json:"font,omitempty"`
	IconFile string           `json:"icon_file,omitempty"`
	Color    string           `json:"color,omitempty"`
}

// MarshalJSON always writes "text" for text cells, even when blank, so the
// record stays distinguishable from an icon.
func (r CellRecord) MarshalJSON() ([]byte, error) {
	if r.IconFile != "" {
		type plain CellRecord
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		Text  string           `json:"text"`
		Font  *domain.FontSpec `json:"font,omitempty"`
		Color string           `json:"color,omitempty"`
	}{r.Text, r.Font, r.Color})
}

// Layout is the on-disk document: section name -> "row,col" -> cell.
type Layout map[string]map[string]CellRecord

// Encode converts a grid to its document form. Every section is present, even
// when empty; empty cells are omitted. Text cells always carry their font.
func Encode(g *domain.Grid) Layout {
	l := Layout{}
	for _, id := range domain.Sections() {
		l[id.String()] = map[string]CellRecord{}
	}
	g.Each(func(a domain.Address, c *domain.Cell) {
		var rec CellRecord
		switch v := c.Content().(type) {
		case domain.TextContent:
			f := v.Font
			rec.Text = v.Text
			rec.Font = &f
			rec.Color = v.Color
		case domain.IconContent:
			rec.IconFile = v.Path
			rec.Color = v.Color
		default:
			return
		}
		l[a.Section.String()][fmt.Sprintf("%d,%d", a.Row, a.Col)] = rec
	})
	return l
}

// Decode builds a grid from a document. Cells not listed stay empty. A
// missing font falls back to the section default.
func Decode(l Layout) (*domain.Grid, error) {
	g := domain.NewEmptyGrid()
	names := make([]string, 0, len(l))
	for n := range l {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		id, err := domain.ParseSection(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
		}
		for key, rec := range l[name] {
			row, col, err := parseKey(key)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLayout, name, err)
			}
			if err := apply(g, id, row, col, rec); err != nil {
				return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidLayout, name, key, err)
			}
		}
	}
	return g, nil
}

func apply(g *domain.Grid, id domain.SectionID, row, col int, rec CellRecord) error {
	if rec.IconFile != "" {
		return g.SetIcon(id, row, col, rec.IconFile, rec.Color)
	}
	font := id.DefaultFont()
	if rec.Font != nil {
		font = *rec.Font
	}
	return g.SetText(id, row, col, rec.Text, font, rec.Color)
}

func parseKey(key string) (int, int, error) {
	r, c, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, fmt.Errorf("cell key %q is not \"row,col\"", key)
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return 0, 0, fmt.Errorf("cell key %q: bad row", key)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return 0, 0, fmt.Errorf("cell key %q: bad column", key)
	}
	if row < 0 || row >= domain.Rows || col < 0 || col >= domain.Cols {
		return 0, 0, fmt.Errorf("cell key %q outside %dx%d grid", key, domain.Rows, domain.Cols)
	}
	return row, col, nil
}

// Validate checks raw JSON against the embedded layout schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidLayout, strings.Join(msgs, "; "))
	}
	return nil
}

// Marshal renders a grid as indented JSON.
func Marshal(g *domain.Grid) ([]byte, error) {
	data, err := json.MarshalIndent(Encode(g), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal validates and decodes a layout document.
func Unmarshal(data []byte) (*domain.Grid, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return Decode(l)
}

// LoadLayout reads a layout file.
func LoadLayout(path string) (*domain.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	g, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// SaveLayout writes g to path transactionally. An existing file is first
// copied to a timestamped backup under StateDirName/BackupsDirName.
func SaveLayout(path string, g *domain.Grid) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("layout path is required")
	}
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure layout dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := copyFile(path, backupName(path, time.Now())); err != nil {
			return fmt.Errorf("backup current layout: %w", err)
		}
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp layout: %w", err)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace layout: %w", err)
	}
	return nil
}

// BackupDir returns the directory holding backups of the layout at path.
func BackupDir(path string) string {
	return filepath.Join(filepath.Dir(path), StateDirName, BackupsDirName)
}

func backupName(path string, at time.Time) string {
	stamp := at.Format("20060102-150405.000000000")
	return filepath.Join(BackupDir(path), fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
}

// Backups lists the backups of the layout at path, oldest first.
func Backups(path string) ([]string, error) {
	ents, err := os.ReadDir(BackupDir(path))
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		if n := e.Name(); strings.HasPrefix(n, prefix) && strings.HasSuffix(n, ".bak") {
			out = append(out, filepath.Join(BackupDir(path), n))
		}
	}
	// Timestamps sort lexicographically.
	sort.Strings(out)
	return out, nil
}

// LoadLatestBackup reads the newest valid backup of the layout at path.
func LoadLatestBackup(path string) (*domain.Grid, string, error) {
	bs, err := Backups(path)
	if err != nil {
		return nil, "", err
	}
	for i := len(bs) - 1; i >= 0; i-- {
		if g, err := LoadLayout(bs[i]); err == nil {
			return g, bs[i], nil
		}
	}
	return nil, "", errors.New("no usable backups found")
}

// AutosaveCrash writes g next to path (or into dir when path is empty) under
// a crash-stamped name and returns the file written.
func AutosaveCrash(path, dir string, g *domain.Grid) (string, error) {
	base := "untitled.json"
	if path != "" {
		dir = filepath.Dir(path)
		base = filepath.Base(path)
	}
	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("%s.crash-%s.json", strings.TrimSuffix(base, filepath.Ext(base)), time.Now().Format("20060102-150405"))
	out := filepath.Join(dir, name)
	data, err := Marshal(g)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeFileSync(out, data); err != nil {
		return "", fmt.Errorf("write crash autosave: %w", err)
	}
	return out, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
