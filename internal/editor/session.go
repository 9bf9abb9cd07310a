/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor holds the state of one editing session: the grid, the file
// it belongs to and a per-section undo history. The desktop UI and the CLI
// both mutate the sheet through a Session.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"decalsheet/internal/domain"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/storage"
	"decalsheet/internal/undo"
)

// ErrNoPath is returned by Save when the session has never been saved.
var ErrNoPath = errors.New("layout has no file yet")

type Session struct {
	grid    *domain.Grid
	path    string
	dirty   bool
	history *undo.Manager
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Session)

// WithUndo configures the undo history.
func WithUndo(cfg undo.Config) Option {
	return func(s *Session) { s.history = undo.NewManager(cfg) }
}

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New starts a session on a fresh grid with pre-filled numerals.
func New(opts ...Option) *Session {
	s := &Session{
		grid:   domain.NewGrid(),
		now:    time.Now,
		logger: dlog.WithComponent("editor"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.history == nil {
		s.history = undo.NewManager(undo.Config{})
	}
	return s
}

// Open starts a session on the layout stored at path.
func Open(path string, opts ...Option) (*Session, error) {
	g, err := storage.LoadLayout(path)
	if err != nil {
		return nil, err
	}
	s := New(opts...)
	s.grid = g
	s.path = path
	return s, nil
}

// Grid exposes the live grid. Callers that mutate it directly bypass undo.
func (s *Session) Grid() *domain.Grid { return s.grid }

func (s *Session) Path() string { return s.path }

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Replace swaps in another grid (e.g. "new" or a restored backup) and drops the history.
func (s *Session) Replace(g *domain.Grid, path string) {
	s.grid = g
	s.path = path
	s.dirty = false
	s.history.Reset()
}

// Save writes the layout to its current path.
func (s *Session) Save() error {
	if s.path == "" {
		return ErrNoPath
	}
	return s.SaveAs(s.path)
}

// SaveAs writes the layout to path and makes it the session's file.
func (s *Session) SaveAs(path string) error {
	l := dlog.WithOperation(s.logger, "save").With(slog.String("path", path))
	if err := storage.SaveLayout(path, s.grid); err != nil {
		l.Error("save failed", slog.Any("err", err))
		return err
	}
	s.path = path
	s.dirty = false
	l.Info("layout saved", slog.Int("cells", s.grid.Populated()))
	return nil
}

// Edit runs fn against the grid as one undoable step of section id. When fn
// fails the section is restored and nothing is recorded.
func (s *Session) Edit(id domain.SectionID, fn func(*domain.Grid) error) error {
	before, err := s.snapshot(id)
	if err != nil {
		return err
	}
	backup := s.grid.Clone()
	if err := fn(s.grid); err != nil {
		_ = s.grid.CopySection(id, backup)
		return err
	}
	s.history.Push(before)
	s.dirty = true
	ctx := dlog.ContextWithSection(dlog.ContextWithLayout(context.Background(), s.path), id.String())
	s.logger.DebugContext(ctx, "edit recorded", slog.Bool("undo", s.history.CanUndo(id)))
	return nil
}

func (s *Session) SetText(id domain.SectionID, row, col int, text string, color string) error {
	return s.Edit(id, func(g *domain.Grid) error {
		font := id.DefaultFont()
		if c, err := g.Cell(id, row, col); err == nil {
			if tc, ok := c.Content().(domain.TextContent); ok {
				font = tc.Font
			}
		}
		return g.SetText(id, row, col, text, font, color)
	})
}

func (s *Session) SetIcon(id domain.SectionID, row, col int, path, color string) error {
	return s.Edit(id, func(g *domain.Grid) error { return g.SetIcon(id, row, col, path, color) })
}

func (s *Session) Clear(id domain.SectionID, row, col int) error {
	return s.Edit(id, func(g *domain.Grid) error { return g.Clear(id, row, col) })
}

// ClearSection empties a whole section; numeral sections get their numerals back.
func (s *Session) ClearSection(id domain.SectionID) error {
	return s.Edit(id, func(g *domain.Grid) error {
		if err := g.ApplyToSection(id, (*domain.Cell).Clear); err != nil {
			return err
		}
		if id.Kind() == domain.NumeralSection {
			g.FillNumerals(id)
		}
		return nil
	})
}

// ApplyIcon places the icon in every cell of row, or of the whole section when row < 0.
func (s *Session) ApplyIcon(id domain.SectionID, row int, path, color string) error {
	if !id.Controls().Icon {
		return fmt.Errorf("%w: %s", domain.ErrIconNotAllowed, id)
	}
	return s.apply(id, row, func(c *domain.Cell) { c.SetIcon(path, color) })
}

// ApplyColor recolors populated cells of row (or of the section when row < 0)
// and keeps their content.
func (s *Session) ApplyColor(id domain.SectionID, row int, color string) error {
	return s.apply(id, row, func(c *domain.Cell) { c.SetColor(color) })
}

// ApplyFont sets the picked family on the text cells of row (or of the section
// when row < 0), using the section's font rules.
func (s *Session) ApplyFont(id domain.SectionID, row int, family string) error {
	font := id.FontFor(family)
	return s.apply(id, row, func(c *domain.Cell) { c.SetFont(font) })
}

func (s *Session) apply(id domain.SectionID, row int, fn func(*domain.Cell)) error {
	return s.Edit(id, func(g *domain.Grid) error {
		if row < 0 {
			return g.ApplyToSection(id, fn)
		}
		return g.ApplyToRow(id, row, fn)
	})
}

// Undo reverts the last edit of a section. It reports false when there is
// nothing to undo.
func (s *Session) Undo(id domain.SectionID) (bool, error) {
	return s.travel(id, s.history.Undo)
}

func (s *Session) Redo(id domain.SectionID) (bool, error) {
	return s.travel(id, s.history.Redo)
}

func (s *Session) CanUndo(id domain.SectionID) bool { return s.history.CanUndo(id) }
func (s *Session) CanRedo(id domain.SectionID) bool { return s.history.CanRedo(id) }

func (s *Session) travel(id domain.SectionID, step func(undo.Snapshot) (undo.Snapshot, bool)) (bool, error) {
	cur, err := s.snapshot(id)
	if err != nil {
		return false, err
	}
	target, ok := step(cur)
	if !ok {
		return false, nil
	}
	if err := s.restore(target); err != nil {
		return false, err
	}
	s.dirty = true
	return true, nil
}

func (s *Session) snapshot(id domain.SectionID) (undo.Snapshot, error) {
	if !id.Valid() {
		return undo.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrOutOfRange, id)
	}
	cells := storage.Encode(s.grid)[id.String()]
	blob, err := json.Marshal(cells)
	if err != nil {
		return undo.Snapshot{}, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return undo.Snapshot{Section: id, Blob: blob, TS: s.now()}, nil
}

func (s *Session) restore(snap undo.Snapshot) error {
	var cells map[string]storage.CellRecord
	if err := json.Unmarshal(snap.Blob, &cells); err != nil {
		return fmt.Errorf("restore %s: %w", snap.Section, err)
	}
	g, err := storage.Decode(storage.Layout{snap.Section.String(): cells})
	if err != nil {
		return fmt.Errorf("restore %s: %w", snap.Section, err)
	}
	return s.grid.CopySection(snap.Section, g)
}
