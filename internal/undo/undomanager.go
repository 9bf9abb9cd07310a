/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"

	"decalsheet/internal/domain"
)

// Snapshot is a reversible state blob for one section of the sheet.
// Blob content is opaque to the manager; size is estimated as len(Blob).
type Snapshot struct {
	Section domain.SectionID
	Blob    []byte
	TS      time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; the oldest entries across sections are pruned when exceeded.
	MaxBytes int
	// MaxPerSection limits the undo depth of a section (0 means unlimited).
	MaxPerSection int
	// MinInterval merges pushes that arrive within the interval on the same
	// section. Zero selects the default, a negative value disables merging.
	MinInterval time.Duration
}

// Manager keeps an undo and a redo stack per section. Pushed snapshots hold
// the state before an edit; Undo and Redo exchange the caller's current state
// for the stored one. It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[domain.SectionID][]Snapshot
	redo map[domain.SectionID][]Snapshot
	// accounting covers both stacks
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 * 1024 * 1024
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[domain.SectionID][]Snapshot), redo: make(map[domain.SectionID][]Snapshot)}
}

// Push records the state of a section before an edit and clears its redo
// stack. A push within MinInterval of the previous one is merged into it: the
// earlier state is kept and the timestamp advances.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.Section)
	stack := m.undo[s.Section]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		if s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
			stack[n-1].TS = s.TS
			return
		}
	}
	m.undo[s.Section] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Section)
}

// Undo returns the state to restore for a section and remembers current for Redo.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sec := current.Section
	stack := m.undo[sec]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[sec] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[sec] = append(m.redo[sec], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(sec)
	return s, true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sec := current.Section
	r := m.redo[sec]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[sec] = r[:len(r)-1]
	m.totalBytes -= len(s.Blob)
	m.undo[sec] = append(m.undo[sec], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(sec)
	return s, true
}

// CanUndo and CanRedo report whether the section has stored states.
func (m *Manager) CanUndo(sec domain.SectionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[sec]) > 0
}

func (m *Manager) CanRedo(sec domain.SectionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[sec]) > 0
}

// ClearSection drops both stacks of a section.
func (m *Manager) ClearSection(sec domain.SectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(sec)
}

// Reset drops every stack, e.g. after loading another layout.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sec := range domain.Sections() {
		m.clearLocked(sec)
	}
}

func (m *Manager) clearLocked(sec domain.SectionID) {
	for _, s := range m.undo[sec] {
		m.totalBytes -= len(s.Blob)
	}
	m.dropRedoLocked(sec)
	delete(m.undo, sec)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

func (m *Manager) dropRedoLocked(sec domain.SectionID) {
	for _, s := range m.redo[sec] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, sec)
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, sections int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sections = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, sections, totalSnapshots
}

func (m *Manager) enforceCapsLocked(sec domain.SectionID) {
	if m.cfg.MaxPerSection > 0 {
		stack := m.undo[sec]
		if len(stack) > m.cfg.MaxPerSection {
			toDrop := len(stack) - m.cfg.MaxPerSection
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[sec] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune the oldest undo entry across sections.
	for m.totalBytes > m.cfg.MaxBytes {
		oldest := domain.SectionID(-1)
		var oldestTS time.Time
		for s, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldest < 0 || stack[0].TS.Before(oldestTS) {
				oldest = s
				oldestTS = stack[0].TS
			}
		}
		if oldest < 0 {
			break
		}
		stack := m.undo[oldest]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldest] = stack[1:]
		if len(m.undo[oldest]) == 0 {
			delete(m.undo, oldest)
		}
	}
}
