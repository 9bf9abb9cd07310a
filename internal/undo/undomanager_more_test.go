/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"decalsheet/internal/domain"
)

func TestClearSectionAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerSection: 10, MinInterval: time.Millisecond})
	sec := domain.LeftShoulder
	m.Push(snap(sec, "abcdef", time.Now()))
	tb, sections, total := m.Stats()
	if tb == 0 || sections != 1 || total != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d sections=%d total=%d", tb, sections, total)
	}
	m.ClearSection(sec)
	tb, sections, total = m.Stats()
	if tb != 0 || sections != 0 || total != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d sections=%d total=%d", tb, sections, total)
	}
}

func TestResetDropsEverything(t *testing.T) {
	m := NewManager(Config{MinInterval: -1})
	t0 := time.Now()
	for _, sec := range domain.Sections() {
		m.Push(snap(sec, "ab", t0))
	}
	if _, ok := m.Undo(snap(domain.LeftShoulder, "cd", t0)); !ok {
		t.Fatalf("undo failed")
	}
	m.Reset()
	tb, sections, total := m.Stats()
	if tb != 0 || sections != 0 || total != 0 {
		t.Fatalf("expected empty manager, got tb=%d sections=%d total=%d", tb, sections, total)
	}
	if m.CanRedo(domain.LeftShoulder) {
		t.Fatalf("redo should be cleared")
	}
}

func TestGlobalPruneAcrossSections(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(snap(domain.LeftShoulder, "xxxx", t0))
	m.Push(snap(domain.RightShoulder, "yyyy", t0.Add(time.Second)))
	// Exceeds the cap and forces the oldest entry out.
	m.Push(snap(domain.RightShoulder, "zzzz", t0.Add(2*time.Second)))

	if _, _, total := m.Stats(); total != 2 {
		t.Fatalf("expected 2 snapshots to remain, got %d", total)
	}
	if m.CanUndo(domain.LeftShoulder) {
		t.Fatalf("expected left shoulder to have been pruned")
	}
	if !m.CanUndo(domain.RightShoulder) {
		t.Fatalf("expected right shoulder to have snapshots")
	}
}
