/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"
)

// Grid dimensions shared by every section.
const (
	Rows         = 5
	Cols         = 10
	SectionCount = 4
)

// SectionID names one of the four fixed regions of a decal sheet. The numeric
// order is the reading order used by the page mapper.
type SectionID int

const (
	LeftShoulder SectionID = iota
	RightShoulder
	GothicNumerals
	ImperialNumerals
)

var sectionNames = [SectionCount]string{"Left Shoulder", "Right Shoulder", "Gothic Numerals", "Imperial Numerals"}

// GothicLabels and ImperialLabels are the per-column numerals pre-filled into
// the numeral sections.
var (
	GothicLabels   = [Cols]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	ImperialLabels = [Cols]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}
)

// Sections returns all section ids in reading order.
func Sections() []SectionID {
	return []SectionID{LeftShoulder, RightShoulder, GothicNumerals, ImperialNumerals}
}

func (s SectionID) Valid() bool { return s >= 0 && int(s) < SectionCount }

func (s SectionID) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Section(%d)", int(s))
	}
	return sectionNames[s]
}

// ParseSection resolves a section by display name ("Left Shoulder") or its
// kebab-case form ("left-shoulder"), case-insensitively.
func ParseSection(name string) (SectionID, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", " ")
	n = strings.ReplaceAll(n, "_", " ")
	for i, s := range sectionNames {
		if strings.ToLower(s) == n {
			return SectionID(i), nil
		}
	}
	return -1, fmt.Errorf("unknown section %q", name)
}

// SectionKind distinguishes icon grids from numeral grids.
type SectionKind int

const (
	IconSection SectionKind = iota
	NumeralSection
)

func (s SectionID) Kind() SectionKind {
	if s == GothicNumerals || s == ImperialNumerals {
		return NumeralSection
	}
	return IconSection
}

// Controls lists which pickers the editor offers for a section's rows.
type Controls struct {
	Icon  bool
	Font  bool
	Color bool
}

// Controls returns the editor configuration for the section. Icon sections
// pick icons and colors; numeral sections pick fonts and colors.
func (s SectionID) Controls() Controls {
	if s.Kind() == NumeralSection {
		return Controls{Font: true, Color: true}
	}
	return Controls{Icon: true, Color: true}
}

// DefaultFont is the font numeral cells start with.
func (s SectionID) DefaultFont() FontSpec {
	return FontSpec{Family: "Arial", Size: 10, Weight: "bold"}
}

// FontFor builds the font applied when the user picks family for this
// section. Imperial numerals are always set bold.
func (s SectionID) FontFor(family string) FontSpec {
	f := FontSpec{Family: family, Size: 10}
	if s == ImperialNumerals {
		f.Weight = "bold"
	}
	return f
}

// Label returns the pre-filled numeral for a column of a numeral section.
func (s SectionID) Label(col int) (string, bool) {
	if col < 0 || col >= Cols {
		return "", false
	}
	switch s {
	case GothicNumerals:
		return GothicLabels[col], true
	case ImperialNumerals:
		return ImperialLabels[col], true
	}
	return "", false
}
