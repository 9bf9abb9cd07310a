/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package icons loads the icon library, rasterizes and tints SVG icons and
// rewrites SVG markup to a single fill color.
package icons

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// UnknownTag is the facet shown for icons whose file name carries no tags.
const UnknownTag = "Unknown"

// Entry is one icon file of the library.
type Entry struct {
	Name string
	Tags []string
	Path string
}

func (e Entry) String() string {
	if len(e.Tags) == 0 {
		return e.Name
	}
	return e.Name + " – " + strings.Join(e.Tags, ", ")
}

// HasTag reports whether the entry carries tag. UnknownTag matches untagged entries.
func (e Entry) HasTag(tag string) bool {
	if tag == UnknownTag && len(e.Tags) == 0 {
		return true
	}
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

var tagPattern = regexp.MustCompile(`^(.*?)\s*\[(.*?)\]$`)

// ParseFilename splits "Name [tag1, tag2].svg" into its name and tags. A file
// name without a bracket suffix has no tags.
func ParseFilename(filename string) (string, []string) {
	base := filepath.Base(filename)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	m := tagPattern.FindStringSubmatch(base)
	if m == nil {
		return base, nil
	}
	var tags []string
	for _, t := range strings.Split(m[2], ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return strings.TrimSpace(m[1]), tags
}

// Less orders entries by tag list (lexicographically, element-wise) and then
// by case-insensitive name.
func Less(a, b Entry) bool {
	for i := 0; i < len(a.Tags) && i < len(b.Tags); i++ {
		if a.Tags[i] != b.Tags[i] {
			return a.Tags[i] < b.Tags[i]
		}
	}
	if len(a.Tags) != len(b.Tags) {
		return len(a.Tags) < len(b.Tags)
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// LoadDir lists every *.svg file of dir (not recursive) as a sorted library.
func LoadDir(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read icon dir: %w", err)
	}
	var out []Entry
	for _, de := range des {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".svg") {
			continue
		}
		name, tags := ParseFilename(de.Name())
		out = append(out, Entry{Name: name, Tags: tags, Path: filepath.Join(dir, de.Name())})
	}
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out, nil
}

// Facets returns the sorted set of tags offered as filters: the first two tags
// of each entry, plus UnknownTag when some entry has none.
func Facets(entries []Entry) []string {
	set := map[string]struct{}{}
	for _, e := range entries {
		if len(e.Tags) == 0 {
			set[UnknownTag] = struct{}{}
			continue
		}
		for i, t := range e.Tags {
			if i == 2 {
				break
			}
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Filter keeps entries matching tag. An empty tag keeps everything.
func Filter(entries []Entry, tag string) []Entry {
	if tag == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}
