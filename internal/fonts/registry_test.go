/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"decalsheet/internal/domain"
)

func fontDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"GoRegular.ttf": goregular.TTF,
		"GoBold.TTF":    gobold.TTF,
		"broken.otf":    []byte("not a font"),
		"readme.txt":    []byte("x"),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadDirAndLookup(t *testing.T) {
	r := NewRegistry()
	n, err := r.LoadDir(fontDir(t))
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if n != 2 {
		t.Fatalf("loaded %d fonts, want 2", n)
	}
	if fams := r.Families(); len(fams) != 1 || fams[0] != "Go" {
		t.Fatalf("families = %v", fams)
	}

	f, ok := r.Lookup(domain.FontSpec{Family: "go", Size: 10, Weight: "bold"})
	if !ok || !f.Bold || filepath.Base(f.Path) != "GoBold.TTF" {
		t.Fatalf("bold lookup = %+v, %v", f, ok)
	}
	f, ok = r.Lookup(domain.FontSpec{Family: "Go"})
	if !ok || f.Bold {
		t.Fatalf("regular lookup = %+v, %v", f, ok)
	}
	f, ok = r.Lookup(domain.FontSpec{Family: "GoBold"})
	if !ok || !f.Bold {
		t.Fatalf("base-name lookup = %+v, %v", f, ok)
	}
	if len(f.Data) == 0 {
		t.Fatal("font data not kept")
	}
	if _, ok := r.Lookup(domain.FontSpec{Family: "Arial"}); ok {
		t.Fatal("unexpected Arial")
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := NewRegistry().LoadDir(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFaceFallbackAndCache(t *testing.T) {
	r := NewRegistry()
	if _, err := r.LoadDir(fontDir(t)); err != nil {
		t.Fatal(err)
	}
	face, ok := r.Face(domain.FontSpec{Family: "Nope"}, 12, 72)
	if ok || face != basicfont.Face7x13 {
		t.Fatal("expected basicfont fallback")
	}
	a, ok := r.Face(domain.FontSpec{Family: "Go", Size: 10}, 0, 0)
	if !ok {
		t.Fatal("Go face not found")
	}
	b, _ := r.Face(domain.FontSpec{Family: "Go", Size: 10}, 10, 72)
	if a != b {
		t.Fatal("face not cached")
	}
	if m := a.Metrics(); m.Ascent <= 0 {
		t.Fatalf("ascent = %v", m.Ascent)
	}
}

func TestNilRegistryLookup(t *testing.T) {
	var r *Registry
	if _, ok := r.Lookup(domain.FontSpec{Family: "Go"}); ok {
		t.Fatal("nil registry must not resolve")
	}
}
