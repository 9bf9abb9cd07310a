/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fonts resolves the font descriptors stored in a layout to TrueType
// and OpenType files found in a fonts directory.
package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"decalsheet/internal/domain"
	dlog "decalsheet/internal/log"
)

// Font is one loaded font file.
type Font struct {
	Family string
	Bold   bool
	Path   string
	Data   []byte
	ot     *opentype.Font
}

type key struct {
	name string
	bold bool
}

// Registry maps family names and file base names to loaded fonts. Lookups are
// case-insensitive. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	fonts map[key]*Font
	names map[string]struct{}
	faces map[faceKey]font.Face
}

type faceKey struct {
	f    *Font
	size float64
	dpi  float64
}

func NewRegistry() *Registry {
	return &Registry{fonts: map[key]*Font{}, names: map[string]struct{}{}, faces: map[faceKey]font.Face{}}
}

// LoadDir registers every *.ttf and *.otf file in dir. Unreadable files are
// logged and skipped; only a missing directory is an error.
func (r *Registry) LoadDir(dir string) (int, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read font dir: %w", err)
	}
	logger := dlog.WithComponent("fonts")
	n := 0
	for _, de := range des {
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if de.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, de.Name())); err != nil {
			logger.Warn("skip font", slog.String("file", de.Name()), slog.Any("err", err))
			continue
		}
		n++
	}
	return n, nil
}

// LoadFile registers one font file under its family name and its file base name.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	ot, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", path, err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	family, _ := ot.Name(nil, sfnt.NameIDFamily)
	sub, _ := ot.Name(nil, sfnt.NameIDSubfamily)
	if family == "" {
		family = base
	}
	f := &Font{
		Family: family,
		Bold:   strings.Contains(strings.ToLower(sub), "bold"),
		Path:   path,
		Data:   data,
		ot:     ot,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[family] = struct{}{}
	for _, name := range []string{family, base} {
		k := key{name: strings.ToLower(name), bold: f.Bold}
		if _, taken := r.fonts[k]; !taken || name == base {
			r.fonts[k] = f
		}
	}
	return nil
}

// Lookup finds the font for spec: the requested weight first, then any
// weight of the family.
func (r *Registry) Lookup(spec domain.FontSpec) (*Font, bool) {
	if r == nil {
		return nil, false
	}
	name := strings.ToLower(strings.TrimSpace(spec.Family))
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.fonts[key{name: name, bold: spec.Bold()}]; ok {
		return f, true
	}
	if f, ok := r.fonts[key{name: name, bold: !spec.Bold()}]; ok {
		return f, true
	}
	return nil, false
}

// Families lists the registered family names in sorted order.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Face returns a rasterizer face for spec at the given size in points and
// dpi. Unknown families fall back to basicfont.Face7x13; the second result
// reports whether the requested font was found.
func (r *Registry) Face(spec domain.FontSpec, size, dpi float64) (font.Face, bool) {
	if size <= 0 {
		size = spec.Size
	}
	if size <= 0 {
		size = 10
	}
	if dpi <= 0 {
		dpi = 72
	}
	f, ok := r.Lookup(spec)
	if !ok {
		return basicfont.Face7x13, false
	}
	fk := faceKey{f: f, size: size, dpi: dpi}
	r.mu.RLock()
	face, cached := r.faces[fk]
	r.mu.RUnlock()
	if cached {
		return face, true
	}
	face, err := opentype.NewFace(f.ot, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13, false
	}
	r.mu.Lock()
	r.faces[fk] = face
	r.mu.Unlock()
	return face, true
}
