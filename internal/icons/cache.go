/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package icons

import (
	"container/list"
	"image"
	"log/slog"
	"math"
	"os"
	"sync"

	"decalsheet/internal/domain"
	dlog "decalsheet/internal/log"
)

// Key identifies one rendered icon raster.
type Key struct {
	Path  string
	W, H  int
	Color string
}

// EvictionPolicy decides which entries a Cache drops. Implementations are
// called with the cache lock held.
type EvictionPolicy interface {
	// Touched records a hit on k.
	Touched(k Key)
	// Added records a new entry and returns the keys to evict.
	Added(k Key) []Key
	// Removed forgets k after the cache dropped it on its own.
	Removed(k Key)
}

// Unbounded keeps every entry for the lifetime of the cache.
type Unbounded struct{}

func (Unbounded) Touched(Key)     {}
func (Unbounded) Added(Key) []Key { return nil }
func (Unbounded) Removed(Key)      {}

// LRU evicts the least recently used entry once more than Max are held.
type LRU struct {
	Max   int
	order *list.List
	elems map[Key]*list.Element
}

func NewLRU(max int) *LRU {
	return &LRU{Max: max, order: list.New(), elems: map[Key]*list.Element{}}
}

func (l *LRU) Touched(k Key) {
	if e, ok := l.elems[k]; ok {
		l.order.MoveToFront(e)
	}
}

func (l *LRU) Added(k Key) []Key {
	if e, ok := l.elems[k]; ok {
		l.order.MoveToFront(e)
	} else {
		l.elems[k] = l.order.PushFront(k)
	}
	var out []Key
	for l.Max > 0 && l.order.Len() > l.Max {
		back := l.order.Back()
		old := back.Value.(Key)
		l.order.Remove(back)
		delete(l.elems, old)
		out = append(out, old)
	}
	return out
}

func (l *LRU) Removed(k Key) {
	if e, ok := l.elems[k]; ok {
		l.order.Remove(e)
		delete(l.elems, k)
	}
}

// Len returns the number of tracked keys.
func (l *LRU) Len() int { return l.order.Len() }

// Loader renders an icon file at a pixel size.
type Loader func(path string, w, h int) (image.Image, error)

// Cache memoizes rendered and tinted icons. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]image.Image
	extents map[string][2]float64
	policy  EvictionPolicy
	load    Loader
	measure func(path string) (float64, float64, error)
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithPolicy replaces the default unbounded policy.
func WithPolicy(p EvictionPolicy) Option { return func(c *Cache) { c.policy = p } }

// WithMeasure replaces the viewBox reader used by GetFit.
func WithMeasure(m func(path string) (float64, float64, error)) Option {
	return func(c *Cache) { c.measure = m }
}

// WithLoader replaces the oksvg file renderer.
func WithLoader(l Loader) Option { return func(c *Cache) { c.load = l } }

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: map[Key]image.Image{},
		extents: map[string][2]float64{},
		policy:  Unbounded{},
		measure: func(path string) (float64, float64, error) {
			b, err := os.ReadFile(path)
			if err != nil {
				return 0, 0, err
			}
			return ViewBox(b)
		},
		load: func(path string, w, h int) (image.Image, error) {
			return RasterizeFile(path, w, h)
		},
		logger: dlog.WithComponent("icons"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the icon at path rendered to w×h and tinted with color. An
// empty color skips tinting. Repeated calls with the same key return the same
// image value.
func (c *Cache) Get(path string, w, h int, color string) (image.Image, error) {
	k := Key{Path: path, W: w, H: h, Color: color}
	c.mu.Lock()
	if img, ok := c.entries[k]; ok {
		c.policy.Touched(k)
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := c.render(k)
	if err != nil {
		c.logger.Warn("icon render failed", slog.String("path", path), slog.Any("err", err))
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[k]; ok {
		return prev, nil
	}
	c.entries[k] = img
	for _, old := range c.policy.Added(k) {
		delete(c.entries, old)
	}
	return img, nil
}

// GetFit is Get with the raster sized to the icon's own aspect ratio inside
// w×h. When the viewBox cannot be read the full box is requested.
func (c *Cache) GetFit(path string, w, h int, color string) (image.Image, error) {
	fw, fh := c.fit(path, w, h)
	return c.Get(path, fw, fh, color)
}

func (c *Cache) fit(path string, w, h int) (int, int) {
	c.mu.Lock()
	ext, ok := c.extents[path]
	c.mu.Unlock()
	if !ok {
		vw, vh, err := c.measure(path)
		if err != nil || vw <= 0 || vh <= 0 {
			return w, h
		}
		ext = [2]float64{vw, vh}
		c.mu.Lock()
		c.extents[path] = ext
		c.mu.Unlock()
	}
	r, _ := domain.Rect{Width: float64(w), Height: float64(h)}.Fit(ext[0], ext[1])
	return max(1, int(math.Round(r.Width))), max(1, int(math.Round(r.Height)))
}

func (c *Cache) render(k Key) (image.Image, error) {
	img, err := c.load(k.Path, k.W, k.H)
	if err != nil {
		return nil, err
	}
	if k.Color == "" {
		return img, nil
	}
	tint, err := domain.ParseColor(k.Color)
	if err != nil {
		return nil, err
	}
	return Tint(img, tint), nil
}

// Len returns the number of cached rasters.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry rendered from path, for example after the file changed on disk.
func (c *Cache) Purge(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.extents, path)
	for k := range c.entries {
		if k.Path == path {
			delete(c.entries, k)
			c.policy.Removed(k)
		}
	}
}
