/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package icons

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	dlog "decalsheet/internal/log"
)

// Watcher reloads the icon library when *.svg files in its directory change.
type Watcher struct {
	dir     string
	fs      *fsnotify.Watcher
	cache   *Cache
	updates chan []Entry
	done    chan struct{}
	delay   time.Duration
	logger  *slog.Logger
}

// Watch starts watching dir. Changed files are purged from cache (which may be
// nil) and the reloaded library is sent on Updates after a short quiet period.
func Watch(dir string, cache *Cache) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		dir:     dir,
		fs:      fw,
		cache:   cache,
		updates: make(chan []Entry, 1),
		done:    make(chan struct{}),
		delay:   200 * time.Millisecond,
		logger:  dlog.WithComponent("icons.watch"),
	}
	go w.loop()
	return w, nil
}

// Updates delivers the full, sorted library after each burst of changes.
func (w *Watcher) Updates() <-chan []Entry { return w.updates }

func (w *Watcher) loop() {
	defer close(w.updates)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".svg") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.cache != nil {
				w.cache.Purge(ev.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			entries, err := LoadDir(w.dir)
			if err != nil {
				w.logger.Warn("reload icon library", slog.Any("err", err))
				continue
			}
			select {
			case <-w.updates:
			default:
			}
			w.updates <- entries
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch icon dir", slog.Any("err", err))
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.fs.Close()
}
