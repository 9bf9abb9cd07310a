/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package icons

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// BatchSize is the number of thumbnails rendered between cancellation checks.
const BatchSize = 30

// Thumbnail renders entry for the picker: drawn at twice size through the
// cache, then downsampled to fit size×size.
func Thumbnail(c *Cache, e Entry, size int, color string) (image.Image, error) {
	img, err := c.GetFit(e.Path, 2*size, 2*size, color)
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, size, size, imaging.Lanczos), nil
}

// ThumbResult is one rendered thumbnail. Img is nil when Err is set.
type ThumbResult struct {
	Index int
	Entry Entry
	Img   image.Image
	Err   error
}

// RenderThumbnails renders entries in batches of BatchSize and hands each
// batch to emit. It stops early with ctx.Err() when ctx is cancelled between
// batches. Per-icon failures are reported in the result and do not stop the run.
func RenderThumbnails(ctx context.Context, c *Cache, entries []Entry, size int, emit func([]ThumbResult)) error {
	for start := 0; start < len(entries); start += BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + BatchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := make([]ThumbResult, 0, end-start)
		for i := start; i < end; i++ {
			img, err := Thumbnail(c, entries[i], size, "")
			batch = append(batch, ThumbResult{Index: i, Entry: entries[i], Img: img, Err: err})
		}
		emit(batch)
	}
	return nil
}
