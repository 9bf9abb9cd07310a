/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/pkg/browser"

	dlog "decalsheet/internal/log"
)

// ErrHandOff wraps failures to pass an exported file to the platform viewer.
// Callers treat it as a notice; the file itself was written.
var ErrHandOff = errors.New("could not open export in a viewer")

//go:generate mockgen -source=viewer.go -destination=mock_viewer_test.go -package=export

// Viewer hands exported files to the desktop.
type Viewer interface {
	// Print sends the file straight to the default printer.
	Print(path string) error
	// Open shows the file in the default application.
	Open(path string) error
}

// SystemViewer uses the platform's default handlers.
type SystemViewer struct{}

func (SystemViewer) Open(path string) error { return browser.OpenFile(path) }

// Print uses lp(1) when available and reports errors.ErrUnsupported otherwise.
func (SystemViewer) Print(path string) error {
	lp, err := exec.LookPath("lp")
	if err != nil {
		return errors.ErrUnsupported
	}
	return exec.Command(lp, path).Run()
}

// HandOff passes path to v. With print set it tries the printer first and
// falls back to opening the file. The returned error wraps ErrHandOff.
func HandOff(v Viewer, path string, print bool) error {
	logger := dlog.WithOperation(dlog.WithComponent("export"), "handoff")
	if print {
		err := v.Print(path)
		if err == nil {
			return nil
		}
		logger.Warn("print failed, opening in viewer", slog.String("file", path), slog.Any("err", err))
	}
	if err := v.Open(path); err != nil {
		logger.Warn("open failed", slog.String("file", path), slog.Any("err", err))
		return fmt.Errorf("%w: %s: %v", ErrHandOff, path, err)
	}
	return nil
}
