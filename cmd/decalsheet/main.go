/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"decalsheet/internal/config"
	dlog "decalsheet/internal/log"
	"decalsheet/internal/version"
)

const desc = `Edit decal-sheet layouts and export them as print-ready PDF, SVG or PNG.`

type cli struct {
	Version versionCmd `cmd:"" help:"Show version."`
	New     newCmd     `cmd:"" help:"Create a layout with numerals pre-filled."`
	Show    showCmd    `cmd:"" help:"List the populated cells of a layout."`
	Set     setCmd     `cmd:"" help:"Place text or an icon into one cell."`
	Clear   clearCmd   `cmd:"" help:"Clear a cell, a row or a whole section."`
	Restore restoreCmd `cmd:"" help:"Replace a layout with its newest readable backup."`
	Export  exportCmd  `cmd:"" help:"Export a layout as PDF or SVG."`
	Preview previewCmd `cmd:"" help:"Render the checkerboard preview to PNG."`
	Batch   batchCmd   `cmd:"" help:"Export a layout in every page preset."`
	Icons   iconsCmd   `cmd:"" help:"Query the icon library."`
	UI      uiCmd      `cmd:"" name:"ui" default:"withargs" help:"Launch the desktop editor."`
}

func main() {
	cfg, cfgErr := config.Load()
	dlog.Init(dlog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := dlog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	l.Debug("start", slog.Int("args", len(os.Args)), slog.String("version", version.String()))

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("decalsheet"),
		kong.Description(desc),
		kong.UsageOnError(),
	)
	err := kctx.Run(&env{cfg: cfg, logger: l})
	if err != nil {
		l.Error("command failed", slog.String("cmd", kctx.Command()), slog.Any("err", err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type versionCmd struct{}

func (versionCmd) Run() error {
	fmt.Println("decalsheet", version.String())
	return nil
}
