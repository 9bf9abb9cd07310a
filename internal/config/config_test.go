/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	return path
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	d := Defaults()
	if cfg.Export != d.Export || cfg.Preview != d.Preview || cfg.Cache != d.Cache {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := isolate(t)
	cfg := Defaults()
	cfg.Export.Page = "a4-full"
	cfg.Export.KeepNone = true
	cfg.Export.OpenAfterExport = false
	cfg.Preview.Width = 640
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Export.Page != "a4-full" || !got.Export.KeepNone || got.Export.OpenAfterExport || got.Preview.Width != 640 {
		t.Fatalf("saved values not loaded: %#v", got)
	}
}

func TestMalformedFileKeepsDefaults(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("export: [nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Export.Page != "a5" {
		t.Fatalf("expected default page, got %q", cfg.Export.Page)
	}
}

func TestEnvOverridesExport(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPage, "A4-Half")
	t.Setenv(EnvZigZag, "4.5")
	t.Setenv(EnvNoOpen, "yes")
	t.Setenv(EnvRasterDPI, "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Export.Page != "a4-half" || cfg.Export.ZigZagMM != 4.5 || cfg.Export.OpenAfterExport {
		t.Fatalf("env overrides not applied: %#v", cfg.Export)
	}
	if cfg.Export.RasterDPI != 300 {
		t.Fatalf("invalid DPI override should be ignored, got %v", cfg.Export.RasterDPI)
	}
	if env, ok := EnvOverrideFor("export.page"); !ok || env != EnvPage {
		t.Fatalf("EnvOverrideFor(export.page) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("export.font_size"); ok {
		t.Fatalf("font size has no env override")
	}
}

func TestHomeDirExpansion(t *testing.T) {
	isolate(t)
	t.Setenv(EnvIconDir, "~/decal-icons")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.IconDir == "~/decal-icons" || filepath.Base(cfg.General.IconDir) != "decal-icons" {
		t.Fatalf("icon dir not expanded: %q", cfg.General.IconDir)
	}
}

func TestPartialFileKeepsBooleanDefaults(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("general: {icon_dir: /tmp/icons}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.IconDir != "/tmp/icons" {
		t.Fatalf("icon dir not loaded: %q", cfg.General.IconDir)
	}
	if !cfg.Export.ClampWhites || !cfg.Export.OpenAfterExport {
		t.Fatalf("absent booleans lost their defaults: %#v", cfg.Export)
	}
}

func TestExplicitFalseInFileWins(t *testing.T) {
	path := isolate(t)
	body := "export:\n  clamp_whites: false\n  open_after_export: false\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Export.ClampWhites || cfg.Export.OpenAfterExport {
		t.Fatalf("explicit false ignored: %#v", cfg.Export)
	}
	if cfg.Export.Page != "a5" || cfg.Export.ZigZagMM != 10 {
		t.Fatalf("other export defaults lost: %#v", cfg.Export)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/dcs.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/dcs.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeIgnoresZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	src.Export.ClampWhites = true
	mergeInto(&dst, &src)
	if dst.Export.ZigZagMM != 10 || dst.Export.Page != "a5" || dst.Preview.Width != 1190 {
		t.Fatalf("zero values overwrote defaults: %#v", dst)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/dcs.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/dcs.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("logging.file"); !ok || env != EnvLogFile {
		t.Fatalf("EnvOverrideFor(logging.file) = %q, %v", env, ok)
	}
}
