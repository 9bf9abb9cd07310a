/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	IconDir string `yaml:"icon_dir"`
	FontDir string `yaml:"font_dir"`
	// LastLayout is reopened by the editor when no file is given.
	LastLayout string `yaml:"last_layout"`
}

type ExportConfig struct {
	Page            string  `yaml:"page"` // a5 | a4-half | a4-full
	ClampWhites     bool    `yaml:"clamp_whites"`
	ClampThreshold  string  `yaml:"clamp_threshold"`
	ZigZagMM        float64 `yaml:"zigzag_mm"`
	FontSize        float64 `yaml:"font_size"`
	IconPaddingMM   float64 `yaml:"icon_padding_mm"`
	KeepNone        bool    `yaml:"keep_none"`
	OpenAfterExport bool    `yaml:"open_after_export"`
	RasterDPI       int     `yaml:"raster_dpi"`
}

type PreviewConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type CacheConfig struct {
	// MaxEntries bounds the icon raster cache; 0 keeps everything.
	MaxEntries int `yaml:"max_entries"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Export        ExportConfig  `yaml:"export"`
	Preview       PreviewConfig `yaml:"preview"`
	Cache         CacheConfig   `yaml:"cache"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{IconDir: "icons", FontDir: "fonts"},
		Export: ExportConfig{
			Page:            "a5",
			ClampWhites:     true,
			ClampThreshold:  "#FDFFF5",
			ZigZagMM:        10,
			FontSize:        10,
			IconPaddingMM:   0.5,
			OpenAfterExport: true,
			RasterDPI:       300,
		},
		Preview: PreviewConfig{Width: 1190, Height: 842},
		Cache:   CacheConfig{MaxEntries: 2048},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile = "DCS_CONFIG"
	EnvIconDir    = "DCS_ICON_DIR"
	EnvFontDir    = "DCS_FONT_DIR"
	EnvPage       = "DCS_PAGE"
	EnvZigZag     = "DCS_ZIGZAG_MM"
	EnvRasterDPI  = "DCS_RASTER_DPI"
	EnvNoOpen     = "DCS_NO_OPEN"
	EnvLogLevel   = "DCS_LOG_LEVEL"
	EnvLogFormat  = "DCS_LOG_FORMAT"
	EnvLogSource  = "DCS_LOG_SOURCE"
	EnvLogFile    = "DCS_LOG_FILE"
)

// ConfigPath returns the per-user config file path. DCS_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return homedir.Expand(p)
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		base = filepath.Join(base, "DecalSheet")
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support", "DecalSheet")
	default:
		base = filepath.Join(home, ".config", "decalsheet")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, merges
// environment overrides and expands "~" in directory settings. A malformed
// file is reported but the defaults are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		// Keys missing from the file keep their defaults.
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	expandPaths(&cfg)
	return cfg, fileErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setString(&dst.General.IconDir, src.General.IconDir)
	setString(&dst.General.FontDir, src.General.FontDir)
	setString(&dst.General.LastLayout, src.General.LastLayout)

	if p := strings.ToLower(strings.TrimSpace(src.Export.Page)); p != "" {
		dst.Export.Page = p
	}
	setString(&dst.Export.ClampThreshold, src.Export.ClampThreshold)
	setFloat(&dst.Export.ZigZagMM, src.Export.ZigZagMM)
	setFloat(&dst.Export.FontSize, src.Export.FontSize)
	setFloat(&dst.Export.IconPaddingMM, src.Export.IconPaddingMM)
	if src.Export.RasterDPI > 0 {
		dst.Export.RasterDPI = src.Export.RasterDPI
	}
	// booleans: src starts from Defaults, so a key absent from the file keeps its default
	dst.Export.ClampWhites = src.Export.ClampWhites
	dst.Export.KeepNone = src.Export.KeepNone
	dst.Export.OpenAfterExport = src.Export.OpenAfterExport

	if src.Preview.Width > 0 {
		dst.Preview.Width = src.Preview.Width
	}
	if src.Preview.Height > 0 {
		dst.Preview.Height = src.Preview.Height
	}
	if src.Cache.MaxEntries != 0 {
		dst.Cache.MaxEntries = src.Cache.MaxEntries
	}

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	setString(&dst.Logging.File, src.Logging.File)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvIconDir)); v != "" {
		cfg.General.IconDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontDir)); v != "" {
		cfg.General.FontDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPage)); v != "" {
		cfg.Export.Page = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvZigZag)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Export.ZigZagMM = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRasterDPI)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Export.RasterDPI = n
		}
	}
	if v := os.Getenv(EnvNoOpen); v != "" {
		cfg.Export.OpenAfterExport = !parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func expandPaths(cfg *AppConfig) {
	for _, p := range []*string{&cfg.General.IconDir, &cfg.General.FontDir, &cfg.General.LastLayout, &cfg.Logging.File} {
		if exp, err := homedir.Expand(*p); err == nil {
			*p = exp
		}
	}
}

var envKeys = map[string]string{
	"general.icon_dir":         EnvIconDir,
	"general.font_dir":         EnvFontDir,
	"export.page":              EnvPage,
	"export.zigzag_mm":         EnvZigZag,
	"export.raster_dpi":        EnvRasterDPI,
	"export.open_after_export": EnvNoOpen,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	if env, ok := envKeys[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
