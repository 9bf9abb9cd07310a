/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines in %s", path)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

// The rotated file log is JSON and carries static, logger and context attributes.
func TestInitWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decalsheet.log")
	Init(Options{Level: "debug", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{Level: "error"}) })

	l := WithOperation(WithComponent("export"), "pdf")
	ctx := ContextWithSection(ContextWithLayout(context.Background(), "/tmp/sheet.json"), "Gothic Numerals")
	l.InfoContext(ctx, "pdf written", slog.Int("drawn", 48))

	m := lastJSONLine(t, path)
	want := map[string]any{
		"app":       "decalsheet",
		"component": "export",
		"op":        "pdf",
		"msg":       "pdf written",
		"layout":    "/tmp/sheet.json",
		"section":   "Gothic Numerals",
		"drawn":     float64(48),
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %v (record %v)", k, m[k], v, m)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr: %v", m)
	}
}

func TestInitFiltersFileByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decalsheet.log")
	Init(Options{Level: "warn", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{Level: "error"}) })

	L().Info("dropped")
	L().Warn("kept")
	if m := lastJSONLine(t, path); m["msg"] != "kept" {
		t.Fatalf("last record = %v", m)
	}
}
