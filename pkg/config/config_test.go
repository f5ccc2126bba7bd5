// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/naming"
	"github.com/yeetrun/clify/pkg/runtime"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func apply(t *testing.T, opts []runtime.Option) runtime.Config {
	t.Helper()
	c := runtime.DefaultConfig()
	for _, o := range opts {
		o(&c)
	}
	return c
}

func TestLoadFromDirWalksUp(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "theme = \"mono\"\nlayout = \"sectioned\"\nwidth = 100\n\n[interrupt]\nsilent = true\n"
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	loc, err := LoadFromDir(deep)
	if err != nil {
		t.Fatal(err)
	}
	if loc == nil {
		t.Fatal("config not found")
	}
	if loc.Dir != root {
		t.Errorf("Dir = %q, want %q", loc.Dir, root)
	}
	want := &Config{Theme: "mono", Layout: "sectioned", Width: 100, Interrupt: Interrupt{Silent: true}}
	if diff := cmp.Diff(want, loc.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromDirMissing(t *testing.T) {
	loc, err := LoadFromDir(t.TempDir())
	if err != nil || loc != nil {
		t.Errorf("LoadFromDir = %v, %v; want nil, nil", loc, err)
	}
}

func TestLoadFromDirBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("theme = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromDir(dir); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	in := &Config{Backend: "urfave", Traceback: true}
	if err := Save(path, in); err != nil {
		t.Fatal(err)
	}
	loc, err := LoadFromDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, loc.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("theme = \"mono\"\nstyle = \"positional\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := Resolve(dir, envMap(map[string]string{
		"CLIFY_THEME":     "vivid",
		"CLIFY_STYLE":     "keyword",
		"CLIFY_BACKEND":   "urfave",
		"CLIFY_TRACEBACK": "yes",
		"CLIFY_DEBUG":     "1",
		"NO_COLOR":        "1",
		"COLUMNS":         "120",
	}))
	if err != nil {
		t.Fatal(err)
	}
	c := apply(t, opts)
	if c.Theme.Name != "vivid" {
		t.Errorf("Theme = %q", c.Theme.Name)
	}
	if c.Style != naming.KeywordStyle {
		t.Errorf("Style = %v", c.Style)
	}
	if c.Backend != runtime.BackendUrfave || !c.Traceback || !c.Debug {
		t.Errorf("config = %+v", c)
	}
	if c.Color != runtime.ColorNever || c.Width != 120 {
		t.Errorf("Color = %v, Width = %d", c.Color, c.Width)
	}
}

func TestDefaultsUntouched(t *testing.T) {
	opts, err := Resolve(t.TempDir(), envMap(nil))
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 0 {
		t.Errorf("got %d options from an empty environment", len(opts))
	}
	c := apply(t, opts)
	if c.Theme.Name != help.DefaultTheme.Name || c.Backend != runtime.BackendNative {
		t.Errorf("config = %+v", c)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		c    Config
	}{
		{"theme", Config{Theme: "neon"}},
		{"layout", Config{Layout: "fancy"}},
		{"style", Config{Style: "mixed"}},
		{"backend", Config{Backend: "getopt"}},
		{"color", Config{Color: "sometimes"}},
	}
	for _, tt := range tests {
		if _, err := tt.c.Options(); err == nil {
			t.Errorf("%s: invalid value accepted", tt.name)
		}
	}
	c := &Config{}
	if err := c.ApplyEnv(envMap(map[string]string{"CLIFY_DEBUG": "perhaps"})); err == nil {
		t.Error("CLIFY_DEBUG=perhaps accepted")
	}
}

func TestNormalizeVersion(t *testing.T) {
	tests := map[string]string{
		"v1.2":        "1.2.0",
		"1.2.3":       "1.2.3",
		" 2.0.0-rc.1": "2.0.0-rc.1",
		"dev":         "dev",
		"":            "",
	}
	for in, want := range tests {
		if got := NormalizeVersion(in); got != want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVersionOption(t *testing.T) {
	opts, err := (&Config{Version: "v0.3"}).Options()
	if err != nil {
		t.Fatal(err)
	}
	if c := apply(t, opts); c.Version != "0.3.0" {
		t.Errorf("Version = %q", c.Version)
	}
}
