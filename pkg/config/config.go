// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config layers run settings: built-in defaults, then an optional
// clify.toml found by walking up from the working directory, then the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/clify/pkg/fileutil"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/naming"
	"github.com/yeetrun/clify/pkg/runtime"
)

// FileName is the project config file looked up from the working
// directory.
const FileName = "clify.toml"

// Config is the file and environment view of runtime.Config. Empty fields
// leave the runtime default alone.
type Config struct {
	Prog      string    `toml:"prog,omitempty"`
	Version   string    `toml:"version,omitempty"`
	Theme     string    `toml:"theme,omitempty"`
	Layout    string    `toml:"layout,omitempty"`
	Style     string    `toml:"style,omitempty"`
	Backend   string    `toml:"backend,omitempty"`
	Color     string    `toml:"color,omitempty"`
	Format    string    `toml:"format,omitempty"`
	Width     int       `toml:"width,omitempty"`
	NoShort   bool      `toml:"no_short,omitempty"`
	Traceback bool      `toml:"traceback,omitempty"`
	Debug     bool      `toml:"debug,omitempty"`
	Progress  bool      `toml:"progress,omitempty"`
	Interrupt Interrupt `toml:"interrupt,omitempty"`
}

// Interrupt configures SIGINT handling.
type Interrupt struct {
	Silent  bool `toml:"silent,omitempty"`
	Reraise bool `toml:"reraise,omitempty"`
}

// Location is a loaded config file.
type Location struct {
	Path   string
	Dir    string
	Config *Config
}

// LoadFromDir finds and decodes the nearest FileName at or above startDir.
// It returns nil, nil when there is none.
func LoadFromDir(startDir string) (*Location, error) {
	path, err := fileutil.FindUp(startDir, FileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &Location{Path: path, Dir: filepath.Dir(path), Config: &cfg}, nil
}

// Save writes c to path as TOML.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// ApplyEnv overlays CLIFY_* variables, NO_COLOR and COLUMNS.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"CLIFY_THEME":   &c.Theme,
		"CLIFY_LAYOUT":  &c.Layout,
		"CLIFY_STYLE":   &c.Style,
		"CLIFY_BACKEND": &c.Backend,
		"CLIFY_COLOR":   &c.Color,
		"CLIFY_FORMAT":  &c.Format,
	}
	for k, p := range str {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			*p = v
		}
	}
	flags := map[string]*bool{
		"CLIFY_TRACEBACK": &c.Traceback,
		"CLIFY_DEBUG":     &c.Debug,
		"CLIFY_PROGRESS":  &c.Progress,
	}
	for k, p := range flags {
		v := strings.TrimSpace(getenv(k))
		if v == "" {
			continue
		}
		b, err := kind.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		*p = b
	}
	if getenv("NO_COLOR") != "" {
		c.Color = "never"
	}
	if cols := strings.TrimSpace(getenv("COLUMNS")); cols != "" && c.Width == 0 {
		if n, err := strconv.Atoi(cols); err == nil && n > 0 {
			c.Width = n
		}
	}
	return nil
}

// NormalizeVersion canonicalizes semantic versions ("v1.2" becomes
// "1.2.0"). Anything else is returned trimmed but otherwise untouched.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return sv.String()
}

func parseColor(s string) (runtime.ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return runtime.ColorAuto, nil
	case "always", "on", "force":
		return runtime.ColorAlways, nil
	case "never", "off", "none":
		return runtime.ColorNever, nil
	}
	return 0, fmt.Errorf("unknown color mode %q (expected auto|always|never)", s)
}

// Options converts c into runtime options. Only fields that are set
// produce an option.
func (c *Config) Options() ([]runtime.Option, error) {
	var opts []runtime.Option
	if c.Prog != "" {
		opts = append(opts, runtime.WithProg(c.Prog))
	}
	if v := NormalizeVersion(c.Version); v != "" {
		opts = append(opts, runtime.WithVersion(v))
	}
	if c.Theme != "" {
		t, err := help.ThemeByName(c.Theme)
		if err != nil {
			return nil, err
		}
		opts = append(opts, runtime.WithTheme(t))
	}
	if c.Layout != "" {
		l, err := help.LayoutByName(c.Layout)
		if err != nil {
			return nil, err
		}
		opts = append(opts, runtime.WithLayout(l))
	}
	if c.Style != "" {
		s, err := naming.ParseStyle(c.Style)
		if err != nil {
			return nil, err
		}
		opts = append(opts, runtime.WithStyle(s))
	}
	if c.Backend != "" {
		switch c.Backend {
		case runtime.BackendNative, runtime.BackendUrfave:
		default:
			return nil, fmt.Errorf("unknown backend %q (expected %s|%s)", c.Backend, runtime.BackendNative, runtime.BackendUrfave)
		}
		opts = append(opts, runtime.WithBackend(c.Backend))
	}
	if c.Color != "" {
		m, err := parseColor(c.Color)
		if err != nil {
			return nil, err
		}
		opts = append(opts, runtime.WithColor(m))
	}
	if c.Format != "" {
		opts = append(opts, runtime.WithFormat(c.Format))
	}
	if c.Width > 0 {
		opts = append(opts, runtime.WithWidth(c.Width))
	}
	if c.NoShort {
		opts = append(opts, runtime.WithNoShort(true))
	}
	if c.Traceback {
		opts = append(opts, runtime.WithTraceback(true))
	}
	if c.Debug {
		opts = append(opts, runtime.WithDebug(true))
	}
	if c.Progress {
		opts = append(opts, runtime.WithProgress(true))
	}
	if c.Interrupt.Silent {
		opts = append(opts, runtime.WithSilentInterrupt(true))
	}
	if c.Interrupt.Reraise {
		opts = append(opts, runtime.WithReraise(true))
	}
	return opts, nil
}

// Resolve loads the file nearest to startDir, overlays the environment and
// returns the resulting options.
func Resolve(startDir string, getenv func(string) string) ([]runtime.Option, error) {
	c := &Config{}
	loc, err := LoadFromDir(startDir)
	if err != nil {
		return nil, err
	}
	if loc != nil {
		c = loc.Config
	}
	if err := c.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return c.Options()
}

// FromEnvironment is Resolve for the working directory and the process
// environment.
func FromEnvironment() ([]runtime.Option, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Resolve(cwd, os.Getenv)
}
