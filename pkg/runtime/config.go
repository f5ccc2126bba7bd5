// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"io"
	"os"

	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/naming"
)

// ColorMode decides whether help and errors are colorized.
type ColorMode int

const (
	// ColorAuto colors a stream only when it is a terminal.
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Backend names accepted by WithBackend.
const (
	BackendNative = "native"
	BackendUrfave = "urfave"
)

// Config holds everything a run can be told programmatically. Nothing in it
// is read from argv.
type Config struct {
	Prog    string
	Version string
	Style   naming.Style
	NoShort bool
	Docs    command.DocSource

	Backend string
	Layout  help.Layout
	Theme   help.Theme
	Width   int
	Color   ColorMode

	Stdout io.Writer
	Stderr io.Writer

	// Print writes the returned value to Stdout unless --quiet is given.
	Print bool
	// Format is "", "yaml", "json" or "env".
	Format string
	// UseReturnCode makes an int result the exit status.
	UseReturnCode bool
	Traceback     bool
	Debug         bool
	// Progress shows a spinner on Stderr while an async target runs.
	Progress bool

	// HandleSignals installs the interrupt handler for the run.
	HandleSignals    bool
	SilenceInterrupt bool
	// ReraiseInterrupt reports ErrInterrupted in Outcome.Err.
	ReraiseInterrupt bool
	OnInterrupt      func()
}

// DefaultConfig is the configuration Run starts from.
func DefaultConfig() Config {
	return Config{
		Style:         naming.PositionalStyle,
		Backend:       BackendNative,
		Layout:        help.Standard{},
		Theme:         help.DefaultTheme,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Print:         true,
		HandleSignals: true,
	}
}

// Option mutates a Config.
type Option func(*Config)

func WithProg(prog string) Option { return func(c *Config) { c.Prog = prog } }

// WithVersion enables --version on the root command.
func WithVersion(v string) Option { return func(c *Config) { c.Version = v } }

func WithStyle(s naming.Style) Option { return func(c *Config) { c.Style = s } }

// WithNoShort disables automatic short aliases.
func WithNoShort(b bool) Option { return func(c *Config) { c.NoShort = b } }

func WithDocs(d command.DocSource) Option { return func(c *Config) { c.Docs = d } }

func WithBackend(name string) Option { return func(c *Config) { c.Backend = name } }

func WithLayout(l help.Layout) Option { return func(c *Config) { c.Layout = l } }

func WithTheme(t help.Theme) Option { return func(c *Config) { c.Theme = t } }

// WithWidth fixes the help width instead of probing the terminal.
func WithWidth(w int) Option { return func(c *Config) { c.Width = w } }

func WithColor(m ColorMode) Option { return func(c *Config) { c.Color = m } }

// WithOutput replaces the output streams. A nil writer keeps the current
// one.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Config) {
		if stdout != nil {
			c.Stdout = stdout
		}
		if stderr != nil {
			c.Stderr = stderr
		}
	}
}

func WithPrint(b bool) Option { return func(c *Config) { c.Print = b } }

func WithFormat(f string) Option { return func(c *Config) { c.Format = f } }

func WithReturnCode(b bool) Option { return func(c *Config) { c.UseReturnCode = b } }

func WithTraceback(b bool) Option { return func(c *Config) { c.Traceback = b } }

func WithDebug(b bool) Option { return func(c *Config) { c.Debug = b } }

func WithProgress(b bool) Option { return func(c *Config) { c.Progress = b } }

func WithSignals(b bool) Option { return func(c *Config) { c.HandleSignals = b } }

func WithSilentInterrupt(b bool) Option { return func(c *Config) { c.SilenceInterrupt = b } }

func WithReraise(b bool) Option { return func(c *Config) { c.ReraiseInterrupt = b } }

// OnInterrupt registers fn to run once when a run is interrupted.
func OnInterrupt(fn func()) Option { return func(c *Config) { c.OnInterrupt = fn } }
