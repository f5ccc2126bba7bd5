// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tui

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Role names a piece of decorated output. Themes map roles to attributes.
type Role int

const (
	RoleNone Role = iota
	RoleHeading
	RoleProg
	RoleFlag
	RoleMetavar
	RoleCommand
	RoleDefault
	RoleError
	RoleNotice
	RoleSpinner
)

// Palette maps roles to color attributes.
type Palette map[Role][]color.Attribute

type Colorizer struct {
	Enabled bool
	Palette Palette
}

// NewColorizer returns an enabled colorizer only when enabled is set and the
// environment does not ask for plain output.
func NewColorizer(enabled bool, p Palette) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true, Palette: p}
}

// Paint decorates text for role. Text is returned untouched when color is
// off or the role has no attributes.
func (c Colorizer) Paint(role Role, text string) string {
	if !c.Enabled || text == "" {
		return text
	}
	attrs := c.Palette[role]
	if len(attrs) == 0 {
		return text
	}
	col := color.New(attrs...)
	col.EnableColor()
	return col.Sprint(text)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal behind w, or 0.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return cols
}
