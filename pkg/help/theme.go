// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/yeetrun/clify/pkg/tui"
)

// Theme decorates help output. Themes never change layout.
type Theme struct {
	Name    string
	Palette tui.Palette
	// DescriptionFirst renders the description before the usage block.
	DescriptionFirst bool
}

var themes = map[string]Theme{
	"plain": {Name: "plain"},
	"default": {Name: "default", Palette: tui.Palette{
		tui.RoleHeading: {color.Bold},
		tui.RoleProg:    {color.Bold},
		tui.RoleFlag:    {color.FgCyan},
		tui.RoleMetavar: {color.FgYellow},
		tui.RoleCommand: {color.FgGreen},
		tui.RoleDefault: {color.Faint},
		tui.RoleError:   {color.FgRed, color.Bold},
		tui.RoleNotice:  {color.FgYellow},
		tui.RoleSpinner: {color.FgCyan},
	}},
	"vivid": {Name: "vivid", DescriptionFirst: true, Palette: tui.Palette{
		tui.RoleHeading: {color.FgMagenta, color.Bold, color.Underline},
		tui.RoleProg:    {color.FgHiWhite, color.Bold},
		tui.RoleFlag:    {color.FgHiCyan, color.Bold},
		tui.RoleMetavar: {color.FgHiYellow},
		tui.RoleCommand: {color.FgHiGreen, color.Bold},
		tui.RoleDefault: {color.FgHiBlack},
		tui.RoleError:   {color.FgHiRed, color.Bold},
		tui.RoleNotice:  {color.FgHiYellow},
		tui.RoleSpinner: {color.FgHiMagenta},
	}},
	"mono": {Name: "mono", Palette: tui.Palette{
		tui.RoleHeading: {color.Bold},
		tui.RoleProg:    {color.Bold},
		tui.RoleFlag:    {color.Bold},
		tui.RoleMetavar: {color.Underline},
		tui.RoleCommand: {color.Bold},
		tui.RoleError:   {color.Bold},
		tui.RoleSpinner: {color.Bold},
	}},
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = themes["default"]

// ThemeByName returns a built-in theme.
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		return DefaultTheme, nil
	}
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return t, nil
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
