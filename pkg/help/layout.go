// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package help

import (
	"fmt"
	"strings"

	"github.com/yeetrun/clify/pkg/tui"
)

// Options controls rendering.
type Options struct {
	Width int
	Theme Theme
	// Color enables the theme's palette. Callers decide based on the
	// output stream.
	Color bool
}

func (o Options) colorizer() tui.Colorizer {
	if !o.Color {
		return tui.Colorizer{}
	}
	return tui.Colorizer{Enabled: true, Palette: o.Theme.Palette}
}

func (o Options) width() int {
	if o.Width <= 0 {
		return fallbackWidth
	}
	return max(o.Width, minWidth)
}

// Layout renders a Schema. Output is deterministic for fixed options.
type Layout interface {
	Name() string
	Render(s Schema, o Options) string
	Usage(s Schema, o Options) string
}

var layouts = map[string]Layout{
	"standard":  Standard{},
	"sectioned": Sectioned{},
	"markdown":  Markdown{},
}

// LayoutByName returns a built-in layout. The empty name is Standard.
func LayoutByName(name string) (Layout, error) {
	if name == "" {
		return Standard{}, nil
	}
	l, ok := layouts[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown help layout %q (expected standard|sectioned|markdown)", name)
	}
	return l, nil
}

// Standard is the classic "usage: / positional arguments: / options:"
// screen.
type Standard struct{}

func (Standard) Name() string { return "standard" }

func (Standard) Usage(s Schema, o Options) string {
	c := o.colorizer()
	return renderUsage("usage: ", c.Paint(tui.RoleHeading, "usage:")+" ", s.Prog, usageTokens(s, c), o.width(), 4, c)
}

func (l Standard) Render(s Schema, o Options) string {
	c := o.colorizer()
	width := o.width()
	var b strings.Builder
	desc := ""
	if s.Description != "" {
		desc = wrapParagraphs(s.Description, width, 0)
	}
	if desc != "" && o.Theme.DescriptionFirst {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	b.WriteString(l.Usage(s, o))
	b.WriteString("\n")
	if desc != "" && !o.Theme.DescriptionFirst {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	sections := []section{
		{heading: "positional arguments:", rows: rows(s.Positionals, c)},
		{heading: "options:", rows: rows(s.Options, c)},
		{heading: "commands:", rows: rows(s.Commands, c)},
	}
	renderSections(&b, sections, 2, width, c)
	if s.Epilog != "" {
		b.WriteString("\n")
		b.WriteString(wrapParagraphs(s.Epilog, width, 0))
		b.WriteString("\n")
	}
	return b.String()
}

func rows(es []Entry, c tui.Colorizer) []row {
	out := make([]row, len(es))
	for i, e := range es {
		out[i] = entryRow(e, c)
	}
	return out
}

// Sectioned is the upper-case heading screen ("USAGE:", "OPTIONS:", ...).
type Sectioned struct{}

func (Sectioned) Name() string { return "sectioned" }

func (Sectioned) Usage(s Schema, o Options) string {
	c := o.colorizer()
	return renderUsage("    ", "    ", s.Prog, usageTokens(s, c), o.width(), 8, c)
}

func (l Sectioned) Render(s Schema, o Options) string {
	c := o.colorizer()
	width := o.width()
	var b strings.Builder

	b.WriteString(c.Paint(tui.RoleProg, s.Prog))
	summary, rest, _ := strings.Cut(strings.TrimSpace(s.Description), "\n")
	if summary != "" {
		b.WriteString(" - ")
		b.WriteString(strings.TrimSpace(summary))
	}
	b.WriteString("\n")
	if rest = strings.TrimSpace(rest); rest != "" {
		b.WriteString("\n")
		b.WriteString(wrapParagraphs(rest, width, 0))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(c.Paint(tui.RoleHeading, "USAGE:"))
	b.WriteString("\n")
	b.WriteString(l.Usage(s, o))
	b.WriteString("\n")

	sections := []section{
		{heading: "ARGUMENTS:", rows: rows(s.Positionals, c)},
		{heading: "OPTIONS:", rows: rows(s.Options, c)},
		{heading: "COMMANDS:", rows: rows(s.Commands, c)},
	}
	renderSections(&b, sections, 4, width, c)
	if s.Epilog != "" {
		b.WriteString("\n")
		b.WriteString(wrapParagraphs(s.Epilog, width, 0))
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders a reference page for documentation generators. Width and
// color are ignored.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Usage(s Schema, o Options) string {
	toks := usageTokens(s, tui.Colorizer{})
	parts := make([]string, 0, len(toks)+1)
	parts = append(parts, s.Prog)
	for _, t := range toks {
		parts = append(parts, t.plain)
	}
	return strings.Join(parts, " ")
}

func (l Markdown) Render(s Schema, o Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Prog)
	if s.Description != "" {
		b.WriteString(strings.TrimSpace(s.Description))
		b.WriteString("\n\n")
	}

	b.WriteString("## Usage\n\n")
	b.WriteString("```\n")
	b.WriteString(l.Usage(s, o))
	b.WriteString("\n```\n\n")

	if len(s.Positionals) > 0 {
		b.WriteString("## Arguments\n\n")
		for _, e := range s.Positionals {
			fmt.Fprintf(&b, "### `%s`\n\n", e.Metavar)
			writeMarkdownEntry(&b, e)
		}
	}

	b.WriteString("## Options\n\n")
	for _, e := range s.Options {
		b.WriteString("### `--")
		b.WriteString(e.Long)
		b.WriteString("`")
		if e.Short != "" {
			fmt.Fprintf(&b, " (short: `-%s`)", e.Short)
		}
		if e.Negative != "" {
			fmt.Fprintf(&b, " (negate: `--%s`)", e.Negative)
		}
		b.WriteString("\n\n")
		writeMarkdownEntry(&b, e)
	}

	if len(s.Commands) > 0 {
		b.WriteString("## Commands\n\n")
		for _, e := range s.Commands {
			fmt.Fprintf(&b, "### `%s`\n\n", e.Name)
			if e.Doc != "" {
				b.WriteString(e.Doc)
				b.WriteString("\n\n")
			}
			if len(e.Aliases) > 0 {
				b.WriteString("**Aliases**: ")
				for i, alias := range e.Aliases {
					if i > 0 {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "`%s`", alias)
				}
				b.WriteString("\n\n")
			}
		}
	}
	if s.Epilog != "" {
		b.WriteString(s.Epilog)
		b.WriteString("\n")
	}
	return b.String()
}

func writeMarkdownEntry(b *strings.Builder, e Entry) {
	if e.Doc != "" {
		b.WriteString(e.Doc)
		b.WriteString("\n\n")
	}
	if e.Builtin {
		return
	}
	fmt.Fprintf(b, "- **Type**: `%s`\n", e.TypeName)
	if len(e.Choices) > 0 {
		fmt.Fprintf(b, "- **Choices**: `%s`\n", strings.Join(e.Choices, "`, `"))
	}
	if e.Required {
		b.WriteString("- **Required**: yes\n")
	}
	if e.HasDef {
		fmt.Fprintf(b, "- **Default**: `%s`\n", e.Default)
	}
	b.WriteString("\n")
}
