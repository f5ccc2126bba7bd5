// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package help

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/yeetrun/clify/pkg/tui"
)

const (
	gutter       = 2
	minDescWidth = 20
)

type row struct {
	plain   string
	painted string
	text    string
}

type section struct {
	heading string
	rows    []row
}

func entryRow(e Entry, c tui.Colorizer) row {
	switch e.Kind {
	case Positional:
		return row{plain: e.Metavar, painted: c.Paint(tui.RoleMetavar, e.Metavar), text: e.Text()}
	case Command:
		plain := e.Name
		painted := c.Paint(tui.RoleCommand, e.Name)
		if len(e.Aliases) > 0 {
			suffix := " (" + strings.Join(e.Aliases, ", ") + ")"
			plain += suffix
			painted += suffix
		}
		return row{plain: plain, painted: painted, text: e.Text()}
	}
	flags := e.Flags()
	paintedFlags := make([]string, len(flags))
	for i, f := range flags {
		paintedFlags[i] = c.Paint(tui.RoleFlag, f)
	}
	plain := strings.Join(flags, ", ")
	painted := strings.Join(paintedFlags, ", ")
	if !e.Boolean {
		v := e.ValueName()
		plain += " " + v
		painted += " " + c.Paint(tui.RoleMetavar, v)
	}
	return row{plain: plain, painted: painted, text: e.Text()}
}

// descColumn is where every description on the screen starts.
func descColumn(indent int, sections []section) int {
	widest := 0
	for _, s := range sections {
		for _, r := range s.rows {
			widest = max(widest, DisplayWidth(r.plain))
		}
	}
	return indent + widest + gutter
}

func renderSections(b *strings.Builder, sections []section, indent, width int, c tui.Colorizer) {
	col := descColumn(indent, sections)
	descWidth := max(width-col, minDescWidth)
	pad := strings.Repeat(" ", indent)
	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(c.Paint(tui.RoleHeading, s.heading))
		b.WriteString("\n")
		for _, r := range s.rows {
			b.WriteString(pad)
			b.WriteString(r.painted)
			if r.text == "" {
				b.WriteString("\n")
				continue
			}
			b.WriteString(strings.Repeat(" ", col-indent-DisplayWidth(r.plain)))
			lines := strings.Split(wordwrap.WrapString(r.text, uint(descWidth)), "\n")
			b.WriteString(lines[0])
			b.WriteString("\n")
			for _, l := range lines[1:] {
				b.WriteString(strings.Repeat(" ", col))
				b.WriteString(l)
				b.WriteString("\n")
			}
		}
	}
}

// wrapParagraphs wraps prose to width, keeping blank-line paragraph breaks.
func wrapParagraphs(text string, width, indent int) string {
	pad := strings.Repeat(" ", indent)
	paras := strings.Split(strings.TrimSpace(text), "\n\n")
	out := make([]string, 0, len(paras))
	for _, p := range paras {
		p = strings.Join(strings.Fields(p), " ")
		wrapped := wordwrap.WrapString(p, uint(max(width-indent, minDescWidth)))
		out = append(out, pad+strings.ReplaceAll(wrapped, "\n", "\n"+pad))
	}
	return strings.Join(out, "\n\n")
}
