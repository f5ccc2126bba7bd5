// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package help

import (
	"strings"

	"github.com/yeetrun/clify/pkg/tui"
)

// token is one word of a usage synopsis. Choice groups may be split after
// their commas when they do not fit on a line.
type token struct {
	plain   string
	painted string
	choices []string
}

func usageTokens(s Schema, c tui.Colorizer) []token {
	var toks []token
	for _, e := range s.Options {
		toks = append(toks, optionToken(e, c))
	}
	for _, e := range s.Positionals {
		toks = append(toks, token{plain: e.Metavar, painted: c.Paint(tui.RoleMetavar, e.Metavar)})
	}
	if len(s.Commands) > 0 {
		names := make([]string, len(s.Commands))
		for i, e := range s.Commands {
			names[i] = e.Name
		}
		plain := "{" + strings.Join(names, ",") + "}"
		toks = append(toks, token{plain: plain, painted: paintChoices(names, c), choices: names})
		toks = append(toks, token{plain: "...", painted: "..."})
	}
	return toks
}

func optionToken(e Entry, c tui.Colorizer) token {
	plain := e.Primary
	painted := c.Paint(tui.RoleFlag, e.Primary)
	if !e.Boolean {
		v := e.ValueName()
		plain += " " + v
		painted += " " + c.Paint(tui.RoleMetavar, v)
	}
	if !e.Required {
		plain = "[" + plain + "]"
		painted = "[" + painted + "]"
	}
	return token{plain: plain, painted: painted}
}

func paintChoices(names []string, c tui.Colorizer) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = c.Paint(tui.RoleCommand, n)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// usageWriter packs tokens into lines no wider than width.
type usageWriter struct {
	width  int
	indent int
	lines  []string
	cur    strings.Builder
	col    int
	fresh  bool // nothing but indentation on the current line
}

func (w *usageWriter) newline(indent int) {
	w.lines = append(w.lines, strings.TrimRight(w.cur.String(), " "))
	w.cur.Reset()
	w.cur.WriteString(strings.Repeat(" ", indent))
	w.col = indent
	w.fresh = true
}

func (w *usageWriter) put(plain, painted string, space bool) {
	if space && !w.fresh {
		w.cur.WriteByte(' ')
		w.col++
	}
	w.cur.WriteString(painted)
	w.col += DisplayWidth(plain)
	w.fresh = false
}

func (w *usageWriter) fits(n int) bool {
	if w.fresh {
		return w.col+n <= w.width
	}
	return w.col+1+n <= w.width
}

func (w *usageWriter) add(t token, c tui.Colorizer) {
	n := DisplayWidth(t.plain)
	if w.fits(n) || (w.fresh && t.choices == nil) {
		w.put(t.plain, t.painted, true)
		return
	}
	if t.choices == nil || w.indent+n <= w.width {
		w.newline(w.indent)
		w.put(t.plain, t.painted, true)
		return
	}
	w.addChoices(t.choices, c)
}

// addChoices splits an oversized {a,b,c} group after its commas.
// Continuation lines start one column past the opening brace.
func (w *usageWriter) addChoices(names []string, c tui.Colorizer) {
	first := "{" + names[0] + ","
	if len(names) == 1 {
		first = "{" + names[0] + "}"
	}
	if !w.fits(DisplayWidth(first)) && !w.fresh {
		w.newline(w.indent)
	}
	if !w.fresh {
		w.cur.WriteByte(' ')
		w.col++
	}
	brace := w.col
	w.put("{", "{", false)
	for i, n := range names {
		piece := n
		if i < len(names)-1 {
			piece += ","
		} else {
			piece += "}"
		}
		if i > 0 && w.col+DisplayWidth(piece) > w.width {
			w.newline(brace + 1)
		}
		painted := c.Paint(tui.RoleCommand, n) + piece[len(n):]
		w.put(piece, painted, false)
	}
}

// renderUsage writes lead+prog followed by the synopsis tokens. Continuation
// lines align with the text after the program name, or use fallback when
// that would take more than half the width.
func renderUsage(lead, paintedLead, prog string, toks []token, width, fallback int, c tui.Colorizer) string {
	head := lead + prog
	w := &usageWriter{width: width, indent: DisplayWidth(head) + 1}
	if w.indent > width/2 {
		w.indent = fallback
	}
	w.cur.WriteString(paintedLead + c.Paint(tui.RoleProg, prog))
	w.col = DisplayWidth(head)
	for _, t := range toks {
		w.add(t, c)
	}
	w.lines = append(w.lines, strings.TrimRight(w.cur.String(), " "))
	return strings.Join(w.lines, "\n")
}
