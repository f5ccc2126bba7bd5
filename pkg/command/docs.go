// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"regexp"
	"strings"
)

// DocSource supplies descriptions for commands and parameters. path is the
// command path below the program name.
type DocSource interface {
	CommandDoc(path []string) string
	ParamDoc(path []string, param string) string
}

// DocMap is a DocSource keyed by dotted path ("workspace.status") and
// dotted path plus parameter ("workspace.status.verbose").
type DocMap map[string]string

func (m DocMap) CommandDoc(path []string) string {
	return m[strings.Join(path, ".")]
}

func (m DocMap) ParamDoc(path []string, param string) string {
	return m[strings.Join(append(append([]string(nil), path...), param), ".")]
}

// Doc is a parsed documentation block.
type Doc struct {
	Description string
	Params      map[string]string
}

// Summary returns the first line of the description.
func (d Doc) Summary() string {
	first, _, _ := strings.Cut(d.Description, "\n")
	return strings.TrimSpace(first)
}

var sectionRe = regexp.MustCompile(`^(Args|Arguments|Parameters|Params):\s*$`)

// paramLineRe matches "name: text" and "name (type): text".
var paramLineRe = regexp.MustCompile(`^([A-Za-z_][\w-]*)\s*(\([^)]*\))?\s*:\s*(.*)$`)

// ParseDoc splits a doc block into its description and an "Args:" section.
// Continuation lines in the section are indented deeper than the name.
func ParseDoc(text string) Doc {
	d := Doc{Params: map[string]string{}}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var desc []string
	inArgs := false
	cur := ""
	curIndent := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if sectionRe.MatchString(trimmed) {
			inArgs = true
			cur = ""
			continue
		}
		if !inArgs {
			desc = append(desc, strings.TrimRight(line, " \t"))
			continue
		}
		if trimmed == "" {
			cur = ""
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if cur != "" && indent > curIndent {
			d.Params[cur] = strings.TrimSpace(d.Params[cur] + " " + trimmed)
			continue
		}
		m := paramLineRe.FindStringSubmatch(trimmed)
		if m == nil {
			// Unindented prose ends the section.
			inArgs = false
			cur = ""
			desc = append(desc, strings.TrimRight(line, " \t"))
			continue
		}
		cur, curIndent = m[1], indent
		d.Params[cur] = strings.TrimSpace(m[3])
	}
	d.Description = strings.TrimSpace(dedent(desc))
	return d
}

// dedent strips the common indentation of every line after the first; the
// first line of a doc block usually starts right after the opening quote.
func dedent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	minIndent := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	out := make([]string, len(lines))
	out[0] = strings.TrimLeft(lines[0], " \t")
	for i, l := range lines[1:] {
		if minIndent > 0 && len(l) >= minIndent {
			l = l[minIndent:]
		}
		out[i+1] = l
	}
	return strings.Join(out, "\n")
}
