// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package help renders help screens and usage synopses for command trees.
package help

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/naming"
)

// EntryKind says which section an entry belongs to.
type EntryKind int

const (
	Positional EntryKind = iota
	Option
	Command
)

// Entry is one row of a help screen.
type Entry struct {
	Kind     EntryKind
	Name     string
	Short    string
	Long     string
	Negative string
	// Primary is the form used in the usage synopsis.
	Primary  string
	Metavar  string
	Aliases  []string
	Doc      string
	TypeName string
	Default  string
	HasDef   bool
	Required bool
	Boolean  bool
	Choices  []string
	// Builtin marks the injected help/quiet/version rows.
	Builtin bool
}

// Flags returns the dashed spellings of an option, short first.
func (e Entry) Flags() []string {
	var out []string
	if e.Short != "" {
		out = append(out, "-"+e.Short)
	}
	if e.Long != "" {
		out = append(out, "--"+e.Long)
	}
	if e.Negative != "" {
		out = append(out, "--"+e.Negative)
	}
	return out
}

// ValueName is the placeholder for an option's value.
func (e Entry) ValueName() string {
	if len(e.Choices) > 0 {
		return "{" + strings.Join(e.Choices, ",") + "}"
	}
	return e.Metavar
}

// Text is the description column: the doc, or a type-derived fallback,
// followed by the default.
func (e Entry) Text() string {
	text := e.Doc
	if text == "" && !e.Builtin && e.Kind != Command {
		text = e.TypeName
	}
	if e.HasDef && !e.Required {
		if text != "" {
			text += " "
		}
		text += fmt.Sprintf("(default: %s)", e.Default)
	}
	return text
}

// Schema is a render-agnostic snapshot of one help screen.
type Schema struct {
	Prog        string
	Description string
	Positionals []Entry
	Options     []Entry
	Commands    []Entry
	Epilog      string
}

// IsGroup reports whether the screen lists subcommands.
func (s Schema) IsGroup() bool { return len(s.Commands) > 0 }

// SchemaOptions controls the built-in rows.
type SchemaOptions struct {
	// Version adds --version to the root screen.
	Version bool
}

var (
	helpEntry = Entry{
		Kind: Option, Short: naming.HelpShort, Long: naming.HelpLong, Primary: "-" + naming.HelpShort,
		Boolean: true, Builtin: true, Doc: "show this help message and exit",
	}
	quietEntry = Entry{
		Kind: Option, Short: naming.QuietShort, Long: naming.QuietLong, Primary: "-" + naming.QuietShort,
		Boolean: true, Builtin: true, Doc: "do not print the return value",
	}
	versionEntry = Entry{
		Kind: Option, Long: naming.VersionLong, Primary: "--" + naming.VersionLong,
		Boolean: true, Builtin: true, Doc: "show program's version number and exit",
	}
)

// FromNode snapshots the help screen of n.
func FromNode(n *command.Node, opts SchemaOptions) Schema {
	s := Schema{
		Prog:        strings.Join(n.Path, " "),
		Description: n.Doc,
	}
	s.Options = append(s.Options, helpEntry, quietEntry)
	if opts.Version && n.Parent() == nil {
		s.Options = append(s.Options, versionEntry)
	}
	for _, p := range n.Params {
		e := paramEntry(p)
		if p.Positional {
			s.Positionals = append(s.Positionals, e)
		} else {
			s.Options = append(s.Options, e)
		}
	}
	for _, c := range n.Children {
		s.Commands = append(s.Commands, Entry{
			Kind:    Command,
			Name:    c.Name,
			Aliases: c.Aliases,
			Doc:     c.Summary(),
		})
	}
	if n.IsGroup() {
		s.Epilog = fmt.Sprintf("Run '%s COMMAND --help' for more information on a specific command.", s.Prog)
	}
	return s
}

func paramEntry(p *command.Parameter) Entry {
	e := Entry{
		Name:     p.Token.Long,
		Metavar:  p.Metavar(),
		Doc:      p.Doc,
		TypeName: p.Resolved.Describe(),
		Required: p.Required,
		Choices:  p.Choices(),
	}
	if p.Positional {
		e.Kind = Positional
		return e
	}
	e.Kind = Option
	e.Short = p.Token.Short
	e.Long = p.Token.Long
	e.Negative = p.Token.Negative
	e.Boolean = p.Flag()
	e.Primary = p.Token.Primary()
	if !e.Boolean && e.Short != "" {
		e.Primary = "-" + e.Short
	}
	if p.Default != nil {
		e.HasDef = true
		e.Default = FormatDefault(p.Default)
	}
	return e
}

// FormatDefault renders a default value for help text.
func FormatDefault(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case string:
		if v == "" {
			return `""`
		}
		return v
	case []string:
		return strings.Join(v, ",")
	case kind.Set:
		return strings.Join(v, ",")
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, v[k])
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
