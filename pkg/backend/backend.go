// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package backend is the boundary between the command tree and a concrete
// argument parser. The tree is lowered into backend-agnostic directives;
// every backend returns the same Result.
package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/kind"
)

// Coercion tells a backend how to convert a parsed string.
type Coercion int

const (
	CoerceString Coercion = iota
	CoerceInt
	CoerceFloat
	CoerceBool
	// CoerceSpecial values are delivered raw and coerced after parsing.
	CoerceSpecial
)

func (c Coercion) String() string {
	switch c {
	case CoerceString:
		return "string"
	case CoerceInt:
		return "int"
	case CoerceFloat:
		return "float"
	case CoerceBool:
		return "bool"
	case CoerceSpecial:
		return "special"
	}
	return fmt.Sprintf("Coercion(%d)", int(c))
}

// Directive describes one parameter to a backend.
type Directive struct {
	Dest            string
	Long            string
	Short           string
	Negative        string
	NegativePrimary bool
	Positional      bool
	Required        bool
	Coercion        Coercion
	Default         any
	Help            string
	Choices         []string
	Metavar         string
	// Repeatable options deliver every occurrence's raw value, in order,
	// as a []string.
	Repeatable bool
	// Bits and Unsigned bound CoerceInt values.
	Bits     int
	Unsigned bool
	// TypeName is the declared type, for error messages.
	TypeName string
}

// Flag reports whether the directive is a boolean switch.
func (d Directive) Flag() bool {
	return !d.Positional && d.Coercion == CoerceBool
}

// Display is the "-c/--count" form used in error messages.
func (d Directive) Display() string {
	if d.Positional {
		return d.Long
	}
	var forms []string
	if d.Short != "" {
		forms = append(forms, "-"+d.Short)
	}
	forms = append(forms, "--"+d.Long)
	return strings.Join(forms, "/")
}

// Convert applies the directive's coercion to one raw argument. Special
// values are returned unchanged.
func (d Directive) Convert(raw string) (any, error) {
	switch d.Coercion {
	case CoerceInt:
		return kind.ParseInt(raw, d.Bits, d.Unsigned)
	case CoerceFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	case CoerceBool:
		return kind.ParseBool(raw)
	}
	return raw, nil
}

// InvalidValue is the message for a raw value Convert rejected.
func (d Directive) InvalidValue(raw string) string {
	name := d.TypeName
	if name == "" {
		name = d.Coercion.String()
	}
	return fmt.Sprintf("argument %s: invalid %s value: %q", d.Display(), name, raw)
}

// Spec is the lowered form of one command tree node.
type Spec struct {
	Name       string
	Aliases    []string
	Path       []string
	Summary    string
	Directives []Directive
	Children   []*Spec
	// Node is the source node, for help rendering.
	Node *command.Node
}

// IsGroup reports whether s dispatches to subcommands.
func (s *Spec) IsGroup() bool { return len(s.Children) > 0 }

// Prog is the space-joined command path.
func (s *Spec) Prog() string { return strings.Join(s.Path, " ") }

// Child returns the child named or aliased tok.
func (s *Spec) Child(tok string) *Spec {
	c := s.Node.Child(tok)
	if c == nil {
		return nil
	}
	for _, sc := range s.Children {
		if sc.Node == c {
			return sc
		}
	}
	return nil
}

// ChildNames lists child names and aliases.
func (s *Spec) ChildNames() []string {
	var out []string
	for _, c := range s.Children {
		out = append(out, c.Name)
		out = append(out, c.Aliases...)
	}
	return out
}

// Positionals returns the positional directives in order.
func (s *Spec) Positionals() []Directive {
	var out []Directive
	for _, d := range s.Directives {
		if d.Positional {
			out = append(out, d)
		}
	}
	return out
}

// Lower converts a command tree into backend specs.
func Lower(n *command.Node) *Spec {
	s := &Spec{
		Name:    n.Name,
		Aliases: n.Aliases,
		Path:    n.Path,
		Summary: n.Summary(),
		Node:    n,
	}
	for _, p := range n.Params {
		s.Directives = append(s.Directives, directive(p))
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, Lower(c))
	}
	return s
}

func directive(p *command.Parameter) Directive {
	d := Directive{
		Dest:            p.Dest,
		Long:            p.Token.Long,
		Short:           p.Token.Short,
		Negative:        p.Token.Negative,
		NegativePrimary: p.Token.NegativePrimary,
		Positional:      p.Positional,
		Required:        p.Required,
		Default:         p.Default,
		Help:            p.Doc,
		Choices:         p.Choices(),
		Metavar:         p.Metavar(),
		Repeatable:      p.Resolved.Container(),
		TypeName:        p.Resolved.Effective.Name(),
	}
	switch p.Resolved.Scalar() {
	case kind.ScalarInt:
		d.Coercion = CoerceInt
		d.Bits, d.Unsigned = p.Resolved.Effective.IntRange()
	case kind.ScalarFloat:
		d.Coercion = CoerceFloat
	case kind.ScalarBool:
		d.Coercion = CoerceBool
	case kind.ScalarSpecial:
		d.Coercion = CoerceSpecial
	default:
		d.Coercion = CoerceString
	}
	return d
}

// Result is what every backend returns from a successful parse.
type Result struct {
	// Path holds the primary names of the selected subcommands, below the
	// root.
	Path []string
	// Values is keyed by Directive.Dest. Parameters that were not given are
	// absent.
	Values map[string]any
	Quiet  bool
}

// Backend parses one argument vector against a spec tree.
type Backend interface {
	Name() string
	Parse(ctx context.Context, spec *Spec, argv []string) (*Result, error)
}

// ExitError asks the runtime to stop without invoking anything. Code 0 is
// used for help and version output, which the backend has already written.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exit %d", e.Code)
}

// UsageExitCode is the status for argument errors.
const UsageExitCode = 2

// ParseError is an argument error. Usage, when set, is the synopsis of the
// command the error belongs to.
type ParseError struct {
	Prog  string
	Usage string
	Msg   string
	Err   error
}

func (e *ParseError) Error() string { return e.Msg }

func (e *ParseError) Unwrap() error { return e.Err }

// Errorf builds a ParseError.
func Errorf(prog, usage, format string, args ...any) *ParseError {
	return &ParseError{Prog: prog, Usage: usage, Msg: fmt.Sprintf(format, args...)}
}

// Missing lists the required directives of spec absent from values.
func Missing(spec *Spec, values map[string]any) []string {
	var out []string
	for _, d := range spec.Directives {
		if !d.Required {
			continue
		}
		if _, ok := values[d.Dest]; !ok {
			out = append(out, d.Display())
		}
	}
	return out
}
