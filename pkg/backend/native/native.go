// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package native is the built-in argument parser. It owns the help and
// usage output of the help package and reports argument errors with the
// offending command's usage line.
//
// The parser supports:
//   - Subcommands selected by name or alias after a level's positionals
//   - Options of the current command or any enclosing group, anywhere
//     before "--"
//   - Flag formats: -f, --flag, -f=value, --flag=value, -f value,
//     --flag value, -fVALUE
//   - Combined boolean short flags (-vq)
//   - "--" to treat the rest of the arguments as positionals
package native

import (
	"context"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/shayne/yargs"
	"github.com/yeetrun/clify/pkg/backend"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/naming"
)

// Options configures the parser's output.
type Options struct {
	// Stdout receives help and version output.
	Stdout io.Writer
	Layout help.Layout
	Help   help.Options
	// Version enables --version when non-empty.
	Version string
}

// Parser is the native backend.
type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Layout == nil {
		opts.Layout = help.Standard{}
	}
	return &Parser{opts: opts}
}

func (p *Parser) Name() string { return "native" }

// Help renders the full help screen of spec.
func (p *Parser) Help(spec *backend.Spec) string {
	return p.opts.Layout.Render(p.schema(spec), p.opts.Help)
}

// Usage renders the usage synopsis of spec.
func (p *Parser) Usage(spec *backend.Spec) string {
	o := p.opts.Help
	o.Color = false
	return p.opts.Layout.Usage(p.schema(spec), o)
}

func (p *Parser) schema(spec *backend.Spec) help.Schema {
	return help.FromNode(spec.Node, help.SchemaOptions{Version: p.opts.Version != ""})
}

type level struct {
	spec   *backend.Spec
	posIdx int
}

type state struct {
	p      *Parser
	levels []*level
	values map[string]any
	quiet  bool
}

func (st *state) cur() *level { return st.levels[len(st.levels)-1] }

func (st *state) errorf(format string, args ...any) *backend.ParseError {
	spec := st.cur().spec
	return backend.Errorf(spec.Prog(), st.p.Usage(spec), format, args...)
}

// Parse scans argv against spec. Help and version requests are written to
// Stdout and reported as *backend.ExitError with code 0.
func (p *Parser) Parse(ctx context.Context, spec *backend.Spec, argv []string) (*backend.Result, error) {
	st := &state{
		p:      p,
		levels: []*level{{spec: spec}},
		values: make(map[string]any),
	}
	afterDoubleDash := false
	for i := 0; i < len(argv); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		arg := argv[i]

		if !afterDoubleDash {
			if arg == "--" {
				afterDoubleDash = true
				continue
			}
			if strings.HasPrefix(arg, "--") {
				consumed, err := st.long(arg, argv, i)
				if err != nil {
					return nil, err
				}
				i += consumed
				continue
			}
			if strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumeric(arg) {
				consumed, err := st.short(arg, argv, i)
				if err != nil {
					return nil, err
				}
				i += consumed
				continue
			}
		}
		if err := st.positional(arg); err != nil {
			return nil, err
		}
	}
	if err := st.finish(); err != nil {
		return nil, err
	}
	res := &backend.Result{Values: st.values, Quiet: st.quiet}
	for _, l := range st.levels[1:] {
		res.Path = append(res.Path, l.spec.Name)
	}
	return res, nil
}

// lookup finds a directive by long or negative form, innermost level first.
func (st *state) lookup(name string) (backend.Directive, bool, bool) {
	n := naming.Normalize(name)
	for i := len(st.levels) - 1; i >= 0; i-- {
		for _, d := range st.levels[i].spec.Directives {
			if d.Positional {
				continue
			}
			if d.Long == n {
				return d, false, true
			}
			if d.Negative != "" && d.Negative == n {
				return d, true, true
			}
		}
	}
	return backend.Directive{}, false, false
}

func (st *state) lookupShort(name string) (backend.Directive, bool) {
	for i := len(st.levels) - 1; i >= 0; i-- {
		for _, d := range st.levels[i].spec.Directives {
			if !d.Positional && d.Short != "" && d.Short == name {
				return d, true
			}
		}
	}
	return backend.Directive{}, false
}

func (st *state) optionNames() []string {
	var out []string
	for _, l := range st.levels {
		for _, d := range l.spec.Directives {
			if d.Positional {
				continue
			}
			out = append(out, "--"+d.Long)
			if d.Negative != "" {
				out = append(out, "--"+d.Negative)
			}
		}
	}
	out = append(out, "--"+naming.HelpLong, "--"+naming.QuietLong)
	return out
}

// builtin handles help, quiet and version. Short forms are only
// recognized for single-dash arguments.
func (st *state) builtin(name string, long bool) (handled bool, err error) {
	switch {
	case long && name == naming.HelpLong, !long && name == naming.HelpShort:
		io.WriteString(st.p.opts.Stdout, st.p.Help(st.cur().spec))
		return true, &backend.ExitError{Code: 0}
	case long && name == naming.QuietLong, !long && name == naming.QuietShort:
		st.quiet = true
		return true, nil
	case long && name == naming.VersionLong:
		if st.p.opts.Version == "" {
			return false, nil
		}
		io.WriteString(st.p.opts.Stdout, st.levels[0].spec.Name+" "+st.p.opts.Version+"\n")
		return true, &backend.ExitError{Code: 0}
	}
	return false, nil
}

// long handles "--name" and "--name=value". It returns how many extra
// arguments were consumed.
func (st *state) long(arg string, argv []string, i int) (int, error) {
	name, value, hasValue := strings.Cut(arg[2:], "=")
	if !hasValue {
		if handled, err := st.builtin(name, true); handled || err != nil {
			return 0, err
		}
	}
	d, negated, ok := st.lookup(name)
	if !ok {
		msg := "unrecognized arguments: " + arg
		if s := naming.Suggest("--"+name, st.optionNames()); s != "" {
			msg += " (did you mean " + s + "?)"
		}
		return 0, st.errorf("%s", msg)
	}
	if d.Flag() {
		v := !negated
		if hasValue {
			b, err := kind.ParseBool(value)
			if err != nil {
				return 0, st.errorf("%s", d.InvalidValue(value))
			}
			v = b != negated
		}
		st.values[d.Dest] = v
		return 0, nil
	}
	if negated {
		return 0, st.errorf("unrecognized arguments: %s", arg)
	}
	value, consumed, ok := takeValue(name, argv, i)
	if !ok {
		return 0, st.errorf("argument %s: expected one argument", d.Display())
	}
	return consumed, st.set(d, value)
}

// takeValue reads the value of the valued option argv[i] is named by:
// inline after "=", otherwise the next argument unless it looks like a
// flag. Negative numbers are values.
func takeValue(name string, argv []string, i int) (value string, consumed int, ok bool) {
	window := argv[i:min(i+2, len(argv))]
	rest, values := yargs.ConsumeFlagsBySpec(window, map[string]yargs.ConsumeSpec{
		name: {Kind: reflect.String},
	})
	got := values[name]
	if len(got) == 0 {
		return "", 0, false
	}
	consumed = len(window) - 1 - len(rest)
	if consumed == 0 && !strings.Contains(argv[i], "=") {
		return "", 0, false
	}
	return got[0], consumed, true
}

// short handles "-x", "-x=value", "-xVALUE" and combined boolean flags.
// Multi-letter short aliases are matched whole before any splitting.
func (st *state) short(arg string, argv []string, i int) (int, error) {
	body := arg[1:]
	name, value, hasValue := strings.Cut(body, "=")
	if !hasValue {
		if handled, err := st.builtin(name, false); handled || err != nil {
			return 0, err
		}
	}
	if d, ok := st.lookupShort(name); ok {
		if d.Flag() {
			if hasValue {
				b, err := kind.ParseBool(value)
				if err != nil {
					return 0, st.errorf("%s", d.InvalidValue(value))
				}
				st.values[d.Dest] = b
				return 0, nil
			}
			st.values[d.Dest] = true
			return 0, nil
		}
		value, consumed, ok := takeValue(name, argv, i)
		if !ok {
			return 0, st.errorf("argument %s: expected one argument", d.Display())
		}
		return consumed, st.set(d, value)
	}
	if hasValue {
		return 0, st.errorf("unrecognized arguments: %s", arg)
	}
	// -cVALUE: first letter is a valued option.
	if d, ok := st.lookupShort(body[:1]); ok && !d.Flag() {
		return 0, st.set(d, body[1:])
	}
	// -vq: every letter is a switch.
	for _, r := range body {
		ch := string(r)
		if handled, err := st.builtin(ch, false); handled {
			if err != nil {
				return 0, err
			}
			continue
		}
		d, ok := st.lookupShort(ch)
		if !ok || !d.Flag() {
			return 0, st.errorf("unrecognized arguments: %s", arg)
		}
		st.values[d.Dest] = true
	}
	return 0, nil
}

func (st *state) positional(arg string) error {
	l := st.cur()
	pos := l.spec.Positionals()
	if l.posIdx < len(pos) {
		d := pos[l.posIdx]
		l.posIdx++
		return st.set(d, arg)
	}
	if l.spec.IsGroup() {
		child := l.spec.Child(arg)
		if child == nil {
			msg := "argument command: invalid choice: " + strconv.Quote(arg) + " (choose from " + strings.Join(l.spec.ChildNames(), ", ") + ")"
			if s := naming.Suggest(arg, l.spec.ChildNames()); s != "" {
				msg += "; did you mean " + strconv.Quote(s) + "?"
			}
			return st.errorf("%s", msg)
		}
		st.levels = append(st.levels, &level{spec: child})
		return nil
	}
	return st.errorf("unrecognized arguments: %s", arg)
}

func (st *state) set(d backend.Directive, raw string) error {
	if d.Repeatable {
		prev, _ := st.values[d.Dest].([]string)
		st.values[d.Dest] = append(prev, raw)
		return nil
	}
	v, err := d.Convert(raw)
	if err != nil {
		return st.errorf("%s", d.InvalidValue(raw))
	}
	st.values[d.Dest] = v
	return nil
}

// finish reports missing required arguments and an unselected subcommand.
func (st *state) finish() error {
	for _, l := range st.levels {
		if missing := backend.Missing(l.spec, st.values); len(missing) > 0 {
			spec := l.spec
			return backend.Errorf(spec.Prog(), st.p.Usage(spec), "the following arguments are required: %s", strings.Join(missing, ", "))
		}
	}
	if l := st.cur(); l.spec.IsGroup() {
		names := make([]string, len(l.spec.Children))
		for i, c := range l.spec.Children {
			names[i] = c.Name
		}
		return st.errorf("the following arguments are required: command (choose from %s)", strings.Join(names, ", "))
	}
	return nil
}

// isNumeric checks if a string is a number (e.g., "10", "-10", "3.14", "-3.14")
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}

	start := 0
	// Handle optional leading sign
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false // Just a sign is not a number
		}
		start = 1
	}

	hasDigit := false
	hasDot := false

	for i := start; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			hasDigit = true
		} else if s[i] == '.' {
			if hasDot {
				return false // Multiple dots
			}
			hasDot = true
		} else {
			return false // Invalid character
		}
	}

	return hasDigit
}
