// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package urfave runs command trees through github.com/urfave/cli/v3.
//
// Every parameter becomes a command-local flag except the positionals of
// leaf commands, which are read from the remaining arguments. urfave
// selects a subcommand by the first argument, so positional parameters of
// groups are carried as --name flags: argv is rewritten before parsing so
// that they can still be given in their positional slots. Help output is
// urfave's own.
package urfave

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/yeetrun/clify/pkg/backend"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/naming"
)

// Options configures the backend's output streams.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Version enables --version when non-empty.
	Version string
}

// Backend adapts urfave/cli to backend.Backend.
type Backend struct {
	opts Options
}

func New(opts Options) *Backend {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Backend{opts: opts}
}

func (b *Backend) Name() string { return "urfave" }

type run struct {
	b      *Backend
	specs  map[*cli.Command]*backend.Spec
	result *backend.Result
	ran    bool
}

// Parse builds a cli.Command tree for spec and runs it on argv. The
// command's actions only capture values; nothing user-supplied runs here.
func (b *Backend) Parse(ctx context.Context, spec *backend.Spec, argv []string) (*backend.Result, error) {
	r := &run{b: b, specs: make(map[*cli.Command]*backend.Spec)}
	root := r.command(spec, true)
	root.Writer = b.opts.Stdout
	root.ErrWriter = b.opts.Stderr
	root.HideVersion = true
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := root.Run(ctx, append([]string{spec.Name}, liftGroupPositionals(spec, argv)...))
	if err != nil {
		var pe *backend.ParseError
		var ee *backend.ExitError
		if errors.As(err, &pe) || errors.As(err, &ee) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, backend.Errorf(spec.Prog(), usage(spec), "%s", err.Error())
	}
	if !r.ran {
		// urfave printed help and returned without running an action.
		return nil, &backend.ExitError{Code: 0}
	}
	return r.result, nil
}

func (r *run) command(spec *backend.Spec, root bool) *cli.Command {
	cmd := &cli.Command{
		Name:    spec.Name,
		Aliases: spec.Aliases,
		Usage:   spec.Summary,
		// Each occurrence reaches kind coercion whole; inline JSON has commas.
		DisableSliceFlagSeparator: true,
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			s := r.specs[cmd]
			if s == nil {
				s = spec
			}
			return backend.Errorf(s.Prog(), usage(s), "%s", err.Error())
		},
	}
	var argsUsage []string
	for _, d := range spec.Directives {
		if d.Positional && !spec.IsGroup() {
			argsUsage = append(argsUsage, d.Metavar)
			continue
		}
		cmd.Flags = append(cmd.Flags, flags(d)...)
	}
	cmd.ArgsUsage = strings.Join(argsUsage, " ")
	cmd.Flags = append(cmd.Flags, &cli.BoolFlag{
		Name:    naming.QuietLong,
		Aliases: []string{naming.QuietShort},
		Usage:   "do not print the return value",
		Local:   true,
	})
	if root && r.b.opts.Version != "" {
		cmd.Flags = append(cmd.Flags, &cli.BoolFlag{
			Name:  naming.VersionLong,
			Usage: "show program's version number and exit",
			Local: true,
		})
	}
	for _, c := range spec.Children {
		cmd.Commands = append(cmd.Commands, r.command(c, false))
	}
	cmd.Action = func(ctx context.Context, cmd *cli.Command) error {
		r.ran = true
		return r.capture(ctx, cmd)
	}
	r.specs[cmd] = spec
	return cmd
}

func flags(d backend.Directive) []cli.Flag {
	var aliases []string
	if d.Short != "" {
		aliases = []string{d.Short}
	}
	switch {
	case d.Flag():
		out := []cli.Flag{&cli.BoolFlag{Name: d.Long, Aliases: aliases, Usage: d.Help, Local: true}}
		if d.Negative != "" {
			out = append(out, &cli.BoolFlag{Name: d.Negative, Usage: "negate --" + d.Long, Local: true})
		}
		return out
	case d.Repeatable:
		return []cli.Flag{&cli.StringSliceFlag{Name: d.Long, Aliases: aliases, Usage: d.Help, Local: true}}
	case d.Coercion == backend.CoerceInt && d.Bits == 0 && !d.Unsigned:
		return []cli.Flag{&cli.IntFlag{Name: d.Long, Aliases: aliases, Usage: d.Help, Local: true}}
	case d.Coercion == backend.CoerceFloat:
		return []cli.Flag{&cli.FloatFlag{Name: d.Long, Aliases: aliases, Usage: d.Help, Local: true}}
	}
	return []cli.Flag{&cli.StringFlag{Name: d.Long, Aliases: aliases, Usage: d.Help, Local: true}}
}

// capture runs in the innermost selected command and collects the values
// of every command on its lineage.
func (r *run) capture(ctx context.Context, leaf *cli.Command) error {
	lineage := leaf.Lineage()
	if root := lineage[len(lineage)-1]; r.b.opts.Version != "" && root.Bool(naming.VersionLong) {
		io.WriteString(r.b.opts.Stdout, root.Name+" "+r.b.opts.Version+"\n")
		return &backend.ExitError{Code: 0}
	}
	spec := r.specs[leaf]
	res := &backend.Result{Values: make(map[string]any)}
	for i := len(lineage) - 1; i >= 0; i-- {
		cmd := lineage[i]
		s := r.specs[cmd]
		if s == nil {
			continue
		}
		if cmd != lineage[len(lineage)-1] {
			res.Path = append(res.Path, s.Name)
		}
		if cmd.Bool(naming.QuietLong) {
			res.Quiet = true
		}
		for _, d := range s.Directives {
			if d.Positional && !s.IsGroup() {
				continue
			}
			v, ok, err := flagValue(cmd, d)
			if err != nil {
				return backend.Errorf(s.Prog(), usage(s), "%s", err.Error())
			}
			if ok {
				res.Values[d.Dest] = v
			}
		}
	}

	args := leaf.Args().Slice()
	if spec.IsGroup() {
		if len(args) > 0 {
			msg := "argument command: invalid choice: \"" + args[0] + "\" (choose from " + strings.Join(spec.ChildNames(), ", ") + ")"
			if s := naming.Suggest(args[0], spec.ChildNames()); s != "" {
				msg += "; did you mean \"" + s + "\"?"
			}
			return backend.Errorf(spec.Prog(), usage(spec), "%s", msg)
		}
	} else {
		pos := spec.Positionals()
		for i, raw := range args {
			if i >= len(pos) {
				return backend.Errorf(spec.Prog(), usage(spec), "unrecognized arguments: %s", strings.Join(args[i:], " "))
			}
			if pos[i].Repeatable {
				res.Values[pos[i].Dest] = []string{raw}
				continue
			}
			v, err := pos[i].Convert(raw)
			if err != nil {
				return backend.Errorf(spec.Prog(), usage(spec), "%s", pos[i].InvalidValue(raw))
			}
			res.Values[pos[i].Dest] = v
		}
	}

	for i := len(lineage) - 1; i >= 0; i-- {
		s := r.specs[lineage[i]]
		if s == nil {
			continue
		}
		if missing := backend.Missing(s, res.Values); len(missing) > 0 {
			return backend.Errorf(s.Prog(), usage(s), "the following arguments are required: %s", strings.Join(missing, ", "))
		}
	}
	if spec.IsGroup() {
		names := make([]string, len(spec.Children))
		for i, c := range spec.Children {
			names[i] = c.Name
		}
		return backend.Errorf(spec.Prog(), usage(spec), "the following arguments are required: command (choose from %s)", strings.Join(names, ", "))
	}
	r.result = res
	return nil
}

func flagValue(cmd *cli.Command, d backend.Directive) (any, bool, error) {
	switch {
	case d.Flag():
		if d.Negative != "" && cmd.IsSet(d.Negative) {
			return !cmd.Bool(d.Negative), true, nil
		}
		if cmd.IsSet(d.Long) {
			return cmd.Bool(d.Long), true, nil
		}
		return nil, false, nil
	case !cmd.IsSet(d.Long):
		return nil, false, nil
	case d.Repeatable:
		return cmd.StringSlice(d.Long), true, nil
	case d.Coercion == backend.CoerceInt && d.Bits == 0 && !d.Unsigned:
		return cmd.Int(d.Long), true, nil
	case d.Coercion == backend.CoerceInt:
		raw := cmd.String(d.Long)
		v, err := d.Convert(raw)
		if err != nil {
			return nil, false, errors.New(d.InvalidValue(raw))
		}
		return v, true, nil
	case d.Coercion == backend.CoerceFloat:
		return cmd.Float(d.Long), true, nil
	}
	return cmd.String(d.Long), true, nil
}

// liftGroupPositionals rewrites the positional arguments of groups into
// "--name value" pairs, walking argv the way urfave will: options of the
// current level are skipped with their values, a group's positionals are
// lifted, and the next word selects the child. Everything from the first
// leaf on, or after "--", is left alone.
func liftGroupPositionals(spec *backend.Spec, argv []string) []string {
	out := make([]string, 0, len(argv))
	cur, posIdx := spec, 0
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if arg == "--" || !cur.IsGroup() {
			return append(out, argv[i:]...)
		}
		if strings.HasPrefix(arg, "-") && len(arg) > 1 {
			out = append(out, arg)
			if takesValue(cur, arg) && i+1 < len(argv) {
				i++
				out = append(out, argv[i])
			}
			continue
		}
		if pos := cur.Positionals(); posIdx < len(pos) {
			out = append(out, "--"+pos[posIdx].Long, arg)
			posIdx++
			continue
		}
		out = append(out, arg)
		if child := cur.Child(arg); child != nil {
			cur, posIdx = child, 0
		}
	}
	return out
}

// takesValue reports whether the option arg names at level s consumes the
// following argument.
func takesValue(s *backend.Spec, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	name := strings.TrimLeft(arg, "-")
	for _, d := range s.Directives {
		if d.Flag() {
			continue
		}
		if name == d.Long || (d.Short != "" && name == d.Short) {
			return true
		}
	}
	return false
}

func usage(s *backend.Spec) string {
	return help.Standard{}.Usage(help.FromNode(s.Node, help.SchemaOptions{}), help.Options{})
}
