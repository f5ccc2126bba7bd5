// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime drives one invocation of a target: build the command
// tree, parse argv with a backend, coerce the values, call the target and
// map the outcome to an exit status.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeetrun/clify/pkg/backend"
	"github.com/yeetrun/clify/pkg/backend/native"
	"github.com/yeetrun/clify/pkg/backend/urfave"
	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/executor"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/kind"
	"github.com/yeetrun/clify/pkg/tui"
)

// State is a step of a run.
type State int

const (
	Idle State = iota
	ModelBuilding
	BackendParsing
	Coercing
	Invoking
	Completed
	Failed
	Interrupted
	EarlyExit
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ModelBuilding:
		return "model-building"
	case BackendParsing:
		return "backend-parsing"
	case Coercing:
		return "coercing"
	case Invoking:
		return "invoking"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Interrupted:
		return "interrupted"
	case EarlyExit:
		return "early-exit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = backend.UsageExitCode
	ExitInterrupted = 130
)

// ErrInterrupted may be returned by a target to report that it was
// interrupted. Runs canceled by a caught SIGINT report it as well.
var ErrInterrupted = errors.New("interrupted")

// ExitCoder is implemented by errors that carry their own exit status.
type ExitCoder interface {
	ExitCode() int
}

// Outcome is the terminal result of Run.
type Outcome struct {
	State State
	// Value is the target's return value when State is Completed.
	Value    any
	ExitCode int
	Err      error
}

// ExitCode maps an outcome to a process exit status.
func ExitCode(o Outcome, c Config) int {
	switch o.State {
	case Completed:
		if c.UseReturnCode {
			if n, ok := o.Value.(int); ok {
				return n
			}
		}
		return ExitOK
	case EarlyExit:
		var ee *backend.ExitError
		if errors.As(o.Err, &ee) {
			return ee.Code
		}
		return ExitUsage
	case Interrupted:
		return ExitInterrupted
	}
	var ec ExitCoder
	if errors.As(o.Err, &ec) {
		return ec.ExitCode()
	}
	return ExitFailure
}

// Run builds target, parses argv and invokes the selected command.
func Run(ctx context.Context, target command.Target, argv []string, opts ...Option) Outcome {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	r := newRunner(cfg)
	o := r.run(ctx, target, argv)
	o.ExitCode = ExitCode(o, cfg)
	r.log.WithField("exit", o.ExitCode).Debug("done")
	return o
}

type runner struct {
	cfg   Config
	state State
	lf    *lineFormatter
	log   *logrus.Entry
	// errColor paints Stderr.
	errColor tui.Colorizer
}

func newRunner(cfg Config) *runner {
	prog := cfg.Prog
	if prog == "" && len(os.Args) > 0 {
		prog = filepath.Base(os.Args[0])
	}
	r := &runner{cfg: cfg}
	r.errColor = colorizer(cfg.Color, cfg.Stderr, cfg.Theme)
	r.lf = &lineFormatter{prog: prog, color: r.errColor}
	r.log = newLogger(cfg.Stderr, r.lf, cfg.Debug).WithField("run", uuid.New().String())
	return r
}

func colorizer(m ColorMode, w io.Writer, t help.Theme) tui.Colorizer {
	switch m {
	case ColorNever:
		return tui.Colorizer{}
	case ColorAlways:
		return tui.Colorizer{Enabled: true, Palette: t.Palette}
	}
	return tui.NewColorizer(tui.IsTerminal(w), t.Palette)
}

func (r *runner) enter(s State) {
	r.state = s
	r.log.WithField("state", s).Debug("enter")
}

func (r *runner) fail(err error, fields logrus.Fields) Outcome {
	r.enter(Failed)
	r.log.WithFields(fields).Error(err.Error())
	return Outcome{State: Failed, Err: err}
}

func (r *runner) run(ctx context.Context, target command.Target, argv []string) Outcome {
	r.enter(ModelBuilding)
	root, err := command.Build(target, command.Options{
		Style:   r.cfg.Style,
		Docs:    r.cfg.Docs,
		NoShort: r.cfg.NoShort,
		Version: r.cfg.Version != "",
		Prog:    r.cfg.Prog,
	})
	if err != nil {
		fields := logrus.Fields{}
		var be *command.BuildError
		if errors.As(err, &be) {
			fields["identifier"] = be.Ident
		}
		return r.fail(err, fields)
	}
	r.lf.prog = root.Name
	be, err := r.backend()
	if err != nil {
		return r.fail(err, nil)
	}

	ctx, sig := watchInterrupt(ctx, r.cfg.HandleSignals)
	defer sig.stop()

	r.enter(BackendParsing)
	res, err := be.Parse(ctx, backend.Lower(root), argv)
	if err != nil {
		if sig.caught() && errors.Is(err, context.Canceled) {
			return r.interrupted()
		}
		return r.parseFailed(err)
	}

	r.enter(Coercing)
	path, err := root.Resolve(res.Path)
	if err != nil {
		return r.fail(err, nil)
	}
	args, err := coerce(path, res.Values)
	if err != nil {
		fields := logrus.Fields{}
		var ce *kind.CoercionError
		var uc *kind.UnknownChoiceError
		switch {
		case errors.As(err, &ce):
			fields["param"] = ce.Param
		case errors.As(err, &uc):
			fields["param"] = uc.Param
		}
		return r.fail(err, fields)
	}
	inv, err := command.NewInvocation(path, args)
	if err != nil {
		return r.fail(err, nil)
	}

	r.enter(Invoking)
	v, err := r.invoke(ctx, inv)
	// A caught SIGINT ends the run even if the target ignored it.
	if sig.caught() || errors.Is(err, ErrInterrupted) {
		return r.interrupted()
	}
	if err != nil {
		var pe *executor.PanicError
		if errors.As(err, &pe) && r.cfg.Traceback {
			r.cfg.Stderr.Write(pe.Stack)
		}
		return r.fail(err, nil)
	}

	r.enter(Completed)
	if r.cfg.Print && !res.Quiet {
		if err := Display(r.cfg.Stdout, v, r.cfg.Format); err != nil {
			r.log.Warn(err.Error())
		}
	}
	return Outcome{State: Completed, Value: v}
}

func (r *runner) backend() (backend.Backend, error) {
	switch r.cfg.Backend {
	case "", BackendNative:
		return native.New(native.Options{
			Stdout:  r.cfg.Stdout,
			Layout:  r.cfg.Layout,
			Version: r.cfg.Version,
			Help: help.Options{
				Width: help.TerminalWidth(r.cfg.Width, r.cfg.Stdout),
				Theme: r.cfg.Theme,
				Color: colorizer(r.cfg.Color, r.cfg.Stdout, r.cfg.Theme).Enabled,
			},
		}), nil
	case BackendUrfave:
		return urfave.New(urfave.Options{
			Stdout:  r.cfg.Stdout,
			Stderr:  r.cfg.Stderr,
			Version: r.cfg.Version,
		}), nil
	}
	return nil, fmt.Errorf("unknown backend %q (expected %s|%s)", r.cfg.Backend, BackendNative, BackendUrfave)
}

// parseFailed turns a backend rejection into EarlyExit. Help and version
// requests are not errors.
func (r *runner) parseFailed(err error) Outcome {
	var ee *backend.ExitError
	if errors.As(err, &ee) {
		r.enter(EarlyExit)
		if ee.Code != 0 && ee.Message != "" {
			r.log.Error(ee.Message)
		}
		return Outcome{State: EarlyExit, Err: err}
	}
	var pe *backend.ParseError
	if errors.As(err, &pe) {
		r.enter(EarlyExit)
		if pe.Usage != "" {
			fmt.Fprintln(r.cfg.Stderr, pe.Usage)
		}
		r.log.WithField("prog", pe.Prog).Error(pe.Msg)
		return Outcome{State: EarlyExit, Err: err}
	}
	return r.fail(err, nil)
}

func (r *runner) interrupted() Outcome {
	r.enter(Interrupted)
	if r.cfg.OnInterrupt != nil {
		r.cfg.OnInterrupt()
	}
	if !r.cfg.SilenceInterrupt {
		fmt.Fprintln(r.cfg.Stderr, r.errColor.Paint(tui.RoleNotice, "Interrupted."))
	}
	o := Outcome{State: Interrupted}
	if r.cfg.ReraiseInterrupt {
		o.Err = ErrInterrupted
	}
	return o
}

// invoke calls a synchronous leaf in place and hands an asynchronous one to
// a fresh executor.
func (r *runner) invoke(ctx context.Context, inv *command.Invocation) (v any, err error) {
	if !inv.Async() {
		defer func() {
			if p := recover(); p != nil {
				err = &executor.PanicError{Value: p, Stack: stack()}
			}
		}()
		return inv.Call(ctx)
	}
	if r.cfg.Progress && tui.IsTerminal(r.cfg.Stderr) {
		stop := tui.NewProgress(r.cfg.Stderr, tui.WithColor(r.errColor)).Start(ctx, inv.Leaf().Name)
		defer stop()
	}
	return executor.Run(ctx, func(ctx context.Context) (any, error) {
		co, err := inv.Start(ctx)
		if err != nil {
			return nil, err
		}
		return co(ctx)
	})
}

// coerce builds the typed arguments of every level of path. Absent values
// fall back to the declared default.
func coerce(path []*command.Node, values map[string]any) ([]*command.Args, error) {
	out := make([]*command.Args, len(path))
	var parent *command.Args
	for i, n := range path {
		vals := make(map[string]any, len(n.Params))
		for _, p := range n.Params {
			v, err := coerceParam(p, values)
			if err != nil {
				return nil, err
			}
			vals[p.Name] = v
		}
		parent = command.NewArgs(vals, parent)
		out[i] = parent
	}
	return out, nil
}

func coerceParam(p *command.Parameter, values map[string]any) (any, error) {
	raw, ok := values[p.Dest]
	if !ok {
		raw = p.Default
	}
	if !p.Resolved.Special() {
		return raw, nil
	}
	var v any
	var err error
	switch s := raw.(type) {
	case string:
		v, err = p.Resolved.Coerce(s)
	case []string:
		if !ok {
			return raw, nil
		}
		v, err = p.Resolved.CoerceAll(s)
	default:
		return raw, nil
	}
	if err == nil {
		return v, nil
	}
	var ce *kind.CoercionError
	var uc *kind.UnknownChoiceError
	switch {
	case errors.As(err, &ce):
		ce.Param = p.Display()
	case errors.As(err, &uc):
		uc.Param = p.Display()
	}
	return nil, err
}
