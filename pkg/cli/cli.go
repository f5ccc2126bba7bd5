// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli is the entry point for programs built on clify.
//
//	func main() {
//		cli.Main(command.Reflect("add", add,
//			command.Param{Name: "a"}, command.Param{Name: "b"}))
//	}
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/config"
	"github.com/yeetrun/clify/pkg/help"
	"github.com/yeetrun/clify/pkg/runtime"
)

// Option configures a run. See the runtime package for the full set.
type Option = runtime.Option

var (
	WithProg            = runtime.WithProg
	WithVersion         = runtime.WithVersion
	WithStyle           = runtime.WithStyle
	WithNoShort         = runtime.WithNoShort
	WithDocs            = runtime.WithDocs
	WithBackend         = runtime.WithBackend
	WithLayout          = runtime.WithLayout
	WithTheme           = runtime.WithTheme
	WithWidth           = runtime.WithWidth
	WithColor           = runtime.WithColor
	WithOutput          = runtime.WithOutput
	WithPrint           = runtime.WithPrint
	WithFormat          = runtime.WithFormat
	WithReturnCode      = runtime.WithReturnCode
	WithTraceback       = runtime.WithTraceback
	WithDebug           = runtime.WithDebug
	WithProgress        = runtime.WithProgress
	WithSignals         = runtime.WithSignals
	WithSilentInterrupt = runtime.WithSilentInterrupt
	WithReraise         = runtime.WithReraise
	OnInterrupt         = runtime.OnInterrupt
)

// ExitError is returned by Run when a run ends with a non-zero status.
type ExitError struct {
	Code  int
	State runtime.State
	Err   error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.State, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (exit %d)", e.State, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode makes ExitError a runtime.ExitCoder.
func (e *ExitError) ExitCode() int { return e.Code }

// Run invokes target with argv and returns its value. Help and version
// requests return nil, nil. Every other non-zero outcome is an *ExitError;
// diagnostics have already been written to the error stream.
func Run(ctx context.Context, target command.Target, argv []string, opts ...Option) (any, error) {
	o := runtime.Run(ctx, target, argv, opts...)
	if o.State == runtime.Completed {
		return o.Value, nil
	}
	if o.ExitCode == 0 {
		return nil, nil
	}
	return nil, &ExitError{Code: o.ExitCode, State: o.State, Err: o.Err}
}

var exit = os.Exit

// Main runs target with the process arguments and exits. Settings from
// clify.toml and CLIFY_* variables are applied first, so opts win.
func Main(target command.Target, opts ...Option) {
	exit(runMain(context.Background(), target, os.Args[1:], opts...))
}

func runMain(ctx context.Context, target command.Target, argv []string, opts ...Option) int {
	env, err := config.FromEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return runtime.ExitFailure
	}
	o := runtime.Run(ctx, target, argv, append(env, opts...)...)
	return o.ExitCode
}

// Help renders the help screen of the command at path without running
// anything. docs may be nil.
func Help(target command.Target, path []string, docs command.DocSource, layout help.Layout, hopts help.Options, version string) (string, error) {
	root, err := command.Build(target, command.Options{Docs: docs, Version: version != ""})
	if err != nil {
		return "", err
	}
	nodes, err := root.Resolve(path)
	if err != nil {
		return "", err
	}
	if layout == nil {
		layout = help.Standard{}
	}
	s := help.FromNode(nodes[len(nodes)-1], help.SchemaOptions{Version: version != ""})
	return layout.Render(s, hopts), nil
}

// IsExit reports whether err is an *ExitError with the given code.
func IsExit(err error, code int) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Code == code
}

// Reference renders the help page of every command in target, depth first,
// separated by blank lines. A nil layout means help.Markdown.
func Reference(target command.Target, docs command.DocSource, layout help.Layout, version string) (string, error) {
	root, err := command.Build(target, command.Options{Docs: docs, Version: version != ""})
	if err != nil {
		return "", err
	}
	if layout == nil {
		layout = help.Markdown{}
	}
	var pages []string
	err = root.Walk(func(n *command.Node) error {
		s := help.FromNode(n, help.SchemaOptions{Version: version != ""})
		pages = append(pages, strings.TrimRight(layout.Render(s, help.Options{Width: 100}), "\n"))
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n\n") + "\n", nil
}
