// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/clify/pkg/backend"
	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/kind"
)

type result struct {
	Outcome
	stdout string
	stderr string
}

func run(t *testing.T, target command.Target, argv []string, opts ...Option) result {
	t.Helper()
	var out, errb bytes.Buffer
	base := []Option{
		WithOutput(&out, &errb),
		WithColor(ColorNever),
		WithWidth(80),
		WithSignals(false),
	}
	o := Run(context.Background(), target, argv, append(base, opts...)...)
	return result{Outcome: o, stdout: out.String(), stderr: errb.String()}
}

func addTarget() *command.Func {
	return command.Reflect("add", func(a, b int) int { return a + b },
		command.Param{Name: "a"}, command.Param{Name: "b"})
}

func TestAddScenario(t *testing.T) {
	r := run(t, addTarget(), []string{"2", "3"})
	if r.State != Completed || r.ExitCode != 0 {
		t.Fatalf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
	if r.Value != 5 {
		t.Errorf("Value = %v, want 5", r.Value)
	}
	if r.stdout != "5\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
}

func TestListScenario(t *testing.T) {
	f := &command.Func{
		Name:   "tally",
		Params: []command.Param{{Name: "count", Type: kind.Generic(kind.List, kind.String), Optional: true}},
		Call: func(ctx context.Context, args *command.Args) (any, error) {
			return args.Strings("count"), nil
		},
	}
	path := filepath.Join(t.TempDir(), "items.txt")
	if err := os.WriteFile(path, []byte("a\nb\nc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	for _, argv := range [][]string{
		{"--count", "a,b,c"},
		{"--count", path},
		{"--count", "a", "--count", "b,c"},
	} {
		r := run(t, f, argv)
		if r.State != Completed {
			t.Fatalf("%v: outcome = %+v, stderr %q", argv, r.Outcome, r.stderr)
		}
		if diff := cmp.Diff(want, r.Value); diff != "" {
			t.Errorf("%v: value mismatch (-want +got):\n%s", argv, diff)
		}
		if r.stdout != "a\nb\nc\n" {
			t.Errorf("%v: stdout = %q", argv, r.stdout)
		}
	}

	// Each occurrence is read on its own, so a file may be mixed with
	// inline values.
	r := run(t, f, []string{"--count", path, "--count", "d"})
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, r.Value); diff != "" {
		t.Errorf("file then inline: value mismatch (-want +got):\n%s", diff)
	}
}

func TestDryRunScenario(t *testing.T) {
	f := &command.Func{
		Name:   "deploy",
		Params: []command.Param{{Name: "dry_run", Type: kind.Bool, Default: true}},
		Call: func(ctx context.Context, args *command.Args) (any, error) {
			return args.Bool("dry_run"), nil
		},
	}
	tests := []struct {
		argv []string
		want bool
	}{
		{nil, true},
		{[]string{"--no-dry-run"}, false},
		{[]string{"--dry-run"}, true},
	}
	for _, tt := range tests {
		r := run(t, f, tt.argv)
		if r.State != Completed || r.Value != tt.want {
			t.Errorf("%v: outcome = %+v, want value %v", tt.argv, r.Outcome, tt.want)
		}
	}
}

type workspace struct{ name string }

func newWorkspace(name string) *workspace { return &workspace{name: name} }

func (w *workspace) Status() string { return "clean:" + w.name }

func TestClassScenario(t *testing.T) {
	cls := command.ReflectClass("workspace", newWorkspace, []command.Param{{Name: "workspace"}}, nil)
	r := run(t, cls, []string{"ws1", "status"})
	if r.State != Completed || r.Value != "clean:ws1" {
		t.Fatalf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
}

func TestGroupParamsReachDescendants(t *testing.T) {
	leaf := &command.Func{Name: "list", Params: []command.Param{{Name: "filter", Default: "*"}},
		Call: func(ctx context.Context, args *command.Args) (any, error) {
			return args.String("region") + ":" + args.String("filter"), nil
		}}
	g := &command.Group{Name: "cloud", Params: []command.Param{{Name: "region"}}, Members: []command.Target{
		&command.Group{Name: "vm", Members: []command.Target{leaf}},
	}}
	r := run(t, g, []string{"eu", "vm", "list"})
	if r.Value != "eu:*" {
		t.Errorf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
	r = run(t, g, []string{"--region", "us", "vm", "list", "--filter", "web"}, WithBackend(BackendUrfave))
	if r.Value != "us:web" {
		t.Errorf("urfave outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
}

func TestAsyncScenario(t *testing.T) {
	f := command.ReflectAsync("fetch", func(ctx context.Context, n int) (int, error) {
		time.Sleep(5 * time.Millisecond)
		return n * 2, nil
	}, command.Param{Name: "n"})
	r := run(t, f, []string{"21"}, WithProgress(true))
	if r.State != Completed || r.Value != 42 {
		t.Fatalf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
	// Progress is only drawn on terminals.
	if r.stderr != "" {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func interruptingTarget() *command.Func {
	return &command.Func{Name: "wait", Call: func(ctx context.Context, args *command.Args) (any, error) {
		return nil, ErrInterrupted
	}}
}

func TestInterruptScenario(t *testing.T) {
	r := run(t, interruptingTarget(), nil)
	if r.State != Interrupted || r.ExitCode != 130 {
		t.Fatalf("outcome = %+v", r.Outcome)
	}
	if r.stderr != "Interrupted.\n" {
		t.Errorf("stderr = %q, want one notice", r.stderr)
	}
	if r.Err != nil {
		t.Errorf("Err = %v, want nil without re-raise", r.Err)
	}
}

func TestInterruptOptions(t *testing.T) {
	calls := 0
	r := run(t, interruptingTarget(), nil,
		WithSilentInterrupt(true),
		WithReraise(true),
		OnInterrupt(func() { calls++ }),
	)
	if r.State != Interrupted || r.ExitCode != 130 {
		t.Fatalf("outcome = %+v", r.Outcome)
	}
	if r.stderr != "" {
		t.Errorf("stderr = %q, want silence", r.stderr)
	}
	if !errors.Is(r.Err, ErrInterrupted) {
		t.Errorf("Err = %v, want ErrInterrupted", r.Err)
	}
	if calls != 1 {
		t.Errorf("callback ran %d times", calls)
	}
}

func TestHelpIsEarlyExit(t *testing.T) {
	r := run(t, addTarget(), []string{"--help"})
	if r.State != EarlyExit || r.ExitCode != 0 {
		t.Fatalf("outcome = %+v", r.Outcome)
	}
	if !strings.HasPrefix(r.stdout, "usage: add") {
		t.Errorf("stdout = %q", r.stdout)
	}
	if r.stderr != "" {
		t.Errorf("help logged to stderr: %q", r.stderr)
	}
}

func TestVersion(t *testing.T) {
	r := run(t, addTarget(), []string{"--version"}, WithVersion("1.0.0"))
	if r.State != EarlyExit || r.ExitCode != 0 || r.stdout != "add 1.0.0\n" {
		t.Errorf("outcome = %+v, stdout %q", r.Outcome, r.stdout)
	}
}

func TestUsageError(t *testing.T) {
	r := run(t, addTarget(), []string{"2"})
	if r.State != EarlyExit || r.ExitCode != 2 {
		t.Fatalf("outcome = %+v", r.Outcome)
	}
	want := "usage: add [-h] [-q] a b\nadd: error: the following arguments are required: b\n"
	if r.stderr != want {
		t.Errorf("stderr =\n%s\nwant\n%s", r.stderr, want)
	}
	var pe *backend.ParseError
	if !errors.As(r.Err, &pe) {
		t.Errorf("Err = %v, want *backend.ParseError", r.Err)
	}
}

func TestSizedIntsAreRangeChecked(t *testing.T) {
	called := false
	f := command.Reflect("narrow", func(a int8, b uint) int {
		called = true
		return int(a) + int(b)
	}, command.Param{Name: "a"}, command.Param{Name: "b"})
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"int8_overflow", []string{"300", "1"}, `narrow: error: argument a: invalid int8 value: "300"`},
		{"uint_negative", []string{"1", "-1"}, `narrow: error: argument b: invalid uint value: "-1"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, f, tt.argv)
			if r.State != EarlyExit || r.ExitCode != 2 {
				t.Fatalf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
			}
			if !strings.Contains(r.stderr, tt.want) {
				t.Errorf("stderr = %q, want %q", r.stderr, tt.want)
			}
		})
	}
	if called {
		t.Error("target invoked with out-of-range arguments")
	}
	if r := run(t, f, []string{"-128", "255"}); r.Value != 127 {
		t.Errorf("Value = %v, want 127 (stderr %q)", r.Value, r.stderr)
	}
}

func TestCoercionErrors(t *testing.T) {
	f := &command.Func{
		Name: "plan",
		Params: []command.Param{
			{Name: "when", Type: kind.Date},
			{Name: "level", Type: kind.Enum("level", "debug", "info"), Default: "info"},
		},
		Call: func(ctx context.Context, args *command.Args) (any, error) {
			t.Error("target invoked with invalid arguments")
			return nil, nil
		},
	}
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"bad_date", []string{"notadate"}, `plan: error: argument when: invalid date value: "notadate"`},
		{"bad_choice", []string{"2024-01-02", "--level", "inf"}, `plan: error: argument -l/--level: invalid choice: "inf" (choose from debug, info); did you mean "info"?`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, f, tt.argv)
			if r.State != Failed || r.ExitCode != 1 {
				t.Fatalf("outcome = %+v", r.Outcome)
			}
			if !strings.HasPrefix(r.stderr, tt.want) {
				t.Errorf("stderr = %q, want prefix %q", r.stderr, tt.want)
			}
		})
	}
}

func TestDefaultsAreCoerced(t *testing.T) {
	f := &command.Func{
		Name: "wait",
		Params: []command.Param{
			{Name: "timeout", Type: kind.Duration, Default: "1m30s"},
			{Name: "level", Type: kind.Enum("level", "debug", "info"), Default: "info"},
		},
		Call: func(ctx context.Context, args *command.Args) (any, error) {
			return args.Duration("timeout").String() + " " + args.String("level"), nil
		},
	}
	r := run(t, f, nil)
	if r.Value != "1m30s info" {
		t.Errorf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
}

func TestBuildFailure(t *testing.T) {
	f := &command.Func{Name: "dial", Params: []command.Param{{Name: "conn", Type: kind.Opaque("net.Conn")}},
		Call: func(ctx context.Context, args *command.Args) (any, error) { return nil, nil }}
	r := run(t, f, nil)
	if r.State != Failed || r.ExitCode != 1 {
		t.Fatalf("outcome = %+v", r.Outcome)
	}
	if !strings.Contains(r.stderr, "error: dial: conn:") {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestUnknownBackend(t *testing.T) {
	r := run(t, addTarget(), []string{"1", "2"}, WithBackend("getopt"))
	if r.State != Failed || !strings.Contains(r.stderr, `unknown backend "getopt"`) {
		t.Errorf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
}

func TestPanic(t *testing.T) {
	f := &command.Func{Name: "boom", Call: func(ctx context.Context, args *command.Args) (any, error) {
		panic("kaboom")
	}}
	r := run(t, f, nil)
	if r.State != Failed || r.ExitCode != 1 {
		t.Fatalf("outcome = %+v", r.Outcome)
	}
	if r.stderr != "boom: error: panic: kaboom\n" {
		t.Errorf("stderr = %q", r.stderr)
	}

	r = run(t, f, nil, WithTraceback(true))
	if !strings.Contains(r.stderr, "goroutine") || !strings.HasSuffix(r.stderr, "boom: error: panic: kaboom\n") {
		t.Errorf("traceback stderr = %q", r.stderr)
	}
}

func TestAsyncPanic(t *testing.T) {
	f := &command.Func{Name: "boom", Async: func(ctx context.Context, args *command.Args) command.Coroutine {
		return func(ctx context.Context) (any, error) { panic("later") }
	}}
	r := run(t, f, nil)
	if r.State != Failed || r.stderr != "boom: error: panic: later\n" {
		t.Errorf("outcome = %+v, stderr %q", r.Outcome, r.stderr)
	}
}

type codeErr int

func (c codeErr) Error() string { return "code" }
func (c codeErr) ExitCode() int { return int(c) }

func TestExitCodes(t *testing.T) {
	ret := func(v any, err error) *command.Func {
		return &command.Func{Name: "x", Call: func(ctx context.Context, args *command.Args) (any, error) { return v, err }}
	}
	if r := run(t, ret(3, nil), nil, WithReturnCode(true)); r.ExitCode != 3 {
		t.Errorf("return code: exit %d", r.ExitCode)
	}
	if r := run(t, ret(3, nil), nil); r.ExitCode != 0 {
		t.Errorf("return code disabled: exit %d", r.ExitCode)
	}
	if r := run(t, ret(nil, codeErr(4)), nil); r.ExitCode != 4 || r.State != Failed {
		t.Errorf("ExitCoder: %+v", r.Outcome)
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		c    Config
		want int
	}{
		{"completed", Outcome{State: Completed, Value: 7}, Config{}, 0},
		{"completed_return_code", Outcome{State: Completed, Value: 7}, Config{UseReturnCode: true}, 7},
		{"completed_non_int", Outcome{State: Completed, Value: "7"}, Config{UseReturnCode: true}, 0},
		{"failed", Outcome{State: Failed, Err: errors.New("x")}, Config{}, 1},
		{"failed_exit_coder", Outcome{State: Failed, Err: codeErr(9)}, Config{}, 9},
		{"help", Outcome{State: EarlyExit, Err: &backend.ExitError{Code: 0}}, Config{}, 0},
		{"usage", Outcome{State: EarlyExit, Err: &backend.ParseError{Msg: "x"}}, Config{}, 2},
		{"interrupted", Outcome{State: Interrupted}, Config{}, 130},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.o, tt.c); got != tt.want {
			t.Errorf("%s: ExitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestQuiet(t *testing.T) {
	r := run(t, addTarget(), []string{"-q", "2", "3"})
	if r.Value != 5 || r.stdout != "" {
		t.Errorf("outcome = %+v, stdout %q", r.Outcome, r.stdout)
	}
	r = run(t, addTarget(), []string{"2", "3"}, WithPrint(false))
	if r.stdout != "" {
		t.Errorf("stdout = %q with printing off", r.stdout)
	}
}

func TestDebugLogging(t *testing.T) {
	r := run(t, addTarget(), []string{"1", "2"}, WithDebug(true))
	for _, want := range []string{"add: debug: enter", "state=invoking", "run=", "exit=0"} {
		if !strings.Contains(r.stderr, want) {
			t.Errorf("debug log lacks %q:\n%s", want, r.stderr)
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name   string
		v      any
		format string
		want   string
	}{
		{"nil", nil, "", ""},
		{"scalar", 5, "", "5\n"},
		{"slice", []string{"a", "b"}, "", "a\nb\n"},
		{"set", kind.NewSet("x", "y", "x"), "", "x\ny\n"},
		{"map", map[string]any{"b": 2, "a": 1}, "", "a: 1\nb: 2\n"},
		{"json", map[string]int{"a": 1}, "json", "{\n  \"a\": 1\n}\n"},
		{"yaml_list", []int{1, 2}, "yaml", "- 1\n- 2\n"},
		{"env", map[string]any{"NAME": "two words", "A": 1}, "env", "A=1\nNAME=\"two words\"\n"},
		{"env_non_map", "plain", "env", "plain\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			if err := Display(&b, tt.v, tt.format); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, b.String()); diff != "" {
				t.Errorf("Display mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if err := Display(&bytes.Buffer{}, 1, "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestStateString(t *testing.T) {
	if got := EarlyExit.String(); got != "early-exit" {
		t.Errorf("EarlyExit = %q", got)
	}
}
