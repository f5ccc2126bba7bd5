// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/clify/pkg/cli"
	"github.com/yeetrun/clify/pkg/config"
	"github.com/yeetrun/clify/pkg/runtime"
)

func runDemo(t *testing.T, argv ...string) (runtime.Outcome, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	o := runtime.Run(context.Background(), app(), argv,
		runtime.WithOutput(&out, &errb),
		runtime.WithDocs(docs),
		runtime.WithVersion(version),
		runtime.WithColor(runtime.ColorNever),
		runtime.WithWidth(100),
		runtime.WithSignals(false),
	)
	return o, out.String(), errb.String()
}

func TestDemoCommands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{
			name: "status",
			argv: []string{"svc", "status"},
			want: "catch/db\tpostgres:16\t1\ncatch/web\tnginx:1.27\t2\n",
		},
		{
			name: "status_other_host",
			argv: []string{"service", "--host", "edge", "status"},
			want: "edge/db\tpostgres:16\t1\nedge/web\tnginx:1.27\t2\n",
		},
		{
			name: "deploy",
			argv: []string{"svc", "deploy", "api", "ghcr.io/api:1", "--env", "A=1,B=two", "--tags", "x,y,x", "-r", "3"},
			want: "created catch/api (ghcr.io/api:1 x3)\n",
		},
		{
			name: "deploy_dry_run",
			argv: []string{"svc", "deploy", "web", "nginx:1.28", "--dry-run"},
			want: "would have updated catch/web (nginx:1.28 x1)\n",
		},
		{
			name: "info",
			argv: []string{"svc", "info", "db"},
			want: "env:\n  PGDATA: /data\nhost: catch\nimage: postgres:16\nname: db\nreplicas: 1\n",
		},
		{
			name: "schedule",
			argv: []string{"schedule", "2025-01-01T00:00:00Z", "--every", "12h"},
			want: "first 2025-01-01T00:00:00Z\nthen  2025-01-01T12:00:00Z\nthen  2025-01-02T00:00:00Z\nthen  2025-01-02T12:00:00Z\n",
		},
		{
			name: "schedule_yaml",
			argv: []string{"schedule", "2025-01-01T00:00:00Z", "--format", "yaml", "-e", "1h"},
			want: "every: 1h0m0s\nfirst: \"2025-01-01T00:00:00Z\"\nnext:\n  - \"2025-01-01T01:00:00Z\"\n  - \"2025-01-01T02:00:00Z\"\n  - \"2025-01-01T03:00:00Z\"\n",
		},
		{
			name: "wait",
			argv: []string{"wait", "--duration", "10ms"},
			want: "waited 10ms\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, out, errOut := runDemo(t, tt.argv...)
			if o.State != runtime.Completed {
				t.Fatalf("outcome = %+v, stderr %q", o, errOut)
			}
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("stdout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDemoFailures(t *testing.T) {
	o, _, errOut := runDemo(t, "svc", "remove", "cache")
	if o.ExitCode != 1 || !strings.Contains(errOut, `clidemo: error: no service "cache" on catch`) {
		t.Errorf("remove: outcome = %+v, stderr %q", o, errOut)
	}
	o, _, errOut = runDemo(t, "schedule", "2025-01-01", "--format", "xml")
	if o.ExitCode != 1 || !strings.Contains(errOut, `invalid choice: "xml"`) {
		t.Errorf("schedule: outcome = %+v, stderr %q", o, errOut)
	}
	o, _, errOut = runDemo(t, "svc", "stauts")
	if o.ExitCode != 2 || !strings.Contains(errOut, `did you mean "status"?`) {
		t.Errorf("typo: outcome = %+v, stderr %q", o, errOut)
	}
}

func TestDemoInitConfig(t *testing.T) {
	dir := t.TempDir()
	o, out, errOut := runDemo(t, "init", "--dir", dir, "--theme", "vivid", "--backend", "urfave")
	if o.ExitCode != 0 {
		t.Fatalf("init: outcome = %+v, stderr %q", o, errOut)
	}
	path := filepath.Join(dir, config.FileName)
	if out != "wrote "+path+"\n" {
		t.Errorf("stdout = %q", out)
	}
	loc, err := config.LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := &config.Config{Prog: "clidemo", Version: version, Theme: "vivid", Backend: "urfave"}
	if diff := cmp.Diff(want, loc.Config); diff != "" {
		t.Errorf("saved config mismatch (-want +got):\n%s", diff)
	}

	o, _, errOut = runDemo(t, "init", "--dir", dir)
	if o.ExitCode != 1 || !strings.Contains(errOut, "already exists") {
		t.Errorf("second init: outcome = %+v, stderr %q", o, errOut)
	}
	o, _, errOut = runDemo(t, "init", "--dir", dir, "--theme", "neon", "--force")
	if o.ExitCode != 1 || !strings.Contains(errOut, `unknown theme "neon"`) {
		t.Errorf("bad theme: outcome = %+v, stderr %q", o, errOut)
	}
	if o, _, _ := runDemo(t, "init", "--dir", dir, "--force"); o.ExitCode != 0 {
		t.Errorf("forced init: outcome = %+v", o)
	}
}

func TestDemoHelp(t *testing.T) {
	_, out, _ := runDemo(t, "svc", "deploy", "--help")
	for _, want := range []string{"usage: clidemo svc deploy", "Deploy or update a service.", "image reference"} {
		if !strings.Contains(out, want) {
			t.Errorf("help lacks %q:\n%s", want, out)
		}
	}
	_, out, _ = runDemo(t, "--version")
	if out != "clidemo 0.1.0\n" {
		t.Errorf("version = %q", out)
	}
}

func TestDemoReference(t *testing.T) {
	ref, err := cli.Reference(app(), docs, nil, version)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# clidemo\n",
		"# clidemo svc\n",
		"# clidemo svc deploy\n",
		"Deploy or update a service.",
		"# clidemo schedule\n",
		"# clidemo wait\n",
	} {
		if !strings.Contains(ref, want) {
			t.Errorf("reference lacks %q", want)
		}
	}
	if strings.Index(ref, "# clidemo svc\n") > strings.Index(ref, "# clidemo schedule\n") {
		t.Error("reference is not depth first")
	}
}
