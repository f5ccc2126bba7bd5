// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command clidemo is a small service-fleet tool built entirely from
// declared Go functions and methods.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yeetrun/clify/pkg/cli"
	"github.com/yeetrun/clify/pkg/command"
	"github.com/yeetrun/clify/pkg/config"
	"github.com/yeetrun/clify/pkg/runtime"
)

var version = "0.1.0"

var docs = command.DocMap{
	"svc":                 "Inspect and change services on a host.",
	"svc.host":            "target host",
	"svc.status":          "List services with their image and replica count.",
	"svc.info":            "Show one service.",
	"svc.info.name":       "service name",
	"svc.deploy":          "Deploy or update a service.",
	"svc.deploy.name":     "service name",
	"svc.deploy.image":    "image reference",
	"svc.deploy.replicas": "number of replicas",
	"svc.deploy.env":      "environment as k=v pairs, YAML/JSON, or an env/toml/yaml file",
	"svc.deploy.tags":     "comma separated tags or a file with one per line",
	"svc.deploy.dry_run":  "only print what would change",
	"svc.remove":          "Remove a service.",
	"svc.remove.name":     "service name",
	"schedule":            "Plan a recurring job.",
	"schedule.at":         "first run",
	"schedule.every":      "interval between runs",
	"schedule.format":     "output format",
	"wait":                "Wait, showing progress, until the duration passes or Ctrl-C.",
	"wait.duration":       "how long to wait",
	"init":                "Write a clify.toml with the chosen help settings.",
	"init.dir":            "directory to write into",
	"init.theme":          "help theme",
	"init.backend":        "argument parser backend",
	"init.force":          "overwrite an existing file",
}

func app() command.Target {
	fleetClass := command.ReflectClass("svc", newFleet,
		[]command.Param{{Name: "host", Default: "catch"}},
		map[string][]command.Param{
			"Info": {{Name: "name"}},
			"Deploy": {
				{Name: "name"},
				{Name: "image"},
				{Name: "replicas", Default: 1},
				{Name: "env", Optional: true},
				{Name: "tags", Optional: true},
				{Name: "dry_run", Default: false},
			},
			"Remove": {{Name: "name"}},
		},
	)
	fleetClass.Aliases = []string{"service"}
	return &command.Group{
		Name: "clidemo",
		Doc:  "Manage a toy service fleet.",
		Members: []command.Target{
			fleetClass,
			command.Reflect("schedule", schedule,
				command.Param{Name: "at"},
				command.Param{Name: "every", Default: "24h"},
				command.Param{Name: "format", Default: "text"},
			),
			command.ReflectAsync("wait", wait, command.Param{Name: "duration", Default: "3s"}),
			command.Reflect("init", initConfig,
				command.Param{Name: "dir", Default: "."},
				command.Param{Name: "theme", Default: "default"},
				command.Param{Name: "backend", Default: runtime.BackendNative},
				command.Param{Name: "force", Default: false},
			),
		},
	}
}

func main() {
	cli.Main(app(), cli.WithVersion(version), cli.WithDocs(docs), cli.WithProgress(true))
}

// Format selects how schedule prints its plan.
type Format string

func (Format) Members() []string { return []string{"text", "yaml"} }

func schedule(at time.Time, every time.Duration, format Format) (any, error) {
	if every <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", every)
	}
	next := make([]string, 3)
	for i := range next {
		next[i] = at.Add(time.Duration(i+1) * every).Format(time.RFC3339)
	}
	if format == "yaml" {
		return map[string]any{
			"first": at.Format(time.RFC3339),
			"every": every.String(),
			"next":  next,
		}, nil
	}
	lines := []string{"first " + at.Format(time.RFC3339)}
	for _, n := range next {
		lines = append(lines, "then  "+n)
	}
	return lines, nil
}

func wait(ctx context.Context, d time.Duration) (string, error) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return fmt.Sprintf("waited %s", d), nil
	case <-ctx.Done():
		return "", runtime.ErrInterrupted
	}
}

func initConfig(dir, theme, backend string, force bool) (string, error) {
	c := &config.Config{Prog: "clidemo", Version: version, Theme: theme, Backend: backend}
	if _, err := c.Options(); err != nil {
		return "", err
	}
	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := config.Save(path, c); err != nil {
		return "", err
	}
	return "wrote " + path, nil
}
